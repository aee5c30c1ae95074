package app

import (
	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/config"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/handler"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/logging"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/service"
)

func Run(cfg *config.Config) {
	log := logging.New("moonly-messenger")
	defer log.Sync()

	db, err := repository.NewDB(cfg.DSN())
	if err != nil {
		log.Fatal("failed to open database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	var presenceRepo repository.PresenceRepository
	if cfg.RedisAddr != "" {
		rdb, err := repository.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		presenceRepo = repository.NewPresenceRepository(rdb, cfg.PresenceTTL())
	} else {
		log.Warn("REDIS_ADDR is not set, keeping presence in process memory")
		presenceRepo = repository.NewMemoryPresenceRepository(cfg.PresenceTTL())
	}

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	friendRepo := repository.NewFriendRequestRepository(db)
	callRepo := repository.NewCallRepository(db)

	presenceService := service.NewPresenceService(presenceRepo, userRepo, log)
	userService := service.NewUserService(userRepo)
	chatService := service.NewChatService(chatRepo, messageRepo, presenceService, log)
	messageService := service.NewMessageService(messageRepo, userRepo, chatService, log)
	friendService := service.NewFriendService(friendRepo, userRepo, chatService, log)
	callService := service.NewCallService(callRepo, chatService, cfg.CallStaleAfter(), log)
	fileService := service.NewFileService(cfg)

	server := NewServer(log,
		handler.NewUserHandler(userService, presenceService),
		handler.NewChatHandler(chatService, messageService),
		handler.NewFriendHandler(friendService),
		handler.NewCallHandler(callService),
		handler.NewFileHandler(fileService),
	)

	if err := server.Run(cfg.ServerPort); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
