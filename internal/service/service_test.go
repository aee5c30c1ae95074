package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

type testEnv struct {
	db       *gorm.DB
	users    UserService
	presence PresenceService
	chats    ChatService
	messages MessageService
	friends  FriendService
	calls    CallService
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvStale(t, time.Minute)
}

func newTestEnvStale(t *testing.T, callStaleAfter time.Duration) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	// Одна in-memory база на все соединения пула
	sqlDB.SetMaxOpenConns(1)

	if err := repository.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	log := zap.NewNop()

	userRepo := repository.NewUserRepository(db)
	chatRepo := repository.NewChatRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	friendRepo := repository.NewFriendRequestRepository(db)
	callRepo := repository.NewCallRepository(db)
	presenceRepo := repository.NewMemoryPresenceRepository(time.Minute)

	presence := NewPresenceService(presenceRepo, userRepo, log)
	chats := NewChatService(chatRepo, messageRepo, presence, log)

	return &testEnv{
		db:       db,
		users:    NewUserService(userRepo),
		presence: presence,
		chats:    chats,
		messages: NewMessageService(messageRepo, userRepo, chats, log),
		friends:  NewFriendService(friendRepo, userRepo, chats, log),
		calls:    NewCallService(callRepo, chats, callStaleAfter, log),
	}
}

func (env *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	user, err := env.users.Register(context.Background(), username, username, username+"@example.com", "secret123")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func (env *testEnv) directChat(t *testing.T, a, b uint) uint {
	t.Helper()
	chatID, _, err := env.chats.GetOrCreateDirectChat(context.Background(), a, b)
	if err != nil {
		t.Fatalf("create direct chat: %v", err)
	}
	return chatID
}
