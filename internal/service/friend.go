package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

type FriendRequestView struct {
	RequestID uint      `json:"request_id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	Nickname  string    `json:"nickname"`
	AvatarURL string    `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
}

type friendService struct {
	friendRepo repository.FriendRequestRepository
	userRepo   repository.UserRepository
	chats      ChatService
	log        *zap.Logger
}

func NewFriendService(
	friendRepo repository.FriendRequestRepository,
	userRepo repository.UserRepository,
	chats ChatService,
	log *zap.Logger,
) FriendService {
	return &friendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
		chats:      chats,
		log:        log,
	}
}

func (s *friendService) SendRequest(ctx context.Context, fromUserID uint, toUsername string) (uint, error) {
	if fromUserID == 0 {
		return 0, apperr.New(apperr.Unauthorized, "missing user id")
	}
	toUsername = strings.TrimSpace(toUsername)
	if toUsername == "" {
		return 0, apperr.New(apperr.InvalidArgument, "username required")
	}

	target, err := s.userRepo.FindByUsername(ctx, toUsername)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to resolve username", err)
	}

	if target.ID == fromUserID {
		return 0, apperr.New(apperr.InvalidArgument, "cannot send a friend request to yourself")
	}

	request := &model.FriendRequest{
		FromUserID: fromUserID,
		ToUserID:   target.ID,
		Status:     model.FriendRequestPending,
	}
	// Гонку двух одинаковых заявок разрешает частичный уникальный индекс:
	// проигравшая вставка приходит как конфликт.
	err = s.friendRepo.Create(ctx, request)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return 0, apperr.New(apperr.Conflict, "friend request already sent")
	}
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to create friend request", err)
	}

	return request.ID, nil
}

func (s *friendService) ListPendingIncoming(ctx context.Context, userID uint) ([]FriendRequestView, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}

	incoming, err := s.friendRepo.ListPendingIncoming(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list friend requests", err)
	}

	views := make([]FriendRequestView, 0, len(incoming))
	for _, in := range incoming {
		from := in.From
		from.EnsureNickname()
		views = append(views, FriendRequestView{
			RequestID: in.Request.ID,
			UserID:    from.ID,
			Username:  from.Username,
			Nickname:  from.Nickname,
			AvatarURL: from.AvatarURL,
			CreatedAt: in.Request.CreatedAt,
		})
	}
	return views, nil
}

func (s *friendService) Accept(ctx context.Context, requestID, actingUserID uint) (uint, error) {
	if actingUserID == 0 {
		return 0, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if requestID == 0 {
		return 0, apperr.New(apperr.InvalidArgument, "request_id required")
	}

	request, err := s.friendRepo.FindPendingFor(ctx, requestID, actingUserID)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to load friend request", err)
	}
	if request == nil {
		return 0, apperr.New(apperr.NotFound, "friend request not found")
	}

	changed, err := s.friendRepo.MarkStatus(ctx, requestID, actingUserID, model.FriendRequestAccepted)
	if err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to accept friend request", err)
	}
	if !changed {
		// Кто-то успел обработать заявку между чтением и обновлением
		return 0, apperr.New(apperr.NotFound, "friend request not found")
	}

	// Принятие и создание личного чата идут через общий идемпотентный
	// примитив: существующий чат пары переиспользуется.
	chatID, existing, err := s.chats.GetOrCreateDirectChat(ctx, actingUserID, request.FromUserID)
	if err != nil {
		return 0, err
	}

	s.log.Info("friend request accepted",
		zap.Uint("request_id", requestID),
		zap.Uint("chat_id", chatID),
		zap.Bool("chat_existing", existing),
	)

	return chatID, nil
}

func (s *friendService) Reject(ctx context.Context, requestID, actingUserID uint) error {
	if actingUserID == 0 {
		return apperr.New(apperr.Unauthorized, "missing user id")
	}
	if requestID == 0 {
		return apperr.New(apperr.InvalidArgument, "request_id required")
	}

	// Несработавшее условие — тихий no-op, отказ идемпотентен
	if _, err := s.friendRepo.MarkStatus(ctx, requestID, actingUserID, model.FriendRequestRejected); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to reject friend request", err)
	}
	return nil
}
