package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

type MessageView struct {
	ID         uint      `json:"id"`
	Text       string    `json:"text"`
	Type       string    `json:"type"`
	FileURL    string    `json:"file_url,omitempty"`
	Time       time.Time `json:"time"`
	SenderID   uint      `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	IsOwn      bool      `json:"is_own"`
}

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	chats       ChatService
	log         *zap.Logger
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	chats ChatService,
	log *zap.Logger,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		chats:       chats,
		log:         log,
	}
}

func (s *messageService) requireMembership(ctx context.Context, chatID, userID uint) error {
	ok, err := s.chats.IsMember(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.Forbidden, "not a member of this chat")
	}
	return nil
}

func (s *messageService) Append(ctx context.Context, chatID, senderID uint, text, msgType, fileURL string) (*model.Message, error) {
	if senderID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if chatID == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "chat_id required")
	}

	text = strings.TrimSpace(text)
	if text == "" && fileURL == "" {
		return nil, apperr.New(apperr.InvalidArgument, "message text or file required")
	}

	if msgType == "" {
		msgType = model.MessageTypeText
	}

	if err := s.requireMembership(ctx, chatID, senderID); err != nil {
		return nil, err
	}

	message := &model.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
		Type:     msgType,
		FileURL:  fileURL,
	}
	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to store message", err)
	}

	s.log.Info("message appended",
		zap.Uint("chat_id", chatID),
		zap.Uint("message_id", message.ID),
		zap.String("type", msgType),
	)

	return message, nil
}

func (s *messageService) List(ctx context.Context, chatID, userID uint) ([]MessageView, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if chatID == 0 {
		return nil, apperr.New(apperr.InvalidArgument, "chat_id required")
	}

	if err := s.requireMembership(ctx, chatID, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to load messages", err)
	}

	names, err := s.senderNames(ctx, messages)
	if err != nil {
		return nil, err
	}

	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			ID:         m.ID,
			Text:       m.Text,
			Type:       m.Type,
			FileURL:    m.FileURL,
			Time:       m.CreatedAt,
			SenderID:   m.SenderID,
			SenderName: names[m.SenderID],
			IsOwn:      m.SenderID == userID,
		})
	}

	// Просмотр чата подтверждает доставку: чужие сообщения становятся
	// прочитанными. Явное подтверждение без выборки — MarkRead.
	if err := s.messageRepo.MarkRead(ctx, chatID, userID, 0); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to mark messages read", err)
	}

	return views, nil
}

func (s *messageService) MarkRead(ctx context.Context, chatID, userID, throughMessageID uint) error {
	if userID == 0 {
		return apperr.New(apperr.Unauthorized, "missing user id")
	}
	if chatID == 0 {
		return apperr.New(apperr.InvalidArgument, "chat_id required")
	}

	if err := s.requireMembership(ctx, chatID, userID); err != nil {
		return err
	}

	if err := s.messageRepo.MarkRead(ctx, chatID, userID, throughMessageID); err != nil {
		return apperr.Wrap(apperr.Internal, "failed to mark messages read", err)
	}
	return nil
}

func (s *messageService) senderNames(ctx context.Context, messages []model.Message) (map[uint]string, error) {
	names := make(map[uint]string)
	for _, m := range messages {
		if _, ok := names[m.SenderID]; ok {
			continue
		}
		user, err := s.userRepo.FindByID(ctx, m.SenderID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to load sender profile", err)
		}
		user.EnsureNickname()
		names[m.SenderID] = user.Nickname
	}
	return names, nil
}
