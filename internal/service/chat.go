package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/pkg/apperr"
	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

// ChatSummary строка из списка чатов: для личного чата имя и аватар
// берутся из профиля собеседника, у самого чата их нет.
type ChatSummary struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	AvatarURL       string     `json:"avatar_url"`
	IsGroup         bool       `json:"is_group"`
	LastMessage     string     `json:"last_message"`
	LastMessageTime *time.Time `json:"last_message_time"`
	UnreadCount     int64      `json:"unread_count"`
	Online          bool       `json:"online"`
	StatusText      string     `json:"status_text,omitempty"`
	StatusEmoji     string     `json:"status_emoji,omitempty"`
}

type chatService struct {
	chatRepo    repository.ChatRepository
	messageRepo repository.MessageRepository
	presence    PresenceService
	log         *zap.Logger
}

func NewChatService(
	chatRepo repository.ChatRepository,
	messageRepo repository.MessageRepository,
	presence PresenceService,
	log *zap.Logger,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		presence:    presence,
		log:         log,
	}
}

func (s *chatService) ListChats(ctx context.Context, userID uint) ([]ChatSummary, error) {
	if userID == 0 {
		return nil, apperr.New(apperr.Unauthorized, "missing user id")
	}

	chats, err := s.chatRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to list chats", err)
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := ChatSummary{
			ID:      chat.ID,
			Name:    chat.Name,
			IsGroup: chat.IsGroup,
		}

		if !chat.IsGroup {
			other, err := s.chatRepo.OtherMember(ctx, chat.ID, userID)
			if err != nil {
				// Личный чат без собеседника не показываем
				s.log.Warn("direct chat without counterpart", zap.Uint("chat_id", chat.ID), zap.Error(err))
				continue
			}
			other.EnsureNickname()
			summary.Name = other.Nickname
			summary.AvatarURL = other.AvatarURL
			summary.StatusText = other.StatusText
			summary.StatusEmoji = other.StatusEmoji
			online, err := s.presence.IsOnline(ctx, other.ID)
			if err != nil {
				s.log.Warn("presence lookup failed", zap.Uint("user_id", other.ID), zap.Error(err))
			}
			summary.Online = online
		}

		last, err := s.messageRepo.LastMessage(ctx, chat.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to load last message", err)
		}
		if last != nil {
			summary.LastMessage = last.Text
			t := last.CreatedAt
			summary.LastMessageTime = &t
		}

		unread, err := s.messageRepo.UnreadCount(ctx, chat.ID, userID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to count unread messages", err)
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}

	// Свежие чаты первыми, чаты без сообщений в конце
	sort.SliceStable(summaries, func(i, j int) bool {
		ti, tj := summaries[i].LastMessageTime, summaries[j].LastMessageTime
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		default:
			return ti.After(*tj)
		}
	})

	return summaries, nil
}

func (s *chatService) GetOrCreateDirectChat(ctx context.Context, userID, otherUserID uint) (uint, bool, error) {
	if userID == 0 {
		return 0, false, apperr.New(apperr.Unauthorized, "missing user id")
	}
	if otherUserID == 0 {
		return 0, false, apperr.New(apperr.InvalidArgument, "other_user_id required")
	}
	if otherUserID == userID {
		return 0, false, apperr.New(apperr.InvalidArgument, "cannot open a chat with yourself")
	}

	existing, err := s.chatRepo.FindDirect(ctx, userID, otherUserID)
	if err != nil {
		return 0, false, apperr.Wrap(apperr.Internal, "failed to look up direct chat", err)
	}
	if existing != nil {
		return existing.ID, true, nil
	}

	key := model.DirectChatKey(userID, otherUserID)
	chat := &model.Chat{
		CreatedBy: userID,
		DirectKey: &key,
	}
	err = s.chatRepo.CreateWithMembers(ctx, chat, userID, otherUserID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Проиграли гонку за создание: чат пары уже есть
		existing, lookupErr := s.chatRepo.FindDirect(ctx, userID, otherUserID)
		if lookupErr != nil || existing == nil {
			return 0, false, apperr.Wrap(apperr.Internal, "failed to resolve direct chat after conflict", lookupErr)
		}
		return existing.ID, true, nil
	}
	if err != nil {
		return 0, false, apperr.Wrap(apperr.Internal, "failed to create direct chat", err)
	}

	return chat.ID, false, nil
}

func (s *chatService) CreateGroupChat(ctx context.Context, userID uint, name string) (uint, error) {
	if userID == 0 {
		return 0, apperr.New(apperr.Unauthorized, "missing user id")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.New(apperr.InvalidArgument, "group_name required")
	}

	chat := &model.Chat{
		Name:      name,
		IsGroup:   true,
		CreatedBy: userID,
	}
	if err := s.chatRepo.CreateWithMembers(ctx, chat, userID); err != nil {
		return 0, apperr.Wrap(apperr.Internal, "failed to create group chat", err)
	}

	return chat.ID, nil
}

func (s *chatService) AddMember(ctx context.Context, chatID, userID uint) error {
	if chatID == 0 || userID == 0 {
		return apperr.New(apperr.InvalidArgument, "chat_id and user_id required")
	}

	err := s.chatRepo.AddMember(ctx, chatID, userID)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.New(apperr.Conflict, "user is already a member of this chat")
	}
	if err != nil {
		return apperr.Wrap(apperr.Internal, "failed to add chat member", err)
	}
	return nil
}

func (s *chatService) IsMember(ctx context.Context, chatID, userID uint) (bool, error) {
	ok, err := s.chatRepo.IsMember(ctx, chatID, userID)
	if err != nil {
		return false, apperr.Wrap(apperr.Internal, "failed to check chat membership", err)
	}
	return ok, nil
}
