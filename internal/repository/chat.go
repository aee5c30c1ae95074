package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	// CreateWithMembers вставляет чат и его участников одной транзакцией.
	CreateWithMembers(ctx context.Context, chat *model.Chat, userIDs ...uint) error
	FindByID(ctx context.Context, chatID uint) (*model.Chat, error)
	FindDirect(ctx context.Context, user1ID, user2ID uint) (*model.Chat, error)
	AddMember(ctx context.Context, chatID, userID uint) error
	IsMember(ctx context.Context, chatID, userID uint) (bool, error)
	Members(ctx context.Context, chatID uint) ([]model.User, error)
	OtherMember(ctx context.Context, chatID, userID uint) (*model.User, error)
	ListForUser(ctx context.Context, userID uint) ([]model.Chat, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

func (r *chatRepository) CreateWithMembers(ctx context.Context, chat *model.Chat, userIDs ...uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for _, userID := range userIDs {
			if err := tx.Create(&model.ChatMember{ChatID: chat.ID, UserID: userID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *chatRepository) FindByID(ctx context.Context, chatID uint) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.WithContext(ctx).First(&chat, chatID).Error; err != nil {
		return nil, err
	}
	return &chat, nil
}

// FindDirect ищет личный чат пары по каноническому ключу.
// Возвращает (nil, nil), если чата ещё нет.
func (r *chatRepository) FindDirect(ctx context.Context, user1ID, user2ID uint) (*model.Chat, error) {
	var chat model.Chat
	key := model.DirectChatKey(user1ID, user2ID)
	err := r.db.WithContext(ctx).Where("direct_key = ?", key).First(&chat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) AddMember(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Create(&model.ChatMember{ChatID: chatID, UserID: userID}).Error
}

func (r *chatRepository) IsMember(ctx context.Context, chatID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *chatRepository) Members(ctx context.Context, chatID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN chat_members ON chat_members.user_id = users.id").
		Where("chat_members.chat_id = ?", chatID).
		Order("chat_members.id ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// OtherMember возвращает собеседника в личном чате.
func (r *chatRepository) OtherMember(ctx context.Context, chatID, userID uint) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN chat_members ON chat_members.user_id = users.id").
		Where("chat_members.chat_id = ? AND chat_members.user_id <> ?", chatID, userID).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID uint) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.WithContext(ctx).Model(&model.Chat{}).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}
