package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	ListByChat(ctx context.Context, chatID uint) ([]model.Message, error)
	// MarkRead помечает прочитанными чужие сообщения чата; throughID = 0
	// снимает ограничение по ID.
	MarkRead(ctx context.Context, chatID, readerID, throughID uint) error
	UnreadCount(ctx context.Context, chatID, viewerID uint) (int64, error)
	LastMessage(ctx context.Context, chatID uint) (*model.Message, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// Порядок фиксирован парой (created_at, id) и не меняется после вставки.
func (r *messageRepository) ListByChat(ctx context.Context, chatID uint) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) MarkRead(ctx context.Context, chatID, readerID, throughID uint) error {
	q := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read = ?", chatID, readerID, false)
	if throughID > 0 {
		q = q.Where("id <= ?", throughID)
	}
	return q.Update("read", true).Error
}

func (r *messageRepository) UnreadCount(ctx context.Context, chatID, viewerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("chat_id = ? AND sender_id <> ? AND read = ?", chatID, viewerID, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// LastMessage возвращает (nil, nil) для пустого чата.
func (r *messageRepository) LastMessage(ctx context.Context, chatID uint) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC, id DESC").
		First(&message).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &message, nil
}
