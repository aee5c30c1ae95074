package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
)

// IncomingRequest pending-заявка вместе с публичным профилем отправителя.
type IncomingRequest struct {
	Request model.FriendRequest
	From    model.User
}

type FriendRequestRepository interface {
	Create(ctx context.Context, request *model.FriendRequest) error
	// FindPendingFor возвращает (nil, nil), если pending-заявки с этим id,
	// адресованной userID, нет.
	FindPendingFor(ctx context.Context, requestID, userID uint) (*model.FriendRequest, error)
	ListPendingIncoming(ctx context.Context, userID uint) ([]IncomingRequest, error)
	// MarkStatus условно переводит pending-заявку в терминальный статус и
	// сообщает, была ли затронута строка.
	MarkStatus(ctx context.Context, requestID, toUserID uint, status string) (bool, error)
}

type friendRequestRepository struct {
	db *gorm.DB
}

func NewFriendRequestRepository(db *gorm.DB) FriendRequestRepository {
	return &friendRequestRepository{db: db}
}

func (r *friendRequestRepository) Create(ctx context.Context, request *model.FriendRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *friendRequestRepository) FindPendingFor(ctx context.Context, requestID, userID uint) (*model.FriendRequest, error) {
	var request model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("id = ? AND to_user_id = ? AND status = ?", requestID, userID, model.FriendRequestPending).
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *friendRequestRepository) ListPendingIncoming(ctx context.Context, userID uint) ([]IncomingRequest, error) {
	var requests []model.FriendRequest
	err := r.db.WithContext(ctx).
		Where("to_user_id = ? AND status = ?", userID, model.FriendRequestPending).
		Order("created_at DESC, id DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}

	if len(requests) == 0 {
		return nil, nil
	}

	fromIDs := make([]uint, 0, len(requests))
	for _, req := range requests {
		fromIDs = append(fromIDs, req.FromUserID)
	}

	var users []model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", fromIDs).Find(&users).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	incoming := make([]IncomingRequest, 0, len(requests))
	for _, req := range requests {
		incoming = append(incoming, IncomingRequest{Request: req, From: byID[req.FromUserID]})
	}
	return incoming, nil
}

func (r *friendRequestRepository) MarkStatus(ctx context.Context, requestID, toUserID uint, status string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.FriendRequest{}).
		Where("id = ? AND to_user_id = ? AND status = ?", requestID, toUserID, model.FriendRequestPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
