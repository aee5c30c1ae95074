package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/model"
)

var liveCallStatuses = []string{
	model.CallStatusCalling,
	model.CallStatusRinging,
	model.CallStatusActive,
}

type CallRepository interface {
	Create(ctx context.Context, session *model.CallSession) error
	FindByID(ctx context.Context, sessionID uint) (*model.CallSession, error)
	// UpdateSignal перезаписывает сигнальные данные и безусловно переводит
	// сессию в active; возвращает false, если сессии нет.
	UpdateSignal(ctx context.Context, sessionID uint, signalData string) (bool, error)
	End(ctx context.Context, sessionID uint, endedAt time.Time) error
	// LatestLive возвращает (nil, nil), если живой сессии в чате нет.
	LatestLive(ctx context.Context, chatID uint) (*model.CallSession, error)
	// ExpireStale закрывает сессии чата, зависшие в calling/ringing
	// без активности дольше допустимого.
	ExpireStale(ctx context.Context, chatID uint, before time.Time) error
}

type callRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) CallRepository {
	return &callRepository{db: db}
}

func (r *callRepository) Create(ctx context.Context, session *model.CallSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *callRepository) FindByID(ctx context.Context, sessionID uint) (*model.CallSession, error) {
	var session model.CallSession
	err := r.db.WithContext(ctx).First(&session, sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *callRepository) UpdateSignal(ctx context.Context, sessionID uint, signalData string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.CallSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"signal_data": signalData,
			"status":      model.CallStatusActive,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *callRepository) End(ctx context.Context, sessionID uint, endedAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.CallSession{}).
		Where("id = ?", sessionID).
		Updates(map[string]any{
			"status":   model.CallStatusEnded,
			"ended_at": endedAt,
		}).Error
}

func (r *callRepository) LatestLive(ctx context.Context, chatID uint) (*model.CallSession, error) {
	var session model.CallSession
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND status IN ?", chatID, liveCallStatuses).
		Order("created_at DESC, id DESC").
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *callRepository) ExpireStale(ctx context.Context, chatID uint, before time.Time) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.CallSession{}).
		Where("chat_id = ? AND status IN ? AND updated_at < ?",
			chatID, []string{model.CallStatusCalling, model.CallStatusRinging}, before).
		Updates(map[string]any{
			"status":   model.CallStatusEnded,
			"ended_at": now,
		}).Error
}
