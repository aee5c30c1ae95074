package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pr-poehali-dev/moonly-messenger-2/internal/repository"
)

// presenceService единственный писатель онлайн-состояния: логин, логаут
// и heartbeat. Флаг живёт в presence-хранилище с TTL, last_seen
// сохраняется в таблице пользователей.
type presenceService struct {
	presenceRepo repository.PresenceRepository
	userRepo     repository.UserRepository
	log          *zap.Logger
}

func NewPresenceService(
	presenceRepo repository.PresenceRepository,
	userRepo repository.UserRepository,
	log *zap.Logger,
) PresenceService {
	return &presenceService{
		presenceRepo: presenceRepo,
		userRepo:     userRepo,
		log:          log,
	}
}

func (s *presenceService) MarkOnline(ctx context.Context, userID uint) error {
	if err := s.presenceRepo.MarkOnline(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetOnline(ctx, userID, true, time.Now())
}

func (s *presenceService) MarkOffline(ctx context.Context, userID uint) error {
	if err := s.presenceRepo.MarkOffline(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetOnline(ctx, userID, false, time.Now())
}

func (s *presenceService) Heartbeat(ctx context.Context, userID uint) error {
	if err := s.presenceRepo.Heartbeat(ctx, userID); err != nil {
		return err
	}
	return s.userRepo.SetOnline(ctx, userID, true, time.Now())
}

func (s *presenceService) IsOnline(ctx context.Context, userID uint) (bool, error) {
	return s.presenceRepo.IsOnline(ctx, userID)
}
