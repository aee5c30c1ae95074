package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceRepository хранит онлайн-флаги с TTL: пропавший heartbeat
// сам переводит пользователя в оффлайн.
type PresenceRepository interface {
	MarkOnline(ctx context.Context, userID uint) error
	MarkOffline(ctx context.Context, userID uint) error
	Heartbeat(ctx context.Context, userID uint) error
	IsOnline(ctx context.Context, userID uint) (bool, error)
}

type presenceRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewPresenceRepository(rdb *redis.Client, ttl time.Duration) PresenceRepository {
	return &presenceRepository{rdb: rdb, ttl: ttl}
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("presence:%d", userID)
}

func (r *presenceRepository) MarkOnline(ctx context.Context, userID uint) error {
	return r.rdb.Set(ctx, presenceKey(userID), "1", r.ttl).Err()
}

func (r *presenceRepository) MarkOffline(ctx context.Context, userID uint) error {
	return r.rdb.Del(ctx, presenceKey(userID)).Err()
}

func (r *presenceRepository) Heartbeat(ctx context.Context, userID uint) error {
	// Expire не вернул бы к жизни истёкший ключ, поэтому Set
	return r.rdb.Set(ctx, presenceKey(userID), "1", r.ttl).Err()
}

func (r *presenceRepository) IsOnline(ctx context.Context, userID uint) (bool, error) {
	err := r.rdb.Get(ctx, presenceKey(userID)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
