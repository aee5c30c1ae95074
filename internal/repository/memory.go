package repository

import (
	"context"
	"sync"
	"time"
)

// memoryPresenceRepository резервная реализация без Redis: используется,
// когда REDIS_ADDR не задан, и в тестах.
type memoryPresenceRepository struct {
	mu      sync.RWMutex
	expires map[uint]time.Time
	ttl     time.Duration
}

func NewMemoryPresenceRepository(ttl time.Duration) PresenceRepository {
	return &memoryPresenceRepository{
		expires: make(map[uint]time.Time),
		ttl:     ttl,
	}
}

func (r *memoryPresenceRepository) MarkOnline(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expires[userID] = time.Now().Add(r.ttl)
	return nil
}

func (r *memoryPresenceRepository) MarkOffline(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.expires, userID)
	return nil
}

func (r *memoryPresenceRepository) Heartbeat(ctx context.Context, userID uint) error {
	return r.MarkOnline(ctx, userID)
}

func (r *memoryPresenceRepository) IsOnline(_ context.Context, userID uint) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	deadline, ok := r.expires[userID]
	return ok && time.Now().Before(deadline), nil
}
