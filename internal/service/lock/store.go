package lock

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"lab-preauth/internal/domain"
)

const redisKeyPrefix = "review-lock:"

type redisStore struct {
	client *redis.Client
}

// NewRedisStore backs the lock manager with Redis. The TTL passed to Save
// doubles as a sweep for abandoned records; expiry checks still happen on
// the stored timestamp.
func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, requestID string) (*domain.ReviewLock, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+requestID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var lock domain.ReviewLock
	if err := json.Unmarshal([]byte(raw), &lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

func (s *redisStore) Save(ctx context.Context, lock domain.ReviewLock, ttl time.Duration) error {
	raw, err := json.Marshal(lock)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+lock.RequestID, raw, ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, requestID string) error {
	return s.client.Del(ctx, redisKeyPrefix+requestID).Err()
}

type memoryStore struct {
	mu    sync.Mutex
	locks map[string]domain.ReviewLock
}

// NewMemoryStore is the in-process fallback used when Redis is not
// configured, and by unit tests.
func NewMemoryStore() Store {
	return &memoryStore{locks: make(map[string]domain.ReviewLock)}
}

func (s *memoryStore) Get(_ context.Context, requestID string) (*domain.ReviewLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[requestID]
	if !ok {
		return nil, nil
	}
	return &lock, nil
}

func (s *memoryStore) Save(_ context.Context, lock domain.ReviewLock, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locks[lock.RequestID] = lock
	return nil
}

func (s *memoryStore) Delete(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.locks, requestID)
	return nil
}
