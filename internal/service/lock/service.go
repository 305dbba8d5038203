package lock

import (
	"context"
	"time"

	"lab-preauth/internal/domain"
)

// Store holds lock records keyed by request id. Get returns nil when no
// record exists. Implementations may expire records on their own (Redis
// TTL), but correctness never depends on that: the service compares the
// stored expiry timestamp on every access.
type Store interface {
	Get(ctx context.Context, requestID string) (*domain.ReviewLock, error)
	Save(ctx context.Context, lock domain.ReviewLock, ttl time.Duration) error
	Delete(ctx context.Context, requestID string) error
}

// Service is the advisory lock manager guarding review-in-progress
// editing. Locks drive UI messaging only; nothing prevents an engine
// mutation that bypasses them.
type Service interface {
	// AcquireOrRefresh grants the lock when it is free, already held by
	// the same actor, or expired. A live lock held by someone else yields
	// a non-error conflict result carrying the holder and expiry.
	AcquireOrRefresh(ctx context.Context, requestID string, actor domain.Actor) (domain.LockResult, error)
	// Release unconditionally removes any lock on the request.
	Release(ctx context.Context, requestID string) error
	// Holder returns the live lock on a request, or nil.
	Holder(ctx context.Context, requestID string) (*domain.ReviewLock, error)
}

type service struct {
	store    Store
	duration time.Duration
}

func NewService(store Store, duration time.Duration) Service {
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	return &service{store: store, duration: duration}
}

func (s *service) AcquireOrRefresh(ctx context.Context, requestID string, actor domain.Actor) (domain.LockResult, error) {
	existing, err := s.store.Get(ctx, requestID)
	if err != nil {
		return domain.LockResult{}, err
	}

	now := time.Now()
	if existing != nil && existing.HolderID != actor.ID && !existing.Expired(now) {
		return domain.LockResult{Granted: false, Lock: *existing}, nil
	}

	lock := domain.ReviewLock{
		RequestID:  requestID,
		HolderID:   actor.ID,
		HolderName: actor.Name,
		AcquiredAt: now,
		ExpiresAt:  now.Add(s.duration),
	}
	if err := s.store.Save(ctx, lock, s.duration); err != nil {
		return domain.LockResult{}, err
	}

	return domain.LockResult{Granted: true, Lock: lock}, nil
}

func (s *service) Release(ctx context.Context, requestID string) error {
	return s.store.Delete(ctx, requestID)
}

func (s *service) Holder(ctx context.Context, requestID string) (*domain.ReviewLock, error) {
	existing, err := s.store.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Expired(time.Now()) {
		return nil, nil
	}
	return existing, nil
}
