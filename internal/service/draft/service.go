package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"lab-preauth/internal/domain"
)

// Drafts are per-user form snapshots kept in Redis. They expire on their own
// and are deleted once the form is submitted.

const draftTTL = 7 * 24 * time.Hour

type Service interface {
	Save(ctx context.Context, userID uuid.UUID, formID string, data json.RawMessage) (*domain.FormDraft, error)
	Get(ctx context.Context, userID uuid.UUID, formID string) (*domain.FormDraft, error)
	Delete(ctx context.Context, userID uuid.UUID, formID string) error
}

type service struct {
	redis *redis.Client
}

func NewService(redisClient *redis.Client) Service {
	return &service{redis: redisClient}
}

func draftKey(userID uuid.UUID, formID string) string {
	return fmt.Sprintf("draft:%s:%s", userID, formID)
}

func (s *service) Save(ctx context.Context, userID uuid.UUID, formID string, data json.RawMessage) (*domain.FormDraft, error) {
	draft := &domain.FormDraft{
		FormID:  formID,
		Data:    data,
		SavedAt: time.Now(),
	}
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, draftKey(userID, formID), payload, draftTTL).Err(); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, formID string) (*domain.FormDraft, error) {
	raw, err := s.redis.Get(ctx, draftKey(userID, formID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft domain.FormDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (s *service) Delete(ctx context.Context, userID uuid.UUID, formID string) error {
	return s.redis.Del(ctx, draftKey(userID, formID)).Err()
}
