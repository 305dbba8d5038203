package activity

import (
	"context"
	"time"

	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
)

// Service fronts the append-only activity log.
type Service interface {
	Record(ctx context.Context, actorName, action, details string, category domain.ActivityCategory) error
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
	List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityEntry], error)
}

type service struct {
	activityRepo repository.ActivityLogRepository
}

func NewService(activityRepo repository.ActivityLogRepository) Service {
	return &service{activityRepo: activityRepo}
}

func (s *service) Record(ctx context.Context, actorName, action, details string, category domain.ActivityCategory) error {
	entry := &domain.ActivityEntry{
		ID:         uuid.New(),
		OccurredAt: time.Now(),
		ActorName:  actorName,
		Action:     action,
		Details:    details,
		Category:   category,
	}
	return s.activityRepo.Create(ctx, entry)
}

func (s *service) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	return s.activityRepo.Recent(ctx, limit)
}

func (s *service) List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityEntry], error) {
	entries, total, err := s.activityRepo.List(ctx, category, params)
	if err != nil {
		return domain.PaginatedResponse[domain.ActivityEntry]{}, err
	}
	return domain.NewPaginatedResponse(entries, params.Page, params.PageSize, total), nil
}
