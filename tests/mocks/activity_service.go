package mocks

import (
	"context"

	"lab-preauth/internal/domain"

	"github.com/stretchr/testify/mock"
)

type ActivityService struct {
	mock.Mock
}

func (m *ActivityService) Record(ctx context.Context, actorName, action, details string, category domain.ActivityCategory) error {
	args := m.Called(ctx, actorName, action, details, category)
	return args.Error(0)
}

func (m *ActivityService) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ActivityEntry), args.Error(1)
}

func (m *ActivityService) List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) (domain.PaginatedResponse[domain.ActivityEntry], error) {
	args := m.Called(ctx, category, params)
	return args.Get(0).(domain.PaginatedResponse[domain.ActivityEntry]), args.Error(1)
}
