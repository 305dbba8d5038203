package mocks

import (
	"context"

	"lab-preauth/internal/domain"

	"github.com/stretchr/testify/mock"
)

type ActivityLogRepository struct {
	mock.Mock
}

func (m *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityLogRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.ActivityEntry), args.Error(1)
}

func (m *ActivityLogRepository) List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) ([]domain.ActivityEntry, int64, error) {
	args := m.Called(ctx, category, params)
	return args.Get(0).([]domain.ActivityEntry), args.Get(1).(int64), args.Error(2)
}
