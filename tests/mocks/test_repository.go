package mocks

import (
	"context"

	"lab-preauth/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type TestRepository struct {
	mock.Mock
}

func (m *TestRepository) Create(ctx context.Context, test *domain.TestDefinition) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *TestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TestDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestDefinition), args.Error(1)
}

func (m *TestRepository) GetByCode(ctx context.Context, code string) (*domain.TestDefinition, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestDefinition), args.Error(1)
}

func (m *TestRepository) Update(ctx context.Context, test *domain.TestDefinition) error {
	args := m.Called(ctx, test)
	return args.Error(0)
}

func (m *TestRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *TestRepository) List(ctx context.Context, activeOnly bool, params domain.PaginationParams) ([]domain.TestDefinition, int64, error) {
	args := m.Called(ctx, activeOnly, params)
	return args.Get(0).([]domain.TestDefinition), args.Get(1).(int64), args.Error(2)
}

func (m *TestRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *TestRepository) Search(ctx context.Context, term string, params domain.PaginationParams) ([]domain.TestDefinition, int64, error) {
	args := m.Called(ctx, term, params)
	return args.Get(0).([]domain.TestDefinition), args.Get(1).(int64), args.Error(2)
}
