package mocks

import (
	"context"
	"time"

	"lab-preauth/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *UserRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error) {
	args := m.Called(ctx, params)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *UserRepository) ListByRole(ctx context.Context, role domain.UserRole, activeOnly bool) ([]domain.User, error) {
	args := m.Called(ctx, role, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *UserRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, username, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) ExistsByEmployeeNumber(ctx context.Context, employeeNumber string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, employeeNumber, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepository) UpdateReviewerStats(ctx context.Context, id uuid.UUID, stats domain.ReviewerStats) error {
	args := m.Called(ctx, id, stats)
	return args.Error(0)
}

func (m *UserRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
