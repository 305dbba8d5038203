package mocks

import (
	"context"
	"time"

	"lab-preauth/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type RequestRepository struct {
	mock.Mock
}

func (m *RequestRepository) Create(ctx context.Context, req *domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RequestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *RequestRepository) Update(ctx context.Context, req *domain.Request) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *RequestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.Request, int64, error) {
	args := m.Called(ctx, filter, params)
	return args.Get(0).([]domain.Request), args.Get(1).(int64), args.Error(2)
}

func (m *RequestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.RequestStatus]int64), args.Error(1)
}

func (m *RequestRepository) CountPendingByReviewer(ctx context.Context, reviewerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, reviewerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RequestRepository) CountUrgentPending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *RequestRepository) FindDuplicate(ctx context.Context, patientID string, testID uuid.UUID, since time.Time) (*domain.Request, error) {
	args := m.Called(ctx, patientID, testID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Request), args.Error(1)
}

func (m *RequestRepository) NextCode(ctx context.Context, year int) (string, error) {
	args := m.Called(ctx, year)
	return args.String(0), args.Error(1)
}

func (m *RequestRepository) ListDecidedBetween(ctx context.Context, from, to time.Time) ([]domain.Request, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Request), args.Error(1)
}
