package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"lab-preauth/internal/domain"
)

type ICD10Repository struct {
	mock.Mock
}

func (m *ICD10Repository) GetByCode(ctx context.Context, code string) (*domain.ICD10Code, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ICD10Code), args.Error(1)
}

func (m *ICD10Repository) Search(ctx context.Context, term string, limit int) ([]domain.ICD10Code, error) {
	args := m.Called(ctx, term, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ICD10Code), args.Error(1)
}

func (m *ICD10Repository) ListByCategory(ctx context.Context, category string) ([]domain.ICD10Code, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ICD10Code), args.Error(1)
}

func (m *ICD10Repository) Upsert(ctx context.Context, code *domain.ICD10Code) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}
