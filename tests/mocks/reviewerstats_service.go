package mocks

import (
	"context"

	"lab-preauth/internal/service/reviewerstats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReviewerStatsService struct {
	mock.Mock
}

func (m *ReviewerStatsService) RecordDecision(ctx context.Context, reviewerID uuid.UUID, outcome reviewerstats.Outcome) error {
	args := m.Called(ctx, reviewerID, outcome)
	return args.Error(0)
}

func (m *ReviewerStatsService) TrackAssignment(ctx context.Context, reviewerID uuid.UUID) error {
	args := m.Called(ctx, reviewerID)
	return args.Error(0)
}
