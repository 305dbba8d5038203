package unit_test

import (
	"context"
	"testing"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/reviewerstats"
	"lab-preauth/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewerWithStats(stats domain.ReviewerStats) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Username: "omar.r",
		NameEN:   "Dr. Omar",
		Role:     domain.RoleReviewer,
		IsActive: true,
		Stats:    stats,
	}
}

func TestReviewerStatsService_RecordDecision(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name        string
		prev        domain.ReviewerStats
		outcome     reviewerstats.Outcome
		wantTotal   int
		wantRate    int
		wantPending int
	}{
		{
			name:        "First Decision Approved",
			prev:        domain.ReviewerStats{},
			outcome:     reviewerstats.OutcomeApproved,
			wantTotal:   1,
			wantRate:    100,
			wantPending: 0,
		},
		{
			name:        "First Decision Rejected",
			prev:        domain.ReviewerStats{},
			outcome:     reviewerstats.OutcomeRejected,
			wantTotal:   1,
			wantRate:    0,
			wantPending: 0,
		},
		{
			name:        "Approval After Even Split",
			prev:        domain.ReviewerStats{TotalReviews: 4, ApprovalRate: 50, PendingReviews: 2},
			outcome:     reviewerstats.OutcomeApproved,
			wantTotal:   5,
			wantRate:    60, // 2 approved becomes 3 of 5
			wantPending: 1,
		},
		{
			name:        "Rejection After Even Split",
			prev:        domain.ReviewerStats{TotalReviews: 4, ApprovalRate: 50, PendingReviews: 2},
			outcome:     reviewerstats.OutcomeRejected,
			wantTotal:   5,
			wantRate:    40, // 2 approved of 5
			wantPending: 1,
		},
		{
			name:        "Rate Never Exceeds 100",
			prev:        domain.ReviewerStats{TotalReviews: 9, ApprovalRate: 100, PendingReviews: 1},
			outcome:     reviewerstats.OutcomeApproved,
			wantTotal:   10,
			wantRate:    100,
			wantPending: 0,
		},
		{
			name:        "Rate Never Drops Below 0",
			prev:        domain.ReviewerStats{TotalReviews: 3, ApprovalRate: 0, PendingReviews: 1},
			outcome:     reviewerstats.OutcomeRejected,
			wantTotal:   4,
			wantRate:    0,
			wantPending: 0,
		},
		{
			name:        "Rounded Rate Reconstruction",
			prev:        domain.ReviewerStats{TotalReviews: 3, ApprovalRate: 67}, // 2 of 3
			outcome:     reviewerstats.OutcomeApproved,
			wantTotal:   4,
			wantRate:    75, // 3 of 4
			wantPending: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userRepo := new(mocks.UserRepository)
			svc := reviewerstats.NewService(userRepo)

			user := reviewerWithStats(tc.prev)
			userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
			userRepo.On("UpdateReviewerStats", ctx, user.ID, domain.ReviewerStats{
				TotalReviews:   tc.wantTotal,
				ApprovalRate:   tc.wantRate,
				PendingReviews: tc.wantPending,
			}).Return(nil).Once()

			err := svc.RecordDecision(ctx, user.ID, tc.outcome)

			require.NoError(t, err)
			userRepo.AssertExpectations(t)
		})
	}

	t.Run("Non-Reviewer Is Ignored", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := reviewerstats.NewService(userRepo)

		admin := reviewerWithStats(domain.ReviewerStats{})
		admin.Role = domain.RoleAdmin
		userRepo.On("GetByID", ctx, admin.ID).Return(admin, nil).Once()

		require.NoError(t, svc.RecordDecision(ctx, admin.ID, reviewerstats.OutcomeApproved))
		userRepo.AssertNotCalled(t, "UpdateReviewerStats", ctx, admin.ID, domain.ReviewerStats{})
	})

	t.Run("Unknown Reviewer", func(t *testing.T) {
		userRepo := new(mocks.UserRepository)
		svc := reviewerstats.NewService(userRepo)

		missingID := uuid.New()
		userRepo.On("GetByID", ctx, missingID).Return(nil, domain.ErrUserNotFound).Once()

		err := svc.RecordDecision(ctx, missingID, reviewerstats.OutcomeApproved)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestReviewerStatsService_TrackAssignment(t *testing.T) {
	ctx := context.Background()

	userRepo := new(mocks.UserRepository)
	svc := reviewerstats.NewService(userRepo)

	user := reviewerWithStats(domain.ReviewerStats{TotalReviews: 7, ApprovalRate: 71, PendingReviews: 1})
	userRepo.On("GetByID", ctx, user.ID).Return(user, nil).Once()
	userRepo.On("UpdateReviewerStats", ctx, user.ID, domain.ReviewerStats{
		TotalReviews:   7,
		ApprovalRate:   71,
		PendingReviews: 2,
	}).Return(nil).Once()

	require.NoError(t, svc.TrackAssignment(ctx, user.ID))
	userRepo.AssertExpectations(t)
}
