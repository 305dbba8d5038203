package reviewerstats

import (
	"context"
	"math"

	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
)

type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// Service maintains the running reviewer aggregates. Only terminal
// decisions move them; no other component writes these counters.
type Service interface {
	// RecordDecision folds one terminal decision into the reviewer's
	// totals and recomputes the approval rate.
	RecordDecision(ctx context.Context, reviewerID uuid.UUID, outcome Outcome) error
	// TrackAssignment bumps the pending-review counter when a reviewer
	// picks up a request.
	TrackAssignment(ctx context.Context, reviewerID uuid.UUID) error
}

type service struct {
	userRepo repository.UserRepository
}

func NewService(userRepo repository.UserRepository) Service {
	return &service{userRepo: userRepo}
}

// RecordDecision reconstructs the approved count by inverting the stored
// rounded percentage against the previous total, then folds in the new
// decision. The stored rate is an approximation, not an exact historical
// ledger: because it round-trips through a rounded percentage, long
// decision sequences can drift slightly from the true ratio.
func (s *service) RecordDecision(ctx context.Context, reviewerID uuid.UUID, outcome Outcome) error {
	user, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleReviewer {
		return nil
	}

	stats := user.Stats
	stats.TotalReviews, stats.ApprovalRate = nextRate(
		stats.TotalReviews, stats.ApprovalRate, outcome == OutcomeApproved)
	if stats.PendingReviews > 0 {
		stats.PendingReviews--
	}

	return s.userRepo.UpdateReviewerStats(ctx, reviewerID, stats)
}

func (s *service) TrackAssignment(ctx context.Context, reviewerID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, reviewerID)
	if err != nil {
		return err
	}
	if user.Role != domain.RoleReviewer {
		return nil
	}

	stats := user.Stats
	stats.PendingReviews++
	return s.userRepo.UpdateReviewerStats(ctx, reviewerID, stats)
}

func nextRate(prevTotal, prevRate int, approved bool) (total, rate int) {
	approvedCount := int(math.Round(float64(prevTotal) * float64(prevRate) / 100))
	if approvedCount > prevTotal {
		approvedCount = prevTotal
	}
	if approved {
		approvedCount++
	}

	total = prevTotal + 1
	rate = int(math.Round(float64(approvedCount) / float64(total) * 100))
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	return total, rate
}
