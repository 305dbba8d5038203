package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"time"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
)

const maxRangeDays = 365

// Summary aggregates the decisions taken inside a date range.
type Summary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	TotalDecided  int       `json:"total_decided"`
	Approved      int       `json:"approved"`
	Rejected      int       `json:"rejected"`
	ApprovalRate  int       `json:"approval_rate"`
	AvgTurnaround string    `json:"avg_turnaround"`
}

type Service interface {
	DecisionSummary(ctx context.Context, from, to time.Time) (*Summary, error)
	ExportDecisionsCSV(ctx context.Context, from, to time.Time) ([]byte, error)
}

type service struct {
	requestRepo repository.RequestRepository
}

func NewService(requestRepo repository.RequestRepository) Service {
	return &service{requestRepo: requestRepo}
}

func validateRange(from, to time.Time) error {
	if !to.After(from) {
		return fmt.Errorf("%w: end must be after start", domain.ErrInvalidDateRange)
	}
	if to.Sub(from) > maxRangeDays*24*time.Hour {
		return fmt.Errorf("%w: range cannot exceed %d days", domain.ErrInvalidDateRange, maxRangeDays)
	}
	return nil
}

func (s *service) DecisionSummary(ctx context.Context, from, to time.Time) (*Summary, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListDecidedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	summary := &Summary{From: from, To: to, TotalDecided: len(requests)}
	var turnaround time.Duration
	var measured int
	for _, req := range requests {
		switch req.Status {
		case domain.StatusApproved:
			summary.Approved++
		case domain.StatusRejected:
			summary.Rejected++
		}
		if d, ok := decisionTurnaround(&req); ok {
			turnaround += d
			measured++
		}
	}

	if decided := summary.Approved + summary.Rejected; decided > 0 {
		summary.ApprovalRate = int(math.Round(float64(summary.Approved) / float64(decided) * 100))
	}
	if measured > 0 {
		summary.AvgTurnaround = (turnaround / time.Duration(measured)).Round(time.Minute).String()
	}
	return summary, nil
}

func (s *service) ExportDecisionsCSV(ctx context.Context, from, to time.Time) ([]byte, error) {
	if err := validateRange(from, to); err != nil {
		return nil, err
	}

	requests, err := s.requestRepo.ListDecidedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"id", "patient_id", "test_code", "status", "reviewer", "submitted_at", "decided_at", "approval_number", "rejection_reason"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, req := range requests {
		w.Write([]string{
			req.ID,
			req.PatientID,
			req.TestCode,
			string(req.Status),
			strOrEmpty(req.ReviewerName),
			timeOrEmpty(req.SubmittedAt),
			timeOrEmpty(decidedAt(&req)),
			strOrEmpty(req.ApprovalNumber),
			strOrEmpty(req.RejectionReason),
		})
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func decidedAt(req *domain.Request) *time.Time {
	switch req.Status {
	case domain.StatusApproved:
		return req.ApprovedAt
	case domain.StatusRejected:
		return req.RejectedAt
	default:
		return nil
	}
}

func decisionTurnaround(req *domain.Request) (time.Duration, bool) {
	decided := decidedAt(req)
	if decided == nil || req.SubmittedAt == nil {
		return 0, false
	}
	return decided.Sub(*req.SubmittedAt), true
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func timeOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
