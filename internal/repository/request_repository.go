package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lab-preauth/internal/domain"
)

type RequestRepository interface {
	Create(ctx context.Context, req *domain.Request) error
	GetByID(ctx context.Context, id string) (*domain.Request, error)
	Update(ctx context.Context, req *domain.Request) error
	List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.Request, int64, error)
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
	CountPendingByReviewer(ctx context.Context, reviewerID uuid.UUID) (int64, error)
	CountUrgentPending(ctx context.Context) (int64, error)
	FindDuplicate(ctx context.Context, patientID string, testID uuid.UUID, since time.Time) (*domain.Request, error)
	NextCode(ctx context.Context, year int) (string, error)
	ListDecidedBetween(ctx context.Context, from, to time.Time) ([]domain.Request, error)
}

type requestRepository struct {
	db *sqlx.DB
}

func NewRequestRepository(db *sqlx.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *domain.Request) error {
	query := `
		INSERT INTO requests (
			id, patient_name, patient_id, age, gender, insurance_number,
			test_id, test_code, test_name, justification, symptoms, icd10_codes,
			documents, priority, status, status_history, created_by, created_by_name
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18
		)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		req.ID, req.PatientName, req.PatientID, req.Age, req.Gender, req.InsuranceNumber,
		req.TestID, req.TestCode, req.TestName, req.Justification, req.Symptoms, req.ICD10Codes,
		req.Documents, req.Priority, req.Status, req.StatusHistory, req.CreatedBy, req.CreatedByName,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.Request, error) {
	var req domain.Request
	query := `SELECT * FROM requests WHERE id = $1`
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// Update persists the full workflow state of a request in one statement so a
// transition is applied all-or-nothing.
func (r *requestRepository) Update(ctx context.Context, req *domain.Request) error {
	query := `
		UPDATE requests SET
			justification = $2, symptoms = $3, icd10_codes = $4, documents = $5,
			priority = $6, status = $7, status_history = $8,
			reviewer_id = $9, reviewer_name = $10,
			previous_reviewer_id = $11, previous_reviewer_name = $12,
			submitted_at = $13, resubmitted_at = $14, review_started_at = $15,
			approved_at = $16, rejected_at = $17, more_info_requested_at = $18,
			transferred_at = $19, cancelled_at = $20,
			approval_number = $21, expiration_date = $22, approval_notes = $23,
			rejection_reason = $24, rejection_details = $25, reviewer_message = $26,
			transfer_reason = $27, cancellation_reason = $28,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		req.ID, req.Justification, req.Symptoms, req.ICD10Codes, req.Documents,
		req.Priority, req.Status, req.StatusHistory,
		req.ReviewerID, req.ReviewerName,
		req.PreviousReviewerID, req.PreviousReviewerName,
		req.SubmittedAt, req.ResubmittedAt, req.ReviewStartedAt,
		req.ApprovedAt, req.RejectedAt, req.MoreInfoRequestedAt,
		req.TransferredAt, req.CancelledAt,
		req.ApprovalNumber, req.ExpirationDate, req.ApprovalNotes,
		req.RejectionReason, req.RejectionDetails, req.ReviewerMessage,
		req.TransferReason, req.CancellationReason,
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *requestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.Request, int64, error) {
	params.Validate()

	where := " WHERE 1=1"
	args := []interface{}{}
	i := 1

	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, *filter.Status)
		i++
	}
	if filter.ReviewerID != nil {
		where += fmt.Sprintf(" AND reviewer_id = $%d", i)
		args = append(args, *filter.ReviewerID)
		i++
	}
	if filter.Priority != nil {
		where += fmt.Sprintf(" AND priority = $%d", i)
		args = append(args, *filter.Priority)
		i++
	}
	if filter.CreatedBy != nil {
		where += fmt.Sprintf(" AND created_by = $%d", i)
		args = append(args, *filter.CreatedBy)
		i++
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM requests"+where, args...); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		"SELECT * FROM requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, i, i+1,
	)
	args = append(args, params.PageSize, params.Offset())

	var requests []domain.Request
	err := r.db.SelectContext(ctx, &requests, query, args...)
	return requests, total, err
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	rows := []struct {
		Status domain.RequestStatus `db:"status"`
		Count  int64                `db:"count"`
	}{}

	query := `SELECT status, COUNT(*) AS count FROM requests GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}

	counts := make(map[domain.RequestStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *requestRepository) CountPendingByReviewer(ctx context.Context, reviewerID uuid.UUID) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM requests WHERE reviewer_id = $1 AND status = $2`
	err := r.db.GetContext(ctx, &count, query, reviewerID, domain.StatusUnderReview)
	return count, err
}

func (r *requestRepository) CountUrgentPending(ctx context.Context) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM requests WHERE priority = $1 AND status IN ($2, $3)`
	err := r.db.GetContext(ctx, &count, query,
		domain.PriorityUrgent, domain.StatusSubmitted, domain.StatusUnderReview)
	return count, err
}

// FindDuplicate returns a live request for the same patient and test
// submitted since the given time, or nil.
func (r *requestRepository) FindDuplicate(ctx context.Context, patientID string, testID uuid.UUID, since time.Time) (*domain.Request, error) {
	var req domain.Request
	query := `
		SELECT * FROM requests
		WHERE patient_id = $1 AND test_id = $2
		  AND status IN ($3, $4, $5)
		  AND submitted_at >= $6
		ORDER BY submitted_at DESC
		LIMIT 1`

	err := r.db.GetContext(ctx, &req, query,
		patientID, testID,
		domain.StatusSubmitted, domain.StatusUnderReview, domain.StatusApproved,
		since,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// NextCode allocates the next sequential per-year request code, e.g.
// REQ-2026-007 after REQ-2026-006.
func (r *requestRepository) NextCode(ctx context.Context, year int) (string, error) {
	prefix := fmt.Sprintf("REQ-%d-", year)

	var seq int
	query := `
		SELECT COALESCE(MAX(SUBSTRING(id FROM LENGTH($1) + 1)::int), 0)
		FROM requests WHERE id LIKE $1 || '%'`
	if err := r.db.GetContext(ctx, &seq, query, prefix); err != nil {
		return "", err
	}

	return fmt.Sprintf("%s%03d", prefix, seq+1), nil
}

func (r *requestRepository) ListDecidedBetween(ctx context.Context, from, to time.Time) ([]domain.Request, error) {
	var requests []domain.Request
	query := `
		SELECT * FROM requests
		WHERE (status = $1 AND approved_at BETWEEN $3 AND $4)
		   OR (status = $2 AND rejected_at BETWEEN $3 AND $4)
		ORDER BY COALESCE(approved_at, rejected_at)`

	err := r.db.SelectContext(ctx, &requests, query,
		domain.StatusApproved, domain.StatusRejected, from, to)
	return requests, err
}
