package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"lab-preauth/internal/domain"
)

type ActivityLogRepository interface {
	// Create appends an entry and evicts the oldest rows beyond the
	// configured capacity. There is no update or delete surface.
	Create(ctx context.Context, entry *domain.ActivityEntry) error
	Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
	List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) ([]domain.ActivityEntry, int64, error)
}

type activityLogRepository struct {
	db       *sqlx.DB
	capacity int
}

func NewActivityLogRepository(db *sqlx.DB, capacity int) ActivityLogRepository {
	if capacity <= 0 {
		capacity = 100
	}
	return &activityLogRepository{db: db, capacity: capacity}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityEntry) error {
	query := `
		INSERT INTO activity_log (id, occurred_at, actor_name, action, details, category)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		entry.ID, entry.OccurredAt, entry.ActorName, entry.Action, entry.Details, entry.Category,
	); err != nil {
		return err
	}

	// Ring-buffer semantics: keep only the newest entries.
	trim := `
		DELETE FROM activity_log
		WHERE id NOT IN (
			SELECT id FROM activity_log ORDER BY occurred_at DESC, id LIMIT $1
		)`
	_, err := r.db.ExecContext(ctx, trim, r.capacity)
	return err
}

func (r *activityLogRepository) Recent(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
	if limit <= 0 || limit > r.capacity {
		limit = 20
	}

	var entries []domain.ActivityEntry
	query := `SELECT * FROM activity_log ORDER BY occurred_at DESC, id LIMIT $1`
	err := r.db.SelectContext(ctx, &entries, query, limit)
	return entries, err
}

func (r *activityLogRepository) List(ctx context.Context, category *domain.ActivityCategory, params domain.PaginationParams) ([]domain.ActivityEntry, int64, error) {
	params.Validate()

	var total int64
	var entries []domain.ActivityEntry

	if category != nil {
		if err := r.db.GetContext(ctx, &total,
			`SELECT COUNT(*) FROM activity_log WHERE category = $1`, *category); err != nil {
			return nil, 0, err
		}
		query := `
			SELECT * FROM activity_log WHERE category = $1
			ORDER BY occurred_at DESC, id LIMIT $2 OFFSET $3`
		err := r.db.SelectContext(ctx, &entries, query, *category, params.PageSize, params.Offset())
		return entries, total, err
	}

	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activity_log`); err != nil {
		return nil, 0, err
	}
	query := `SELECT * FROM activity_log ORDER BY occurred_at DESC, id LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &entries, query, params.PageSize, params.Offset())
	return entries, total, err
}
