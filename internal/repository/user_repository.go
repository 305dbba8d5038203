package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lab-preauth/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error)
	ListByRole(ctx context.Context, role domain.UserRole, activeOnly bool) ([]domain.User, error)
	ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error)
	ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
	ExistsByEmployeeNumber(ctx context.Context, employeeNumber string, excludeID *uuid.UUID) (bool, error)
	UpdateReviewerStats(ctx context.Context, id uuid.UUID, stats domain.ReviewerStats) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			id, username, email, password_hash, name_en, name_ar, role,
			department, facility, employee_number, phone, is_active,
			total_reviews, approval_rate, pending_reviews
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11, $12,
			$13, $14, $15
		)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash, user.NameEN, user.NameAR, user.Role,
		user.Department, user.Facility, user.EmployeeNumber, user.Phone, user.IsActive,
		user.Stats.TotalReviews, user.Stats.ApprovalRate, user.Stats.PendingReviews,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE LOWER(username) = $1`, strings.ToLower(username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByName resolves a display name against either of the bilingual name
// columns. Display names are not unique; the first match wins.
func (r *userRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE LOWER(name_en) = $1 OR name_ar = $2 LIMIT 1`,
		strings.ToLower(name), name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users SET
			email = $2, password_hash = $3, name_en = $4, name_ar = $5, role = $6,
			department = $7, facility = $8, employee_number = $9, phone = $10,
			updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.NameEN, user.NameAR, user.Role,
		user.Department, user.Facility, user.EmployeeNumber, user.Phone,
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, params domain.PaginationParams) ([]domain.User, int64, error) {
	params.Validate()

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`); err != nil {
		return nil, 0, err
	}

	var users []domain.User
	query := `SELECT * FROM users ORDER BY username LIMIT $1 OFFSET $2`
	err := r.db.SelectContext(ctx, &users, query, params.PageSize, params.Offset())
	return users, total, err
}

func (r *userRepository) ListByRole(ctx context.Context, role domain.UserRole, activeOnly bool) ([]domain.User, error) {
	query := `SELECT * FROM users WHERE role = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY name_en`

	var users []domain.User
	err := r.db.SelectContext(ctx, &users, query, role)
	return users, err
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, `LOWER(username) = $1`, strings.ToLower(username), excludeID)
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, `LOWER(email) = $1`, strings.ToLower(email), excludeID)
}

func (r *userRepository) ExistsByEmployeeNumber(ctx context.Context, employeeNumber string, excludeID *uuid.UUID) (bool, error) {
	return r.exists(ctx, `employee_number = $1`, employeeNumber, excludeID)
}

func (r *userRepository) exists(ctx context.Context, cond, value string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	if excludeID != nil {
		err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM users WHERE `+cond+` AND id != $2)`, value, *excludeID)
		return exists, err
	}
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE `+cond+`)`, value)
	return exists, err
}

func (r *userRepository) UpdateReviewerStats(ctx context.Context, id uuid.UUID, stats domain.ReviewerStats) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE users SET
			total_reviews = $2, approval_rate = $3, pending_reviews = $4, updated_at = NOW()
		WHERE id = $1`,
		id, stats.TotalReviews, stats.ApprovalRate, stats.PendingReviews)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}
