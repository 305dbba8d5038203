package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"lab-preauth/internal/domain"
)

type TestRepository interface {
	Create(ctx context.Context, test *domain.TestDefinition) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TestDefinition, error)
	GetByCode(ctx context.Context, code string) (*domain.TestDefinition, error)
	Update(ctx context.Context, test *domain.TestDefinition) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, activeOnly bool, params domain.PaginationParams) ([]domain.TestDefinition, int64, error)
	ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error)
	Search(ctx context.Context, term string, params domain.PaginationParams) ([]domain.TestDefinition, int64, error)
}

type testRepository struct {
	db *sqlx.DB
}

func NewTestRepository(db *sqlx.DB) TestRepository {
	return &testRepository{db: db}
}

func (r *testRepository) Create(ctx context.Context, test *domain.TestDefinition) error {
	query := `
		INSERT INTO tests (
			id, code, name_en, name_ar, category, is_active, pre_auth_required,
			required_symptoms, min_symptoms, approved_icd10, suspected_icd10,
			min_age, gender_restriction, prohibited_words, min_justification_words,
			require_documents, min_documents, insurance_notes, justification_example
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, $14, $15,
			$16, $17, $18, $19
		)
		RETURNING created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		test.ID, test.Code, test.NameEN, test.NameAR, test.Category, test.IsActive, test.PreAuthRequired,
		test.RequiredSymptoms, test.MinSymptoms, test.ApprovedICD10, test.SuspectedICD10,
		test.MinAge, test.GenderRestriction, test.ProhibitedWords, test.MinJustificationWords,
		test.RequireDocuments, test.MinDocuments, test.InsuranceNotes, test.JustificationExample,
	).Scan(&test.CreatedAt, &test.UpdatedAt)
}

func (r *testRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TestDefinition, error) {
	var test domain.TestDefinition
	err := r.db.GetContext(ctx, &test, `SELECT * FROM tests WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) GetByCode(ctx context.Context, code string) (*domain.TestDefinition, error) {
	var test domain.TestDefinition
	err := r.db.GetContext(ctx, &test, `SELECT * FROM tests WHERE UPPER(code) = $1`, domain.NormalizeCode(code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &test, nil
}

func (r *testRepository) Update(ctx context.Context, test *domain.TestDefinition) error {
	query := `
		UPDATE tests SET
			code = $2, name_en = $3, name_ar = $4, category = $5,
			pre_auth_required = $6, required_symptoms = $7, min_symptoms = $8,
			approved_icd10 = $9, suspected_icd10 = $10, min_age = $11,
			gender_restriction = $12, prohibited_words = $13,
			min_justification_words = $14, require_documents = $15, min_documents = $16,
			insurance_notes = $17, justification_example = $18, updated_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		test.ID, test.Code, test.NameEN, test.NameAR, test.Category,
		test.PreAuthRequired, test.RequiredSymptoms, test.MinSymptoms,
		test.ApprovedICD10, test.SuspectedICD10, test.MinAge,
		test.GenderRestriction, test.ProhibitedWords,
		test.MinJustificationWords, test.RequireDocuments, test.MinDocuments,
		test.InsuranceNotes, test.JustificationExample,
	)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

func (r *testRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE tests SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return domain.ErrTestNotFound
	}
	return nil
}

func (r *testRepository) List(ctx context.Context, activeOnly bool, params domain.PaginationParams) ([]domain.TestDefinition, int64, error) {
	params.Validate()

	where := ""
	if activeOnly {
		where = " WHERE is_active = TRUE"
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM tests"+where); err != nil {
		return nil, 0, err
	}

	var tests []domain.TestDefinition
	query := "SELECT * FROM tests" + where + " ORDER BY code LIMIT $1 OFFSET $2"
	err := r.db.SelectContext(ctx, &tests, query, params.PageSize, params.Offset())
	return tests, total, err
}

// ExistsByCode checks code uniqueness case-insensitively across active and
// inactive tests.
func (r *testRepository) ExistsByCode(ctx context.Context, code string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	if excludeID != nil {
		err := r.db.GetContext(ctx, &exists,
			`SELECT EXISTS(SELECT 1 FROM tests WHERE UPPER(code) = $1 AND id != $2)`,
			domain.NormalizeCode(code), *excludeID)
		return exists, err
	}
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM tests WHERE UPPER(code) = $1)`, domain.NormalizeCode(code))
	return exists, err
}

func (r *testRepository) Search(ctx context.Context, term string, params domain.PaginationParams) ([]domain.TestDefinition, int64, error) {
	params.Validate()
	pattern := "%" + term + "%"

	var total int64
	countQuery := `SELECT COUNT(*) FROM tests WHERE code ILIKE $1 OR name_en ILIKE $1 OR name_ar ILIKE $1`
	if err := r.db.GetContext(ctx, &total, countQuery, pattern); err != nil {
		return nil, 0, err
	}

	var tests []domain.TestDefinition
	query := `
		SELECT * FROM tests
		WHERE code ILIKE $1 OR name_en ILIKE $1 OR name_ar ILIKE $1
		ORDER BY code LIMIT $2 OFFSET $3`
	err := r.db.SelectContext(ctx, &tests, query, pattern, params.PageSize, params.Offset())
	return tests, total, err
}
