package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"lab-preauth/internal/domain"
)

type ICD10Repository interface {
	GetByCode(ctx context.Context, code string) (*domain.ICD10Code, error)
	Search(ctx context.Context, term string, limit int) ([]domain.ICD10Code, error)
	ListByCategory(ctx context.Context, category string) ([]domain.ICD10Code, error)
	Upsert(ctx context.Context, code *domain.ICD10Code) error
}

type icd10Repository struct {
	db *sqlx.DB
}

func NewICD10Repository(db *sqlx.DB) ICD10Repository {
	return &icd10Repository{db: db}
}

func (r *icd10Repository) GetByCode(ctx context.Context, code string) (*domain.ICD10Code, error) {
	var entry domain.ICD10Code
	err := r.db.GetContext(ctx, &entry, `SELECT * FROM icd10_codes WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *icd10Repository) Search(ctx context.Context, term string, limit int) ([]domain.ICD10Code, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	var entries []domain.ICD10Code
	query := `
		SELECT * FROM icd10_codes
		WHERE code ILIKE $1 OR description_en ILIKE $1 OR description_ar ILIKE $1
		ORDER BY code LIMIT $2`
	err := r.db.SelectContext(ctx, &entries, query, "%"+term+"%", limit)
	return entries, err
}

func (r *icd10Repository) ListByCategory(ctx context.Context, category string) ([]domain.ICD10Code, error) {
	var entries []domain.ICD10Code
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM icd10_codes WHERE category = $1 ORDER BY code`, category)
	return entries, err
}

func (r *icd10Repository) Upsert(ctx context.Context, code *domain.ICD10Code) error {
	query := `
		INSERT INTO icd10_codes (code, description_en, description_ar, category)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (code) DO UPDATE SET
			description_en = EXCLUDED.description_en,
			description_ar = EXCLUDED.description_ar,
			category = EXCLUDED.category`
	_, err := r.db.ExecContext(ctx, query, code.Code, code.DescriptionEN, code.DescriptionAR, code.Category)
	return err
}
