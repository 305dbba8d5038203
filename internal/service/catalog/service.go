package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/activity"
)

// Service manages the test catalog and the ICD-10 reference list: CRUD,
// case-insensitive code uniqueness, soft deactivation and bulk import with
// per-row error reporting.
type Service interface {
	CreateTest(ctx context.Context, input domain.CreateTestInput, actor domain.Actor) (*domain.TestDefinition, error)
	GetTest(ctx context.Context, id uuid.UUID) (*domain.TestDefinition, error)
	GetTestByCode(ctx context.Context, code string) (*domain.TestDefinition, error)
	UpdateTest(ctx context.Context, id uuid.UUID, input domain.CreateTestInput, actor domain.Actor) (*domain.TestDefinition, error)
	SetTestActive(ctx context.Context, id uuid.UUID, active bool, actor domain.Actor) error
	ListTests(ctx context.Context, activeOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.TestDefinition], error)
	SearchTests(ctx context.Context, term string, params domain.PaginationParams) (domain.PaginatedResponse[domain.TestDefinition], error)

	ImportTests(ctx context.Context, rows []domain.TestImportRow, actor domain.Actor) (*domain.ImportResult, error)
	ImportErrorReport(result *domain.ImportResult) ([]byte, error)

	SearchICD10(ctx context.Context, term string, limit int) ([]domain.ICD10Code, error)
	GetICD10(ctx context.Context, code string) (*domain.ICD10Code, error)
}

type service struct {
	testRepo  repository.TestRepository
	icd10Repo repository.ICD10Repository
	activity  activity.Service
}

func NewService(testRepo repository.TestRepository, icd10Repo repository.ICD10Repository, activityService activity.Service) Service {
	return &service{
		testRepo:  testRepo,
		icd10Repo: icd10Repo,
		activity:  activityService,
	}
}

func (s *service) CreateTest(ctx context.Context, input domain.CreateTestInput, actor domain.Actor) (*domain.TestDefinition, error) {
	test, err := buildTest(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.testRepo.ExistsByCode(ctx, test.Code, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateCode
	}

	test.ID = uuid.New()
	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now

	if err := s.testRepo.Create(ctx, test); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Added test %s", test.Code),
		test.NameEN, domain.ActivityAdmin)
	return test, nil
}

func (s *service) GetTest(ctx context.Context, id uuid.UUID) (*domain.TestDefinition, error) {
	return s.testRepo.GetByID(ctx, id)
}

func (s *service) GetTestByCode(ctx context.Context, code string) (*domain.TestDefinition, error) {
	return s.testRepo.GetByCode(ctx, domain.NormalizeCode(code))
}

func (s *service) UpdateTest(ctx context.Context, id uuid.UUID, input domain.CreateTestInput, actor domain.Actor) (*domain.TestDefinition, error) {
	existing, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := buildTest(input)
	if err != nil {
		return nil, err
	}

	if updated.Code != existing.Code {
		exists, err := s.testRepo.ExistsByCode(ctx, updated.Code, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateCode
		}
	}

	updated.ID = existing.ID
	updated.IsActive = existing.IsActive
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()

	if err := s.testRepo.Update(ctx, updated); err != nil {
		return nil, err
	}

	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Updated test %s", updated.Code),
		updated.NameEN, domain.ActivityAdmin)
	return updated, nil
}

// SetTestActive soft-deletes or restores a test. Deactivated tests keep
// their historical requests but accept no new ones.
func (s *service) SetTestActive(ctx context.Context, id uuid.UUID, active bool, actor domain.Actor) error {
	test, err := s.testRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.testRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("%s test %s", verb, test.Code),
		test.NameEN, domain.ActivityAdmin)
	return nil
}

func (s *service) ListTests(ctx context.Context, activeOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.TestDefinition], error) {
	tests, total, err := s.testRepo.List(ctx, activeOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.TestDefinition]{}, err
	}
	return domain.NewPaginatedResponse(tests, params.Page, params.PageSize, total), nil
}

func (s *service) SearchTests(ctx context.Context, term string, params domain.PaginationParams) (domain.PaginatedResponse[domain.TestDefinition], error) {
	tests, total, err := s.testRepo.Search(ctx, term, params)
	if err != nil {
		return domain.PaginatedResponse[domain.TestDefinition]{}, err
	}
	return domain.NewPaginatedResponse(tests, params.Page, params.PageSize, total), nil
}

// ImportTests loads catalog rows in bulk. Rows are independent: a bad row is
// reported with its 1-based index and the rest still import.
func (s *service) ImportTests(ctx context.Context, rows []domain.TestImportRow, actor domain.Actor) (*domain.ImportResult, error) {
	result := &domain.ImportResult{}

	for i, row := range rows {
		rowNum := i + 1
		if err := s.importRow(ctx, row); err != nil {
			result.ErrorCount++
			result.Errors = append(result.Errors, domain.ImportRowError{Row: rowNum, Error: err.Error()})
			continue
		}
		result.SuccessCount++
	}

	_ = s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Imported %d tests (%d failed)", result.SuccessCount, result.ErrorCount),
		"", domain.ActivityImport)
	return result, nil
}

func (s *service) importRow(ctx context.Context, row domain.TestImportRow) error {
	input := domain.CreateTestInput{
		Code:                  row.Code,
		NameEN:                row.NameEN,
		NameAR:                row.NameAR,
		Category:              row.Category,
		PreAuthRequired:       true,
		RequiredSymptoms:      splitList(row.RequiredSymptoms),
		MinSymptoms:           row.MinSymptoms,
		ApprovedICD10:         splitList(row.ApprovedICD10),
		SuspectedICD10:        splitList(row.SuspectedICD10),
		MinJustificationWords: row.MinJustificationWords,
	}

	test, err := buildTest(input)
	if err != nil {
		return err
	}

	exists, err := s.testRepo.ExistsByCode(ctx, test.Code, nil)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrDuplicateCode
	}

	test.ID = uuid.New()
	now := time.Now()
	test.CreatedAt = now
	test.UpdatedAt = now
	return s.testRepo.Create(ctx, test)
}

// ImportErrorReport renders the failed rows as a downloadable CSV.
func (s *service) ImportErrorReport(result *domain.ImportResult) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"row", "error"}); err != nil {
		return nil, err
	}
	for _, rowErr := range result.Errors {
		if err := w.Write([]string{strconv.Itoa(rowErr.Row), rowErr.Error}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *service) SearchICD10(ctx context.Context, term string, limit int) ([]domain.ICD10Code, error) {
	return s.icd10Repo.Search(ctx, term, limit)
}

func (s *service) GetICD10(ctx context.Context, code string) (*domain.ICD10Code, error) {
	return s.icd10Repo.GetByCode(ctx, code)
}

func buildTest(input domain.CreateTestInput) (*domain.TestDefinition, error) {
	code := domain.NormalizeCode(input.Code)
	if code == "" {
		return nil, fmt.Errorf("test code is required")
	}
	if strings.TrimSpace(input.NameEN) == "" {
		return nil, fmt.Errorf("english name is required")
	}
	if !domain.TestCategory(input.Category).IsValid() {
		return nil, fmt.Errorf("unknown category %q", input.Category)
	}
	if input.MinSymptoms < 1 {
		return nil, fmt.Errorf("minimum symptoms must be at least 1")
	}
	if input.MinAge != nil && *input.MinAge < 0 {
		return nil, fmt.Errorf("minimum age cannot be negative")
	}

	return &domain.TestDefinition{
		Code:                  code,
		NameEN:                strings.TrimSpace(input.NameEN),
		NameAR:                strings.TrimSpace(input.NameAR),
		Category:              input.Category,
		IsActive:              true,
		PreAuthRequired:       input.PreAuthRequired,
		RequiredSymptoms:      input.RequiredSymptoms,
		MinSymptoms:           input.MinSymptoms,
		ApprovedICD10:         normalizeCodes(input.ApprovedICD10),
		SuspectedICD10:        normalizeCodes(input.SuspectedICD10),
		MinAge:                input.MinAge,
		GenderRestriction:     input.GenderRestriction,
		ProhibitedWords:       input.ProhibitedWords,
		MinJustificationWords: input.MinJustificationWords,
		RequireDocuments:      input.RequireDocuments,
		MinDocuments:          input.MinDocuments,
		InsuranceNotes:        input.InsuranceNotes,
		JustificationExample:  input.JustificationExample,
	}, nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeCodes(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if trimmed := strings.ToUpper(strings.TrimSpace(c)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
