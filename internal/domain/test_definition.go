package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TestDefinition is a catalog entry: one orderable lab test and the
// clinical-criteria rules a pre-authorization request is screened against.
type TestDefinition struct {
	ID       uuid.UUID `json:"id" db:"id"`
	Code     string    `json:"code" db:"code"`
	NameEN   string    `json:"name_en" db:"name_en"`
	NameAR   string    `json:"name_ar" db:"name_ar"`
	Category string    `json:"category" db:"category"`
	IsActive bool      `json:"is_active" db:"is_active"`

	PreAuthRequired       bool       `json:"pre_auth_required" db:"pre_auth_required"`
	RequiredSymptoms      StringList `json:"required_symptoms" db:"required_symptoms"`
	MinSymptoms           int        `json:"min_symptoms" db:"min_symptoms"`
	ApprovedICD10         StringList `json:"approved_icd10" db:"approved_icd10"`
	SuspectedICD10        StringList `json:"suspected_icd10" db:"suspected_icd10"`
	MinAge                *int       `json:"min_age,omitempty" db:"min_age"`
	GenderRestriction     Gender     `json:"gender_restriction" db:"gender_restriction"`
	ProhibitedWords       StringList `json:"prohibited_words" db:"prohibited_words"`
	MinJustificationWords int        `json:"min_justification_words" db:"min_justification_words"`
	RequireDocuments      bool       `json:"require_documents" db:"require_documents"`
	MinDocuments          int        `json:"min_documents" db:"min_documents"`

	InsuranceNotes       *string `json:"insurance_notes,omitempty" db:"insurance_notes"`
	JustificationExample *string `json:"justification_example,omitempty" db:"justification_example"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type TestCategory string

const (
	CategoryHormones   TestCategory = "hormones"
	CategoryAntibodies TestCategory = "antibodies"
	CategoryBlood      TestCategory = "blood"
	CategoryUrine      TestCategory = "urine"
	CategoryVitamins   TestCategory = "vitamins"
	CategoryOther      TestCategory = "other"
)

func (c TestCategory) IsValid() bool {
	switch c {
	case CategoryHormones, CategoryAntibodies, CategoryBlood, CategoryUrine, CategoryVitamins, CategoryOther:
		return true
	default:
		return false
	}
}

type CreateTestInput struct {
	Code                  string   `json:"code" validate:"required,max=20"`
	NameEN                string   `json:"name_en" validate:"required,max=100"`
	NameAR                string   `json:"name_ar" validate:"required,max=100"`
	Category              string   `json:"category" validate:"required"`
	PreAuthRequired       bool     `json:"pre_auth_required"`
	RequiredSymptoms      []string `json:"required_symptoms"`
	MinSymptoms           int      `json:"min_symptoms" validate:"min=1,max=20"`
	ApprovedICD10         []string `json:"approved_icd10"`
	SuspectedICD10        []string `json:"suspected_icd10"`
	MinAge                *int     `json:"min_age,omitempty"`
	GenderRestriction     Gender   `json:"gender_restriction"`
	ProhibitedWords       []string `json:"prohibited_words"`
	MinJustificationWords int      `json:"min_justification_words"`
	RequireDocuments      bool     `json:"require_documents"`
	MinDocuments          int      `json:"min_documents"`
	InsuranceNotes        *string  `json:"insurance_notes,omitempty"`
	JustificationExample  *string  `json:"justification_example,omitempty"`
}

// TestImportRow is one row of a bulk catalog import.
type TestImportRow struct {
	Code                  string `json:"code"`
	NameEN                string `json:"name_en"`
	NameAR                string `json:"name_ar"`
	Category              string `json:"category"`
	MinSymptoms           int    `json:"min_symptoms"`
	RequiredSymptoms      string `json:"required_symptoms"` // semicolon-separated
	ApprovedICD10         string `json:"approved_icd10"`
	SuspectedICD10        string `json:"suspected_icd10"`
	MinJustificationWords int    `json:"min_justification_words"`
}

type ImportRowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type ImportResult struct {
	SuccessCount int              `json:"success_count"`
	ErrorCount   int              `json:"error_count"`
	Errors       []ImportRowError `json:"errors"`
}

// NormalizeCode canonicalizes a test code for case-insensitive comparison.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ICD10Code is a reference-catalog diagnosis code.
type ICD10Code struct {
	Code          string `json:"code" db:"code"`
	DescriptionEN string `json:"description_en" db:"description_en"`
	DescriptionAR string `json:"description_ar" db:"description_ar"`
	Category      string `json:"category" db:"category"`
}
