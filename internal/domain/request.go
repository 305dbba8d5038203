package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Request struct {
	ID              string       `json:"id" db:"id"`
	PatientName     string       `json:"patient_name" db:"patient_name"`
	PatientID       string       `json:"patient_id" db:"patient_id"`
	Age             int          `json:"age" db:"age"`
	Gender          Gender       `json:"gender" db:"gender"`
	InsuranceNumber string       `json:"insurance_number" db:"insurance_number"`
	TestID          uuid.UUID    `json:"test_id" db:"test_id"`
	TestCode        string       `json:"test_code" db:"test_code"`
	TestName        string       `json:"test_name" db:"test_name"`
	Justification   string       `json:"justification" db:"justification"`
	Symptoms        StringList   `json:"symptoms" db:"symptoms"`
	ICD10Codes      StringList   `json:"icd10_codes" db:"icd10_codes"`
	Documents       DocumentList `json:"documents" db:"documents"`
	Priority        Priority     `json:"priority" db:"priority"`

	Status        RequestStatus `json:"status" db:"status"`
	StatusHistory StatusHistory `json:"status_history" db:"status_history"`

	CreatedBy     uuid.UUID `json:"created_by" db:"created_by"`
	CreatedByName string    `json:"created_by_name" db:"created_by_name"`

	ReviewerID           *uuid.UUID `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewerName         *string    `json:"reviewer_name,omitempty" db:"reviewer_name"`
	PreviousReviewerID   *uuid.UUID `json:"previous_reviewer_id,omitempty" db:"previous_reviewer_id"`
	PreviousReviewerName *string    `json:"previous_reviewer_name,omitempty" db:"previous_reviewer_name"`

	SubmittedAt         *time.Time `json:"submitted_at,omitempty" db:"submitted_at"`
	ResubmittedAt       *time.Time `json:"resubmitted_at,omitempty" db:"resubmitted_at"`
	ReviewStartedAt     *time.Time `json:"review_started_at,omitempty" db:"review_started_at"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt          *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	MoreInfoRequestedAt *time.Time `json:"more_info_requested_at,omitempty" db:"more_info_requested_at"`
	TransferredAt       *time.Time `json:"transferred_at,omitempty" db:"transferred_at"`
	CancelledAt         *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	ApprovalNumber     *string    `json:"approval_number,omitempty" db:"approval_number"`
	ExpirationDate     *time.Time `json:"expiration_date,omitempty" db:"expiration_date"`
	ApprovalNotes      *string    `json:"approval_notes,omitempty" db:"approval_notes"`
	RejectionReason    *string    `json:"rejection_reason,omitempty" db:"rejection_reason"`
	RejectionDetails   *string    `json:"rejection_details,omitempty" db:"rejection_details"`
	ReviewerMessage    *string    `json:"reviewer_message,omitempty" db:"reviewer_message"`
	TransferReason     *string    `json:"transfer_reason,omitempty" db:"transfer_reason"`
	CancellationReason *string    `json:"cancellation_reason,omitempty" db:"cancellation_reason"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type RequestStatus string

const (
	StatusDraft          RequestStatus = "draft"
	StatusSubmitted      RequestStatus = "submitted"
	StatusUnderReview    RequestStatus = "under_review"
	StatusMoreInfoNeeded RequestStatus = "more_info_needed"
	StatusApproved       RequestStatus = "approved"
	StatusRejected       RequestStatus = "rejected"
	StatusCancelled      RequestStatus = "cancelled"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusUnderReview, StatusMoreInfoNeeded,
		StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted from s.
func (s RequestStatus) IsTerminal() bool {
	switch s {
	case StatusApproved, StatusRejected, StatusCancelled:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityUrgent Priority = "urgent"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderBoth   Gender = "both" // restrictions only, never a patient value
)

// StatusEvent is one entry in a request's ordered status history.
type StatusEvent struct {
	Status    RequestStatus     `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type Document struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	MediaType  string    `json:"media_type"`
	ObjectKey  string    `json:"object_key,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TransitionMetadata carries the operation-specific payload some status
// changes require. Unused fields are left zero.
type TransitionMetadata struct {
	ApprovalNumber  string     `json:"approval_number,omitempty"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Details         string     `json:"details,omitempty"`
	Message         string     `json:"message,omitempty"`
	TransferReason  string     `json:"transfer_reason,omitempty"`
	NewReviewerID   *uuid.UUID `json:"new_reviewer_id,omitempty"`
	NewReviewerName string     `json:"new_reviewer_name,omitempty"`
}

// Actor identifies who performs an engine operation. The host application
// resolves it from the session and passes it explicitly on every call.
type Actor struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Role UserRole  `json:"role"`
}

type CreateRequestInput struct {
	PatientName     string    `json:"patient_name" validate:"required,max=100"`
	PatientID       string    `json:"patient_id" validate:"required,max=50"`
	Age             int       `json:"age" validate:"min=0,max=150"`
	Gender          Gender    `json:"gender" validate:"required,oneof=male female"`
	InsuranceNumber string    `json:"insurance_number" validate:"required,max=50"`
	TestID          uuid.UUID `json:"test_id" validate:"required"`
	Justification   string    `json:"justification"`
	Symptoms        []string  `json:"symptoms"`
	ICD10Codes      []string  `json:"icd10_codes"`
	Priority        Priority  `json:"priority"`
	AllowDuplicate  bool      `json:"allow_duplicate"`
}

type RequestFilter struct {
	Status     *RequestStatus
	ReviewerID *uuid.UUID
	Priority   *Priority
	CreatedBy  *uuid.UUID
}

// StringList, DocumentList and StatusHistory are stored as JSONB columns.

type StringList []string

func (l StringList) Value() (driver.Value, error) { return json.Marshal(l) }

func (l *StringList) Scan(src interface{}) error { return scanJSON(src, l) }

type DocumentList []Document

func (l DocumentList) Value() (driver.Value, error) { return json.Marshal(l) }

func (l *DocumentList) Scan(src interface{}) error { return scanJSON(src, l) }

type StatusHistory []StatusEvent

func (h StatusHistory) Value() (driver.Value, error) { return json.Marshal(h) }

func (h *StatusHistory) Scan(src interface{}) error { return scanJSON(src, h) }

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported column type for JSON scan")
	}
}
