package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	Username       string     `json:"username" db:"username"`
	Email          string     `json:"email" db:"email"`
	PasswordHash   string     `json:"-" db:"password_hash"`
	NameEN         string     `json:"name_en" db:"name_en"`
	NameAR         string     `json:"name_ar" db:"name_ar"`
	Role           UserRole   `json:"role" db:"role"`
	Department     *string    `json:"department,omitempty" db:"department"`
	Facility       *string    `json:"facility,omitempty" db:"facility"`
	EmployeeNumber *string    `json:"employee_number,omitempty" db:"employee_number"`
	Phone          *string    `json:"phone,omitempty" db:"phone"`
	IsActive       bool       `json:"is_active" db:"is_active"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	// Reviewer aggregate, meaningful only for RoleReviewer. Mutated solely
	// by the reviewer statistics service.
	Stats ReviewerStats `json:"stats"`
}

// ReviewerStats are running totals over a reviewer's terminal decisions.
// ApprovalRate is a rounded percentage in [0, 100].
type ReviewerStats struct {
	TotalReviews   int `json:"total_reviews" db:"total_reviews"`
	ApprovalRate   int `json:"approval_rate" db:"approval_rate"`
	PendingReviews int `json:"pending_reviews" db:"pending_reviews"`
}

type UserRole string

const (
	RoleReviewer      UserRole = "reviewer"
	RoleAdmin         UserRole = "admin"
	RoleReportsViewer UserRole = "reports_viewer"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleReviewer, RoleAdmin, RoleReportsViewer:
		return true
	default:
		return false
	}
}

type CreateUserInput struct {
	Username       string   `json:"username" validate:"required,min=3,max=50"`
	Email          string   `json:"email" validate:"required,email"`
	Password       string   `json:"password" validate:"required,min=8"`
	NameEN         string   `json:"name_en" validate:"required,max=100"`
	NameAR         string   `json:"name_ar" validate:"required,max=100"`
	Role           UserRole `json:"role" validate:"required,oneof=reviewer admin reports_viewer"`
	Department     *string  `json:"department,omitempty"`
	Facility       *string  `json:"facility,omitempty"`
	EmployeeNumber *string  `json:"employee_number,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
}

type UpdateUserInput struct {
	Email          *string   `json:"email,omitempty" validate:"omitempty,email"`
	Password       *string   `json:"password,omitempty" validate:"omitempty,min=8"`
	NameEN         *string   `json:"name_en,omitempty" validate:"omitempty,max=100"`
	NameAR         *string   `json:"name_ar,omitempty" validate:"omitempty,max=100"`
	Role           *UserRole `json:"role,omitempty"`
	Department     **string  `json:"department,omitempty"`
	Facility       **string  `json:"facility,omitempty"`
	EmployeeNumber **string  `json:"employee_number,omitempty"`
	Phone          **string  `json:"phone,omitempty"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Actor returns the actor context a user supplies to engine operations.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.NameEN, Role: u.Role}
}
