package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	UserID    uuid.UUID        `json:"user_id" db:"user_id"`
	Type      NotificationType `json:"type" db:"type"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Data      json.RawMessage  `json:"data,omitempty" db:"data"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	ReadAt    *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type NotificationType string

const (
	NotifRequestSubmitted   NotificationType = "REQUEST_SUBMITTED"
	NotifRequestResubmitted NotificationType = "REQUEST_RESUBMITTED"
	NotifRequestTransferred NotificationType = "REQUEST_TRANSFERRED"
	NotifRequestApproved    NotificationType = "REQUEST_APPROVED"
	NotifRequestRejected    NotificationType = "REQUEST_REJECTED"
	NotifMoreInfoNeeded     NotificationType = "MORE_INFO_NEEDED"
)

// NotificationIntent is what the lifecycle engine emits: a recipient plus a
// message. Delivery is fire-and-forget; a delivery failure never affects the
// transition that produced the intent.
type NotificationIntent struct {
	RecipientID   *uuid.UUID       `json:"recipient_id,omitempty"`
	RecipientName string           `json:"recipient_name,omitempty"`
	RecipientRole *UserRole        `json:"recipient_role,omitempty"`
	Type          NotificationType `json:"type"`
	Title         string           `json:"title"`
	Message       string           `json:"message"`
	RequestID     string           `json:"request_id"`
}
