package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewLock is an advisory, time-boxed claim on a request. It exists to
// drive "locked by X until T" messaging; nothing enforces it at the data
// layer. Expiry is the stored timestamp compared on access.
type ReviewLock struct {
	RequestID  string    `json:"request_id"`
	HolderID   uuid.UUID `json:"holder_id"`
	HolderName string    `json:"holder_name"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func (l ReviewLock) Expired(now time.Time) bool {
	return !now.Before(l.ExpiresAt)
}

// LockResult is the outcome of an acquire attempt. A conflict is a normal
// negative result, not an error; Lock then describes the current holder.
type LockResult struct {
	Granted bool       `json:"granted"`
	Lock    ReviewLock `json:"lock"`
}
