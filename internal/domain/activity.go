package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActivityEntry is one row of the append-only activity log. Entries are
// never edited or deleted; the log is capacity-bounded and the oldest
// entries are evicted once it overflows.
type ActivityEntry struct {
	ID         uuid.UUID        `json:"id" db:"id"`
	OccurredAt time.Time        `json:"occurred_at" db:"occurred_at"`
	ActorName  string           `json:"actor_name" db:"actor_name"`
	Action     string           `json:"action" db:"action"`
	Details    string           `json:"details" db:"details"`
	Category   ActivityCategory `json:"category" db:"category"`
}

type ActivityCategory string

const (
	ActivityStatusChange ActivityCategory = "status_change"
	ActivityTransfer     ActivityCategory = "transfer"
	ActivityAdmin        ActivityCategory = "admin"
	ActivityAuth         ActivityCategory = "auth"
	ActivityImport       ActivityCategory = "import"
)
