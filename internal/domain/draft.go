package domain

import (
	"encoding/json"
	"time"
)

// FormDraft is an auto-saved snapshot of an in-progress form, keyed by the
// owning user and a form identifier.
type FormDraft struct {
	FormID  string          `json:"form_id"`
	Data    json.RawMessage `json:"data"`
	SavedAt time.Time       `json:"saved_at"`
}
