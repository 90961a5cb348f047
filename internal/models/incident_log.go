package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentLog - запись журнала аудита, append-only, по одной на переход
type IncidentLog struct {
	ID         int64     `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Action     string    `json:"action"`
	Actor      Actor     `json:"actor"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
