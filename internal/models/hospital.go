package models

import (
	"time"

	"github.com/google/uuid"
)

// Hospital - статическая запись о больнице, только для чтения со стороны координатора
type Hospital struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at"`
}
