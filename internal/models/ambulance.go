package models

import (
	"time"

	"github.com/google/uuid"
)

// AmbulanceStatus - статус машины скорой помощи
type AmbulanceStatus string

const (
	AmbulanceAvailable       AmbulanceStatus = "available"
	AmbulanceBusy            AmbulanceStatus = "busy"
	AmbulanceOffline         AmbulanceStatus = "offline"
	AmbulanceEnRouteIncident AmbulanceStatus = "en_route_incident"
	AmbulanceEnRouteHospital AmbulanceStatus = "en_route_hospital"
)

type Ambulance struct {
	ID        uuid.UUID       `json:"id"`
	CallSign  string          `json:"call_sign"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Status    AmbulanceStatus `json:"status"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsReserved возвращает true, если машина удерживается активным инцидентом
func (a *Ambulance) IsReserved() bool {
	return a.Status == AmbulanceEnRouteIncident || a.Status == AmbulanceEnRouteHospital
}
