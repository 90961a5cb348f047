package v1

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// HardwareRequestDTO DTO для приема передачи от устройства
// @Description DTO для приема передачи от устройства
type HardwareRequestDTO struct {
	DeviceUID string          `json:"device_uid" validate:"required"`
	Kind      string          `json:"kind" validate:"required,oneof=alert cancel heartbeat status"`
	Latitude  float64         `json:"latitude" validate:"latitude"`
	Longitude float64         `json:"longitude" validate:"longitude"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// HardwareResponse DTO для ответа устройству
// @Description DTO для ответа устройству
type HardwareResponse struct {
	Accepted   bool       `json:"accepted"`
	IncidentID *uuid.UUID `json:"incident_id,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// CreateIncidentRequest DTO для ручного создания инцидента
// @Description DTO для ручного создания инцидента
type CreateIncidentRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
	Note      string  `json:"note,omitempty"`
}

// CancelIncidentRequest DTO для отмены инцидента
// @Description DTO для отмены инцидента
type CancelIncidentRequest struct {
	Note string `json:"note,omitempty"`
}

// ManualAssignRequest DTO для ручного назначения машины и больницы
// @Description DTO для ручного назначения машины и больницы
type ManualAssignRequest struct {
	AmbulanceID uuid.UUID `json:"ambulance_id" validate:"required"`
	HospitalID  uuid.UUID `json:"hospital_id" validate:"required"`
}

// UpdatePositionRequest DTO для обновления позиции машины
// @Description DTO для обновления позиции машины
type UpdatePositionRequest struct {
	Latitude  float64 `json:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" validate:"longitude"`
}

// UpdateAmbulanceStatusRequest DTO для смены статуса машины
// @Description DTO для смены статуса машины
type UpdateAmbulanceStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available busy offline"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID                   uuid.UUID  `json:"id"`
	DeviceID             *uuid.UUID `json:"device_id,omitempty"`
	Status               string     `json:"status"`
	Mode                 string     `json:"mode"`
	Latitude             float64    `json:"latitude"`
	Longitude            float64    `json:"longitude"`
	AmbulanceID          *uuid.UUID `json:"ambulance_id,omitempty"`
	HospitalID           *uuid.UUID `json:"hospital_id,omitempty"`
	ConfirmationDeadline *time.Time `json:"confirmation_deadline,omitempty"`
	NoAmbulanceAvailable bool       `json:"no_ambulance_available"`
	CreatedAt            time.Time  `json:"created_at"`
	ConfirmedAt          *time.Time `json:"confirmed_at,omitempty"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// AmbulanceResponse DTO для ответа с информацией о машине
// @Description DTO для ответа с информацией о машине
type AmbulanceResponse struct {
	ID        uuid.UUID `json:"id"`
	CallSign  string    `json:"call_sign"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IncidentLogResponse DTO для записи журнала инцидента
// @Description DTO для записи журнала инцидента
type IncidentLogResponse struct {
	ID         int64     `json:"id"`
	IncidentID uuid.UUID `json:"incident_id"`
	Action     string    `json:"action"`
	ActorKind  string    `json:"actor_kind"`
	ActorRef   string    `json:"actor_ref,omitempty"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
