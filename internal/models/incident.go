package models

import (
	"time"

	"github.com/google/uuid"
)

// IncidentStatus - статус жизненного цикла инцидента
type IncidentStatus string

const (
	IncidentPending    IncidentStatus = "pending"
	IncidentConfirmed  IncidentStatus = "confirmed"
	IncidentCanceled   IncidentStatus = "canceled"
	IncidentAssigned   IncidentStatus = "assigned"
	IncidentInProgress IncidentStatus = "in_progress"
	IncidentCompleted  IncidentStatus = "completed"
)

// IncidentMode - способ создания инцидента
type IncidentMode string

const (
	ModeAuto   IncidentMode = "auto"
	ModeManual IncidentMode = "manual"
)

type Incident struct {
	ID                   uuid.UUID      `json:"id"`
	DeviceID             *uuid.UUID     `json:"device_id,omitempty"`
	Status               IncidentStatus `json:"status"`
	Mode                 IncidentMode   `json:"mode"`
	Latitude             float64        `json:"latitude"`
	Longitude            float64        `json:"longitude"`
	AmbulanceID          *uuid.UUID     `json:"ambulance_id,omitempty"`
	HospitalID           *uuid.UUID     `json:"hospital_id,omitempty"`
	ConfirmationDeadline *time.Time     `json:"confirmation_deadline,omitempty"`
	NoAmbulanceAvailable bool           `json:"no_ambulance_available"`
	CreatedAt            time.Time      `json:"created_at"`
	ConfirmedAt          *time.Time     `json:"confirmed_at,omitempty"`
	ResolvedAt           *time.Time     `json:"resolved_at,omitempty"`
	UpdatedAt            time.Time      `json:"updated_at"`
}

// AllowTransition описывает допустимые переходы статусов инцидента
var AllowTransition = map[IncidentStatus][]IncidentStatus{
	IncidentPending:    {IncidentConfirmed, IncidentCanceled, IncidentAssigned},
	IncidentConfirmed:  {IncidentAssigned},
	IncidentAssigned:   {IncidentInProgress},
	IncidentInProgress: {IncidentCompleted},
	// Терминальные статусы: переходы из canceled / completed запрещены
	IncidentCanceled:  {},
	IncidentCompleted: {},
}

// CanTransition проверяет, допустим ли переход from -> to.
// Прыжок pending -> assigned разрешен только в ручном режиме.
func CanTransition(from, to IncidentStatus, mode IncidentMode) bool {
	if from == IncidentPending && to == IncidentAssigned && mode != ModeManual {
		return false
	}
	allowed, ok := AllowTransition[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// ApplyTransition применяет переход статуса и поддерживает временные метки.
// Вызывать только после успешной проверки CanTransition.
func (i *Incident) ApplyTransition(to IncidentStatus, now time.Time) {
	i.Status = to
	i.UpdatedAt = now

	switch to {
	case IncidentConfirmed:
		if i.ConfirmedAt == nil {
			t := now
			i.ConfirmedAt = &t
		}
	case IncidentCanceled, IncidentCompleted:
		if i.ResolvedAt == nil {
			t := now
			i.ResolvedAt = &t
		}
	}
}

// IsTerminal возвращает true для финальных статусов
func (i *Incident) IsTerminal() bool {
	return i.Status == IncidentCanceled || i.Status == IncidentCompleted
}

// IsOpen возвращает true, пока инцидент не достиг терминального статуса
func (i *Incident) IsOpen() bool {
	return !i.IsTerminal()
}
