package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RequestKind - тип входящего запроса от устройства
type RequestKind string

const (
	RequestAlert     RequestKind = "alert"
	RequestCancel    RequestKind = "cancel"
	RequestHeartbeat RequestKind = "heartbeat"
	RequestStatus    RequestKind = "status"
)

// HardwareRequest - неизменяемая запись одной передачи от устройства.
// Сохраняется всегда, даже если команда была отклонена.
type HardwareRequest struct {
	ID         uuid.UUID       `json:"id"`
	DeviceUID  string          `json:"device_uid"`
	DeviceID   *uuid.UUID      `json:"device_id,omitempty"`
	Kind       RequestKind     `json:"kind"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	IncidentID *uuid.UUID      `json:"incident_id,omitempty"`
	Rejected   bool            `json:"rejected"`
	ReceivedAt time.Time       `json:"received_at"`
}
