package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceStatus - статус аппаратного устройства
type DeviceStatus string

const (
	DeviceActive      DeviceStatus = "active"
	DeviceInactive    DeviceStatus = "inactive"
	DeviceMaintenance DeviceStatus = "maintenance"
)

type Device struct {
	ID          uuid.UUID    `json:"id"`
	HardwareUID string       `json:"hardware_uid"`
	OwnerID     uuid.UUID    `json:"owner_id"`
	Vehicle     string       `json:"vehicle"`
	Status      DeviceStatus `json:"status"`
	LastSeenAt  *time.Time   `json:"last_seen_at,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}
