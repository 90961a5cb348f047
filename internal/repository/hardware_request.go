package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/service"
)

type HardwareRequestRepository struct {
	db *pgxpool.Pool
}

func NewHardwareRequestRepository(db *pgxpool.Pool) service.HardwareRequestRepository {
	return &HardwareRequestRepository{db: db}
}

// Create сохраняет запись о передаче устройства. Таблица append-only,
// записи никогда не изменяются.
func (r *HardwareRequestRepository) Create(ctx context.Context, req *models.HardwareRequest) error {
	query := `
		INSERT INTO hardware_requests (
			id, device_uid, device_id, kind, latitude, longitude,
			raw_payload, incident_id, rejected, received_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	_, err := r.db.Exec(ctx, query,
		req.ID,
		req.DeviceUID,
		req.DeviceID,
		req.Kind,
		req.Latitude,
		req.Longitude,
		req.RawPayload,
		req.IncidentID,
		req.Rejected,
		req.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create hardware request: %w", err)
	}
	return nil
}
