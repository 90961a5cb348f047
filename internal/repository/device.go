package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/service"
)

type DeviceRepository struct {
	db *pgxpool.Pool
}

func NewDeviceRepository(db *pgxpool.Pool) service.DeviceRepository {
	return &DeviceRepository{db: db}
}

// GetByUID возвращает устройство по аппаратному идентификатору,
// (nil, nil) - если устройство не зарегистрировано
func (r *DeviceRepository) GetByUID(ctx context.Context, uid string) (*models.Device, error) {
	device := &models.Device{}
	query := `
		SELECT id, hardware_uid, owner_id, vehicle, status, last_seen_at, created_at
		FROM devices
		WHERE hardware_uid = $1;
	`
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&device.ID,
		&device.HardwareUID,
		&device.OwnerID,
		&device.Vehicle,
		&device.Status,
		&device.LastSeenAt,
		&device.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get device by uid: %w", err)
	}
	return device, nil
}

// UpdateLastSeen обновляет отметку живости устройства
func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, id uuid.UUID, t time.Time) error {
	query := `
		UPDATE devices SET
			last_seen_at = $1
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("failed to update device last seen: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("device with id %s not found for liveness update", id)
	}
	return nil
}
