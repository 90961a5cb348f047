package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/service"
)

type AmbulanceRepository struct {
	db *pgxpool.Pool
}

func NewAmbulanceRepository(db *pgxpool.Pool) service.AmbulanceRepository {
	return &AmbulanceRepository{db: db}
}

// GetByID возвращает машину по ее UUID
func (r *AmbulanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Ambulance, error) {
	ambulance := &models.Ambulance{}
	query := `
		SELECT id, call_sign, latitude, longitude, status, updated_at
		FROM ambulances
		WHERE id = $1;
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&ambulance.ID,
		&ambulance.CallSign,
		&ambulance.Latitude,
		&ambulance.Longitude,
		&ambulance.Status,
		&ambulance.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("ambulance with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to get ambulance by id: %w", err)
	}
	return ambulance, nil
}

// ListAmbulances возвращает все машины
func (r *AmbulanceRepository) ListAmbulances(ctx context.Context) ([]*models.Ambulance, error) {
	query := `
		SELECT id, call_sign, latitude, longitude, status, updated_at
		FROM ambulances
		ORDER BY call_sign;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ambulances: %w", err)
	}
	defer rows.Close()

	ambulances := make([]*models.Ambulance, 0)
	for rows.Next() {
		ambulance := &models.Ambulance{}
		err := rows.Scan(
			&ambulance.ID,
			&ambulance.CallSign,
			&ambulance.Latitude,
			&ambulance.Longitude,
			&ambulance.Status,
			&ambulance.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ambulance row: %w", err)
		}
		ambulances = append(ambulances, ambulance)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return ambulances, nil
}

// UpdateStatusCAS меняет статус машины только из ожидаемого исходного.
// RowsAffected() == 0 означает проигранную гонку за резервацию.
func (r *AmbulanceRepository) UpdateStatusCAS(ctx context.Context, id uuid.UUID, from, to models.AmbulanceStatus) (bool, error) {
	query := `
		UPDATE ambulances SET
			status = $1,
			updated_at = NOW()
		WHERE id = $2 AND status = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update ambulance status: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// UpdatePosition сохраняет координаты машины
func (r *AmbulanceRepository) UpdatePosition(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	query := `
		UPDATE ambulances SET
			latitude = $1,
			longitude = $2,
			updated_at = NOW()
		WHERE id = $3;
	`
	cmdTag, err := r.db.Exec(ctx, query, lat, lon, id)
	if err != nil {
		return fmt.Errorf("failed to update ambulance position: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("ambulance with id %s not found for position update", id)
	}
	return nil
}
