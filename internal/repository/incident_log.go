package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/ems_dispatch_system/internal/models"
	"github.com/shenikar/ems_dispatch_system/internal/service"
)

type IncidentLogRepository struct {
	db *pgxpool.Pool
}

func NewIncidentLogRepository(db *pgxpool.Pool) service.IncidentLogRepository {
	return &IncidentLogRepository{db: db}
}

// Create добавляет запись журнала аудита
func (r *IncidentLogRepository) Create(ctx context.Context, entry *models.IncidentLog) error {
	query := `
		INSERT INTO incident_logs (incident_id, action, actor_kind, actor_ref, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id;
	`
	err := r.db.QueryRow(ctx, query,
		entry.IncidentID,
		entry.Action,
		entry.Actor.Kind,
		entry.Actor.Ref,
		entry.Note,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create incident log: %w", err)
	}
	return nil
}

// ListByIncident возвращает журнал инцидента в порядке времени
func (r *IncidentLogRepository) ListByIncident(ctx context.Context, incidentID uuid.UUID) ([]*models.IncidentLog, error) {
	query := `
		SELECT id, incident_id, action, actor_kind, actor_ref, note, created_at
		FROM incident_logs
		WHERE incident_id = $1
		ORDER BY created_at, id;
	`
	rows, err := r.db.Query(ctx, query, incidentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list incident logs: %w", err)
	}
	defer rows.Close()

	entries := make([]*models.IncidentLog, 0)
	for rows.Next() {
		entry := &models.IncidentLog{}
		err := rows.Scan(
			&entry.ID,
			&entry.IncidentID,
			&entry.Action,
			&entry.Actor.Kind,
			&entry.Actor.Ref,
			&entry.Note,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident log row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return entries, nil
}
