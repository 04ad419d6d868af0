package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

type pgAccessLogRepository struct {
	db *sql.DB
}

func NewPgAccessLogRepository(db *sql.DB) repository.AccessLogRepository {
	return &pgAccessLogRepository{db: db}
}

func (r *pgAccessLogRepository) Append(ctx context.Context, entry *domain.AccessLogEntry) error {
	query := `INSERT INTO access_log (plate_number, status, event_type, camera_location, timestamp)
	           VALUES ($1, $2, $3, $4, $5)
	           RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		entry.PlateNumber, entry.Status, entry.EventType, entry.CameraLocation, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("AccessLogRepository.Append: %w", err)
	}
	return nil
}

func (r *pgAccessLogRepository) FindRecent(ctx context.Context, limit int) ([]domain.AccessLogEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `SELECT id, plate_number, status, event_type, camera_location, timestamp
	           FROM access_log
	           ORDER BY timestamp DESC LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("AccessLogRepository.FindRecent: %w", err)
	}
	defer rows.Close()

	var entries []domain.AccessLogEntry
	for rows.Next() {
		var entry domain.AccessLogEntry
		if err := rows.Scan(&entry.ID, &entry.PlateNumber, &entry.Status,
			&entry.EventType, &entry.CameraLocation, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("AccessLogRepository.FindRecent (scanning row): %w", err)
		}
		entry.Timestamp = entry.Timestamp.In(time.UTC)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("AccessLogRepository.FindRecent (rows error): %w", err)
	}
	return entries, nil
}
