package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"gopkg.in/guregu/null.v4"
)

type pgVehicleSessionRepository struct {
	db *sql.DB
}

func NewPgVehicleSessionRepository(db *sql.DB) repository.VehicleSessionRepository {
	return &pgVehicleSessionRepository{db: db}
}

const sessionColumns = `id, plate_number, entry_time, exit_time, member_status, duration_minutes, status, created_at, updated_at`

func scanSession(row interface {
	Scan(dest ...interface{}) error
}, session *domain.VehicleSession) error {
	return row.Scan(
		&session.ID, &session.PlateNumber, &session.EntryTime, &session.ExitTime,
		&session.MemberStatus, &session.DurationMinutes, &session.Status,
		&session.CreatedAt, &session.UpdatedAt,
	)
}

func normalizeSessionTimes(session *domain.VehicleSession) {
	if session.EntryTime.Valid {
		session.EntryTime.Time = session.EntryTime.Time.In(time.UTC)
	}
	if session.ExitTime.Valid {
		session.ExitTime.Time = session.ExitTime.Time.In(time.UTC)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
}

// lockPlate takes a transaction-scoped advisory lock on the plate, serializing
// every session transition for it. FOR UPDATE alone cannot cover the
// create-when-absent path: with no active row yet there is nothing to lock, so
// two racing transactions would both see ErrNoActiveSession and both insert.
func lockPlate(ctx context.Context, tx *sql.Tx, plateNumber string) error {
	_, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, plateNumber)
	return err
}

// lockActiveSession selects the most recent active session for the plate with
// a row-level lock, so the caller's read-then-write cannot interleave with a
// racing pipeline handling the same plate.
func lockActiveSession(ctx context.Context, tx *sql.Tx, plateNumber string) (*domain.VehicleSession, error) {
	session := &domain.VehicleSession{}
	query := `SELECT ` + sessionColumns + `
	           FROM vehicle_sessions
	           WHERE plate_number = $1 AND status = $2
	           ORDER BY entry_time DESC LIMIT 1
	           FOR UPDATE`
	err := scanSession(tx.QueryRowContext(ctx, query, plateNumber, domain.SessionActive), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, err
	}
	return session, nil
}

func (r *pgVehicleSessionRepository) RecordEntry(ctx context.Context, plateNumber string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (begin): %w", err)
	}
	defer tx.Rollback()

	if err := lockPlate(ctx, tx, plateNumber); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (lock): %w", err)
	}

	session, err := lockActiveSession(ctx, tx, plateNumber)
	switch {
	case err == nil:
		// Re-entry while a session is still open: refresh the entry time in
		// place, never create a second active row.
		query := `UPDATE vehicle_sessions
		           SET entry_time = $1, updated_at = CURRENT_TIMESTAMP
		           WHERE id = $2
		           RETURNING updated_at`
		if err := tx.QueryRowContext(ctx, query, at, session.ID).Scan(&session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (refresh): %w", err)
		}
		session.EntryTime = null.TimeFrom(at)

	case errors.Is(err, repository.ErrNoActiveSession):
		session = &domain.VehicleSession{}
		query := `INSERT INTO vehicle_sessions (plate_number, entry_time, member_status, status, created_at, updated_at)
		           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		           RETURNING ` + sessionColumns
		if err := scanSession(tx.QueryRowContext(ctx, query, plateNumber, at, status, domain.SessionActive), session); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (create): %w", err)
		}

	default:
		return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (lookup): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordEntry (commit): %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgVehicleSessionRepository) RecordExit(ctx context.Context, plateNumber string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (begin): %w", err)
	}
	defer tx.Rollback()

	if err := lockPlate(ctx, tx, plateNumber); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (lock): %w", err)
	}

	session, err := lockActiveSession(ctx, tx, plateNumber)
	switch {
	case err == nil:
		minutes := int64(at.Sub(session.EntryTime.Time).Minutes())
		if minutes < 0 {
			minutes = 0 // clock skew must not produce a negative duration
		}
		query := `UPDATE vehicle_sessions
		           SET exit_time = $1, duration_minutes = $2, status = $3, updated_at = CURRENT_TIMESTAMP
		           WHERE id = $4
		           RETURNING updated_at`
		if err := tx.QueryRowContext(ctx, query, at, minutes, domain.SessionCompleted, session.ID).Scan(&session.UpdatedAt); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (complete): %w", err)
		}
		session.ExitTime = null.TimeFrom(at)
		session.DurationMinutes = null.IntFrom(minutes)
		session.Status = domain.SessionCompleted

	case errors.Is(err, repository.ErrNoActiveSession):
		// Exit without a matching entry, e.g. the entry camera missed the
		// vehicle. Record it as incomplete instead of dropping the event.
		session = &domain.VehicleSession{}
		query := `INSERT INTO vehicle_sessions (plate_number, exit_time, member_status, status, created_at, updated_at)
		           VALUES ($1, $2, $3, $4, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		           RETURNING ` + sessionColumns
		if err := scanSession(tx.QueryRowContext(ctx, query, plateNumber, at, status, domain.SessionIncomplete), session); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (incomplete): %w", err)
		}

	default:
		return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (lookup): %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.RecordExit (commit): %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgVehicleSessionRepository) FindByID(ctx context.Context, id int) (*domain.VehicleSession, error) {
	session := &domain.VehicleSession{}
	query := `SELECT ` + sessionColumns + ` FROM vehicle_sessions WHERE id = $1`
	err := scanSession(r.db.QueryRowContext(ctx, query, id), session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("VehicleSessionRepository.FindByID: %w", err)
	}
	normalizeSessionTimes(session)
	return session, nil
}

func (r *pgVehicleSessionRepository) Find(ctx context.Context, filter domain.VehicleSessionFilterDTO) ([]domain.VehicleSession, error) {
	baseQuery := `SELECT ` + sessionColumns + ` FROM vehicle_sessions`

	var conditions []string
	var args []interface{}
	argID := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argID))
		args = append(args, *filter.Status)
		argID++
	}
	if filter.Plate != nil {
		conditions = append(conditions, fmt.Sprintf("plate_number = $%d", argID))
		args = append(args, *filter.Plate)
		argID++
	}

	query := baseQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit != nil && *filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, *filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.Find: %w", err)
	}
	defer rows.Close()

	var sessions []domain.VehicleSession
	for rows.Next() {
		var session domain.VehicleSession
		if err := scanSession(rows, &session); err != nil {
			return nil, fmt.Errorf("VehicleSessionRepository.Find (scanning row): %w", err)
		}
		normalizeSessionTimes(&session)
		sessions = append(sessions, session)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("VehicleSessionRepository.Find (rows error): %w", err)
	}
	return sessions, nil
}
