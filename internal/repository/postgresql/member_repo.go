package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

type pgMemberRepository struct {
	db *sql.DB
}

func NewPgMemberRepository(db *sql.DB) repository.MemberRepository {
	return &pgMemberRepository{db: db}
}

func (r *pgMemberRepository) Create(ctx context.Context, member *domain.Member) (*domain.Member, error) {
	query := `INSERT INTO member_list (plate_number, owner_name, created_at)
	           VALUES ($1, $2, CURRENT_TIMESTAMP)
	           RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, member.PlateNumber, member.OwnerName).
		Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: plate '%s' is already registered", repository.ErrDuplicateEntry, member.PlateNumber)
		}
		return nil, fmt.Errorf("MemberRepository.Create: %w", err)
	}
	member.CreatedAt = member.CreatedAt.In(time.UTC)
	return member, nil
}

func (r *pgMemberRepository) FindAll(ctx context.Context) ([]domain.Member, error) {
	query := `SELECT id, plate_number, owner_name, created_at FROM member_list ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("MemberRepository.FindAll: %w", err)
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var member domain.Member
		if err := rows.Scan(&member.ID, &member.PlateNumber, &member.OwnerName, &member.CreatedAt); err != nil {
			return nil, fmt.Errorf("MemberRepository.FindAll (scanning row): %w", err)
		}
		member.CreatedAt = member.CreatedAt.In(time.UTC)
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("MemberRepository.FindAll (rows error): %w", err)
	}
	return members, nil
}

func (r *pgMemberRepository) IsMember(ctx context.Context, plateNumber string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM member_list WHERE plate_number = $1)`
	if err := r.db.QueryRowContext(ctx, query, plateNumber).Scan(&exists); err != nil {
		return false, fmt.Errorf("MemberRepository.IsMember: %w", err)
	}
	return exists, nil
}
