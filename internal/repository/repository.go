package repository

import (
	"context"
	"errors"
	"time"

	"gate_access/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active vehicle session for the given plate")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// MemberRepository is the known-vehicle registry. IsMember is the predicate the
// access recorder consults on every reading.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) (*domain.Member, error)
	FindAll(ctx context.Context) ([]domain.Member, error)
	IsMember(ctx context.Context, plateNumber string) (bool, error)
}

type AccessLogRepository interface {
	Append(ctx context.Context, entry *domain.AccessLogEntry) error
	FindRecent(ctx context.Context, limit int) ([]domain.AccessLogEntry, error)
}

// VehicleSessionRepository owns the entry/exit correlation state. RecordEntry
// and RecordExit must run their read-then-write as one serialized transaction
// per plate: two pipelines racing on the same plate may never both observe
// "no active session".
type VehicleSessionRepository interface {
	// RecordEntry refreshes the entry time of the active session for the plate,
	// or creates a new active session when none exists.
	RecordEntry(ctx context.Context, plateNumber string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error)
	// RecordExit completes the active session for the plate, or creates an
	// incomplete record (exit without entry) when none exists.
	RecordExit(ctx context.Context, plateNumber string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error)
	FindByID(ctx context.Context, id int) (*domain.VehicleSession, error)
	Find(ctx context.Context, filter domain.VehicleSessionFilterDTO) ([]domain.VehicleSession, error)
}
