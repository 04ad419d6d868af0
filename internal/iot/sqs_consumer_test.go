package iot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gate_access/internal/anpr"
	"gate_access/internal/config"
	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

type stubMemberRepo struct{}

func (stubMemberRepo) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	return m, nil
}
func (stubMemberRepo) FindAll(ctx context.Context) ([]domain.Member, error) { return nil, nil }
func (stubMemberRepo) IsMember(ctx context.Context, plate string) (bool, error) {
	return false, nil
}

type recordingLogRepo struct {
	mu      sync.Mutex
	entries []domain.AccessLogEntry
}

func (r *recordingLogRepo) Append(ctx context.Context, entry *domain.AccessLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *recordingLogRepo) FindRecent(ctx context.Context, limit int) ([]domain.AccessLogEntry, error) {
	return nil, nil
}

func (r *recordingLogRepo) all() []domain.AccessLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AccessLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

type stubSessionRepo struct{}

func (stubSessionRepo) RecordEntry(ctx context.Context, plate string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	return &domain.VehicleSession{PlateNumber: plate, Status: domain.SessionActive}, nil
}

func (stubSessionRepo) RecordExit(ctx context.Context, plate string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	return &domain.VehicleSession{PlateNumber: plate, Status: domain.SessionCompleted}, nil
}

func (stubSessionRepo) FindByID(ctx context.Context, id int) (*domain.VehicleSession, error) {
	return nil, repository.ErrNotFound
}

func (stubSessionRepo) Find(ctx context.Context, filter domain.VehicleSessionFilterDTO) ([]domain.VehicleSession, error) {
	return nil, nil
}

func newTestConsumer() (*SQSConsumer, *recordingLogRepo) {
	logs := &recordingLogRepo{}
	recorder := anpr.NewAccessRecorder(stubMemberRepo{}, logs, stubSessionRepo{}, "", "", nil, nil)
	consumer := NewSQSConsumer(nil, &config.Config{SQSPlateEventQueueURL: "test-queue"}, recorder)
	return consumer, logs
}

func TestHandleMessage_ValidEvent(t *testing.T) {
	consumer, logs := newTestConsumer()

	body := `{"event_id":"e1","device_id":"edge-1","plate_number":"b 1234 xy","camera_role":"entry","captured_at":"2025-03-10T08:00:00Z"}`
	if err := consumer.handleMessage(context.Background(), body); err != nil {
		t.Fatalf("handleMessage: %v", err)
	}

	entries := logs.all()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access log entry, got %d", len(entries))
	}
	if entries[0].PlateNumber != "B1234XY" {
		t.Errorf("expected normalized plate B1234XY, got %q", entries[0].PlateNumber)
	}
	if entries[0].EventType != domain.EventEntry {
		t.Errorf("expected entry event, got %s", entries[0].EventType)
	}
}

func TestHandleMessage_MalformedJSONIsUnprocessable(t *testing.T) {
	consumer, logs := newTestConsumer()

	err := consumer.handleMessage(context.Background(), `{not json`)
	if !errors.Is(err, errUnprocessableEvent) {
		t.Fatalf("expected errUnprocessableEvent, got %v", err)
	}
	if len(logs.all()) != 0 {
		t.Error("malformed message must not be recorded")
	}
}

func TestHandleMessage_UnknownRoleIsUnprocessable(t *testing.T) {
	consumer, _ := newTestConsumer()

	body := `{"event_id":"e2","plate_number":"B1234XY","camera_role":"side","captured_at":"2025-03-10T08:00:00Z"}`
	if err := consumer.handleMessage(context.Background(), body); !errors.Is(err, errUnprocessableEvent) {
		t.Fatalf("expected errUnprocessableEvent, got %v", err)
	}
}

func TestHandleMessage_EmptyPlateIsUnprocessable(t *testing.T) {
	consumer, logs := newTestConsumer()

	body := `{"event_id":"e3","plate_number":"   ","camera_role":"exit","captured_at":"2025-03-10T08:00:00Z"}`
	if err := consumer.handleMessage(context.Background(), body); !errors.Is(err, errUnprocessableEvent) {
		t.Fatalf("expected errUnprocessableEvent, got %v", err)
	}
	if len(logs.all()) != 0 {
		t.Error("empty plate must not be recorded")
	}
}

func TestHandleMessage_BadTimestampFallsBackToNow(t *testing.T) {
	consumer, logs := newTestConsumer()

	body := `{"event_id":"e4","plate_number":"CD34","camera_role":"exit","captured_at":"yesterday"}`
	if err := consumer.handleMessage(context.Background(), body); err != nil {
		t.Fatalf("a bad timestamp must not fail the event, got %v", err)
	}

	entries := logs.all()
	if len(entries) != 1 {
		t.Fatalf("expected 1 access log entry, got %d", len(entries))
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("expected a substituted timestamp")
	}
}
