package anpr

import (
	"context"
	"image"
	"sync"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"gate_access/internal/vision"

	"gopkg.in/guregu/null.v4"
)

// ── Store fakes ──────────────────────────────────────────────────────────────

type fakeMemberRepo struct {
	plates map[string]bool
	err    error
}

func (f *fakeMemberRepo) Create(ctx context.Context, m *domain.Member) (*domain.Member, error) {
	f.plates[m.PlateNumber] = true
	return m, nil
}

func (f *fakeMemberRepo) FindAll(ctx context.Context) ([]domain.Member, error) {
	return nil, nil
}

func (f *fakeMemberRepo) IsMember(ctx context.Context, plate string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.plates[plate], nil
}

type fakeAccessLogRepo struct {
	mu        sync.Mutex
	entries   []domain.AccessLogEntry
	appendErr error
}

func (f *fakeAccessLogRepo) Append(ctx context.Context, entry *domain.AccessLogEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entry.ID = len(f.entries) + 1
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAccessLogRepo) FindRecent(ctx context.Context, limit int) ([]domain.AccessLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AccessLogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeAccessLogRepo) all() []domain.AccessLogEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.AccessLogEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// memSessionRepo mirrors the transactional transition semantics of the
// postgres repository: the whole read-then-write runs under one lock.
type memSessionRepo struct {
	mu        sync.Mutex
	nextID    int
	sessions  []*domain.VehicleSession
	recordErr error
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{nextID: 1}
}

func (r *memSessionRepo) activeByPlate(plate string) *domain.VehicleSession {
	var latest *domain.VehicleSession
	for _, s := range r.sessions {
		if s.PlateNumber != plate || s.Status != domain.SessionActive {
			continue
		}
		if latest == nil || s.EntryTime.Time.After(latest.EntryTime.Time) {
			latest = s
		}
	}
	return latest
}

func (r *memSessionRepo) RecordEntry(ctx context.Context, plate string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	if r.recordErr != nil {
		return nil, r.recordErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if active := r.activeByPlate(plate); active != nil {
		active.EntryTime = null.TimeFrom(at)
		active.UpdatedAt = at
		out := *active
		return &out, nil
	}

	session := &domain.VehicleSession{
		ID:           r.nextID,
		PlateNumber:  plate,
		EntryTime:    null.TimeFrom(at),
		MemberStatus: status,
		Status:       domain.SessionActive,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	r.nextID++
	r.sessions = append(r.sessions, session)
	out := *session
	return &out, nil
}

func (r *memSessionRepo) RecordExit(ctx context.Context, plate string, status domain.MemberStatus, at time.Time) (*domain.VehicleSession, error) {
	if r.recordErr != nil {
		return nil, r.recordErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if active := r.activeByPlate(plate); active != nil {
		minutes := int64(at.Sub(active.EntryTime.Time).Minutes())
		if minutes < 0 {
			minutes = 0
		}
		active.ExitTime = null.TimeFrom(at)
		active.DurationMinutes = null.IntFrom(minutes)
		active.Status = domain.SessionCompleted
		active.UpdatedAt = at
		out := *active
		return &out, nil
	}

	session := &domain.VehicleSession{
		ID:           r.nextID,
		PlateNumber:  plate,
		ExitTime:     null.TimeFrom(at),
		MemberStatus: status,
		Status:       domain.SessionIncomplete,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	r.nextID++
	r.sessions = append(r.sessions, session)
	out := *session
	return &out, nil
}

func (r *memSessionRepo) FindByID(ctx context.Context, id int) (*domain.VehicleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			out := *s
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memSessionRepo) Find(ctx context.Context, filter domain.VehicleSessionFilterDTO) ([]domain.VehicleSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VehicleSession
	for _, s := range r.sessions {
		if filter.Status != nil && string(s.Status) != *filter.Status {
			continue
		}
		if filter.Plate != nil && s.PlateNumber != *filter.Plate {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memSessionRepo) byPlate(plate string) []domain.VehicleSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.VehicleSession
	for _, s := range r.sessions {
		if s.PlateNumber == plate {
			out = append(out, *s)
		}
	}
	return out
}

// ── Pipeline collaborator fakes ──────────────────────────────────────────────

type stubDetector struct {
	detections []vision.Detection
	err        error
	calls      int
}

func (d *stubDetector) Detect(ctx context.Context, frame image.Image) ([]vision.Detection, error) {
	d.calls++
	if d.err != nil {
		return nil, d.err
	}
	return d.detections, nil
}

type stubRecognizer struct {
	candidates []vision.Candidate
	err        error
}

func (r *stubRecognizer) Read(ctx context.Context, region image.Image) ([]vision.Candidate, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.candidates, nil
}

// scriptedSource serves a fixed number of identical frames, then fails with
// the configured error.
type scriptedSource struct {
	frame    image.Image
	remain   int
	finalErr error
	closed   bool
	onFrame  func(served int)
}

func (s *scriptedSource) NextFrame() (image.Image, error) {
	if s.remain <= 0 {
		return nil, s.finalErr
	}
	s.remain--
	if s.onFrame != nil {
		s.onFrame(s.remain)
	}
	return s.frame, nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

type captureNotifier struct {
	mu            sync.Mutex
	notifications []domain.DetectionNotification
}

func (n *captureNotifier) NotifyDetection(notification domain.DetectionNotification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *captureNotifier) all() []domain.DetectionNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]domain.DetectionNotification, len(n.notifications))
	copy(out, n.notifications)
	return out
}

func testFrame(w, h int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// fakeClock drives the cycle and pipeline deterministically.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
