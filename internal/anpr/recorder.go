package anpr

import (
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/repository"

	"github.com/google/uuid"
)

// DetectionNotifier pushes a recorded reading to dashboard clients.
type DetectionNotifier interface {
	NotifyDetection(notification domain.DetectionNotification)
}

// GateOpener asks the physical barrier at a gate to open.
type GateOpener interface {
	RequestOpen(ctx context.Context, role domain.CameraRole, plateNumber string) error
}

// AccessRecorder turns a plate reading into an access-log row, a session
// transition, a saved crop and a text-log line. The vehicle has already passed
// the camera by the time Record runs, so store and file failures are logged
// and absorbed rather than propagated: dropping a write is preferable to
// stalling the camera.
type AccessRecorder struct {
	members  repository.MemberRepository
	logs     repository.AccessLogRepository
	sessions repository.VehicleSessionRepository

	captureDir string
	logDir     string

	notifier DetectionNotifier // optional
	gate     GateOpener        // optional

	now func() time.Time
}

func NewAccessRecorder(
	members repository.MemberRepository,
	logs repository.AccessLogRepository,
	sessions repository.VehicleSessionRepository,
	captureDir string,
	logDir string,
	notifier DetectionNotifier,
	gate GateOpener,
) *AccessRecorder {
	return &AccessRecorder{
		members:    members,
		logs:       logs,
		sessions:   sessions,
		captureDir: captureDir,
		logDir:     logDir,
		notifier:   notifier,
		gate:       gate,
		now:        time.Now,
	}
}

// Record processes one reading end to end. It returns an error only for an
// unusable reading; downstream failures are logged per the at-most-once
// delivery rule.
func (r *AccessRecorder) Record(ctx context.Context, reading domain.PlateReading) error {
	if reading.Text == "" {
		return ErrNoReading
	}
	if !reading.CameraRole.Valid() {
		return fmt.Errorf("AccessRecorder: unknown camera role %q", reading.CameraRole)
	}

	at := reading.CapturedAt
	if at.IsZero() {
		at = r.now().UTC()
	}

	status := domain.StatusGuest
	isMember, err := r.members.IsMember(ctx, reading.Text)
	if err != nil {
		log.Printf("AccessRecorder: member lookup for %s failed, treating as guest: %v", reading.Text, err)
	} else if isMember {
		status = domain.StatusMember
	}

	entry := &domain.AccessLogEntry{
		PlateNumber:    reading.Text,
		Status:         status,
		EventType:      reading.CameraRole.EventType(),
		CameraLocation: reading.CameraRole.Location(),
		Timestamp:      at,
	}
	if err := r.logs.Append(ctx, entry); err != nil {
		log.Printf("AccessRecorder: access log write for %s lost: %v", reading.Text, err)
	}

	r.transitionSession(ctx, reading.Text, status, reading.CameraRole, at)

	imagePath := r.saveCrop(reading, at)
	r.appendTextLog(reading, at)

	if r.notifier != nil {
		r.notifier.NotifyDetection(domain.DetectionNotification{
			EventID:        uuid.NewString(),
			PlateNumber:    reading.Text,
			Status:         status,
			EventType:      reading.CameraRole.EventType(),
			CameraLocation: reading.CameraRole.Location(),
			ImagePath:      imagePath,
			Timestamp:      at,
		})
	}

	if r.gate != nil {
		if err := r.gate.RequestOpen(ctx, reading.CameraRole, reading.Text); err != nil {
			log.Printf("AccessRecorder: barrier command for %s failed: %v", reading.Text, err)
		}
	}

	log.Printf("AccessRecorder: [%s-%s] %s recorded", strings.ToUpper(string(reading.CameraRole)), strings.ToUpper(string(status)), reading.Text)
	return nil
}

func (r *AccessRecorder) transitionSession(ctx context.Context, plate string, status domain.MemberStatus, role domain.CameraRole, at time.Time) {
	switch role {
	case domain.RoleEntry:
		session, err := r.sessions.RecordEntry(ctx, plate, status, at)
		if err != nil {
			log.Printf("AccessRecorder: entry session write for %s lost: %v", plate, err)
			return
		}
		log.Printf("AccessRecorder: %s session %d active (entry %s)", plate, session.ID, at.Format(time.RFC3339))

	case domain.RoleExit:
		session, err := r.sessions.RecordExit(ctx, plate, status, at)
		if err != nil {
			log.Printf("AccessRecorder: exit session write for %s lost: %v", plate, err)
			return
		}
		if session.Status == domain.SessionIncomplete {
			log.Printf("AccessRecorder: %s exit without entry record (session %d incomplete)", plate, session.ID)
		} else {
			log.Printf("AccessRecorder: %s session %d completed, duration %d minute(s)", plate, session.ID, session.DurationMinutes.Int64)
		}
	}
}

// saveCrop persists the plate crop under the per-role capture directory.
// Returns the written path, or "" when there was no crop or the write failed.
func (r *AccessRecorder) saveCrop(reading domain.PlateReading, at time.Time) string {
	if reading.SourceRegion == nil || r.captureDir == "" {
		return ""
	}

	dir := filepath.Join(r.captureDir, reading.CameraRole.Label())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("AccessRecorder: creating capture dir: %v", err)
		return ""
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_plate_%s.png", reading.CameraRole, at.Format("20060102_150405")))
	file, err := os.Create(path)
	if err != nil {
		log.Printf("AccessRecorder: saving crop: %v", err)
		return ""
	}
	defer file.Close()

	if err := png.Encode(file, reading.SourceRegion); err != nil {
		log.Printf("AccessRecorder: encoding crop: %v", err)
		return ""
	}
	return path
}

func (r *AccessRecorder) appendTextLog(reading domain.PlateReading, at time.Time) {
	if r.logDir == "" {
		return
	}
	if err := os.MkdirAll(r.logDir, 0o755); err != nil {
		log.Printf("AccessRecorder: creating log dir: %v", err)
		return
	}

	path := filepath.Join(r.logDir, reading.CameraRole.Label()+"_Captured_License.txt")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("AccessRecorder: opening text log: %v", err)
		return
	}
	defer file.Close()

	line := fmt.Sprintf("[%s] [%s] License Plate: %s\n",
		at.Format("2006-01-02 15:04:05"), strings.ToUpper(string(reading.CameraRole)), reading.Text)
	if _, err := file.WriteString(line); err != nil {
		log.Printf("AccessRecorder: appending text log: %v", err)
	}
}
