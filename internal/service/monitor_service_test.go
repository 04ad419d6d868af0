package service

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gate_access/internal/domain"
)

type staticStatus struct {
	status domain.PipelineStatus
}

func (s staticStatus) Status() domain.PipelineStatus { return s.status }

func writeCapture(t *testing.T, dir, name string, modTime time.Time) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
	return path
}

func TestPipelineStatuses(t *testing.T) {
	svc := NewMonitorService([]PipelineStatusProvider{
		staticStatus{domain.PipelineStatus{Role: domain.RoleEntry, Phase: "idle", Running: true}},
		staticStatus{domain.PipelineStatus{Role: domain.RoleExit, Phase: "cooldown", Running: true}},
	}, nil, nil, "")

	statuses := svc.PipelineStatuses()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	if statuses[0].Role != domain.RoleEntry || statuses[1].Role != domain.RoleExit {
		t.Errorf("statuses out of order: %+v", statuses)
	}
}

func TestRecentCaptures_NewestFirstWithLimit(t *testing.T) {
	captureDir := t.TempDir()
	entryDir := filepath.Join(captureDir, "Entry")
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	oldest := writeCapture(t, entryDir, "entry_plate_20250310_080000.png", base)
	middle := writeCapture(t, entryDir, "entry_plate_20250310_081000.png", base.Add(10*time.Minute))
	newest := writeCapture(t, entryDir, "entry_plate_20250310_082000.png", base.Add(20*time.Minute))
	_ = oldest

	svc := NewMonitorService(nil, nil, nil, captureDir)
	captures, err := svc.RecentCaptures(domain.RoleEntry, 2)
	if err != nil {
		t.Fatalf("RecentCaptures: %v", err)
	}
	if len(captures) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(captures))
	}
	if captures[0].ImagePath != newest || captures[1].ImagePath != middle {
		t.Errorf("expected newest-first order, got %+v", captures)
	}
}

func TestRecentCaptures_IgnoresNonPNGEntries(t *testing.T) {
	captureDir := t.TempDir()
	exitDir := filepath.Join(captureDir, "Exit")
	now := time.Now()

	writeCapture(t, exitDir, "exit_plate_20250310_080000.png", now)
	writeCapture(t, exitDir, "notes.txt", now)
	if err := os.MkdirAll(filepath.Join(exitDir, "subdir"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	svc := NewMonitorService(nil, nil, nil, captureDir)
	captures, err := svc.RecentCaptures(domain.RoleExit, 10)
	if err != nil {
		t.Fatalf("RecentCaptures: %v", err)
	}
	if len(captures) != 1 {
		t.Fatalf("expected only the PNG capture, got %d entries", len(captures))
	}
}

func TestRecentCaptures_MissingDirIsEmpty(t *testing.T) {
	svc := NewMonitorService(nil, nil, nil, filepath.Join(t.TempDir(), "never-created"))
	captures, err := svc.RecentCaptures(domain.RoleEntry, 5)
	if err != nil {
		t.Fatalf("a missing capture dir must not be an error, got %v", err)
	}
	if captures != nil {
		t.Errorf("expected no captures, got %+v", captures)
	}
}

func TestRecentCaptures_UnknownRoleIsRejected(t *testing.T) {
	svc := NewMonitorService(nil, nil, nil, t.TempDir())
	if _, err := svc.RecentCaptures(domain.CameraRole("side"), 5); err == nil {
		t.Fatal("expected error for unknown camera role")
	}
}

func TestRecentCaptures_DefaultLimit(t *testing.T) {
	captureDir := t.TempDir()
	entryDir := filepath.Join(captureDir, "Entry")
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		writeCapture(t, entryDir, fmt.Sprintf("entry_plate_%02d.png", i), base.Add(time.Duration(i)*time.Minute))
	}

	svc := NewMonitorService(nil, nil, nil, captureDir)
	captures, err := svc.RecentCaptures(domain.RoleEntry, 0)
	if err != nil {
		t.Fatalf("RecentCaptures: %v", err)
	}
	if len(captures) != 5 {
		t.Errorf("expected default limit of 5, got %d", len(captures))
	}
}
