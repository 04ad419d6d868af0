package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gate_access/internal/domain"
	"gate_access/internal/repository"
)

// PipelineStatusProvider is the read-only view of a running camera pipeline.
type PipelineStatusProvider interface {
	Status() domain.PipelineStatus
}

// MonitorService serves the dashboard's snapshot queries: pipeline state,
// recent plate crops on disk and recent store rows. It never mutates anything.
type MonitorService struct {
	pipelines   []PipelineStatusProvider
	logRepo     repository.AccessLogRepository
	sessionRepo repository.VehicleSessionRepository
	captureDir  string
}

func NewMonitorService(
	pipelines []PipelineStatusProvider,
	logRepo repository.AccessLogRepository,
	sessionRepo repository.VehicleSessionRepository,
	captureDir string,
) *MonitorService {
	return &MonitorService{
		pipelines:   pipelines,
		logRepo:     logRepo,
		sessionRepo: sessionRepo,
		captureDir:  captureDir,
	}
}

func (s *MonitorService) PipelineStatuses() []domain.PipelineStatus {
	statuses := make([]domain.PipelineStatus, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		statuses = append(statuses, p.Status())
	}
	return statuses
}

// RecentCaptures lists the newest plate crops saved for a role, newest first.
func (s *MonitorService) RecentCaptures(role domain.CameraRole, limit int) ([]domain.RecentCapture, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown camera role %q", role)
	}
	if limit <= 0 {
		limit = 5
	}

	dir := filepath.Join(s.captureDir, role.Label())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading capture dir: %w", err)
	}

	var captures []domain.RecentCapture
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".png") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		captures = append(captures, domain.RecentCapture{
			Role:       role,
			ImagePath:  filepath.Join(dir, entry.Name()),
			CapturedAt: info.ModTime(),
		})
	}

	sort.Slice(captures, func(i, j int) bool {
		return captures[i].CapturedAt.After(captures[j].CapturedAt)
	})
	if len(captures) > limit {
		captures = captures[:limit]
	}
	return captures, nil
}

func (s *MonitorService) RecentAccessLogs(ctx context.Context, limit int) ([]domain.AccessLogEntry, error) {
	return s.logRepo.FindRecent(ctx, limit)
}

func (s *MonitorService) FindSessions(ctx context.Context, filter domain.VehicleSessionFilterDTO) ([]domain.VehicleSession, error) {
	return s.sessionRepo.Find(ctx, filter)
}

func (s *MonitorService) GetSessionByID(ctx context.Context, id int) (*domain.VehicleSession, error) {
	return s.sessionRepo.FindByID(ctx, id)
}
