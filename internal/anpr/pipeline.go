package anpr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"gate_access/internal/domain"
	"gate_access/internal/vision"
)

// ErrCameraUnavailable marks a frame source failure. It is fatal for the
// pipeline that owns the camera and invisible to every other pipeline.
var ErrCameraUnavailable = errors.New("camera unavailable")

// CameraPipeline composes a frame source, the detection cycle, the text
// recognizer and the access recorder into one running unit per physical
// camera. The same component serves the entry and the exit gate; only the
// role differs.
type CameraPipeline struct {
	role       domain.CameraRole
	source     vision.FrameSource
	recognizer vision.TextRecognizer
	cycle      *DetectionCycle
	recorder   *AccessRecorder

	frames  atomic.Uint64
	stopped atomic.Bool
	running atomic.Bool

	now func() time.Time
}

func NewCameraPipeline(
	role domain.CameraRole,
	source vision.FrameSource,
	detector vision.PlateDetector,
	recognizer vision.TextRecognizer,
	recorder *AccessRecorder,
	cooldown time.Duration,
) *CameraPipeline {
	return &CameraPipeline{
		role:       role,
		source:     source,
		recognizer: recognizer,
		cycle:      NewDetectionCycle(detector, cooldown),
		recorder:   recorder,
		now:        time.Now,
	}
}

// Stop requests a cooperative stop. It is observed at the top of the next
// frame iteration; an in-flight OCR call is never interrupted.
func (p *CameraPipeline) Stop() {
	p.stopped.Store(true)
}

// Status is a read-only snapshot for the dashboard.
func (p *CameraPipeline) Status() domain.PipelineStatus {
	return domain.PipelineStatus{
		Role:            p.role,
		Phase:           string(p.cycle.Phase()),
		FramesProcessed: p.frames.Load(),
		Running:         p.running.Load(),
	}
}

// Run drives the per-frame loop until the context is cancelled, Stop is
// called, or the frame source fails. The camera resource is released on the
// way out.
func (p *CameraPipeline) Run(ctx context.Context) error {
	p.running.Store(true)
	defer p.running.Store(false)
	defer p.source.Close()

	log.Printf("[%s] pipeline started", p.role)
	for {
		if p.stopped.Load() || ctx.Err() != nil {
			log.Printf("[%s] pipeline stopped", p.role)
			return nil
		}

		frame, err := p.source.NextFrame()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Printf("[%s] camera stream ended", p.role)
			} else {
				log.Printf("[%s] failed to read frame: %v", p.role, err)
			}
			return fmt.Errorf("[%s] %w", p.role, ErrCameraUnavailable)
		}
		p.frames.Add(1)

		detection, triggered, err := p.cycle.Evaluate(ctx, frame)
		if err != nil {
			// Detector trouble is not fatal: the cycle stays idle and the
			// next frame retries.
			log.Printf("[%s] detector error: %v", p.role, err)
			continue
		}
		if !triggered {
			continue
		}

		crop := vision.Crop(frame, detection.Box)
		prepared := vision.Preprocess(crop)

		candidates, err := p.recognizer.Read(ctx, prepared)
		if err != nil {
			log.Printf("[%s] OCR error: %v", p.role, err)
			continue
		}

		plate, err := ResolvePlate(candidates)
		if err != nil {
			log.Printf("[%s] no usable text detected", p.role)
			continue
		}
		log.Printf("[%s] License Plate: %s", p.role, plate)

		reading := domain.PlateReading{
			Text:         plate,
			CapturedAt:   p.now().UTC(),
			SourceRegion: crop,
			CameraRole:   p.role,
		}
		if err := p.recorder.Record(ctx, reading); err != nil {
			log.Printf("[%s] recording %s failed: %v", p.role, plate, err)
		}
	}
}
