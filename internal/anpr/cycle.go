package anpr

import (
	"context"
	"image"
	"sync"
	"time"

	"gate_access/internal/vision"
)

// Phase of a camera's detection cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseCooldown Phase = "cooldown"
)

// DefaultCooldown is the interval after a trigger during which a camera
// suppresses further detection attempts, so a vehicle sitting at the gate is
// not re-read on every frame.
const DefaultCooldown = 5 * time.Second

// DetectionCycle is the per-camera state machine deciding when a detection is
// attempted. It is owned by exactly one pipeline; Phase is safe to read from
// other goroutines for status reporting.
type DetectionCycle struct {
	detector vision.PlateDetector
	cooldown time.Duration
	now      func() time.Time

	mu          sync.Mutex
	phase       Phase
	lastTrigger time.Time
}

func NewDetectionCycle(detector vision.PlateDetector, cooldown time.Duration) *DetectionCycle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	c := &DetectionCycle{
		detector: detector,
		cooldown: cooldown,
		now:      time.Now,
		phase:    PhaseIdle,
	}
	// The first attempt waits out one full cooldown after startup, giving the
	// camera time to settle.
	c.lastTrigger = c.now()
	return c
}

func (c *DetectionCycle) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Evaluate advances the state machine by one frame. When the cycle is idle
// and out of cooldown it invokes the detector; a frame with at least one
// region triggers the cycle and returns the first region in the detector's
// order. During cooldown the frame is passed through untouched.
func (c *DetectionCycle) Evaluate(ctx context.Context, frame image.Image) (vision.Detection, bool, error) {
	c.mu.Lock()
	elapsed := c.now().Sub(c.lastTrigger)
	if c.phase == PhaseCooldown && elapsed > c.cooldown {
		c.phase = PhaseIdle
	}
	if c.phase != PhaseIdle || elapsed <= c.cooldown {
		c.mu.Unlock()
		return vision.Detection{}, false, nil
	}
	c.mu.Unlock()

	detections, err := c.detector.Detect(ctx, frame)
	if err != nil {
		return vision.Detection{}, false, err
	}
	if len(detections) == 0 {
		return vision.Detection{}, false, nil
	}

	// First region in the detector's returned order, not the most confident
	// one. The detector does not guarantee a primary-plate-first order.
	c.mu.Lock()
	c.phase = PhaseCooldown
	c.lastTrigger = c.now()
	c.mu.Unlock()
	return detections[0], true, nil
}
