// Package vision holds the contracts for the external collaborators of the
// detection pipeline (camera, plate detector, text recognizer) and the image
// adapters wired against them.
package vision

import (
	"context"
	"image"
	"image/draw"
)

// DefaultDetectionConfidence is the confidence threshold passed to the plate
// detector on every call.
const DefaultDetectionConfidence = 0.25

// Detection is one candidate plate region returned by a detector, in the
// detector's own order.
type Detection struct {
	Box        image.Rectangle
	Confidence float64
}

// Candidate is one (text, confidence) pair returned by a text recognizer for
// a cropped plate region. Confidence is in [0, 1].
type Candidate struct {
	Text       string
	Confidence float64
}

// FrameSource supplies sequential frames on demand. NextFrame returns io.EOF
// when the stream ends; any error is fatal for the pipeline that owns the
// source.
type FrameSource interface {
	NextFrame() (image.Image, error)
	Close() error
}

// PlateDetector maps a frame to zero or more candidate plate regions.
type PlateDetector interface {
	Detect(ctx context.Context, frame image.Image) ([]Detection, error)
}

// TextRecognizer maps a preprocessed plate region to OCR candidates.
type TextRecognizer interface {
	Read(ctx context.Context, region image.Image) ([]Candidate, error)
}

// Crop copies the part of frame covered by box into a standalone image. The
// box is clamped to the frame bounds.
func Crop(frame image.Image, box image.Rectangle) image.Image {
	box = box.Intersect(frame.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	draw.Draw(out, out.Bounds(), frame, box.Min, draw.Src)
	return out
}
