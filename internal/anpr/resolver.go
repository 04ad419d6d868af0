// Package anpr implements the detection-session pipeline: the per-camera
// cooldown state machine, the OCR text-assembly policy, and the recorder that
// correlates entry/exit readings into vehicle sessions.
package anpr

import (
	"errors"
	"strings"

	"gate_access/internal/vision"
)

// MinOCRConfidence is the acceptance threshold for individual OCR candidates.
const MinOCRConfidence = 0.2

// ErrNoReading signals that OCR produced nothing usable for a detected region.
// It is a normal outcome, not a failure: the cycle is aborted and no record is
// written.
var ErrNoReading = errors.New("no reading")

// NormalizePlate strips all whitespace and uppercases a raw OCR text.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), ""))
}

// ResolvePlate assembles one plate string from the recognizer's candidates:
// all candidates at or above MinOCRConfidence are concatenated in the returned
// order; when that assembly is empty, the last-seen candidate is used as a
// fallback. An empty result is always ErrNoReading, never ("", nil).
//
// Plain concatenation (rather than spatial stitching) is a known approximation
// for multi-line plates; overlapping fragments degrade accuracy.
func ResolvePlate(candidates []vision.Candidate) (string, error) {
	var accepted []string
	var fallback string

	for _, candidate := range candidates {
		cleaned := NormalizePlate(candidate.Text)
		if candidate.Confidence >= MinOCRConfidence {
			accepted = append(accepted, cleaned)
		}
		fallback = cleaned
	}

	if joined := strings.Join(accepted, ""); joined != "" {
		return joined, nil
	}
	if fallback != "" {
		return fallback, nil
	}
	return "", ErrNoReading
}
