package anpr

import (
	"errors"
	"testing"

	"gate_access/internal/vision"
)

func TestResolvePlate_AcceptsAboveThreshold(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "AB 12", Confidence: 0.5},
		{Text: "cd34", Confidence: 0.1},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "AB12" {
		t.Errorf("expected AB12, got %q", got)
	}
}

func TestResolvePlate_ConcatenatesInReturnedOrder(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "b 1234", Confidence: 0.9},
		{Text: "xy", Confidence: 0.3},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "B1234XY" {
		t.Errorf("expected B1234XY, got %q", got)
	}
}

func TestResolvePlate_FallbackWhenAllBelowThreshold(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "xy99", Confidence: 0.05},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "XY99" {
		t.Errorf("expected fallback XY99, got %q", got)
	}
}

func TestResolvePlate_FallbackIsLastSeenCandidate(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "aa11", Confidence: 0.1},
		{Text: "bb22", Confidence: 0.19},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "BB22" {
		t.Errorf("expected last-seen fallback BB22, got %q", got)
	}
}

func TestResolvePlate_WhitespaceOnlyCandidatesAreNoReading(t *testing.T) {
	_, err := ResolvePlate([]vision.Candidate{
		{Text: "   ", Confidence: 0.9},
		{Text: "\t ", Confidence: 0.5},
	})
	if !errors.Is(err, ErrNoReading) {
		t.Fatalf("expected ErrNoReading for whitespace-only candidates, got %v", err)
	}
}

func TestResolvePlate_EmptyAssemblyFallsBackToLastSeen(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "   ", Confidence: 0.9},
		{Text: "ab12", Confidence: 0.1},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "AB12" {
		t.Errorf("expected fallback AB12 when the assembly is empty, got %q", got)
	}
}

func TestResolvePlate_EmptyCandidatesIsNoReading(t *testing.T) {
	_, err := ResolvePlate(nil)
	if !errors.Is(err, ErrNoReading) {
		t.Fatalf("expected ErrNoReading, got %v", err)
	}
}

func TestResolvePlate_ThresholdIsInclusive(t *testing.T) {
	got, err := ResolvePlate([]vision.Candidate{
		{Text: "zz00", Confidence: MinOCRConfidence},
	})
	if err != nil {
		t.Fatalf("ResolvePlate: %v", err)
	}
	if got != "ZZ00" {
		t.Errorf("expected ZZ00 accepted at the threshold, got %q", got)
	}
}

func TestNormalizePlate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"b 1234 xy", "B1234XY"},
		{"  ab\t12 ", "AB12"},
		{"CD34", "CD34"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizePlate(tc.in); got != tc.want {
			t.Errorf("NormalizePlate(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
