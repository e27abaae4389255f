package tq

import (
	"errors"
	"testing"
)

var errProbeFailed = errors.New("probe failed")

func TestBinarySearch(t *testing.T) {
	if got := BinarySearch(10, 50); got != 30 {
		t.Errorf("BinarySearch(10, 50) = %d, want 30", got)
	}
}

func TestConverged(t *testing.T) {
	if !Converged(94.2, 95, 1.0) {
		t.Error("Converged(94.2, 95, 1.0) = false, want true")
	}
	if Converged(90, 95, 1.0) {
		t.Error("Converged(90, 95, 1.0) = true, want false")
	}
}

func TestUpdateBoundsNarrowsBelow(t *testing.T) {
	s := NewState(95, 10, 50)
	s.LastQuantizer = 30
	crossed := UpdateBounds(s, 80, 95, 1.0) // score below target -> need lower quantizer
	if s.SearchMax != 29 {
		t.Errorf("SearchMax = %d, want 29", s.SearchMax)
	}
	if crossed {
		t.Error("UpdateBounds() crossed = true, want false")
	}
}

func TestUpdateBoundsNarrowsAbove(t *testing.T) {
	s := NewState(95, 10, 50)
	s.LastQuantizer = 30
	UpdateBounds(s, 99, 95, 1.0) // score above target -> need higher quantizer
	if s.SearchMin != 31 {
		t.Errorf("SearchMin = %d, want 31", s.SearchMin)
	}
}

func TestUpdateBoundsCrosses(t *testing.T) {
	s := NewState(95, 29, 30)
	s.LastQuantizer = 30
	if !UpdateBounds(s, 99, 95, 1.0) {
		t.Error("UpdateBounds() crossed = false, want true")
	}
}

func TestInterpolateRequiresBothSides(t *testing.T) {
	if _, ok := interpolate([]Probe{{Quantizer: 20, Score: 99}}, 95); ok {
		t.Error("interpolate() ok = true with only one side sampled, want false")
	}
}

func TestInterpolatePicksClosestBracket(t *testing.T) {
	probes := []Probe{
		{Quantizer: 10, Score: 99},
		{Quantizer: 20, Score: 96}, // closest above target
		{Quantizer: 40, Score: 80},
		{Quantizer: 30, Score: 90}, // closest below target
	}
	q, ok := interpolate(probes, 95)
	if !ok {
		t.Fatal("interpolate() ok = false, want true")
	}
	// Linear between (20, 96) and (30, 90): frac = (95-96)/(90-96) = 1/6, q = 20 + 1/6*10 ~= 22
	if q < 21 || q > 23 {
		t.Errorf("interpolate() = %d, want ~22", q)
	}
}

// probeTable fakes a monotonically-decreasing VMAF-vs-quantizer curve for
// search tests: score = 100 - quantizer.
func probeTable(quantizer int) (float64, error) {
	return 100 - float64(quantizer), nil
}

func TestSearchConvergesWithinSteps(t *testing.T) {
	cfg := &Config{Target: 95, Tolerance: 1, QMin: 0, QMax: 63, MaxSteps: 6}
	state := NewState(cfg.Target, cfg.QMin, cfg.QMax)

	q, err := Search(probeTable, state, cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	score, _ := probeTable(q)
	if !Converged(score, cfg.Target, cfg.Tolerance) {
		t.Errorf("Search() returned quantizer %d scoring %v, not converged on target %v", q, score, cfg.Target)
	}
}

func TestSearchPropagatesProbeError(t *testing.T) {
	cfg := &Config{Target: 95, Tolerance: 1, QMin: 0, QMax: 63, MaxSteps: 6}
	state := NewState(cfg.Target, cfg.QMin, cfg.QMax)

	wantErr := errProbeFailed
	_, err := Search(func(int) (float64, error) { return 0, wantErr }, state, cfg)
	if err != wantErr {
		t.Errorf("Search() error = %v, want %v", err, wantErr)
	}
}

func TestSearchUnreachableTargetReturnsNearest(t *testing.T) {
	// Every quantizer in range scores above target: expect the largest
	// quantizer that still clears it (smallest output meeting quality).
	cfg := &Config{Target: 10, Tolerance: 0.5, QMin: 0, QMax: 20, MaxSteps: 6}
	state := NewState(cfg.Target, cfg.QMin, cfg.QMax)

	always90 := func(int) (float64, error) { return 90, nil }
	q, err := Search(always90, state, cfg)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if q != cfg.QMax {
		t.Errorf("Search() = %d, want %d (largest quantizer, all probes above target)", q, cfg.QMax)
	}
}
