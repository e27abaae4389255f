package tq

import "testing"

func TestNewState(t *testing.T) {
	s := NewState(95, 10, 50)
	if s.SearchMin != 10 || s.SearchMax != 50 || s.QMin != 10 || s.QMax != 50 {
		t.Errorf("NewState bounds = [%d,%d]/[%d,%d], want [10,50]/[10,50]", s.SearchMin, s.SearchMax, s.QMin, s.QMax)
	}
	if s.Target != 95 {
		t.Errorf("Target = %v, want 95", s.Target)
	}
}

func TestBestProbeNoneAboveTarget(t *testing.T) {
	s := NewState(95, 10, 50)
	s.AddProbe(40, 80)
	s.AddProbe(30, 90)
	best := s.BestProbe()
	if best == nil || best.Quantizer != 30 {
		t.Errorf("BestProbe() = %v, want quantizer 30 (lowest quantizer tried, all below target)", best)
	}
}

func TestBestProbeNoneAboveTargetPicksLowestQuantizerNotNearestScore(t *testing.T) {
	s := NewState(95, 10, 50)
	s.AddProbe(40, 94) // nearest to target by score, but not the safest quality
	s.AddProbe(30, 80) // lower quantizer, safer quality, further from target by score
	best := s.BestProbe()
	if best == nil || best.Quantizer != 30 {
		t.Errorf("BestProbe() = %v, want quantizer 30 (lowest quantizer, not 40 which is nearest by score)", best)
	}
}

func TestBestProbeSomeAboveTarget(t *testing.T) {
	s := NewState(95, 10, 50)
	s.AddProbe(10, 99) // above target
	s.AddProbe(20, 97) // above target
	s.AddProbe(40, 80) // below target
	best := s.BestProbe()
	if best == nil || best.Quantizer != 20 {
		t.Errorf("BestProbe() = %v, want quantizer 20 (largest quantizer still at/above target)", best)
	}
}

func TestBestProbeEmpty(t *testing.T) {
	s := NewState(95, 10, 50)
	if got := s.BestProbe(); got != nil {
		t.Errorf("BestProbe() on empty state = %v, want nil", got)
	}
}
