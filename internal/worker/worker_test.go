package worker

import "testing"

func TestProgressPercent(t *testing.T) {
	p := Progress{FramesComplete: 50, FramesTotal: 200}
	if got := p.Percent(); got != 25 {
		t.Errorf("Percent() = %v, want 25", got)
	}
}

func TestProgressPercentZeroTotal(t *testing.T) {
	p := Progress{FramesTotal: 0}
	if got := p.Percent(); got != 0 {
		t.Errorf("Percent() = %v, want 0", got)
	}
}
