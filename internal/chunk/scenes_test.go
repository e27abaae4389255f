package chunk

import "testing"

func TestApplyExtraSplit(t *testing.T) {
	scenes := []Scene{{StartFrame: 0, EndFrame: 25}, {StartFrame: 25, EndFrame: 30}}

	out := ApplyExtraSplit(scenes, 10)
	if !ValidatePartition(out, 30) {
		t.Fatalf("ApplyExtraSplit produced a non-partition: %+v", out)
	}
	for _, s := range out {
		if s.Frames() > 10 {
			t.Errorf("scene %+v exceeds max-frames 10", s)
		}
	}
}

func TestApplyExtraSplitDisabled(t *testing.T) {
	scenes := []Scene{{StartFrame: 0, EndFrame: 100}}
	out := ApplyExtraSplit(scenes, 0)
	if len(out) != 1 || out[0] != scenes[0] {
		t.Errorf("ApplyExtraSplit(0) should be a no-op, got %+v", out)
	}
}

func TestValidatePartition(t *testing.T) {
	good := []Scene{{StartFrame: 0, EndFrame: 10}, {StartFrame: 10, EndFrame: 20}}
	if !ValidatePartition(good, 20) {
		t.Error("expected valid partition")
	}

	gap := []Scene{{StartFrame: 0, EndFrame: 10}, {StartFrame: 11, EndFrame: 20}}
	if ValidatePartition(gap, 20) {
		t.Error("expected gap to invalidate partition")
	}

	overlap := []Scene{{StartFrame: 0, EndFrame: 10}, {StartFrame: 9, EndFrame: 20}}
	if ValidatePartition(overlap, 20) {
		t.Error("expected overlap to invalidate partition")
	}

	shortOfTotal := []Scene{{StartFrame: 0, EndFrame: 10}}
	if ValidatePartition(shortOfTotal, 20) {
		t.Error("expected partition short of total_frames to be invalid")
	}
}
