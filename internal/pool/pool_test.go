package pool

import (
	"testing"

	"github.com/av1an/av1an/internal/chunk"
)

func TestSegmentPathFor(t *testing.T) {
	chunks := []chunk.Chunk{
		{Index: 0, Segment: "a.ivf"},
		{Index: 1, Segment: "b.ivf"},
	}
	if got := segmentPathFor(chunks, 1); got != "b.ivf" {
		t.Errorf("segmentPathFor(_, 1) = %q, want %q", got, "b.ivf")
	}
}

func TestSegmentPathForUnknownIndex(t *testing.T) {
	chunks := []chunk.Chunk{{Index: 0, Segment: "a.ivf"}}
	if got := segmentPathFor(chunks, 99); got != "" {
		t.Errorf("segmentPathFor(_, 99) = %q, want empty string", got)
	}
}
