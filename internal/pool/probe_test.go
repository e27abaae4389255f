package pool

import (
	"strings"
	"testing"

	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/tq"
)

func TestProbeSelectFilterSlowUsesFullRange(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 100, End: 160}
	cfg := &tq.Config{Mode: tq.ProbeSlow}
	f := probeSelectFilter(c, cfg)
	if !strings.Contains(f, `between(n\,100\,159)`) {
		t.Errorf("probeSelectFilter() = %q, want a between(100,159) range", f)
	}
	if strings.Contains(f, "mod(") {
		t.Errorf("probeSelectFilter() = %q, slow mode must not decimate", f)
	}
}

func TestProbeSelectFilterFastDecimates(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 100, End: 160}
	cfg := &tq.Config{Mode: tq.ProbeFast, Decimation: 4}
	f := probeSelectFilter(c, cfg)
	if !strings.Contains(f, `mod(n-100\,4)`) {
		t.Errorf("probeSelectFilter() = %q, want a mod(n-100,4) decimation clause", f)
	}
}

func TestProbeSelectFilterFastWithoutDecimationFallsBackToFullRange(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 0, End: 48}
	cfg := &tq.Config{Mode: tq.ProbeFast, Decimation: 0}
	f := probeSelectFilter(c, cfg)
	if strings.Contains(f, "mod(") {
		t.Errorf("probeSelectFilter() = %q, want no decimation clause when Decimation <= 1", f)
	}
}

func TestProbeReferenceCommandArgs(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 0, End: 24}
	cfg := &tq.Config{Mode: tq.ProbeSlow}
	info := ffprobe.VideoInfo{PixFormat: "yuv420p"}
	cmd := probeReferenceCommand("in.mkv", c, info, cfg, "/tmp/ref.y4m")
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "-i in.mkv") || !strings.Contains(joined, "/tmp/ref.y4m") {
		t.Errorf("probeReferenceCommand() args = %v, missing input/output", cmd.Args)
	}
}
