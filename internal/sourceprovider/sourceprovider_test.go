package sourceprovider

import (
	"strings"
	"testing"

	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/ffprobe"
)

func TestNewKnownMethods(t *testing.T) {
	for _, access := range []chunk.SourceAccess{
		chunk.SourceAccessIndexed,
		chunk.SourceAccessPipedRange,
		chunk.SourceAccessSelectFilter,
		chunk.SourceAccessHybrid,
	} {
		p, err := New(access)
		if err != nil {
			t.Fatalf("New(%v) error = %v", access, err)
		}
		if p.Access() != access {
			t.Errorf("New(%v).Access() = %v", access, p.Access())
		}
	}
}

func TestNewUnknownMethod(t *testing.T) {
	if _, err := New(chunk.SourceAccess("bogus")); err == nil {
		t.Error("expected an error for an unknown source access method")
	}
}

func TestSelectFilterCommandRange(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 30, End: 90}
	cmd := selectFilterCommand("in.mkv", c, "yuv420p")
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, `between(n\,30\,89)`) {
		t.Errorf("selectFilterCommand() args = %v, want a between(n,30,89) filter", cmd.Args)
	}
}

func TestPipedRangeCommandSeekTime(t *testing.T) {
	c := chunk.Chunk{Index: 0, Start: 48, End: 72}
	info := ffprobe.VideoInfo{FPSNum: 24, FPSDen: 1}
	cmd := pipedRangeCommand("in.mkv", c, info)
	joined := strings.Join(cmd.Args, " ")
	if !strings.Contains(joined, "-ss 2.000000") {
		t.Errorf("pipedRangeCommand() args = %v, want -ss 2.000000 (48 frames at 24fps)", cmd.Args)
	}
	if !strings.Contains(joined, "-frames:v 24") {
		t.Errorf("pipedRangeCommand() args = %v, want -frames:v 24", cmd.Args)
	}
}

func TestHybridProviderChoosesByKeyframe(t *testing.T) {
	p := &hybridProvider{keyframes: map[int]bool{0: true, 120: true}}
	info := ffprobe.VideoInfo{FPSNum: 24, FPSDen: 1, PixFormat: "yuv420p"}

	onKeyframe := chunk.Chunk{Index: 0, Start: 0, End: 60}
	cmd, err := p.Command("in.mkv", "", onKeyframe, info)
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if !strings.Contains(strings.Join(cmd.Args, " "), "-ss") {
		t.Errorf("expected a piped-range seek for a chunk starting on a keyframe, got %v", cmd.Args)
	}

	offKeyframe := chunk.Chunk{Index: 1, Start: 60, End: 120}
	cmd, err = p.Command("in.mkv", "", offKeyframe, info)
	if err != nil {
		t.Fatalf("Command() error = %v", err)
	}
	if !strings.Contains(strings.Join(cmd.Args, " "), "select=between") {
		t.Errorf("expected a select-filter fallback for a chunk not starting on a keyframe, got %v", cmd.Args)
	}
}
