package pipeline

import (
	"testing"
	"time"

	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/config"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/worker"
)

func TestSourceAccessFor(t *testing.T) {
	cases := map[config.ChunkMethod]chunk.SourceAccess{
		config.ChunkMethodHybrid: chunk.SourceAccessHybrid,
		config.ChunkMethodSelect: chunk.SourceAccessSelectFilter,
		config.ChunkMethodFFMS2:  chunk.SourceAccessIndexed,
		config.ChunkMethodLSMASH: chunk.SourceAccessIndexed,
	}
	for method, want := range cases {
		got, err := sourceAccessFor(method)
		if err != nil {
			t.Errorf("sourceAccessFor(%q) error: %v", method, err)
		}
		if got != want {
			t.Errorf("sourceAccessFor(%q) = %q, want %q", method, got, want)
		}
	}
}

func TestSourceAccessForUnknown(t *testing.T) {
	if _, err := sourceAccessFor(config.ChunkMethod("bogus")); err == nil {
		t.Error("sourceAccessFor(bogus) expected error, got nil")
	}
}

func TestSceneSummary(t *testing.T) {
	scenes := []chunk.Scene{
		{StartFrame: 0, EndFrame: 100},
		{StartFrame: 100, EndFrame: 130},
		{StartFrame: 130, EndFrame: 400},
	}
	summary := sceneSummary(&config.Config{ScenecutMethod: config.ScenecutStandard}, scenes, ffprobe.VideoInfo{TotalFrames: 400})

	if summary.SceneCount != 3 {
		t.Errorf("SceneCount = %d, want 3", summary.SceneCount)
	}
	if summary.MinLength != 30 {
		t.Errorf("MinLength = %d, want 30", summary.MinLength)
	}
	if summary.MaxLength != 270 {
		t.Errorf("MaxLength = %d, want 270", summary.MaxLength)
	}
}

func TestPlanSummaryQuantizerDescription(t *testing.T) {
	cfg := &config.Config{Encoder: config.EncoderSvtAv1, ChunkOrder: config.ChunkOrderSequential}

	q := 28
	withFixed := planSummary(cfg, nil, 4, &q)
	if withFixed.Quantizer != "28" {
		t.Errorf("Quantizer = %q, want %q", withFixed.Quantizer, "28")
	}

	withoutFixed := planSummary(cfg, nil, 4, nil)
	if withoutFixed.Quantizer != "" {
		t.Errorf("Quantizer = %q, want empty", withoutFixed.Quantizer)
	}
}

func TestPoolProgressETA(t *testing.T) {
	start := time.Now().Add(-10 * time.Second)
	p := worker.Progress{ChunksComplete: 1, ChunksTotal: 2, FramesComplete: 100, FramesTotal: 200}

	progress := poolProgress(p, 25, start)
	if progress.FramesComplete != 100 || progress.FramesTotal != 200 {
		t.Errorf("frame fields not passed through: %+v", progress)
	}
	if progress.FPS <= 0 {
		t.Errorf("FPS = %v, want > 0 once frames have completed", progress.FPS)
	}
	if progress.ETA <= 0 {
		t.Errorf("ETA = %v, want > 0 with remaining frames", progress.ETA)
	}
}

func TestPoolProgressNoElapsedWork(t *testing.T) {
	progress := poolProgress(worker.Progress{}, 25, time.Now())
	if progress.Speed != 0 || progress.FPS != 0 || progress.ETA != 0 {
		t.Errorf("expected zero-valued rates before any frame completes, got %+v", progress)
	}
}
