package pool

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/av1an/av1an/internal/chunk"
	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/tq"
)

// extractProbeReference writes a chunk's probe reference clip to outPath
// as y4m. Fast mode keeps every cfg.Decimation-th frame of the chunk's
// range (§4.7's "decimated sequence of the chunk's frames"); slow mode
// keeps the full range. Decimation is a target-quality-specific concern
// distinct from the Chunk Source Provider's four general access methods,
// so it is implemented directly against ffmpeg here rather than through
// the sourceprovider package.
func extractProbeReference(videoPath string, c chunk.Chunk, info ffprobe.VideoInfo, cfg *tq.Config, outPath string) error {
	cmd := probeReferenceCommand(videoPath, c, info, cfg, outPath)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return drerrors.WrapExecError(drerrors.KindProbeFailure, "ffmpeg", err, stderr.String())
	}
	return nil
}

func probeReferenceCommand(videoPath string, c chunk.Chunk, info ffprobe.VideoInfo, cfg *tq.Config, outPath string) *exec.Cmd {
	filter := probeSelectFilter(c, cfg)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", videoPath,
		"-vf", filter,
		"-pix_fmt", info.PixFormat,
		"-strict", "-1",
		"-f", "yuv4mpegpipe",
		outPath,
	}
	return exec.Command("ffmpeg", args...)
}

func probeSelectFilter(c chunk.Chunk, cfg *tq.Config) string {
	rangeExpr := fmt.Sprintf(`between(n\,%d\,%d)`, c.Start, c.End-1)
	if cfg.Mode != tq.ProbeFast || cfg.Decimation <= 1 {
		return "select=" + rangeExpr
	}
	return fmt.Sprintf(`select=%s*not(mod(n-%d\,%d))`, rangeExpr, c.Start, cfg.Decimation)
}
