// Package vmaf scores a distorted encode against its reference by
// shelling out to ffmpeg's libvmaf filter. The perceptual-metric tool is
// treated as an external black box (§1): this package only knows how to
// invoke it and parse its JSON log, never how to compute the metric.
package vmaf

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	drerrors "github.com/av1an/av1an/internal/errors"
)

// Options configures one VMAF scoring subprocess invocation.
type Options struct {
	// Reference and Distorted are paths to the two inputs being compared.
	// Distorted is the encoded probe; Reference is the source range it was
	// probe-encoded from, already cropped/trimmed to the same frame count.
	Reference string
	Distorted string
	ModelPath string // empty uses libvmaf's bundled default model
	NThreads  int
}

type vmafLog struct {
	PooledMetrics struct {
		VMAF struct {
			Mean float64 `json:"mean"`
		} `json:"vmaf"`
	} `json:"pooled_metrics"`
}

// Score runs ffmpeg's libvmaf filter over opts.Distorted against
// opts.Reference and returns the pooled mean VMAF score.
func Score(opts Options) (float64, error) {
	logFile, err := os.CreateTemp("", "av1an-vmaf-*.json")
	if err != nil {
		return 0, drerrors.NewIOError("create VMAF log file", err)
	}
	logPath := logFile.Name()
	logFile.Close()
	defer os.Remove(logPath)

	filter := buildFilter(logPath, opts)
	args := []string{
		"-y", "-hide_banner", "-loglevel", "error",
		"-i", opts.Distorted,
		"-i", opts.Reference,
		"-lavfi", filter,
		"-f", "null", "-",
	}

	cmd := exec.Command("ffmpeg", args...)
	stderr := &strings.Builder{}
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return 0, drerrors.WrapExecError(drerrors.KindProbeFailure, "ffmpeg -lavfi libvmaf", err, stderr.String())
	}

	return readScore(logPath)
}

func buildFilter(logPath string, opts Options) string {
	nThreads := opts.NThreads
	if nThreads <= 0 {
		nThreads = 1
	}
	filter := fmt.Sprintf("libvmaf=log_path=%s:log_fmt=json:n_threads=%d", logPath, nThreads)
	if opts.ModelPath != "" {
		filter += fmt.Sprintf(":model=path=%s", opts.ModelPath)
	}
	return filter
}

func readScore(logPath string) (float64, error) {
	data, err := os.ReadFile(logPath)
	if err != nil {
		return 0, drerrors.NewProbeFailureError("read VMAF log", err)
	}

	var parsed vmafLog
	if err := json.Unmarshal(data, &parsed); err != nil {
		return 0, drerrors.NewProbeFailureError("parse VMAF log", err)
	}
	return parsed.PooledMetrics.VMAF.Mean, nil
}
