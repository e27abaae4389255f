package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/av1an/av1an/internal/util"
)

// JSONReporter outputs one NDJSON event per line, for consumption by a
// wrapping process or UI instead of a human terminal.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON reporter that writes to stdout.
func NewJSONReporter() *JSONReporter {
	return &JSONReporter{writer: os.Stdout}
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer) *JSONReporter {
	return &JSONReporter{writer: w}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":           "hardware",
		"hostname":       summary.Hostname,
		"logical_cores":  summary.LogicalCores,
		"physical_cores": summary.PhysicalCores,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) Source(summary SourceSummary) {
	r.write(map[string]interface{}{
		"type":              "source",
		"input_file":        summary.InputFile,
		"output_file":       summary.OutputFile,
		"duration":          summary.Duration,
		"resolution":        summary.Resolution,
		"pix_format":        summary.PixFormat,
		"audio_description": summary.AudioDescription,
		"timestamp":         r.timestamp(),
	})
}

func (r *JSONReporter) StageProgress(update StageProgress) {
	event := map[string]interface{}{
		"type":      "stage_progress",
		"stage":     update.Stage,
		"percent":   update.Percent,
		"message":   update.Message,
		"timestamp": r.timestamp(),
	}
	if update.ETA != nil {
		event["eta_seconds"] = int64(update.ETA.Seconds())
	}
	r.write(event)
}

func (r *JSONReporter) SceneDetection(summary SceneSummary) {
	r.write(map[string]interface{}{
		"type":         "scene_detection",
		"method":       summary.Method,
		"scene_count":  summary.SceneCount,
		"total_frames": summary.TotalFrames,
		"min_length":   summary.MinLength,
		"max_length":   summary.MaxLength,
		"timestamp":    r.timestamp(),
	})
}

func (r *JSONReporter) PlanReady(summary PlanSummary) {
	r.write(map[string]interface{}{
		"type":           "plan_ready",
		"encoder":        summary.Encoder,
		"chunk_count":    summary.ChunkCount,
		"workers":        summary.Workers,
		"target_quality": summary.TargetQuality,
		"target":         summary.Target,
		"quantizer":      summary.Quantizer,
		"chunk_order":    summary.ChunkOrder,
		"timestamp":      r.timestamp(),
	})
}

func (r *JSONReporter) PoolProgress(progress PoolProgress) {
	r.write(map[string]interface{}{
		"type":            "pool_progress",
		"chunks_complete": progress.ChunksComplete,
		"chunks_total":    progress.ChunksTotal,
		"frames_complete": progress.FramesComplete,
		"frames_total":    progress.FramesTotal,
		"bytes_complete":  progress.BytesComplete,
		"speed":           progress.Speed,
		"fps":             progress.FPS,
		"eta_seconds":     int64(progress.ETA.Seconds()),
		"timestamp":       r.timestamp(),
	})
}

func (r *JSONReporter) ProbeComplete(outcome ProbeOutcome) {
	r.write(map[string]interface{}{
		"type":        "probe_complete",
		"chunk_index": outcome.ChunkIndex,
		"quantizer":   outcome.Quantizer,
		"score":       outcome.Score,
		"steps":       outcome.Steps,
		"converged":   outcome.Converged,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ChunkComplete(outcome ChunkOutcome) {
	event := map[string]interface{}{
		"type":        "chunk_complete",
		"chunk_index": outcome.ChunkIndex,
		"frames":      outcome.Frames,
		"size":        outcome.Size,
		"quantizer":   outcome.Quantizer,
		"retries":     outcome.Retries,
		"timestamp":   r.timestamp(),
	}
	if outcome.Err != nil {
		event["error"] = outcome.Err.Error()
	}
	r.write(event)
}

func (r *JSONReporter) ConcatComplete(summary ConcatSummary) {
	r.write(map[string]interface{}{
		"type":        "concat_complete",
		"method":      summary.Method,
		"output_path": summary.OutputPath,
		"timestamp":   r.timestamp(),
	})
}

func (r *JSONReporter) ValidationComplete(summary ValidationSummary) {
	steps := make([]map[string]interface{}, len(summary.Steps))
	for i, step := range summary.Steps {
		steps[i] = map[string]interface{}{
			"step":    step.Name,
			"passed":  step.Passed,
			"details": step.Details,
		}
	}

	r.write(map[string]interface{}{
		"type":              "validation_complete",
		"validation_passed": summary.Passed,
		"validation_steps":  steps,
		"timestamp":         r.timestamp(),
	})
}

func (r *JSONReporter) RunComplete(summary RunOutcome) {
	reduction := util.CalculateSizeReduction(summary.OriginalSize, summary.EncodedSize)

	r.write(map[string]interface{}{
		"type":                   "run_complete",
		"input_file":             summary.InputFile,
		"output_file":            summary.OutputFile,
		"original_size":          summary.OriginalSize,
		"encoded_size":           summary.EncodedSize,
		"chunks_encoded":         summary.ChunksEncoded,
		"average_speed":          summary.AverageSpeed,
		"output_path":            summary.OutputPath,
		"duration_seconds":       int64(summary.TotalTime.Seconds()),
		"size_reduction_percent": reduction,
		"timestamp":              r.timestamp(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":      "warning",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
		"timestamp":  r.timestamp(),
	})
}

func (r *JSONReporter) OperationComplete(message string) {
	r.write(map[string]interface{}{
		"type":      "operation_complete",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}

func (r *JSONReporter) Verbose(message string) {
	r.write(map[string]interface{}{
		"type":      "verbose",
		"message":   message,
		"timestamp": r.timestamp(),
	})
}
