package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/av1an/av1an/internal/util"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	lastStage  string
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
}

// NewTerminalReporter creates a new terminal reporter.
func NewTerminalReporter() *TerminalReporter {
	return &TerminalReporter{
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("HARDWARE")
	r.printLabel(12, "Hostname:", summary.Hostname)
	r.printLabel(12, "CPUs:", fmt.Sprintf("%d logical, %d physical", summary.LogicalCores, summary.PhysicalCores))
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Source(summary SourceSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SOURCE")
	r.printLabel(10, "File:", summary.InputFile)
	r.printLabel(10, "Output:", summary.OutputFile)
	r.printLabel(10, "Duration:", summary.Duration)
	r.printLabel(10, "Resolution:", summary.Resolution)
	r.printLabel(10, "Pix fmt:", summary.PixFormat)
	r.printLabel(10, "Audio:", summary.AudioDescription)
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) SceneDetection(summary SceneSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SCENES")
	r.printLabel(12, "Method:", summary.Method)
	r.printLabel(12, "Scenes:", fmt.Sprintf("%d", summary.SceneCount))
	r.printLabel(12, "Frames:", fmt.Sprintf("%d", summary.TotalFrames))
	r.printLabel(12, "Length range:", fmt.Sprintf("%d-%d frames", summary.MinLength, summary.MaxLength))
}

func (r *TerminalReporter) PlanReady(summary PlanSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("PLAN")
	r.printLabel(12, "Encoder:", summary.Encoder)
	r.printLabel(12, "Chunks:", fmt.Sprintf("%d", summary.ChunkCount))
	r.printLabel(12, "Workers:", fmt.Sprintf("%d", summary.Workers))
	r.printLabel(12, "Order:", summary.ChunkOrder)
	if summary.TargetQuality {
		r.printLabel(12, "Quality:", fmt.Sprintf("target VMAF %.1f", summary.Target))
	} else {
		r.printLabel(12, "Quality:", fmt.Sprintf("fixed quantizer %s", summary.Quantizer))
	}
}

func (r *TerminalReporter) PoolProgress(progress PoolProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil {
		r.progress = progressbar.NewOptions(
			progress.ChunksTotal,
			progressbar.OptionSetDescription(""),
			progressbar.OptionSetWidth(40),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowDescriptionAtLineEnd(),
			progressbar.OptionSetElapsedTime(false),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "Encoding [",
				BarEnd:        "]",
			}),
		)
	}

	if float64(progress.ChunksComplete) >= r.maxPercent {
		r.maxPercent = float64(progress.ChunksComplete)
		_ = r.progress.Set(progress.ChunksComplete)
	}

	desc := fmt.Sprintf("%d/%d chunks, speed %.1fx, fps %.1f, eta %s",
		progress.ChunksComplete, progress.ChunksTotal,
		progress.Speed, progress.FPS, util.FormatDurationFromSecs(int64(progress.ETA.Seconds())))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) ProbeComplete(outcome ProbeOutcome) {
	status := r.green.Sprint("converged")
	if !outcome.Converged {
		status = r.yellow.Sprint("not converged")
	}
	fmt.Printf("  chunk %d: quantizer %d, vmaf %.2f, %d steps (%s)\n",
		outcome.ChunkIndex, outcome.Quantizer, outcome.Score, outcome.Steps, status)
}

func (r *TerminalReporter) ChunkComplete(outcome ChunkOutcome) {
	if outcome.Err != nil {
		fmt.Printf("  %s chunk %d: %v\n", r.red.Sprint("✗"), outcome.ChunkIndex, outcome.Err)
		return
	}
	retryNote := ""
	if outcome.Retries > 0 {
		retryNote = fmt.Sprintf(" (%d retries)", outcome.Retries)
	}
	fmt.Printf("  %s chunk %d: %d frames, q%d, %s%s\n",
		r.green.Sprint("✓"), outcome.ChunkIndex, outcome.Frames, outcome.Quantizer,
		util.FormatBytesReadable(outcome.Size), retryNote)
}

func (r *TerminalReporter) ConcatComplete(summary ConcatSummary) {
	r.finishProgress()
	fmt.Println()
	_, _ = r.cyan.Println("CONCAT")
	r.printLabel(10, "Method:", summary.Method)
	r.printLabel(10, "Output:", summary.OutputPath)
}

func (r *TerminalReporter) ValidationComplete(summary ValidationSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("VALIDATION")

	if summary.Passed {
		fmt.Printf("  %s\n", r.green.Add(color.Bold).Sprint("All checks passed"))
	} else {
		fmt.Printf("  %s\n", r.red.Sprint("Validation failed"))
	}

	// Find the longest step name for alignment
	maxLen := 0
	for _, step := range summary.Steps {
		if len(step.Name) > maxLen {
			maxLen = len(step.Name)
		}
	}

	for _, step := range summary.Steps {
		var status string
		if step.Passed {
			status = r.green.Sprint("✓")
		} else {
			status = r.red.Sprint("✗")
		}
		paddedName := fmt.Sprintf("%-*s", maxLen, step.Name)
		fmt.Printf("  - %s: %s (%s)\n", paddedName, status, step.Details)
	}
}

func (r *TerminalReporter) RunComplete(summary RunOutcome) {
	reduction := util.CalculateSizeReduction(summary.OriginalSize, summary.EncodedSize)

	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	fmt.Printf("  %s %s\n", r.bold.Sprint("Output:"), r.bold.Sprint(summary.OutputFile))
	fmt.Printf("  %s %s -> %s\n",
		r.bold.Sprint("Size:"),
		util.FormatBytesReadable(summary.OriginalSize),
		util.FormatBytesReadable(summary.EncodedSize))
	fmt.Printf("  %s %s\n", r.bold.Sprint("Reduction:"), r.bold.Sprintf("%.1f%%", reduction))
	r.printLabel(10, "Chunks:", fmt.Sprintf("%d", summary.ChunksEncoded))
	fmt.Printf("  %s %s (avg speed %.1fx)\n",
		r.bold.Sprint("Time:"),
		util.FormatDurationFromSecs(int64(summary.TotalTime.Seconds())),
		summary.AverageSpeed)
	fmt.Printf("  %s %s\n", r.bold.Sprint("Saved to"), r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) OperationComplete(message string) {
	fmt.Println()
	fmt.Printf("%s %s\n", r.green.Add(color.Bold).Sprint("✓"), r.bold.Sprint(message))
}

func (r *TerminalReporter) Verbose(message string) {
	fmt.Printf("  %s\n", color.New(color.Faint).Sprint(message))
}
