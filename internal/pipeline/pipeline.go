// Package pipeline wires the driver's stages into one run: probe the
// source, split it into scenes, plan chunks, dispatch them to the worker
// pool, concatenate the results, and report progress throughout. It is
// the single caller that owns the whole job end to end; every other
// internal package is a component it drives.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/av1an/av1an/internal/affinity"
	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/concat"
	"github.com/av1an/av1an/internal/config"
	"github.com/av1an/av1an/internal/encoder"
	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/logging"
	"github.com/av1an/av1an/internal/pool"
	"github.com/av1an/av1an/internal/reporter"
	"github.com/av1an/av1an/internal/scd"
	"github.com/av1an/av1an/internal/scene"
	"github.com/av1an/av1an/internal/sourceprovider"
	"github.com/av1an/av1an/internal/tq"
	"github.com/av1an/av1an/internal/util"
	"github.com/av1an/av1an/internal/vmaf"
	"github.com/av1an/av1an/internal/worker"
)

// Run executes one complete av1an job per cfg, reporting progress through
// rep (a NullReporter is substituted if rep is nil). It returns once the
// output file has been written (and, with --vmaf, scored against the
// source), or once an unrecoverable error or ctx cancellation stops the
// job short.
func Run(ctx context.Context, cfg *config.Config, rep reporter.Reporter) error {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	enc, err := encoder.New(string(cfg.Encoder))
	if err != nil {
		return err
	}

	if err := checkDependencies(cfg, enc); err != nil {
		return err
	}

	host, _ := os.Hostname()
	rep.Hardware(reporter.HardwareSummary{Hostname: host, LogicalCores: util.LogicalCores(), PhysicalCores: util.PhysicalCores()})

	rep.StageProgress(reporter.StageProgress{Stage: "Probe", Message: "inspecting source"})
	info, err := ffprobe.Probe(cfg.Input)
	if err != nil {
		return err
	}
	hasAudio, err := ffprobe.HasAudioStream(cfg.Input)
	if err != nil {
		return err
	}
	if cfg.PixFormat != "" && cfg.PixFormat != info.PixFormat {
		rep.Warning(fmt.Sprintf("--pix-format %s overrides probed source format %s; every Source Provider and Encoder Adapter will use %s",
			cfg.PixFormat, info.PixFormat, cfg.PixFormat))
		info.PixFormat = cfg.PixFormat
	}
	rep.Source(sourceSummary(cfg, info, hasAudio))

	baseDir := cfg.TempDir
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if err := util.EnsureDirectory(baseDir); err != nil {
		return err
	}
	if err := util.EnsureDirectoryWritable(baseDir); err != nil {
		return drerrors.NewIOError("scratch base directory is not writable", err)
	}
	// With --temp the given directory is itself the scratch directory, so a
	// later run with the same --temp finds its done.json and resumes.
	scratchDir := cfg.TempDir
	var scratch *util.TempDir
	if scratchDir == "" {
		scratch, err = util.CreateTempDir(baseDir, "av1an")
		if err != nil {
			return err
		}
		scratchDir = scratch.Path()
		logging.Info("scratch directory created", "path", scratchDir)
	}
	util.CheckDiskSpace(scratchDir, func(format string, args ...any) {
		rep.Warning(fmt.Sprintf(format, args...))
	})

	rep.StageProgress(reporter.StageProgress{Stage: "Scene Detection", Message: "splitting source into scenes"})
	scenes, err := scene.Split(cfg.Input, info, scene.Options{
		Method:           cfg.ScenecutMethod,
		ExtraSplitFrames: cfg.ExtraSplit,
		ScenesPath:       cfg.ScenesPath,
		SCOnly:           cfg.SceneCutOnly,
	})
	if err != nil {
		return err
	}
	rep.SceneDetection(sceneSummary(cfg, scenes, info))

	if cfg.SceneCutOnly {
		rep.OperationComplete("scene detection complete")
		return nil
	}

	access, err := sourceAccessFor(cfg.ChunkMethod)
	if err != nil {
		return err
	}

	rawArgs := strings.Fields(cfg.EncoderArgs)

	if cfg.TargetQuality {
		if existing, ok := encoder.ExtractQuantizerFlag(rawArgs, enc.QuantizerFlagName()); ok {
			rep.Warning(fmt.Sprintf(
				"--target-quality is set; removing %s %d from --video-params in favor of the searched quantizer",
				enc.QuantizerFlagName(), existing))
		}
	}

	var fixedQuant *int
	if !cfg.TargetQuality {
		q, ok := encoder.ExtractQuantizerFlag(rawArgs, enc.QuantizerFlagName())
		if !ok {
			return drerrors.NewConfigError(fmt.Sprintf(
				"target-quality is disabled and no %s flag was found in --video-params; "+
					"either pass %s <value> or enable --target-quality", enc.QuantizerFlagName(), enc.QuantizerFlagName()))
		}
		fixedQuant = &q
	}

	chunks := chunk.Plan(scenes, chunk.PlanOptions{
		Encoder:     string(cfg.Encoder),
		Access:      access,
		Passes:      1, // §6 exposes no --passes flag; pool.encodeChunk's two-pass path is reachable but unused
		Quantizer:   fixedQuant,
		ScratchDir:  scratchDir,
		EncoderArgv: func(*int) []string { return rawArgs },
	})

	workers := cfg.Workers
	if workers <= 0 {
		// Each worker drives an independent, typically multi-threaded encoder
		// child process, so default to physical rather than logical cores to
		// avoid oversubscribing the machine's hyperthreads across workers.
		workers = util.PhysicalCores()
	}

	rep.PlanReady(planSummary(cfg, chunks, workers, fixedQuant))

	dispatchChunks := chunk.Sort(chunks, chunk.Order(cfg.ChunkOrder), nil)

	// A crash between writing and renaming the resume store's temp file
	// (internal/chunk.writeResumeDocument) can leave a stray ".done*.tmp"
	// behind; harmless on a fresh scratch dir, but --temp lets this one be
	// reused across runs, so sweep it before reading done.json.
	if _, err := util.CleanupStaleTempFiles(scratchDir, ".done", 0); err != nil {
		return err
	}

	resume, err := chunk.LoadResumeStore(filepath.Join(scratchDir, "done.json"), info.TotalFrames)
	if err != nil {
		return err
	}

	var tqCfg *tq.Config
	if cfg.TargetQuality {
		legalMin, legalMax := enc.LegalQuantizerRange()
		qmin, qmax := max(cfg.MinQuantizer, legalMin), min(cfg.MaxQuantizer, legalMax)
		tqCfg, err = tq.FromAppConfig(cfg, qmin, qmax)
		if err != nil {
			return err
		}
	}

	provider, err := sourceprovider.New(access)
	if err != nil {
		return err
	}

	startTime := time.Now()
	fps := float64(info.FPSNum) / float64(info.FPSDen)

	rep.StageProgress(reporter.StageProgress{Stage: "Encoding", Message: fmt.Sprintf("dispatching %d chunks across %d workers", len(chunks), workers)})

	poolErr := pool.Run(ctx, dispatchChunks, pool.Config{
		Workers:    workers,
		RetryLimit: cfg.Retries,
		VideoPath:  cfg.Input,
		ScratchDir: scratchDir,
		Info:       info,
		Provider:   provider,
		Encoder:    enc,
		Resume:     resume,
		Affinity:   affinity.NewAllocator(cfg.ThreadAffinity),
		TQ:         tqCfg,
		OnProgress: func(p worker.Progress) {
			rep.PoolProgress(poolProgress(p, fps, startTime))
		},
		OnProbe: func(o worker.ProbeOutcome) {
			rep.ProbeComplete(reporter.ProbeOutcome{
				ChunkIndex: o.ChunkIndex,
				Quantizer:  o.Quantizer,
				Score:      o.Score,
				Steps:      o.Steps,
				Converged:  o.Converged,
			})
		},
		OnChunkResult: func(r worker.Result) {
			rep.ChunkComplete(reporter.ChunkOutcome{
				ChunkIndex: r.ChunkIndex,
				Frames:     r.Frames,
				Size:       r.Size,
				Quantizer:  r.Quantizer,
				Retries:    r.Retries,
				Err:        r.Err,
			})
		},
	})
	if poolErr != nil {
		return poolErr
	}

	audioPath := ""
	if hasAudio {
		audioPath = cfg.Input
	}
	concatMethod := concat.Method(cfg.ConcatMethod)
	if required := concat.Required(string(cfg.Encoder)); required != "" {
		concatMethod = required
	}

	rep.StageProgress(reporter.StageProgress{Stage: "Concat", Message: "joining encoded segments"})
	if err := concat.Concat(concat.Options{
		Method:     concatMethod,
		ScratchDir: scratchDir,
		Chunks:     chunks,
		OutputPath: cfg.Output,
		AudioPath:  audioPath,
	}); err != nil {
		return err
	}
	rep.ConcatComplete(reporter.ConcatSummary{Method: string(concatMethod), OutputPath: cfg.Output})

	if cfg.ScoreFinalVMAF {
		rep.StageProgress(reporter.StageProgress{Stage: "Validation", Message: "scoring final output against source"})
		score, err := vmaf.Score(vmaf.Options{Reference: cfg.Input, Distorted: cfg.Output})
		step := reporter.ValidationStep{Name: "vmaf"}
		if err != nil {
			step.Passed = false
			step.Details = err.Error()
		} else {
			step.Passed = true
			step.Details = fmt.Sprintf("%.2f", score)
		}
		rep.ValidationComplete(reporter.ValidationSummary{Passed: step.Passed, Steps: []reporter.ValidationStep{step}})
	}

	outcome, err := buildRunOutcome(cfg, chunks, startTime)
	if err != nil {
		return err
	}
	rep.RunComplete(outcome)
	rep.OperationComplete("encode complete")

	// Mirror the teacher's conditional cleanup: remove the scratch directory
	// once the output exists, unless the caller asked to keep it with --temp.
	if cfg.TempDir == "" {
		if _, err := os.Stat(cfg.Output); err == nil {
			_ = scratch.Cleanup()
		}
	}

	return nil
}

// checkDependencies verifies every external binary this run needs is on
// PATH before any work starts, grounded in the teacher's
// CheckChunkedDependencies (ffmpeg/ffprobe plus the chosen encoder and
// scene-cut backend).
func checkDependencies(cfg *config.Config, enc encoder.Adapter) error {
	for _, bin := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(bin); err != nil {
			return drerrors.NewConfigError(fmt.Sprintf("%s not found in PATH", bin))
		}
	}

	encBinary := enc.BuildArgv(encoder.BuildOptions{})[0]
	if _, err := exec.LookPath(encBinary); err != nil {
		return drerrors.NewConfigError(fmt.Sprintf("%s not found in PATH (required by --encoder %s)", encBinary, cfg.Encoder))
	}

	if cfg.ScenecutMethod == config.ScenecutStandard && !scd.IsAvailable() {
		return drerrors.NewConfigError("scene-cut binary not found in PATH (required by --sc-method standard)")
	}

	needsMKVMerge := cfg.ConcatMethod == config.ConcatMKVMerge || concat.Required(string(cfg.Encoder)) == concat.MethodMKVMerge
	if needsMKVMerge {
		if _, err := exec.LookPath("mkvmerge"); err != nil {
			return drerrors.NewConfigError("mkvmerge not found in PATH (required for this encoder/concat combination)")
		}
	}
	return nil
}

func sourceAccessFor(m config.ChunkMethod) (chunk.SourceAccess, error) {
	switch m {
	case config.ChunkMethodHybrid:
		return chunk.SourceAccessHybrid, nil
	case config.ChunkMethodSelect:
		return chunk.SourceAccessSelectFilter, nil
	case config.ChunkMethodFFMS2, config.ChunkMethodLSMASH:
		return chunk.SourceAccessIndexed, nil
	default:
		return "", drerrors.NewConfigError(fmt.Sprintf("unknown chunk method %q", m))
	}
}

func sourceSummary(cfg *config.Config, info ffprobe.VideoInfo, hasAudio bool) reporter.SourceSummary {
	durationSecs := int64(0)
	if info.FPSNum > 0 {
		durationSecs = int64(float64(info.TotalFrames) * float64(info.FPSDen) / float64(info.FPSNum))
	}
	audioDesc := "none"
	if hasAudio {
		audioDesc = "present"
	}
	return reporter.SourceSummary{
		InputFile:        cfg.Input,
		OutputFile:       cfg.Output,
		Duration:         util.FormatDurationFromSecs(durationSecs),
		Resolution:       fmt.Sprintf("%dx%d", info.Width, info.Height),
		PixFormat:        info.PixFormat,
		AudioDescription: audioDesc,
	}
}

func sceneSummary(cfg *config.Config, scenes []chunk.Scene, info ffprobe.VideoInfo) reporter.SceneSummary {
	minLen, maxLen := 0, 0
	for i, s := range scenes {
		if i == 0 || s.Frames() < minLen {
			minLen = s.Frames()
		}
		if s.Frames() > maxLen {
			maxLen = s.Frames()
		}
	}
	return reporter.SceneSummary{
		Method:      string(cfg.ScenecutMethod),
		SceneCount:  len(scenes),
		TotalFrames: info.TotalFrames,
		MinLength:   minLen,
		MaxLength:   maxLen,
	}
}

func planSummary(cfg *config.Config, chunks []chunk.Chunk, workers int, fixedQuant *int) reporter.PlanSummary {
	quantDesc := ""
	if fixedQuant != nil {
		quantDesc = fmt.Sprintf("%d", *fixedQuant)
	}
	return reporter.PlanSummary{
		Encoder:       string(cfg.Encoder),
		ChunkCount:    len(chunks),
		Workers:       workers,
		TargetQuality: cfg.TargetQuality,
		Target:        cfg.TargetVMAF,
		Quantizer:     quantDesc,
		ChunkOrder:    string(cfg.ChunkOrder),
	}
}

func poolProgress(p worker.Progress, fps float64, startTime time.Time) reporter.PoolProgress {
	elapsed := time.Since(startTime)
	var speed, framesPerSec float64
	var eta time.Duration
	if elapsed.Seconds() > 0 && p.FramesComplete > 0 {
		framesPerSec = float64(p.FramesComplete) / elapsed.Seconds()
		if fps > 0 {
			speed = (float64(p.FramesComplete) / fps) / elapsed.Seconds()
		}
		if framesPerSec > 0 {
			remaining := p.FramesTotal - p.FramesComplete
			eta = time.Duration(float64(remaining)/framesPerSec) * time.Second
		}
	}
	return reporter.PoolProgress{
		ChunksComplete: p.ChunksComplete,
		ChunksTotal:    p.ChunksTotal,
		FramesComplete: p.FramesComplete,
		FramesTotal:    p.FramesTotal,
		BytesComplete:  p.BytesComplete,
		Speed:          speed,
		FPS:            framesPerSec,
		ETA:            eta,
	}
}

func buildRunOutcome(cfg *config.Config, chunks []chunk.Chunk, startTime time.Time) (reporter.RunOutcome, error) {
	originalSize, err := util.GetFileSize(cfg.Input)
	if err != nil {
		return reporter.RunOutcome{}, err
	}
	encodedSize, err := util.GetFileSize(cfg.Output)
	if err != nil {
		return reporter.RunOutcome{}, err
	}

	totalTime := time.Since(startTime)
	totalFrames := 0
	for _, c := range chunks {
		totalFrames += c.Frames()
	}
	var avgSpeed float64
	if totalTime.Seconds() > 0 {
		avgSpeed = float64(totalFrames) / totalTime.Seconds()
	}

	return reporter.RunOutcome{
		InputFile:     cfg.Input,
		OutputFile:    cfg.Output,
		OriginalSize:  originalSize,
		EncodedSize:   encodedSize,
		TotalTime:     totalTime,
		AverageSpeed:  avgSpeed,
		ChunksEncoded: len(chunks),
		OutputPath:    cfg.Output,
	}, nil
}
