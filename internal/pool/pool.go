// Package pool implements the Worker Pool (§4.6): a controller goroutine
// dispatching chunks over a depth-N channel to N worker goroutines, each
// driving its chunk's {Source Provider, Target-Quality Controller,
// Encoder Adapter} to completion, plus one collector goroutine folding
// results into the Resume Store and a progress callback.
package pool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/av1an/av1an/internal/affinity"
	"github.com/av1an/av1an/internal/chunk"
	"github.com/av1an/av1an/internal/encoder"
	drerrors "github.com/av1an/av1an/internal/errors"
	"github.com/av1an/av1an/internal/ffprobe"
	"github.com/av1an/av1an/internal/sourceprovider"
	"github.com/av1an/av1an/internal/tq"
	"github.com/av1an/av1an/internal/vmaf"
	"github.com/av1an/av1an/internal/worker"
)

// DefaultRetryLimit bounds how many times a chunk is retried in-process
// after a failed encode before the pool gives up on it (§4.6).
const DefaultRetryLimit = 3

// Config configures one Run of the Worker Pool.
type Config struct {
	Workers    int
	RetryLimit int // 0 uses DefaultRetryLimit

	VideoPath  string
	ScratchDir string
	Info       ffprobe.VideoInfo

	Provider sourceprovider.Provider
	Encoder  encoder.Adapter
	Resume   *chunk.ResumeStore
	Affinity *affinity.Allocator

	// TQ enables the Target-Quality Controller when non-nil; each chunk
	// with no pre-assigned Quantizer has its quantizer searched for before
	// the real encode.
	TQ *tq.Config

	OnProgress func(worker.Progress)
	// OnProbe, if set, fires once per chunk when its Target-Quality
	// Controller search finishes (never for chunks with a pre-assigned
	// quantizer, since those skip the search entirely).
	OnProbe func(worker.ProbeOutcome)
	// OnChunkResult, if set, fires once per chunk as soon as its result
	// (success or failure) is available, before the collector folds it
	// into the Resume Store or the aggregate OnProgress snapshot.
	OnChunkResult func(worker.Result)
}

// Run dispatches chunks to cfg.Workers worker goroutines and blocks until
// every chunk is done, failed past its retry limit, or ctx is cancelled.
// Chunks already verified done in cfg.Resume are skipped. On cancellation
// it waits for in-flight workers to drain before returning, leaving the
// scratch directory intact so a later run can resume (§5).
func Run(ctx context.Context, chunks []chunk.Chunk, cfg Config) error {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	retryLimit := cfg.RetryLimit
	if retryLimit <= 0 {
		retryLimit = DefaultRetryLimit
	}

	skip, err := cfg.Resume.VerifyAndFilter(chunks, ffprobe.CountFrames)
	if err != nil {
		return err
	}

	remaining := make([]chunk.Chunk, 0, len(chunks))
	totalFrames, doneFrames := 0, 0
	var doneBytes uint64
	for _, c := range chunks {
		totalFrames += c.Frames()
		if skip[c.Index] {
			doneFrames += c.Frames()
			if rec, ok := cfg.Resume.Get(c.Index); ok {
				if size, err := os.Stat(rec.SegmentPath); err == nil {
					doneBytes += uint64(size.Size())
				}
			}
			continue
		}
		remaining = append(remaining, c)
	}

	if len(remaining) == 0 {
		return nil
	}

	if err := cfg.Provider.Prepare(cfg.VideoPath, cfg.ScratchDir, remaining, cfg.Info); err != nil {
		return err
	}

	dispatcher := chunk.NewDispatcher(remaining)

	workChan := make(chan chunk.Chunk, cfg.Workers)
	resultChan := make(chan worker.Result, len(remaining))

	var progressMu sync.Mutex
	progress := worker.Progress{
		ChunksTotal:    len(chunks),
		ChunksComplete: len(chunks) - len(remaining),
		FramesTotal:    totalFrames,
		FramesComplete: doneFrames,
		BytesComplete:  doneBytes,
	}

	var stopMu sync.Mutex
	var firstErr error
	recordErr := func(err error) {
		stopMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		stopMu.Unlock()
	}
	hasErr := func() bool {
		stopMu.Lock()
		defer stopMu.Unlock()
		return firstErr != nil
	}

	var collectorWg sync.WaitGroup
	collectorWg.Add(1)
	go func() {
		defer collectorWg.Done()
		for result := range resultChan {
			dispatcher.MarkComplete(result.ChunkIndex)

			if cfg.OnChunkResult != nil {
				cfg.OnChunkResult(result)
			}

			if result.Err != nil {
				recordErr(result.Err)
				continue
			}

			segPath := segmentPathFor(chunks, result.ChunkIndex)
			if err := cfg.Resume.MarkDone(result.ChunkIndex, segPath, &result.Quantizer); err != nil {
				recordErr(err)
			}

			progressMu.Lock()
			progress.ChunksComplete++
			progress.FramesComplete += result.Frames
			progress.BytesComplete += result.Size
			snapshot := progress
			progressMu.Unlock()

			if cfg.OnProgress != nil {
				cfg.OnProgress(snapshot)
			}
		}
	}()

	go func() {
		defer close(workChan)
		for {
			if hasErr() {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
			c, ok := dispatcher.Next()
			if !ok {
				return
			}
			select {
			case workChan <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	var workerWg sync.WaitGroup
	for i := 0; i < cfg.Workers; i++ {
		workerWg.Add(1)
		go func() {
			defer workerWg.Done()
			runWorker(ctx, workChan, resultChan, cfg, retryLimit)
		}()
	}

	workerWg.Wait()
	close(resultChan)
	collectorWg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return drerrors.NewInterruptedError()
	}
	return nil
}

func segmentPathFor(chunks []chunk.Chunk, index int) string {
	for _, c := range chunks {
		if c.Index == index {
			return c.Segment
		}
	}
	return ""
}

func runWorker(ctx context.Context, workChan <-chan chunk.Chunk, resultChan chan<- worker.Result, cfg Config, retryLimit int) {
	var cpus []int
	if cfg.Affinity != nil {
		cpus = cfg.Affinity.Next()
	}

	for c := range workChan {
		select {
		case <-ctx.Done():
			resultChan <- worker.Result{ChunkIndex: c.Index, Err: ctx.Err()}
			continue
		default:
		}

		result := encodeWithRetry(ctx, c, cfg, cpus, retryLimit)
		resultChan <- result
	}
}

func encodeWithRetry(ctx context.Context, c chunk.Chunk, cfg Config, cpus []int, retryLimit int) worker.Result {
	var lastErr error
	for attempt := 0; attempt <= retryLimit; attempt++ {
		if ctx.Err() != nil {
			return worker.Result{ChunkIndex: c.Index, Err: ctx.Err()}
		}

		result, err := encodeChunk(ctx, c, cfg, cpus)
		if err == nil {
			result.Retries = attempt
			return result
		}
		lastErr = err
	}
	return worker.Result{ChunkIndex: c.Index, Retries: retryLimit, Err: fmt.Errorf("chunk %d failed after %d attempts: %w", c.Index, retryLimit+1, lastErr)}
}

// encodeChunk runs the Target-Quality Controller (if enabled and the
// chunk has no pre-assigned quantizer) and then the real encode passes.
func encodeChunk(ctx context.Context, c chunk.Chunk, cfg Config, cpus []int) (worker.Result, error) {
	quant := c.Quant
	if quant == nil && cfg.TQ != nil {
		q, outcome, err := searchQuantizer(c, cfg)
		if err != nil {
			return worker.Result{}, err
		}
		if cfg.OnProbe != nil {
			cfg.OnProbe(outcome)
		}
		quant = &q
	}
	if quant == nil {
		return worker.Result{}, drerrors.NewPlanError(fmt.Sprintf("chunk %d has no quantizer and target-quality is disabled", c.Index), nil)
	}

	passes := c.Passes
	if passes < 1 {
		passes = 1
	}

	statsPath := ""
	if passes > 1 {
		statsPath = c.Segment + ".stats"
		defer os.Remove(statsPath)
	}

	for pass := 1; pass <= passes; pass++ {
		passArg := 0
		if passes > 1 {
			passArg = pass
		}
		if err := runEncodePass(ctx, c, cfg, *quant, passArg, statsPath, cpus); err != nil {
			return worker.Result{}, err
		}
	}

	frames, err := ffprobe.CountFrames(c.Segment)
	if err != nil {
		return worker.Result{}, err
	}
	if frames != c.Frames() {
		return worker.Result{}, drerrors.NewEncodeError(
			fmt.Sprintf("chunk %d segment frame count %d does not match planned %d", c.Index, frames, c.Frames()), nil)
	}

	stat, err := os.Stat(c.Segment)
	if err != nil {
		return worker.Result{}, drerrors.NewIOError("stat encoded segment", err)
	}

	return worker.Result{ChunkIndex: c.Index, Frames: frames, Size: uint64(stat.Size()), Quantizer: *quant}, nil
}

// runEncodePass wires the chunk's Source Provider subprocess stdout
// directly into the Encoder Adapter subprocess stdin — no YUV buffering
// in this process, matching the §4.4/§4.5 boundary between the two.
func runEncodePass(ctx context.Context, c chunk.Chunk, cfg Config, quantizer, passArg int, statsPath string, cpus []int) error {
	srcCmd, err := cfg.Provider.Command(cfg.VideoPath, cfg.ScratchDir, c, cfg.Info)
	if err != nil {
		return err
	}

	encArgv := cfg.Encoder.BuildArgv(encoder.BuildOptions{
		Quantizer:  &quantizer,
		UserArgs:   encoder.StripQuantizerFlag(c.Argv, cfg.Encoder.QuantizerFlagName()),
		PixFormat:  cfg.Info.PixFormat,
		OutputPath: c.Segment,
		Pass:       passArg,
		StatsPath:  statsPath,
	})
	encCmd := exec.Command(encArgv[0], encArgv[1:]...)

	pipe, err := srcCmd.StdoutPipe()
	if err != nil {
		return drerrors.NewIOError("open source provider stdout pipe", err)
	}
	encCmd.Stdin = pipe

	if err := srcCmd.Start(); err != nil {
		return drerrors.WrapExecError(drerrors.KindPlan, "source provider", err, "")
	}
	if err := encCmd.Start(); err != nil {
		_ = srcCmd.Process.Kill()
		return drerrors.WrapExecError(drerrors.KindEncode, cfg.Encoder.Name(), err, "")
	}
	if cpus != nil {
		_ = affinity.Apply(encCmd.Process.Pid, cpus)
	}

	done := make(chan error, 1)
	go func() { done <- waitPipeline(srcCmd, encCmd) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = srcCmd.Process.Kill()
		_ = encCmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}

func waitPipeline(srcCmd, encCmd *exec.Cmd) error {
	srcErr := srcCmd.Wait()
	encErr := encCmd.Wait()
	if encErr != nil {
		return drerrors.WrapExecError(drerrors.KindEncode, encCmd.Path, encErr, "")
	}
	if srcErr != nil {
		return drerrors.WrapExecError(drerrors.KindPlan, srcCmd.Path, srcErr, "")
	}
	return nil
}

// searchQuantizer runs the Target-Quality Controller's bounded probe loop
// for one chunk, probe-encoding at candidate quantizers and scoring each
// against the chunk's own frames with VMAF. The returned ProbeOutcome
// summarizes the finished search for reporting.
func searchQuantizer(c chunk.Chunk, cfg Config) (int, worker.ProbeOutcome, error) {
	state := tq.NewState(cfg.TQ.Target, cfg.TQ.QMin, cfg.TQ.QMax)

	probeFn := func(quantizer int) (float64, error) {
		return probeAndScore(c, cfg, quantizer)
	}

	quant, err := tq.Search(probeFn, state, cfg.TQ)
	if err != nil {
		return 0, worker.ProbeOutcome{}, err
	}

	score := quant2score(state, quant)
	outcome := worker.ProbeOutcome{
		ChunkIndex: c.Index,
		Quantizer:  quant,
		Score:      score,
		Steps:      len(state.Probes),
		Converged:  tq.Converged(score, cfg.TQ.Target, cfg.TQ.Tolerance),
	}
	return quant, outcome, nil
}

// quant2score looks up the probe score state recorded for quantizer,
// matching tq.Search's own final selection (tq.State.BestProbe).
func quant2score(state *tq.State, quantizer int) float64 {
	for _, p := range state.Probes {
		if p.Quantizer == quantizer {
			return p.Score
		}
	}
	return 0
}

// probeAndScore extracts this chunk's probe input once per call (fast
// mode decimates frames; slow mode uses the full chunk), probe-encodes it
// at quantizer, decodes the result back to a comparable raw stream, and
// scores it against a freshly extracted reference clip with VMAF. Probe
// files live under a per-chunk scratch subdirectory deleted when scoring
// finishes.
func probeAndScore(c chunk.Chunk, cfg Config, quantizer int) (float64, error) {
	probeDir := probeScratchDir(cfg.ScratchDir, c.Index)
	if err := os.MkdirAll(probeDir, 0755); err != nil {
		return 0, drerrors.NewIOError("create probe scratch directory", err)
	}
	defer os.RemoveAll(probeDir)

	referencePath := probeDir + "/reference.y4m"
	if err := extractProbeReference(cfg.VideoPath, c, cfg.Info, cfg.TQ, referencePath); err != nil {
		return 0, err
	}

	encodedPath := probeDir + "/probe." + chunk.SegmentExtension(cfg.Encoder.Name())
	if err := encodeProbe(referencePath, cfg.Encoder, quantizer, cfg.Info.PixFormat, encodedPath); err != nil {
		return 0, err
	}

	score, err := scoreProbe(referencePath, encodedPath)
	if err != nil {
		return 0, drerrors.NewProbeFailureError(fmt.Sprintf("chunk %d quantizer %d", c.Index, quantizer), err)
	}
	return score, nil
}

func probeScratchDir(scratchDir string, index int) string {
	return fmt.Sprintf("%s/probe/%d", scratchDir, index)
}

func encodeProbe(referencePath string, enc encoder.Adapter, quantizer int, pixFormat, outPath string) error {
	argv := enc.BuildArgv(encoder.BuildOptions{
		Quantizer:  &quantizer,
		PixFormat:  pixFormat,
		OutputPath: outPath,
	})
	cmd := exec.Command(argv[0], argv[1:]...)

	in, err := os.Open(referencePath)
	if err != nil {
		return drerrors.NewIOError("open probe reference", err)
	}
	defer in.Close()
	cmd.Stdin = in

	if err := cmd.Run(); err != nil {
		return drerrors.WrapExecError(drerrors.KindProbeFailure, enc.Name(), err, "")
	}
	return nil
}

func scoreProbe(referencePath, encodedPath string) (float64, error) {
	return vmaf.Score(vmaf.Options{Reference: referencePath, Distorted: encodedPath})
}
