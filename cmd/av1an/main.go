// Package main provides the CLI entry point for av1an.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/av1an/av1an/internal/config"
	"github.com/av1an/av1an/internal/logging"
	"github.com/av1an/av1an/internal/pipeline"
	"github.com/av1an/av1an/internal/reporter"
)

const appVersion = "0.1.0"

// flags holds the raw CLI values before they are folded into a config.Config.
type flags struct {
	input         string
	output        string
	encoder       string
	videoParams   string
	pixFormat     string
	chunkMethod   string
	scMethod      string
	scenesPath    string
	scOnly        bool
	extraSplit    int
	workers       int
	concatMethod  string
	chunkOrder    string
	targetQuality float64
	probeSlow     bool
	vmaf          bool
	tempDir       string
	logFile       string
	overwrite     bool
	configPath    string
	jsonOutput    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd, _ := newRootCmdWithFlags()
	return cmd
}

// newRootCmdWithFlags builds the root command and also returns the flags
// struct its Flags() are bound to, so callers (tests, mainly) can inspect
// the parsed values directly after ParseFlags/Execute.
func newRootCmdWithFlags() (*cobra.Command, *flags) {
	var f flags

	cmd := &cobra.Command{
		Use:     "av1an",
		Short:   "Scene-aware, chunked, parallel video encoding",
		Version: appVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(cmd.Context(), cmd, &f)
		},
	}

	cmd.Flags().StringVarP(&f.input, "input", "i", "", "source video (required)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "final output path (required unless --sc-only)")
	cmd.Flags().StringVarP(&f.encoder, "encoder", "e", string(config.EncoderSvtAv1), "encoder: aom, rav1e, svt-av1, vpx, x265, x264")
	cmd.Flags().StringVarP(&f.videoParams, "video-params", "v", "", "raw encoder args, passed through")
	cmd.Flags().StringVar(&f.pixFormat, "pix-format", "", "pixel format, e.g. yuv420p")
	cmd.Flags().StringVar(&f.chunkMethod, "chunk-method", string(config.ChunkMethodHybrid), "hybrid, select, ffms2, lsmash")
	cmd.Flags().StringVar(&f.scMethod, "sc-method", string(config.ScenecutStandard), "fast, standard")
	cmd.Flags().StringVarP(&f.scenesPath, "scenes", "s", "", "read/write scenes JSON")
	cmd.Flags().BoolVar(&f.scOnly, "sc-only", false, "compute scenes, write, exit")
	cmd.Flags().IntVarP(&f.extraSplit, "extra-split", "x", config.DefaultExtraSplit, "extra-split max-frames")
	cmd.Flags().IntVarP(&f.workers, "workers", "w", 0, "worker count (0 = derive from CPU count)")
	cmd.Flags().StringVarP(&f.concatMethod, "concat", "c", string(config.ConcatFFmpeg), "ffmpeg, mkvmerge")
	cmd.Flags().StringVar(&f.chunkOrder, "chunk-order", string(config.ChunkOrderSequential), "sequential, longest-first, shortest-first, random")
	cmd.Flags().Float64Var(&f.targetQuality, "target-quality", 0, "enable the target-quality controller; value is the target VMAF")
	cmd.Flags().BoolVar(&f.probeSlow, "probe-slow", false, "probe full chunks instead of decimated frames")
	cmd.Flags().BoolVar(&f.vmaf, "vmaf", false, "score the final muxed output against the source")
	cmd.Flags().StringVar(&f.tempDir, "temp", "", "scratch directory (preserved after a successful run if set)")
	cmd.Flags().StringVar(&f.logFile, "log-file", "", "log sink directory")
	cmd.Flags().BoolVarP(&f.overwrite, "overwrite", "y", false, "overwrite an existing output file")
	cmd.Flags().StringVar(&f.configPath, "config", "", "YAML config overlay, applied before flags")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "emit NDJSON progress events instead of a terminal UI")

	cmd.AddCommand(newVersionCmd())
	return cmd, &f
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("av1an version %s\n", appVersion)
		},
	}
}

func runEncode(ctx context.Context, cmd *cobra.Command, f *flags) error {
	cfg, err := buildConfig(cmd, f)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.LogFile != "" {
		logger, err := logging.New(logging.Config{Level: slog.LevelInfo, LogDir: cfg.LogFile})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		logging.Init(logger)
		defer func() { _ = logger.Close() }()
	}

	if !cfg.Overwrite && cfg.Output != "" {
		if _, err := os.Stat(cfg.Output); err == nil {
			return fmt.Errorf("%s already exists; pass -y to overwrite", cfg.Output)
		}
	}

	rep := newReporter(f.jsonOutput)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	return pipeline.Run(runCtx, cfg, rep)
}

func newReporter(jsonOutput bool) reporter.Reporter {
	if jsonOutput {
		return reporter.NewJSONReporter()
	}
	return reporter.NewTerminalReporter()
}

// buildConfig folds a --config YAML overlay (if given) and the parsed flags
// into a config.Config. The overlay is applied first; only flags the user
// actually set on the command line are then copied over it, so an
// overlaid value survives when its flag was left at its default.
func buildConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	cfg := config.NewConfig()

	if f.configPath != "" {
		if err := cfg.ApplyYAMLOverlay(f.configPath); err != nil {
			return nil, err
		}
	}

	changed := cmd.Flags().Changed

	// -i and -o are always required, overlay or not, so apply unconditionally.
	cfg.Input = f.input
	cfg.Output = f.output

	if changed("video-params") {
		cfg.EncoderArgs = f.videoParams
	}
	if changed("pix-format") {
		cfg.PixFormat = f.pixFormat
	}
	if changed("scenes") {
		cfg.ScenesPath = f.scenesPath
	}
	if changed("sc-only") {
		cfg.SceneCutOnly = f.scOnly
	}
	if changed("extra-split") {
		cfg.ExtraSplit = f.extraSplit
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	if changed("target-quality") {
		cfg.TargetQuality = f.targetQuality > 0
		cfg.TargetVMAF = f.targetQuality
	}
	if changed("probe-slow") {
		cfg.ProbeSlow = f.probeSlow
	}
	if changed("vmaf") {
		cfg.ScoreFinalVMAF = f.vmaf
	}
	if changed("temp") {
		cfg.TempDir = f.tempDir
	}
	if changed("log-file") {
		cfg.LogFile = f.logFile
	}
	if changed("overwrite") {
		cfg.Overwrite = f.overwrite
	}

	if changed("encoder") {
		enc, err := config.ParseEncoder(f.encoder)
		if err != nil {
			return nil, err
		}
		cfg.Encoder = enc
	}
	if changed("chunk-method") {
		m, err := config.ParseChunkMethod(f.chunkMethod)
		if err != nil {
			return nil, err
		}
		cfg.ChunkMethod = m
	}
	if changed("sc-method") {
		m, err := config.ParseScenecutMethod(f.scMethod)
		if err != nil {
			return nil, err
		}
		cfg.ScenecutMethod = m
	}
	if changed("concat") {
		m, err := config.ParseConcatMethod(f.concatMethod)
		if err != nil {
			return nil, err
		}
		cfg.ConcatMethod = m
	}
	if changed("chunk-order") {
		order, err := config.ParseChunkOrder(f.chunkOrder)
		if err != nil {
			return nil, err
		}
		cfg.ChunkOrder = order
	}

	// Leave cfg.TempDir empty when --temp was not given: pipeline.Run treats
	// an empty TempDir as "caller did not ask to keep the scratch directory"
	// and both derives a default location and removes it on success.
	if cfg.TempDir != "" {
		if abs, err := filepath.Abs(cfg.TempDir); err == nil {
			cfg.TempDir = abs
		}
	}

	return cfg, nil
}
