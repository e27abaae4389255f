// Package config holds the resolved configuration for one av1an run,
// assembled from CLI flags and an optional YAML overlay.
package config

import (
	"fmt"
	"strings"
)

// Encoder identifies one of the six supported encoder adapters.
type Encoder string

const (
	EncoderAom    Encoder = "aom"
	EncoderRav1e  Encoder = "rav1e"
	EncoderSvtAv1 Encoder = "svt-av1"
	EncoderVpx    Encoder = "vpx"
	EncoderX265   Encoder = "x265"
	EncoderX264   Encoder = "x264"
)

// ParseEncoder parses a string into an Encoder.
func ParseEncoder(s string) (Encoder, error) {
	switch strings.ToLower(s) {
	case "aom":
		return EncoderAom, nil
	case "rav1e":
		return EncoderRav1e, nil
	case "svt-av1", "svtav1":
		return EncoderSvtAv1, nil
	case "vpx":
		return EncoderVpx, nil
	case "x265":
		return EncoderX265, nil
	case "x264":
		return EncoderX264, nil
	default:
		return "", fmt.Errorf("%w: %q, valid options: aom, rav1e, svt-av1, vpx, x265, x264", ErrInvalidEncoder, s)
	}
}

// ChunkMethod identifies the user-facing chunk-source method, as named on
// the CLI. It is distinct from chunk.SourceAccess: "ffms2" and "lsmash"
// both select the indexed provider, differing only in which external
// indexer context.rs historically named.
type ChunkMethod string

const (
	ChunkMethodHybrid ChunkMethod = "hybrid"
	ChunkMethodSelect ChunkMethod = "select"
	ChunkMethodFFMS2  ChunkMethod = "ffms2"
	ChunkMethodLSMASH ChunkMethod = "lsmash"
)

// ParseChunkMethod parses a string into a ChunkMethod.
func ParseChunkMethod(s string) (ChunkMethod, error) {
	switch strings.ToLower(s) {
	case "hybrid":
		return ChunkMethodHybrid, nil
	case "select":
		return ChunkMethodSelect, nil
	case "ffms2":
		return ChunkMethodFFMS2, nil
	case "lsmash":
		return ChunkMethodLSMASH, nil
	default:
		return "", fmt.Errorf("%w: %q, valid options: hybrid, select, ffms2, lsmash", ErrInvalidChunkMethod, s)
	}
}

// ScenecutMethod selects the scene-cut detector's analysis speed.
type ScenecutMethod string

const (
	ScenecutFast     ScenecutMethod = "fast"
	ScenecutStandard ScenecutMethod = "standard"
)

// ParseScenecutMethod parses a string into a ScenecutMethod.
func ParseScenecutMethod(s string) (ScenecutMethod, error) {
	switch strings.ToLower(s) {
	case "fast":
		return ScenecutFast, nil
	case "standard":
		return ScenecutStandard, nil
	default:
		return "", fmt.Errorf("%w: %q, valid options: fast, standard", ErrInvalidScenecutMethod, s)
	}
}

// ConcatMethod selects how encoded segments are joined into the final
// container.
type ConcatMethod string

const (
	ConcatFFmpeg   ConcatMethod = "ffmpeg"
	ConcatMKVMerge ConcatMethod = "mkvmerge"
)

// ParseConcatMethod parses a string into a ConcatMethod.
func ParseConcatMethod(s string) (ConcatMethod, error) {
	switch strings.ToLower(s) {
	case "ffmpeg":
		return ConcatFFmpeg, nil
	case "mkvmerge":
		return ConcatMKVMerge, nil
	default:
		return "", fmt.Errorf("%w: %q, valid options: ffmpeg, mkvmerge", ErrInvalidConcatMethod, s)
	}
}

// ChunkOrder selects the order in which planned chunks are handed to the
// worker pool. Supplemented from context.rs's ChunkOrdering; §4.6 only
// requires execution to be order-independent, so any of these is sound.
type ChunkOrder string

const (
	ChunkOrderSequential    ChunkOrder = "sequential"
	ChunkOrderLongestFirst  ChunkOrder = "longest-first"
	ChunkOrderShortestFirst ChunkOrder = "shortest-first"
	ChunkOrderRandom        ChunkOrder = "random"
)

// ParseChunkOrder parses a string into a ChunkOrder.
func ParseChunkOrder(s string) (ChunkOrder, error) {
	switch strings.ToLower(s) {
	case "sequential":
		return ChunkOrderSequential, nil
	case "longest-first":
		return ChunkOrderLongestFirst, nil
	case "shortest-first":
		return ChunkOrderShortestFirst, nil
	case "random":
		return ChunkOrderRandom, nil
	default:
		return "", fmt.Errorf("%w: %q, valid options: sequential, longest-first, shortest-first, random", ErrInvalidChunkOrder, s)
	}
}

const (
	// DefaultExtraSplit disables extra-split post-processing when unset (0).
	DefaultExtraSplit = 0

	// DefaultRetries is the number of times a worker retries a failed chunk
	// before the job fails, per §7's EncodeError policy and Open Question (b).
	DefaultRetries = 3

	// DefaultVMAFTolerance is the default acceptance band around the target
	// VMAF score for the Target-Quality Controller.
	DefaultVMAFTolerance = 1.0

	// DefaultProbeSteps bounds the number of probe-encode iterations per
	// chunk in the Target-Quality Controller, per §4.7 step 4.
	DefaultProbeSteps = 5

	// DefaultMinQuantizer and DefaultMaxQuantizer bound Target-Quality's
	// search range when the user does not narrow it; the true legal range
	// comes from the chosen encoder adapter's LegalQuantizerRange.
	DefaultMinQuantizer = 0
	DefaultMaxQuantizer = 63
)

// Config holds the resolved settings for a single av1an invocation,
// assembled from CLI flags (primary) and an optional YAML overlay (§6).
type Config struct {
	Input  string
	Output string

	Encoder        Encoder
	EncoderArgs    string
	PixFormat      string
	ChunkMethod    ChunkMethod
	ScenecutMethod ScenecutMethod
	ScenesPath     string
	SceneCutOnly   bool
	ExtraSplit     int
	Workers        int
	ConcatMethod   ConcatMethod
	ChunkOrder     ChunkOrder

	TargetQuality   bool
	TargetVMAF      float64
	VMAFTolerance   float64
	ProbeSlow       bool
	ProbeSteps      int
	MinQuantizer    int
	MaxQuantizer    int
	ScoreFinalVMAF  bool

	TempDir         string
	LogFile         string
	Overwrite       bool
	ThreadAffinity  int
	Retries         int
}

// NewConfig returns a Config populated with this module's defaults. CLI
// flag binding overwrites fields the user supplied explicitly.
func NewConfig() *Config {
	return &Config{
		Encoder:        EncoderSvtAv1,
		ChunkMethod:    ChunkMethodHybrid,
		ScenecutMethod: ScenecutStandard,
		Workers:        0, // 0 means derive from CPU count
		ConcatMethod:   ConcatFFmpeg,
		ChunkOrder:     ChunkOrderSequential,
		VMAFTolerance:  DefaultVMAFTolerance,
		ProbeSteps:     DefaultProbeSteps,
		MinQuantizer:   DefaultMinQuantizer,
		MaxQuantizer:   DefaultMaxQuantizer,
		ExtraSplit:     DefaultExtraSplit,
		Retries:        DefaultRetries,
	}
}

// Validate checks the configuration for contradictions and missing
// required fields, per §7's ConfigError class.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("%w: -i is required", ErrMissingRequired)
	}
	if c.Output == "" && !c.SceneCutOnly {
		return fmt.Errorf("%w: -o is required unless --sc-only", ErrMissingRequired)
	}
	if c.MinQuantizer < 0 || c.MaxQuantizer > 255 || c.MinQuantizer > c.MaxQuantizer {
		return fmt.Errorf("%w: min-q=%d max-q=%d", ErrInvalidQuantizerRange, c.MinQuantizer, c.MaxQuantizer)
	}
	if c.TargetQuality && (c.TargetVMAF <= 0 || c.TargetVMAF > 100) {
		return fmt.Errorf("%w: target-quality=%v", ErrInvalidTargetVMAF, c.TargetVMAF)
	}
	if c.ExtraSplit < 0 {
		return fmt.Errorf("%w: extra-split must be >= 0, got %d", ErrInvalidExtraSplit, c.ExtraSplit)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidWorkers, c.Workers)
	}
	return nil
}
