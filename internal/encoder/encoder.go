// Package encoder implements the Encoder Adapter (§4.5): a closed set of
// six variants, each knowing how to build an encoder's argv, read a frame
// count out of its progress output, and report its quantizer flag and
// legal range.
package encoder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	drerrors "github.com/av1an/av1an/internal/errors"
)

// Adapter is the capability surface every encoder variant implements.
type Adapter interface {
	// Name is the CLI-facing encoder identifier (aom, rav1e, svt-av1, vpx, x265, x264).
	Name() string
	// BuildArgv constructs a full argv (binary name included) for one encode pass.
	BuildArgv(opts BuildOptions) []string
	// ParseProgress extracts a frame number from one line of the encoder's
	// stderr, if present. Parse failures are never fatal (§4.5).
	ParseProgress(line string) (frame int, ok bool)
	// QuantizerFlagName is the CLI flag this encoder uses for its quantizer.
	QuantizerFlagName() string
	// SupportsTwoPass reports whether this encoder can run a stats-file pass 1
	// followed by a pass 2 that reads it.
	SupportsTwoPass() bool
	// PixelFormatArg renders a pixel format as this encoder's argv fragment.
	PixelFormatArg(format string) []string
	// LegalQuantizerRange is the encoder's valid quantizer bound, inclusive.
	LegalQuantizerRange() (min, max int)
}

// BuildOptions carries everything BuildArgv needs, deliberately decoupled
// from internal/chunk to avoid an import cycle (chunk.Plan's EncoderArgv
// hook only supplies the user's raw args; internal/pool fills these fields
// from the chunk when it encodes).
type BuildOptions struct {
	Quantizer   *int     // nil when target-quality has not yet decided one
	UserArgs    []string // raw -v "..." tokens, already split
	PixFormat   string
	OutputPath  string
	Pass        int    // 1 or 2; 0 means single-pass
	StatsPath   string // pass-1 stats file; required for two-pass passes
}

// New resolves an encoder name into its Adapter.
func New(name string) (Adapter, error) {
	switch name {
	case "aom":
		return aomAdapter{}, nil
	case "rav1e":
		return rav1eAdapter{}, nil
	case "svt-av1":
		return svtAv1Adapter{}, nil
	case "vpx":
		return vpxAdapter{}, nil
	case "x265":
		return x265Adapter{}, nil
	case "x264":
		return x264Adapter{}, nil
	default:
		return nil, drerrors.NewConfigError(fmt.Sprintf("unknown encoder %q", name))
	}
}

// StripQuantizerFlag removes flagName and its value from a raw user
// argument list. Per §4.5, when target-quality is enabled and the user's
// raw args already carry a quantizer flag (e.g. --crf 0), the controller
// must remove it before inserting the chosen quantizer.
func StripQuantizerFlag(args []string, flagName string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == flagName:
			i++ // also drop the value token that follows
		case strings.HasPrefix(arg, flagName+"="):
			// value is embedded, nothing further to skip
		default:
			out = append(out, arg)
		}
	}
	return out
}

// ExtractQuantizerFlag scans a raw user argument list for flagName and
// returns its integer value, if present (e.g. "--crf 30" or "--crf=30").
// Used by the chunk planner to give every chunk a quantizer up front when
// target-quality is disabled (§4.3: "otherwise the chunk inherits the
// user's quantizer argument").
func ExtractQuantizerFlag(args []string, flagName string) (int, bool) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == flagName:
			if i+1 >= len(args) {
				return 0, false
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return 0, false
			}
			return n, true
		case strings.HasPrefix(arg, flagName+"="):
			n, err := strconv.Atoi(strings.TrimPrefix(arg, flagName+"="))
			if err != nil {
				return 0, false
			}
			return n, true
		}
	}
	return 0, false
}

var frameEqualsRegex = regexp.MustCompile(`[Ff]rame[:=]?\s*(\d+)`)

// parseFrameEquals is the common stderr shape most of these encoders share
// ("frame= 120 ..." or "Frame: 120 ...").
func parseFrameEquals(line string) (int, bool) {
	m := frameEqualsRegex.FindStringSubmatch(line)
	if len(m) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
