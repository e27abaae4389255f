package chunk

import "fmt"

// SegmentExtension returns the container/elementary-stream extension used
// for a chunk's segment file, keyed by encoder name (ivf for the AV1/VP9
// family, elementary streams for the HEVC/H.264 family) per §4.3.
func SegmentExtension(encoder string) string {
	switch encoder {
	case "aom", "rav1e", "svt-av1", "vpx":
		return "ivf"
	case "x265":
		return "h265"
	case "x264":
		return "h264"
	default:
		return "bin"
	}
}

// PlanOptions configures chunk assembly from a scene list.
type PlanOptions struct {
	Encoder        string
	Access         SourceAccess
	Passes         int
	Quantizer      *int // user-supplied quantizer; nil when target-quality decides it
	ScratchDir     string
	EncoderArgv    func(quantizer *int) []string
}

// Plan folds a scene list into a dense, ordered Chunk list (§4.3). Each
// chunk's segment path is "<ScratchDir>/split/<index>.<ext>". When opts.
// Quantizer is nil, chunks are left with no quantizer for the
// Target-Quality Controller to assign later; otherwise every chunk inherits
// opts.Quantizer.
func Plan(scenes []Scene, opts PlanOptions) []Chunk {
	ext := SegmentExtension(opts.Encoder)
	chunks := make([]Chunk, len(scenes))

	for i, s := range scenes {
		var quant *int
		if opts.Quantizer != nil {
			q := *opts.Quantizer
			quant = &q
		}

		var argv []string
		if opts.EncoderArgv != nil {
			argv = opts.EncoderArgv(quant)
		}

		chunks[i] = Chunk{
			Index:   i,
			Start:   s.StartFrame,
			End:     s.EndFrame,
			Access:  opts.Access,
			Passes:  opts.Passes,
			Quant:   quant,
			Argv:    argv,
			Segment: fmt.Sprintf("%s/split/%d.%s", opts.ScratchDir, i, ext),
			Status:  StatusPending,
		}
	}
	return chunks
}
