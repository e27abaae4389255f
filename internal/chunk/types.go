// Package chunk holds the planning data model shared by the scene
// splitter, chunk planner, worker pool and resume store: Scenes, Chunks,
// and the on-disk resume record.
package chunk

// Scene is a non-overlapping frame range produced by the scene splitter.
// An ordered list of Scenes partitions [0, total_frames) exactly.
type Scene struct {
	StartFrame int
	EndFrame   int
}

// Frames returns the number of frames the scene covers.
func (s Scene) Frames() int { return s.EndFrame - s.StartFrame }

// SourceAccess names one of the four methods by which a chunk's frames are
// delivered to the encoder's stdin (§4.4).
type SourceAccess string

const (
	SourceAccessIndexed      SourceAccess = "indexed"
	SourceAccessPipedRange   SourceAccess = "piped-range"
	SourceAccessSelectFilter SourceAccess = "select-filter"
	SourceAccessHybrid       SourceAccess = "hybrid"
)

// Status is a chunk's runtime lifecycle state.
type Status int

const (
	StatusPending Status = iota
	StatusEncoding
	StatusDone
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusEncoding:
		return "encoding"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Overrides holds per-scene parameter overrides (zones), supplemented from
// context.rs's ZoneOptions. A zero value means "inherit the job default"
// for every field.
type Overrides struct {
	Encoder     string
	EncoderArgs string
	Passes      int
	Quantizer   *int
}

// Chunk is a contiguous frame range assigned to one worker for independent
// encoding (§3). Plan sets every field except Overrides, which it leaves
// nil, and nothing changes them afterwards. Quant is nil when the
// Target-Quality Controller picks the quantizer at encode time; Argv holds
// the user's raw encoder args, not a complete encoder command line.
type Chunk struct {
	Index   int
	Start   int
	End     int
	Access  SourceAccess
	Passes  int
	Quant   *int
	Argv    []string
	Segment string
	Status  Status

	Overrides *Overrides
}

// Frames returns the number of frames the chunk covers.
func (c Chunk) Frames() int { return c.End - c.Start }
