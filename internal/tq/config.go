package tq

import (
	"fmt"

	"github.com/av1an/av1an/internal/config"
)

// ProbeMode selects how much of a chunk a probe encode covers (§4.7).
type ProbeMode int

const (
	// ProbeFast probe-encodes a decimated, evenly spaced subset of the
	// chunk's frames (every Kth frame).
	ProbeFast ProbeMode = iota
	// ProbeSlow probe-encodes the chunk's full frame range.
	ProbeSlow
)

// Config holds target-quality search parameters shared across every
// chunk's search; only Target/Tolerance/QMin/QMax/MaxSteps vary the search itself,
// Mode and Decimation only affect how probe input is prepared.
type Config struct {
	Target    float64
	Tolerance float64
	QMin      int
	QMax      int
	MaxSteps  int

	Mode       ProbeMode
	Decimation int // for ProbeFast, keep every Decimation-th frame
}

// DefaultDecimation keeps every 4th frame of a chunk for a fast probe,
// trading probe fidelity for roughly 4x less probe-encode work.
const DefaultDecimation = 4

// DefaultConfig returns a Config seeded from the driver's configuration
// defaults (the VMAF tolerance, probe step count and quantizer bounds).
func DefaultConfig() *Config {
	return &Config{
		Target:     0,
		Tolerance:  config.DefaultVMAFTolerance,
		QMin:       config.DefaultMinQuantizer,
		QMax:       config.DefaultMaxQuantizer,
		MaxSteps:   config.DefaultProbeSteps,
		Mode:       ProbeFast,
		Decimation: DefaultDecimation,
	}
}

// FromAppConfig builds a target-quality Config from the driver's resolved
// application configuration and an encoder's legal quantizer range.
func FromAppConfig(c *config.Config, qmin, qmax int) (*Config, error) {
	if c.TargetVMAF <= 0 || c.TargetVMAF > 100 {
		return nil, fmt.Errorf("invalid target VMAF %v", c.TargetVMAF)
	}

	mode := ProbeFast
	if c.ProbeSlow {
		mode = ProbeSlow
	}

	return &Config{
		Target:     c.TargetVMAF,
		Tolerance:  c.VMAFTolerance,
		QMin:       qmin,
		QMax:       qmax,
		MaxSteps:   c.ProbeSteps,
		Mode:       mode,
		Decimation: DefaultDecimation,
	}, nil
}
