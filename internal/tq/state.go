// Package tq implements the Target-Quality Controller (§4.7): a per-chunk
// quantizer search that probe-encodes at a handful of candidate quantizers,
// scores each probe against the source with VMAF, and returns the
// quantizer whose score is nearest to (but not below) the configured
// target.
package tq

// Probe is one probe-encode attempt at a specific quantizer.
type Probe struct {
	Quantizer int
	Score     float64
}

// State tracks the iterative quantizer search for a single chunk. Bounds
// narrow as probes rule out sub-ranges; QMin/QMax are the hard limits
// SearchMin/SearchMax can never cross.
type State struct {
	Probes []Probe

	SearchMin int
	SearchMax int
	QMin      int
	QMax      int

	Round  int
	Target float64

	LastQuantizer int
}

// NewState creates a fresh search state bounded by [qmin, qmax].
func NewState(target float64, qmin, qmax int) *State {
	return &State{
		Probes:    make([]Probe, 0, 6),
		SearchMin: qmin,
		SearchMax: qmax,
		QMin:      qmin,
		QMax:      qmax,
		Target:    target,
	}
}

// AddProbe records a completed probe result.
func (s *State) AddProbe(quantizer int, score float64) {
	s.Probes = append(s.Probes, Probe{Quantizer: quantizer, Score: score})
}

// BestProbe implements §4.7 step 4's selection rule: among probes scoring
// at or above Target, the one with the largest quantizer (highest
// quantizer that still meets quality, i.e. smallest output for an
// acceptable score); if none scored above Target, the lowest-quantizer
// probe tried, the safest quality fallback.
func (s *State) BestProbe() *Probe {
	if len(s.Probes) == 0 {
		return nil
	}

	var best *Probe
	for i := range s.Probes {
		p := &s.Probes[i]
		if p.Score < s.Target {
			continue
		}
		if best == nil || p.Quantizer > best.Quantizer {
			best = p
		}
	}
	if best != nil {
		return best
	}

	// Every probe scored below target: fall back to the safest quality
	// tried, the probe with the lowest quantizer (closest to QMin).
	best = &s.Probes[0]
	for i := 1; i < len(s.Probes); i++ {
		if s.Probes[i].Quantizer < best.Quantizer {
			best = &s.Probes[i]
		}
	}
	return best
}
