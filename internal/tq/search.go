package tq

import "math"

// ProbeFunc probe-encodes at the given quantizer and returns its VMAF
// score. Callers (internal/pool) are responsible for preparing the probe
// input and deleting the probe's encoded output once scored.
type ProbeFunc func(quantizer int) (float64, error)

// BinarySearch returns the integer midpoint of [min, max].
func BinarySearch(min, max int) int {
	return min + (max-min)/2
}

// Converged reports whether score is within tolerance of target.
func Converged(score, target, tolerance float64) bool {
	return math.Abs(score-target) <= tolerance
}

// NextQuantizer picks the next quantizer to probe for state: binary-search
// bracketing for the first two rounds, then linear interpolation between
// the two best-bracketing probes once both sides of Target have been
// sampled (§4.7 steps 1 and 3).
func NextQuantizer(state *State) int {
	state.Round++

	q := BinarySearch(state.SearchMin, state.SearchMax)
	if state.Round > 2 {
		if interpolated, ok := interpolate(state.Probes, state.Target); ok {
			q = interpolated
		}
	}

	q = clampInt(q, state.QMin, state.QMax)
	state.LastQuantizer = q
	return q
}

// interpolate predicts the quantizer that would score exactly target,
// linearly interpolating between the closest probe scoring at or above
// target and the closest probe scoring below it. ok is false until probes
// span both sides of target.
func interpolate(probes []Probe, target float64) (int, bool) {
	var above, below *Probe // above: score >= target, smallest margin; below: score < target, smallest margin

	for i := range probes {
		p := &probes[i]
		if p.Score >= target {
			if above == nil || p.Score < above.Score {
				above = p
			}
		} else {
			if below == nil || p.Score > below.Score {
				below = p
			}
		}
	}

	if above == nil || below == nil || above.Score == below.Score {
		return 0, false
	}

	frac := (target - above.Score) / (below.Score - above.Score)
	q := float64(above.Quantizer) + frac*float64(below.Quantizer-above.Quantizer)
	return int(math.Round(q)), true
}

// UpdateBounds narrows state's search bounds given a probe's score.
// Since VMAF decreases as quantizer increases, a score below target means
// the real answer lies at a lower quantizer; a score above target means it
// lies at a higher one. Returns true once the bounds have crossed, meaning
// no untried quantizer remains in range.
func UpdateBounds(state *State, score, target, tolerance float64) bool {
	if score < target-tolerance {
		state.SearchMax = state.LastQuantizer - 1
	} else if score > target+tolerance {
		state.SearchMin = state.LastQuantizer + 1
	}
	return state.SearchMin > state.SearchMax
}

// Search runs the bounded probe loop of §4.7: probe, check convergence,
// narrow bounds or interpolate, repeat up to cfg.MaxSteps times. It
// returns the quantizer state.BestProbe selects once the loop ends, never
// an error for exhausting steps (only for a probe itself failing).
func Search(probe ProbeFunc, state *State, cfg *Config) (int, error) {
	for step := 0; step < cfg.MaxSteps; step++ {
		q := NextQuantizer(state)
		score, err := probe(q)
		if err != nil {
			return 0, err
		}
		state.AddProbe(q, score)

		if Converged(score, cfg.Target, cfg.Tolerance) {
			break
		}
		if UpdateBounds(state, score, cfg.Target, cfg.Tolerance) {
			break
		}
	}

	best := state.BestProbe()
	if best == nil {
		return cfg.QMin, nil
	}
	return best.Quantizer, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
