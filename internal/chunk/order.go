package chunk

import (
	"math/rand"
	"sort"
)

// Order names a dispatch-order strategy, supplemented from context.rs's
// ChunkOrdering (§9: "order-independent execution is allowed", so any
// permutation of the planned chunk list is a sound dispatch order).
type Order string

const (
	OrderSequential    Order = "sequential"
	OrderLongestFirst  Order = "longest-first"
	OrderShortestFirst Order = "shortest-first"
	OrderRandom        Order = "random"
)

// Sort returns a copy of chunks arranged in dispatch order per o. Index
// fields are untouched — Sort only changes the order workers are offered
// chunks in, preserving invariant 1 of §8 (the assigned index still
// reflects planning order).
func Sort(chunks []Chunk, o Order, rng *rand.Rand) []Chunk {
	out := make([]Chunk, len(chunks))
	copy(out, chunks)

	switch o {
	case OrderLongestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Frames() > out[j].Frames() })
	case OrderShortestFirst:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Frames() < out[j].Frames() })
	case OrderRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(1))
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	case OrderSequential:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	}
	return out
}
