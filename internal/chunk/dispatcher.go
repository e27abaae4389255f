package chunk

import "sync"

// Dispatcher hands out chunks to workers, preferring chunks adjacent to
// already-completed ones. The preference only changes dispatch order: each
// chunk's Target-Quality search still starts from the full [Qmin, Qmax]
// range and does not use a neighbor's result. Before any chunk
// has completed, chunks are offered in the order the caller supplied them
// (the pool's --chunk-order strategy), not by index.
type Dispatcher struct {
	mu        sync.Mutex
	order     []int // indices, in caller-supplied dispatch-preference order
	ready     map[int]Chunk
	completed map[int]bool
}

// NewDispatcher creates a Dispatcher over chunks, all initially unstarted.
func NewDispatcher(chunks []Chunk) *Dispatcher {
	ready := make(map[int]Chunk, len(chunks))
	order := make([]int, len(chunks))
	for i, ch := range chunks {
		ready[ch.Index] = ch
		order[i] = ch.Index
	}
	return &Dispatcher{ready: ready, order: order, completed: make(map[int]bool)}
}

// Next returns the next chunk to dispatch: the one nearest (by index) to
// any completed chunk, or, if nothing has completed yet, the next chunk in
// the caller's dispatch order. Returns false once every chunk has been
// dispatched.
func (d *Dispatcher) Next() (Chunk, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.ready) == 0 {
		return Chunk{}, false
	}

	if len(d.completed) == 0 {
		return d.pickNext(), true
	}

	var best Chunk
	bestDist := -1
	for _, ch := range d.ready {
		dist := d.minDistToCompleted(ch.Index)
		if bestDist < 0 || dist < bestDist || (dist == bestDist && ch.Index < best.Index) {
			best = ch
			bestDist = dist
		}
	}

	delete(d.ready, best.Index)
	return best, true
}

// MarkComplete records chunk idx as completed.
func (d *Dispatcher) MarkComplete(idx int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completed[idx] = true
}

// Remaining returns the count of chunks not yet dispatched.
func (d *Dispatcher) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ready)
}

func (d *Dispatcher) pickNext() Chunk {
	for _, idx := range d.order {
		if ch, ok := d.ready[idx]; ok {
			delete(d.ready, idx)
			return ch
		}
	}
	return Chunk{}
}

func (d *Dispatcher) minDistToCompleted(idx int) int {
	minDist := -1
	for c := range d.completed {
		dist := idx - c
		if dist < 0 {
			dist = -dist
		}
		if minDist < 0 || dist < minDist {
			minDist = dist
		}
	}
	return minDist
}
