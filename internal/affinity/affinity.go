// Package affinity pins worker child processes to contiguous, rotating CPU
// sets (§4.6) so concurrent workers do not contend on the same cores.
package affinity

import (
	"runtime"
	"sync"

	"golang.org/x/sys/unix"

	drerrors "github.com/av1an/av1an/internal/errors"
)

// Allocator hands out contiguous CPU ranges of maskSize CPUs each, rotating
// through the machine's logical CPUs. A range that runs past the last CPU
// wraps to CPU 0, so it can overlap ranges handed out before it.
type Allocator struct {
	mu       sync.Mutex
	numCPU   int
	maskSize int
	next     int
}

// NewAllocator builds an Allocator sized by the set_thread_affinity setting. A
// maskSize <= 0 disables affinity pinning (Next returns nil).
func NewAllocator(maskSize int) *Allocator {
	numCPU := runtime.NumCPU()
	if maskSize > numCPU {
		maskSize = numCPU
	}
	return &Allocator{numCPU: numCPU, maskSize: maskSize}
}

// Next returns the next contiguous CPU range to assign to a worker, or nil
// if affinity pinning is disabled.
func (a *Allocator) Next() []int {
	if a == nil || a.maskSize <= 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	cpus := make([]int, a.maskSize)
	for i := range cpus {
		cpus[i] = (a.next + i) % a.numCPU
	}
	a.next = (a.next + a.maskSize) % a.numCPU
	return cpus
}

// Apply pins pid's scheduling affinity to cpus. A nil or empty cpus is a
// no-op, matching Next()'s disabled-pinning sentinel.
func Apply(pid int, cpus []int) error {
	if len(cpus) == 0 {
		return nil
	}

	var set unix.CPUSet
	set.Zero()
	for _, cpu := range cpus {
		set.Set(cpu)
	}

	if err := unix.SchedSetaffinity(pid, &set); err != nil {
		return drerrors.NewIOError("set CPU affinity", err)
	}
	return nil
}
