package affinity

import "testing"

func TestNextRotatesContiguousRanges(t *testing.T) {
	a := &Allocator{numCPU: 8, maskSize: 2}
	first := a.Next()
	second := a.Next()
	third := a.Next()

	if len(first) != 2 || first[0] != 0 || first[1] != 1 {
		t.Errorf("first = %v, want [0 1]", first)
	}
	if len(second) != 2 || second[0] != 2 || second[1] != 3 {
		t.Errorf("second = %v, want [2 3]", second)
	}
	if len(third) != 2 || third[0] != 4 || third[1] != 5 {
		t.Errorf("third = %v, want [4 5]", third)
	}
}

func TestNextWrapsAround(t *testing.T) {
	a := &Allocator{numCPU: 4, maskSize: 3}
	a.Next() // consumes 0,1,2
	second := a.Next()
	if len(second) != 3 || second[0] != 3 || second[1] != 0 || second[2] != 1 {
		t.Errorf("second = %v, want wraparound [3 0 1]", second)
	}
}

func TestNextDisabled(t *testing.T) {
	a := NewAllocator(0)
	if got := a.Next(); got != nil {
		t.Errorf("Next() with maskSize 0 = %v, want nil", got)
	}
}

func TestNewAllocatorClampsToNumCPU(t *testing.T) {
	a := NewAllocator(1 << 20)
	if a.maskSize > a.numCPU {
		t.Errorf("maskSize %d exceeds numCPU %d", a.maskSize, a.numCPU)
	}
}

func TestApplyNoopOnEmpty(t *testing.T) {
	if err := Apply(0, nil); err != nil {
		t.Errorf("Apply(0, nil) error = %v, want nil (no-op)", err)
	}
}
