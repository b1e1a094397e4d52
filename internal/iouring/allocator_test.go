package iouring

import "testing"

func TestAllocatorAllocFreeRoundTrip(t *testing.T) {
	a := NewAllocator(4, 16)
	if a.Available() != 4 {
		t.Fatalf("Available() = %d, want 4", a.Available())
	}

	idx, ok := a.Alloc("1.1.1.1", 443)
	if !ok {
		t.Fatalf("Alloc failed with free entries available")
	}
	if a.Available() != 3 {
		t.Fatalf("Available() after one alloc = %d, want 3", a.Available())
	}

	a.MarkSubmitted(idx)
	if got := a.Snapshot(idx).State; got != StateSubmitted {
		t.Fatalf("state after MarkSubmitted = %v, want SUBMITTED", got)
	}

	a.Complete(idx, 0)
	snap := a.Snapshot(idx)
	if snap.State != StateCompleted || snap.Result != 0 {
		t.Fatalf("unexpected snapshot after Complete: %+v", snap)
	}

	a.Free(idx)
	if a.Available() != 4 {
		t.Fatalf("Available() after Free = %d, want 4", a.Available())
	}
}

func TestAllocatorExhaustion(t *testing.T) {
	a := NewAllocator(2, 8)
	if _, ok := a.Alloc("1.1.1.1", 443); !ok {
		t.Fatalf("first alloc should succeed")
	}
	if _, ok := a.Alloc("1.1.1.2", 443); !ok {
		t.Fatalf("second alloc should succeed")
	}
	if _, ok := a.Alloc("1.1.1.3", 443); ok {
		t.Fatalf("third alloc should fail: pool of 2 is exhausted")
	}
}

func TestAllocatorRecyclesFreedSlot(t *testing.T) {
	a := NewAllocator(1, 8)
	idx, ok := a.Alloc("1.1.1.1", 443)
	if !ok {
		t.Fatalf("alloc should succeed")
	}
	a.Complete(idx, 1)
	a.Free(idx)

	idx2, ok := a.Alloc("2.2.2.2", 443)
	if !ok {
		t.Fatalf("alloc after free should succeed")
	}
	if idx2 != idx {
		t.Fatalf("expected the freed slot %d to be reused, got %d", idx, idx2)
	}
	if a.Snapshot(idx2).IP != "2.2.2.2" {
		t.Fatalf("reused slot did not update IP")
	}
}
