// Package iouring implements the optional batch scanner (spec.md §4.7): on
// Linux it drives github.com/pawelgaczynski/giouring directly against the
// kernel's io_uring interface to submit many connect operations without one
// goroutine+syscall per probe. Only TCP-connect scans are implemented; there
// is no HTTP-scan sub-mode that sends a request or reads a response.
// On any other GOOS the capability check always reports false and the
// io_uring mode fails with a capability error.
//
// The ring allocator here is platform-independent and grounded on the
// jtcressy-tailscale io_uring port's request-slot reuse pattern (recvReqs/
// sendReqs fixed arrays with a free-index channel): this package generalizes
// that fixed array into a free-list keyed by ring capacity so entries are
// recycled in O(1) instead of being sized to a hardcoded constant.
package iouring

import (
	"sync"
)

// State is where an Entry sits in its lifecycle.
type State int

const (
	StateFree State = iota
	StateAllocated
	StateSubmitted
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateFree:
		return "FREE"
	case StateAllocated:
		return "ALLOCATED"
	case StateSubmitted:
		return "SUBMITTED"
	case StateCompleted:
		return "COMPLETED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one in-flight operation's bookkeeping slot: a user_data tag, the
// candidate address it targets, its buffer slice, and its lifecycle state.
type Entry struct {
	ID     uint64
	IP     string
	Port   int
	Buffer []byte
	State  State
	Result int32 // raw CQE res: >=0 success/bytes, <0 -errno
}

// Allocator hands out a fixed pool of Entry slots, recycling freed ones via
// a free list so allocation never grows the pool after construction. One
// entry tracks one in-flight connect; the Scanner sizes its ring to twice the
// entry count, since each connect may occupy two SQEs (itself plus its linked
// timeout).
type Allocator struct {
	mu      sync.Mutex
	entries []Entry
	free    []int // indices into entries, LIFO
	bufSize int
}

// NewAllocator builds a pool of n entries, each with a bufSize-byte buffer.
func NewAllocator(n, bufSize int) *Allocator {
	a := &Allocator{
		entries: make([]Entry, n),
		free:    make([]int, n),
		bufSize: bufSize,
	}
	for i := range a.entries {
		a.entries[i].Buffer = make([]byte, bufSize)
		a.free[i] = n - 1 - i // fill free list high-to-low so index 0 pops first
	}
	return a
}

// Cap returns the pool size (the number of connects that can be in flight).
func (a *Allocator) Cap() int { return len(a.entries) }

// Alloc reserves a free entry for ip:port, returning its index and ok=false
// if the pool is exhausted (caller should wait for completions and retry).
func (a *Allocator) Alloc(ip string, port int) (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.free) == 0 {
		return 0, false
	}
	idx := a.free[len(a.free)-1]
	a.free = a.free[:len(a.free)-1]
	e := &a.entries[idx]
	e.ID = uint64(idx)
	e.IP = ip
	e.Port = port
	e.State = StateAllocated
	e.Result = 0
	return idx, true
}

// MarkSubmitted transitions idx from ALLOCATED to SUBMITTED.
func (a *Allocator) MarkSubmitted(idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[idx].State = StateSubmitted
}

// Complete records a CQE result and transitions idx to COMPLETED.
func (a *Allocator) Complete(idx int, res int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[idx].State = StateCompleted
	a.entries[idx].Result = res
}

// Snapshot returns a copy of idx's entry for inspection after completion.
func (a *Allocator) Snapshot(idx int) Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.entries[idx]
}

// Free returns idx to the pool (COMPLETED -> FREE).
func (a *Allocator) Free(idx int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[idx].State = StateFree
	a.free = append(a.free, idx)
}

// Available reports how many entries are currently free.
func (a *Allocator) Available() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.free)
}
