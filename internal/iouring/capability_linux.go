//go:build linux

package iouring

import (
	"sync"

	"github.com/pawelgaczynski/giouring"
)

var (
	capOnce      sync.Once
	capAvailable bool
)

// Available reports whether an io_uring instance can be created on this
// kernel, cached after the first probe ring is torn down — grounded on the
// jtcressy-tailscale checkCapability cache, but keyed process-wide instead of
// per-opcode. Individual opcodes (IORING_OP_CONNECT, IORING_OP_LINK_TIMEOUT)
// are not probed; a kernel that creates the ring but lacks them passes.
func Available() bool {
	capOnce.Do(func() {
		ring, err := giouring.CreateRing(8)
		if err != nil {
			capAvailable = false
			return
		}
		defer ring.QueueExit()
		capAvailable = true
	})
	return capAvailable
}
