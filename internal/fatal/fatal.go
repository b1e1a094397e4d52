// Package fatal provides a single latch probe modules and internal/pool
// share for escalating a process-fatal condition (EMFILE: the process is out
// of file descriptors, which no per-IP retry can fix) out of a bounded
// concurrency pool without threading an error return through every probe's
// result type (spec.md §7 "resource exhaustion").
package fatal

import (
	"errors"
	"sync"
	"syscall"
)

// Signal is a one-shot latch: the first EMFILE reported through it is kept,
// and C() closes so any goroutine can select on it.
type Signal struct {
	once sync.Once
	ch   chan struct{}
	err  error
}

// New creates an unset Signal.
func New() *Signal {
	return &Signal{ch: make(chan struct{})}
}

// Report records err if it is (or wraps) syscall.EMFILE; anything else is a
// no-op. Safe to call concurrently. A nil receiver is also a safe no-op, so
// callers can pass an optional *Signal without a nil check at every call
// site.
func (s *Signal) Report(err error) {
	if s == nil || err == nil || !errors.Is(err, syscall.EMFILE) {
		return
	}
	s.once.Do(func() {
		s.err = err
		close(s.ch)
	})
}

// C returns the channel that closes once Report has latched an EMFILE. A nil
// receiver returns a nil channel, which blocks forever in a select — the
// correct behavior for "no signal configured".
func (s *Signal) C() <-chan struct{} {
	if s == nil {
		return nil
	}
	return s.ch
}

// Err returns the latched error, or nil if none has fired yet.
func (s *Signal) Err() error {
	if s == nil {
		return nil
	}
	return s.err
}
