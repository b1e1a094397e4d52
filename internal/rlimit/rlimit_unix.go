//go:build !windows

// Package rlimit bumps the process's open-file limit before a
// high-concurrency scan starts, grounded on the teacher's
// github.com/nabbar/golib/ioutils fileDescriptor helper (same
// Getrlimit/Setrlimit(RLIMIT_NOFILE) shape), but using
// golang.org/x/sys/unix instead of the syscall package directly, matching
// how the rest of this module reaches for the x/sys facade.
package rlimit

import "golang.org/x/sys/unix"

// Raise attempts to set the soft RLIMIT_NOFILE to at least want, never
// lowering it, and returns the resulting (current, max) limits. A failure to
// raise the limit (e.g. insufficient privilege) is not fatal: callers should
// log it and proceed with whatever limit is already in place.
func Raise(want int) (current, max int, err error) {
	var lim unix.Rlimit
	if err = unix.Getrlimit(unix.RLIMIT_NOFILE, &lim); err != nil {
		return 0, 0, err
	}

	if want < 1 || uint64(want) <= lim.Cur {
		return int(lim.Cur), int(lim.Max), nil
	}

	changed := lim
	if uint64(want) > changed.Max {
		changed.Max = uint64(want)
	}
	changed.Cur = uint64(want)

	if err = unix.Setrlimit(unix.RLIMIT_NOFILE, &changed); err != nil {
		return int(lim.Cur), int(lim.Max), err
	}

	var after unix.Rlimit
	if err = unix.Getrlimit(unix.RLIMIT_NOFILE, &after); err != nil {
		return int(changed.Cur), int(changed.Max), nil
	}
	return int(after.Cur), int(after.Max), nil
}
