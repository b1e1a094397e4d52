//go:build windows

package rlimit

// Raise is a no-op on Windows, which has no RLIMIT_NOFILE equivalent exposed
// to userspace in the way Unix does; the teacher's fileDescriptor helper
// instead shells out to maxstdio.SetMaxStdio there, which this scanner has
// no use for since its many concurrent descriptors are sockets, not files.
func Raise(want int) (current, max int, err error) {
	return want, want, nil
}
