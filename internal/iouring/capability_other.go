//go:build !linux

package iouring

// Available always reports false off Linux: io_uring is a Linux-only kernel
// interface.
func Available() bool { return false }
