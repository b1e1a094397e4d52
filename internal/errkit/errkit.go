// Package errkit provides a small coded-error type for the fatal conditions
// this scanner can raise: configuration, resource exhaustion, and missing
// kernel capabilities. Transient probe failures are never represented here —
// they are swallowed into per-IP records by the probe modules themselves.
package errkit

import (
	"errors"
	"fmt"
)

// Code classifies a fatal error so callers (and tests) can branch on kind
// without string matching.
type Code uint8

const (
	// CodeUnknown is the zero value; never produced by New.
	CodeUnknown Code = iota
	// CodeConfig marks an unparseable/invalid configuration value (URL,
	// host, port, CIDR list source).
	CodeConfig
	// CodeResourceExhausted marks EMFILE-class failures escaping the probe pool.
	CodeResourceExhausted
	// CodeCapability marks a missing io_uring opcode at startup.
	CodeCapability
)

func (c Code) String() string {
	switch c {
	case CodeConfig:
		return "config"
	case CodeResourceExhausted:
		return "resource-exhausted"
	case CodeCapability:
		return "capability"
	default:
		return "unknown"
	}
}

// Error is a coded error with an optional wrapped cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// New builds a coded Error around an optional cause.
func New(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Is reports whether err carries the given Code, walking the cause chain.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
