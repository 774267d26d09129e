package eager

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies a runtime failure, mirroring the canonical status codes
// used across tensor runtimes.
type Code int32

// Status codes.
const (
	OK Code = iota
	Cancelled
	Unknown
	InvalidArgument
	DeadlineExceeded
	NotFound
	AlreadyExists
	PermissionDenied
	ResourceExhausted
	FailedPrecondition
	Aborted
	OutOfRange
	Unimplemented
	Internal
	Unavailable
	DataLoss
)

// String returns the canonical code name.
func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case Cancelled:
		return "cancelled"
	case Unknown:
		return "unknown"
	case InvalidArgument:
		return "invalid argument"
	case DeadlineExceeded:
		return "deadline exceeded"
	case NotFound:
		return "not found"
	case AlreadyExists:
		return "already exists"
	case PermissionDenied:
		return "permission denied"
	case ResourceExhausted:
		return "resource exhausted"
	case FailedPrecondition:
		return "failed precondition"
	case Aborted:
		return "aborted"
	case OutOfRange:
		return "out of range"
	case Unimplemented:
		return "unimplemented"
	case Internal:
		return "internal"
	case Unavailable:
		return "unavailable"
	case DataLoss:
		return "data loss"
	default:
		return fmt.Sprintf("code(%d)", int32(c))
	}
}

// Status is the error type every fallible eager call returns. It carries a
// Code, a message, and an optional wrapped cause.
type Status struct {
	code  Code
	msg   string
	cause error
}

// Error implements the error interface.
func (s *Status) Error() string {
	if s.cause != nil {
		return fmt.Sprintf("%s: %s: %v", s.code, s.msg, s.cause)
	}
	return fmt.Sprintf("%s: %s", s.code, s.msg)
}

// Code returns the status code.
func (s *Status) Code() Code {
	return s.code
}

// Unwrap returns the wrapped cause, if any.
func (s *Status) Unwrap() error {
	return s.cause
}

// Statusf builds a Status from a code and a formatted message.
func Statusf(code Code, format string, args ...any) *Status {
	return &Status{code: code, msg: fmt.Sprintf(format, args...)}
}

// WrapStatus builds a Status wrapping cause with additional context.
func WrapStatus(code Code, cause error, format string, args ...any) *Status {
	return &Status{code: code, msg: fmt.Sprintf(format, args...), cause: cause}
}

// CodeOf extracts the Code from an error chain. Errors without a Status in
// the chain report Unknown; a nil error reports OK.
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var s *Status
	if errors.As(err, &s) {
		return s.code
	}
	return Unknown
}
