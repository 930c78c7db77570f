package jsonpath

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is the sentinel wrapped by every pattern-compilation
// failure. Callers match it with errors.Is.
var ErrInvalidArgument = errors.New("jsonpath: invalid argument")

// ErrParse is the sentinel wrapped by every tokenizer failure surfaced
// during a scan. Callers match it with errors.Is; the concrete error is
// always a *ParseError, which also carries the byte offset at failure.
var ErrParse = errors.New("jsonpath: parse error")

func invalidArgErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// ParseError is raised when the underlying tokenizer rejects the input.
// It carries the tokenizer's diagnostic message and the byte offset at
// which scanning stopped, per the scan driver's error contract.
type ParseError struct {
	msg           string
	bytesConsumed int64
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s (at byte %d)", ErrParse, e.msg, e.bytesConsumed)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// BytesConsumed returns the tokenizer's reported offset at the point of
// failure.
func (e *ParseError) BytesConsumed() int64 { return e.bytesConsumed }
