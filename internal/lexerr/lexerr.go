// Package lexerr holds the typed errors produced by the regex-VM pipeline
// (internal/reparse, internal/retrans; internal/reinterp never fails). It
// mirrors the
// causes-plus-message Error type tunaq's server uses (server/serr), so
// callers can use errors.Is/errors.As against the sentinel values below
// regardless of which concrete error produced them.
package lexerr

import "fmt"

var (
	// ErrParse marks a malformed pattern (spec.md §7 ParseError).
	ErrParse = fmt.Errorf("malformed pattern")

	// ErrEmptyProgram marks Finish being called with no rules compiled.
	ErrEmptyProgram = fmt.Errorf("program has no rules")

	// ErrUnresolvedLabel marks a translator bug: a label that never got
	// grounded to a real instruction offset. This is a contract violation
	// within the trusted core, not a user-input problem.
	ErrUnresolvedLabel = fmt.Errorf("unresolved label")
)

// Error is a message plus zero or more wrapped causes. errors.Is(err, X)
// returns true for any X in the cause chain, the same contract as
// server/serr.Error.
type Error struct {
	msg   string
	cause []error
}

func (e *Error) Error() string {
	if e.msg == "" && len(e.cause) > 0 {
		return e.cause[0].Error()
	}
	if len(e.cause) > 0 {
		return e.msg + ": " + e.cause[0].Error()
	}
	return e.msg
}

func (e *Error) Unwrap() []error {
	return e.cause
}

// New creates an Error with the given message and causes.
func New(msg string, cause ...error) *Error {
	return &Error{msg: msg, cause: cause}
}

// ParseError describes the first unparseable byte of a pattern, per
// spec.md §4.1.
type ParseError struct {
	*Error
	ByteOffset int
	Reason     string
}

func NewParseError(byteOffset int, reason string) *ParseError {
	return &ParseError{
		Error:      New(fmt.Sprintf("byte %d: %s", byteOffset, reason), ErrParse),
		ByteOffset: byteOffset,
		Reason:     reason,
	}
}

// UnresolvedLabelError names the program counter of a label that finalize
// could not ground.
type UnresolvedLabelError struct {
	*Error
	PC int
}

func NewUnresolvedLabelError(pc int) *UnresolvedLabelError {
	return &UnresolvedLabelError{
		Error: New(fmt.Sprintf("instruction %d references an unresolved label", pc), ErrUnresolvedLabel),
		PC:    pc,
	}
}
