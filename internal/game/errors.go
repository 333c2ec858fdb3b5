package game

import "fmt"

// Code classifies an Error.
type Code string

const (
	CodeInsufficientResource Code = "insufficient_resource"
	CodeInvalidTransition    Code = "invalid_transition"
	CodeCorruptSnapshot      Code = "corrupt_snapshot"
	CodeUnknownEntry         Code = "unknown_entry"
)

// Error is the domain error type. Errors compare equal under errors.Is when
// their codes match, so callers test against the sentinels below.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrInsufficientResource = &Error{Code: CodeInsufficientResource, Message: "insufficient resource"}
	ErrInvalidTransition    = &Error{Code: CodeInvalidTransition, Message: "invalid transition"}
	ErrCorruptSnapshot      = &Error{Code: CodeCorruptSnapshot, Message: "corrupt snapshot"}
	ErrUnknownEntry         = &Error{Code: CodeUnknownEntry, Message: "unknown catalog entry"}
)

func insufficient(resource Resource, need, have float64) *Error {
	return &Error{
		Code:    CodeInsufficientResource,
		Message: fmt.Sprintf("not enough %s: need %s, have %s", resource, FormatAmount(need), FormatAmount(have)),
		Metadata: map[string]string{
			"resource": string(resource),
			"need":     FormatAmount(need),
		},
	}
}

func invalidTransition(message string) *Error {
	return &Error{Code: CodeInvalidTransition, Message: message}
}

func unknownEntry(kind, id string) *Error {
	return &Error{
		Code:     CodeUnknownEntry,
		Message:  fmt.Sprintf("unknown %s %q", kind, id),
		Metadata: map[string]string{"kind": kind, "id": id},
	}
}

func corruptSnapshot(message string, cause error) *Error {
	return &Error{Code: CodeCorruptSnapshot, Message: message, Cause: cause}
}
