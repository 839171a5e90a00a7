package fieldproto

import (
	"errors"
	"fmt"
)

// Sentinel errors for the protocol.
var (
	// ErrLineTooLong indicates a protocol line exceeded MaxLineLength.
	ErrLineTooLong = errors.New("line too long")

	// ErrTimeout indicates a command timed out waiting for a response.
	ErrTimeout = errors.New("command timed out")

	// ErrSocketNotFound indicates no server socket was found.
	ErrSocketNotFound = errors.New("no server socket found")

	// ErrNotConnected indicates an operation was attempted without a connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates connect was called while already connected.
	ErrAlreadyConnected = errors.New("already connected")

	// ErrServerClosed is returned by Serve after Close.
	ErrServerClosed = errors.New("server closed")

	// ErrFieldAbsent indicates a field index at or beyond the field count.
	ErrFieldAbsent = errors.New("field absent")

	// ErrFieldNotNumeric indicates an integer was requested from an alpha field.
	ErrFieldNotNumeric = errors.New("field not numeric")

	// ErrIntegerOverflow indicates a numeric field does not fit in 32 bits.
	ErrIntegerOverflow = errors.New("integer overflow")
)

// FieldError reports a failed typed field access.
type FieldError struct {
	Index int
	Value string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("field %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("field %d '%s': %v", e.Index, e.Value, e.Err)
}

// Unwrap returns the sentinel cause for errors.Is support.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// ParseError represents an error that occurred while parsing a response or
// registering a command.
type ParseError struct {
	Kind    ParseErrorKind
	Value   string // The invalid value that caused the error
	Message string // Additional context
}

// ParseErrorKind categorizes parsing errors.
type ParseErrorKind int

const (
	// ErrKindInvalidCommand indicates an unknown or malformed command.
	ErrKindInvalidCommand ParseErrorKind = iota
	// ErrKindInvalidVerb indicates a verb that could never match a tokenized line.
	ErrKindInvalidVerb
	// ErrKindDuplicateVerb indicates a verb registered twice.
	ErrKindDuplicateVerb
	// ErrKindMissingArgument indicates a required argument was not provided.
	ErrKindMissingArgument
	// ErrKindUnexpectedResponse indicates an unexpected response format.
	ErrKindUnexpectedResponse
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	switch e.Kind {
	case ErrKindInvalidCommand:
		return fmt.Sprintf("invalid command '%s'", e.Value)
	case ErrKindInvalidVerb:
		return fmt.Sprintf("invalid verb '%s': %s", e.Value, e.Message)
	case ErrKindDuplicateVerb:
		return fmt.Sprintf("duplicate verb '%s'", e.Value)
	case ErrKindMissingArgument:
		return e.Message
	case ErrKindUnexpectedResponse:
		return fmt.Sprintf("unexpected response: %s", e.Value)
	default:
		return fmt.Sprintf("parse error: %s", e.Value)
	}
}

func newInvalidVerbError(verb, msg string) error {
	return &ParseError{Kind: ErrKindInvalidVerb, Value: verb, Message: msg}
}

func newDuplicateVerbError(verb string) error {
	return &ParseError{Kind: ErrKindDuplicateVerb, Value: verb}
}

func newMissingArgumentError(msg string) error {
	return &ParseError{Kind: ErrKindMissingArgument, Message: msg}
}

func newUnexpectedResponseError(resp string) error {
	return &ParseError{Kind: ErrKindUnexpectedResponse, Value: resp}
}

// ConnectionError represents a connection-related error.
type ConnectionError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("connection failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("connection failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Cause
}

// NewConnectionError creates a new connection error.
func NewConnectionError(message string, cause error) error {
	return &ConnectionError{Message: message, Cause: cause}
}
