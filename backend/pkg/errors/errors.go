package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeMirror represents mirror-file reconciliation errors
	ErrorTypeMirror ErrorType = "mirror"
	// ErrorTypeLLM represents LLM/ask-layer errors
	ErrorTypeLLM ErrorType = "llm"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// ErrorType exposes the category; promoted to every typed error that embeds
// BaseError, so IsErrorType can classify through wrapping
func (e *BaseError) ErrorType() ErrorType {
	return e.Type
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrStudentNotFound is returned when a student id has no node in the graph
type ErrStudentNotFound struct {
	*BaseError
	ID int64
}

func NewStudentNotFound(id int64) *ErrStudentNotFound {
	return &ErrStudentNotFound{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("student not found: %d", id), nil),
		ID:        id,
	}
}

// ErrDuplicateStudentID is returned when an insert collides with an existing id.
// The id allocator runs inside a single write transaction, so seeing this means
// the store's unique constraint caught a race rather than letting an overwrite
// happen silently.
type ErrDuplicateStudentID struct {
	*BaseError
	ID int64
}

func NewDuplicateStudentID(id int64, err error) *ErrDuplicateStudentID {
	return &ErrDuplicateStudentID{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("duplicate student id: %d", id), err),
		ID:        id,
	}
}

// ErrStoreUnavailable is returned when the persistence layer cannot be reached
type ErrStoreUnavailable struct {
	*BaseError
	Operation string
}

func NewStoreUnavailable(operation string, err error) *ErrStoreUnavailable {
	return &ErrStoreUnavailable{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("store unavailable during %s", operation), err),
		Operation: operation,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, "query failed", err),
		Query:     query,
	}
}

// Mirror Errors

// ErrMalformedMirrorRecord is returned for a mirror record missing a required
// field; reconciliation logs it and continues with the remaining records
type ErrMalformedMirrorRecord struct {
	*BaseError
	Index  int
	Reason string
}

func NewMalformedMirrorRecord(index int, reason string) *ErrMalformedMirrorRecord {
	return &ErrMalformedMirrorRecord{
		BaseError: NewBaseError(ErrorTypeMirror, fmt.Sprintf("malformed mirror record %d: %s", index, reason), nil),
		Index:     index,
		Reason:    reason,
	}
}

// LLM Errors

// ErrUnsafeQuery is returned when a generated Cypher query contains write clauses
type ErrUnsafeQuery struct {
	*BaseError
	Query string
}

func NewUnsafeQuery(query string) *ErrUnsafeQuery {
	return &ErrUnsafeQuery{
		BaseError: NewBaseError(ErrorTypeLLM, "generated query contains write clauses", nil),
		Query:     query,
	}
}

// ErrLLMRequestFailed is returned when the LLM request fails after retries
type ErrLLMRequestFailed struct {
	*BaseError
	Model    string
	Attempts int
}

func NewLLMRequestFailed(model string, attempts int, err error) *ErrLLMRequestFailed {
	return &ErrLLMRequestFailed{
		BaseError: NewBaseError(ErrorTypeLLM, fmt.Sprintf("LLM request failed after %d attempts", attempts), err),
		Model:     model,
		Attempts:  attempts,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	var typed interface{ ErrorType() ErrorType }
	if errors.As(err, &typed) {
		return typed.ErrorType() == errType
	}
	return false
}

// IsNotFound reports whether err is (or wraps) a student-not-found error
func IsNotFound(err error) bool {
	var nf *ErrStudentNotFound
	return errors.As(err, &nf)
}

// IsDuplicateID reports whether err is (or wraps) a duplicate-id error
func IsDuplicateID(err error) bool {
	var dup *ErrDuplicateStudentID
	return errors.As(err, &dup)
}
