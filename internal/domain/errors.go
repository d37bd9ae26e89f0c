package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError is implemented by domain errors that carry their own status code.
type HTTPError interface {
	error
	StatusCode() int
}

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// UnauthorizedError indicates a missing or rejected login
	UnauthorizedError struct {
		Message string
	}

	// ForbiddenError indicates the caller lacks permission on a document
	ForbiddenError struct {
		Message string
	}
)

func (e *NotFoundError) Error() string     { return e.Message }
func (e *ValidationError) Error() string   { return e.Message }
func (e *UnauthorizedError) Error() string { return e.Message }
func (e *ForbiddenError) Error() string    { return e.Message }

func (e *NotFoundError) StatusCode() int     { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int   { return http.StatusBadRequest }
func (e *UnauthorizedError) StatusCode() int { return http.StatusUnauthorized }
func (e *ForbiddenError) StatusCode() int    { return http.StatusForbidden }

func (e *NotFoundError) Is(target error) bool     { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool   { return target == ErrValidation }
func (e *UnauthorizedError) Is(target error) bool { return target == ErrUnauthorized }
func (e *ForbiddenError) Is(target error) bool    { return target == ErrForbidden }

// Sentinel errors, match with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("not logged in")
	ErrForbidden    = errors.New("insufficient permissions")

	// ErrInvalidRoot marks a reconciliation whose declared root does not
	// resolve to the document's persisted root item.
	ErrInvalidRoot = errors.New("invalid root item")

	// ErrTreeTooDeep marks a snapshot that exceeds the configured depth or size cap.
	ErrTreeTooDeep = errors.New("outline too large")
)

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // document, item, style, category
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// InvalidRootError is the fatal contract violation raised before any write
// when a snapshot's root cannot be tied to the document's root item.
type InvalidRootError struct {
	DocumentID string
	ClientID   string
	Reason     string
}

func (e *InvalidRootError) Error() string {
	return fmt.Sprintf("document %s: root %q %s", e.DocumentID, e.ClientID, e.Reason)
}

func (e *InvalidRootError) StatusCode() int {
	return http.StatusBadRequest
}

// Is matches both ErrInvalidRoot and ErrValidation.
func (e *InvalidRootError) Is(target error) bool {
	return target == ErrInvalidRoot || target == ErrValidation
}
