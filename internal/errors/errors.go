// Package errors defines the error values shared across the newswire
// service layers.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrIndexNotReady is returned when a query hits the search index
	// before its bulk load has completed. Callers must treat it as
	// "use the fallback search path", not as an empty result.
	ErrIndexNotReady = errors.New("search index not initialized")

	// ErrNewsNotFound is returned when a news item is not found
	ErrNewsNotFound = errors.New("news item not found")

	// ErrDuplicateNews is returned when a submission is rejected as a
	// near-duplicate of an existing item
	ErrDuplicateNews = errors.New("duplicate news item")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
)

// NewsNotFoundError represents a news-not-found error with context
type NewsNotFoundError struct {
	ID int64
}

func (e *NewsNotFoundError) Error() string {
	return fmt.Sprintf("news item with ID %d not found", e.ID)
}

func (e *NewsNotFoundError) Is(target error) bool {
	return target == ErrNewsNotFound
}

// NewNewsNotFoundError creates a new NewsNotFoundError
func NewNewsNotFoundError(id int64) *NewsNotFoundError {
	return &NewsNotFoundError{ID: id}
}

// DuplicateNewsError reports which existing item a rejected submission
// collided with.
type DuplicateNewsError struct {
	Title      string
	ExistingID int64
}

func (e *DuplicateNewsError) Error() string {
	return fmt.Sprintf("news item %q is too similar to existing item %d", e.Title, e.ExistingID)
}

func (e *DuplicateNewsError) Is(target error) bool {
	return target == ErrDuplicateNews
}

// NewDuplicateNewsError creates a new DuplicateNewsError
func NewDuplicateNewsError(title string, existingID int64) *DuplicateNewsError {
	return &DuplicateNewsError{Title: title, ExistingID: existingID}
}

// ValidationError represents an input validation error with context
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
