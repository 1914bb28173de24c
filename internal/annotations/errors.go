package annotations

import (
	"fmt"

	"github.com/toyz/axonroute/internal/errors"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Directive() string
}

// SyntaxError represents a directive that could not be tokenized or parsed
type SyntaxError struct {
	*errors.BaseError
	Key string
}

// NewSyntaxError creates a SyntaxError for the directive key
func NewSyntaxError(key, message string, loc SourceLocation, hint string) *SyntaxError {
	base := errors.Newf(errors.SyntaxErrorCode, "syntax error in %s: %s", key, message).WithLocation(loc)
	if hint != "" {
		base.WithSuggestion(hint)
	}
	return &SyntaxError{BaseError: base, Key: key}
}

func (e *SyntaxError) Directive() string  { return e.Key }
func (e *SyntaxError) Suggestion() string { return firstHint(e.BaseError) }

// ValidationError represents a well-formed directive with invalid content or
// placement
type ValidationError struct {
	*errors.BaseError
	Key       string
	Parameter string
}

// NewValidationError creates a ValidationError for the directive key
func NewValidationError(key, parameter, message string, loc SourceLocation, hint string) *ValidationError {
	msg := fmt.Sprintf("invalid %s: %s", key, message)
	if parameter != "" {
		msg = fmt.Sprintf("invalid %s %s: %s", key, parameter, message)
	}
	base := errors.New(errors.ValidationErrorCode, msg).WithLocation(loc)
	if hint != "" {
		base.WithSuggestion(hint)
	}
	return &ValidationError{BaseError: base, Key: key, Parameter: parameter}
}

func (e *ValidationError) Directive() string  { return e.Key }
func (e *ValidationError) Suggestion() string { return firstHint(e.BaseError) }

func firstHint(e *errors.BaseError) string {
	if len(e.Hints) == 0 {
		return ""
	}
	return e.Hints[0]
}
