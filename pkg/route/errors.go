package route

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoMoreRoutes is returned when a cursor is advanced past its last route.
	ErrNoMoreRoutes = errors.New("no more routes to consume")
	// ErrCursorFailed is returned by every call on a cursor that already failed.
	ErrCursorFailed = errors.New("route cursor already failed")
	// ErrAlreadyVerified is returned by calls on a cursor after Verify succeeded.
	ErrAlreadyVerified = errors.New("route cursor already verified")
)

// UnboundParameterError reports a handler parameter that has no binding
// annotation and is not a context type.
type UnboundParameterError struct {
	Method   string
	Index    int
	Param    string
	Position string
}

func (e *UnboundParameterError) Error() string {
	return withPosition(e.Position, fmt.Sprintf("%s: parameter %d (%s) has no binding annotation and is not a context type",
		e.Method, e.Index, e.Param))
}

// ConflictingBindingError reports a parameter whose annotations disagree on
// source or wire name.
type ConflictingBindingError struct {
	Method   string
	Index    int
	Param    string
	Sources  []Source
	Names    []string
	Position string
}

func (e *ConflictingBindingError) Error() string {
	var detail string
	if len(e.Sources) > 1 {
		parts := make([]string, len(e.Sources))
		for i, s := range e.Sources {
			parts[i] = s.String()
		}
		detail = "sources " + strings.Join(parts, ", ")
	} else {
		detail = "names " + strings.Join(quoteAll(e.Names), ", ")
	}
	return withPosition(e.Position, fmt.Sprintf("%s: parameter %d (%s) has conflicting bindings: %s",
		e.Method, e.Index, e.Param, detail))
}

// ConflictingRouteError reports routing annotations on one handler that
// disagree on the verb or the path.
type ConflictingRouteError struct {
	Method   string
	Field    string
	Values   []string
	Position string
}

func (e *ConflictingRouteError) Error() string {
	return withPosition(e.Position, fmt.Sprintf("%s: conflicting route %s: %s",
		e.Method, e.Field, strings.Join(quoteAll(e.Values), " vs ")))
}

// UnresolvedTypeError reports a type that cannot be mapped to a TypeRef.
// Method is empty when the error comes from a bare type mapping.
type UnresolvedTypeError struct {
	Method   string
	Type     string
	Reason   string
	Position string
	Cause    error
}

func (e *UnresolvedTypeError) Error() string {
	msg := fmt.Sprintf("cannot resolve type %s: %s", e.Type, e.Reason)
	if e.Method != "" {
		msg = e.Method + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return withPosition(e.Position, msg)
}

func (e *UnresolvedTypeError) Unwrap() error { return e.Cause }

// UnconsumedRoutesError is returned by Verify when routes were left unasserted.
type UnconsumedRoutesError struct {
	Remaining int
	Total     int
	Next      string
}

func (e *UnconsumedRoutesError) Error() string {
	msg := fmt.Sprintf("%d of %d routes were not consumed", e.Remaining, e.Total)
	if e.Next != "" {
		msg += ", next is " + e.Next
	}
	return msg
}

// OutOfOrderError is returned when the next route is not the one expected.
type OutOfOrderError struct {
	Index    int
	Expected string
	Actual   string
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("route %d: expected %s, got %s", e.Index, e.Expected, e.Actual)
}

func withPosition(pos, msg string) string {
	if pos == "" {
		return msg
	}
	return pos + ": " + msg
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
