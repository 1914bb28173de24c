// Package route holds the normalized route model produced by static handler
// analysis, together with a cursor for asserting discovered routes in order.
package route

import (
	"fmt"
	"strings"
)

// Source is where a parameter value is taken from in an incoming request.
type Source int

const (
	SourceUnknown Source = iota
	SourceQuery
	SourceHeader
	SourcePath
	SourceBody
	SourceContext
)

// String returns the string representation of the source
func (s Source) String() string {
	switch s {
	case SourceQuery:
		return "query"
	case SourceHeader:
		return "header"
	case SourcePath:
		return "path"
	case SourceBody:
		return "body"
	case SourceContext:
		return "context"
	default:
		return "unknown"
	}
}

// ParseSource converts a source name such as "query" to a Source.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "query":
		return SourceQuery, nil
	case "header":
		return SourceHeader, nil
	case "path":
		return SourcePath, nil
	case "body":
		return SourceBody, nil
	case "context":
		return SourceContext, nil
	case "unknown":
		return SourceUnknown, nil
	default:
		return SourceUnknown, fmt.Errorf("unknown parameter source: %s", s)
	}
}

// ParameterBinding describes how one handler parameter is extracted from a
// request. Name is the wire name and is empty for context parameters.
type ParameterBinding struct {
	Name   string
	Source Source
	Type   TypeRef
}

func (p ParameterBinding) String() string {
	if p.Name == "" {
		return fmt.Sprintf("%s %s", p.Source, p.Type)
	}
	return fmt.Sprintf("%s %q %s", p.Source, p.Name, p.Type)
}

// DefaultMethod is used for handlers that carry no verb annotation.
const DefaultMethod = "GET"

// DefaultDispatch is the executor name used when a dispatch annotation has no
// value.
const DefaultDispatch = "worker"

// Route is the normalized description of one handler method. Routes are
// built once during discovery and must be treated as read-only.
type Route struct {
	Method          string
	Path            string
	Parameters      []ParameterBinding
	DefaultResponse TypeRef

	// Handler is the identity of the handler method, "pkg/path.Type.Method".
	Handler string
	// Location is the handler's file:line.
	Location   string
	Middleware []string
	// Dispatch names the executor the handler should run on; empty means the
	// caller's default.
	Dispatch string
}

// Pattern returns "METHOD path".
func (r Route) Pattern() string {
	return strings.TrimSpace(r.Method + " " + r.Path)
}

// Parameter returns the binding of the named parameter.
func (r Route) Parameter(name string) (ParameterBinding, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterBinding{}, false
}

func (r Route) String() string {
	return fmt.Sprintf("%s -> %s", r.Pattern(), r.Handler)
}

func (r Route) clone() Route {
	c := r
	c.Parameters = append([]ParameterBinding(nil), r.Parameters...)
	c.Middleware = append([]string(nil), r.Middleware...)
	return c
}
