// Package discovery builds one route.Route per handler method supplied by a
// HandlerEnumerator.
package discovery

import (
	"context"
	"fmt"
	"go/types"
	"slices"
	"strings"

	"github.com/toyz/axonroute/internal/annotations"
	"github.com/toyz/axonroute/internal/binding"
)

// Param is one declared handler parameter with its tags
type Param = binding.Param

// Handler is a handler method as seen by discovery: its identity, its
// method-level tags and its signature. Enumerators fill Err instead of
// failing the whole enumeration when a single handler cannot be described.
type Handler struct {
	// ID is "pkg/path.Type.Method"
	ID       string
	Location string
	Tags     []annotations.Tag
	Params   []Param
	Results  []types.Type

	// Response is the type named by a response tag, nil when the tag
	// declares no body or when there is no response tag
	Response types.Type

	// Dispatch is the controller-level executor, empty when unset
	Dispatch string

	Err error
}

func (h Handler) String() string {
	params := make([]string, len(h.Params))
	for i, p := range h.Params {
		params[i] = strings.TrimSpace(p.Name + " " + typeString(p.Type))
	}
	results := make([]string, len(h.Results))
	for i, r := range h.Results {
		results[i] = typeString(r)
	}
	s := fmt.Sprintf("%s(%s)", h.ID, strings.Join(params, ", "))
	switch len(results) {
	case 0:
		return s
	case 1:
		return s + " " + results[0]
	default:
		return s + " (" + strings.Join(results, ", ") + ")"
	}
}

func typeString(t types.Type) string {
	if t == nil {
		return ""
	}
	return types.TypeString(t, nil)
}

// HandlerEnumerator supplies the handler methods reachable from an
// application entry point, in declaration order
type HandlerEnumerator interface {
	Handlers(ctx context.Context) ([]Handler, error)
}

// StaticEnumerator serves a fixed list of handlers
type StaticEnumerator []Handler

// Handlers returns a copy of the list
func (s StaticEnumerator) Handlers(ctx context.Context) ([]Handler, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s), nil
}

// EnumeratorFunc adapts a function to HandlerEnumerator
type EnumeratorFunc func(ctx context.Context) ([]Handler, error)

// Handlers calls f
func (f EnumeratorFunc) Handlers(ctx context.Context) ([]Handler, error) {
	return f(ctx)
}
