// Package binding reconciles the binding annotations attached to handler
// parameters into one ParameterBinding per parameter.
package binding

import (
	"errors"
	"fmt"
	"go/types"
	"slices"

	"github.com/toyz/axonroute/internal/annotations"
	"github.com/toyz/axonroute/internal/resolver"
	"github.com/toyz/axonroute/pkg/route"
)

// Param is one declared handler parameter with the tags attached to it
type Param struct {
	// Name is the Go identifier, empty for unnamed parameters
	Name     string
	Type     types.Type
	Tags     []annotations.Tag
	Position string
}

// Reconciler turns parameter tags from any vocabulary into bindings
type Reconciler struct {
	resolver *resolver.Resolver
}

// New creates a reconciler that maps types and recognizes context types
// through res
func New(res *resolver.Resolver) *Reconciler {
	return &Reconciler{resolver: res}
}

// Reconcile binds the index-th parameter of method
func (r *Reconciler) Reconcile(method string, index int, p Param) (route.ParameterBinding, error) {
	ref, err := r.resolver.Mapper().Map(p.Type)
	if err != nil {
		var ute *route.UnresolvedTypeError
		if errors.As(err, &ute) {
			ute.Method = method
			ute.Position = p.Position
			ute.Reason = fmt.Sprintf("parameter %d (%s): %s", index, paramName(p, index), ute.Reason)
		}
		return route.ParameterBinding{}, err
	}

	bindings := annotations.FilterTags(p.Tags, annotations.IntentBinding)
	overrides := distinctNames(annotations.FilterTags(p.Tags, annotations.IntentNameOverride))

	if sources := distinctSources(bindings); len(sources) > 1 {
		return route.ParameterBinding{}, &route.ConflictingBindingError{
			Method: method, Index: index, Param: paramName(p, index), Sources: sources, Position: p.Position,
		}
	}
	if len(overrides) > 1 {
		return route.ParameterBinding{}, &route.ConflictingBindingError{
			Method: method, Index: index, Param: paramName(p, index), Names: overrides, Position: p.Position,
		}
	}
	names := distinctNames(bindings)
	if len(names) > 1 && len(overrides) == 0 {
		return route.ParameterBinding{}, &route.ConflictingBindingError{
			Method: method, Index: index, Param: paramName(p, index), Names: names, Position: p.Position,
		}
	}

	if len(bindings) > 0 {
		return route.ParameterBinding{
			Name:   firstOf(overrides, names, paramName(p, index)),
			Source: bindings[0].Source,
			Type:   ref,
		}, nil
	}

	if r.resolver.IsContext(p.Type) {
		return route.ParameterBinding{Source: route.SourceContext, Type: ref}, nil
	}

	if source, ok := r.resolver.Injectable(p.Type); ok {
		return route.ParameterBinding{
			Name:   firstOf(overrides, nil, paramName(p, index)),
			Source: source,
			Type:   ref,
		}, nil
	}

	return route.ParameterBinding{}, &route.UnboundParameterError{
		Method: method, Index: index, Param: paramName(p, index), Position: p.Position,
	}
}

func paramName(p Param, index int) string {
	if p.Name == "" || p.Name == "_" {
		return fmt.Sprintf("arg%d", index)
	}
	return p.Name
}

func distinctSources(tags []annotations.Tag) []route.Source {
	var sources []route.Source
	for _, t := range tags {
		if !slices.Contains(sources, t.Source) {
			sources = append(sources, t.Source)
		}
	}
	return sources
}

func distinctNames(tags []annotations.Tag) []string {
	var names []string
	for _, t := range tags {
		if t.Name != "" && !slices.Contains(names, t.Name) {
			names = append(names, t.Name)
		}
	}
	return names
}

func firstOf(overrides, names []string, fallback string) string {
	if len(overrides) > 0 {
		return overrides[0]
	}
	if len(names) > 0 {
		return names[0]
	}
	return fallback
}
