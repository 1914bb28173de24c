package discovery

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/toyz/axonroute/internal/annotations"
	"github.com/toyz/axonroute/internal/binding"
	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/internal/registry"
	"github.com/toyz/axonroute/internal/resolver"
	"github.com/toyz/axonroute/internal/utils"
	"github.com/toyz/axonroute/pkg/route"
)

// FailureMode decides what Discover does with a handler it cannot build
type FailureMode int

const (
	// FailFast stops at the first failing handler
	FailFast FailureMode = iota
	// SkipAndContinue skips failing handlers and reports them together
	SkipAndContinue
)

// String returns the string representation of the failure mode
func (m FailureMode) String() string {
	switch m {
	case FailFast:
		return "fail-fast"
	case SkipAndContinue:
		return "skip"
	default:
		return "unknown"
	}
}

// ParseFailureMode converts "fail-fast" or "skip" to a FailureMode. An empty
// string means FailFast.
func ParseFailureMode(s string) (FailureMode, error) {
	switch s {
	case "", "fail-fast":
		return FailFast, nil
	case "skip":
		return SkipAndContinue, nil
	default:
		return FailFast, fmt.Errorf("unknown failure mode: %s", s)
	}
}

// Discoverer turns enumerated handlers into routes
type Discoverer struct {
	enumerator  HandlerEnumerator
	resolver    *resolver.Resolver
	reconciler  *binding.Reconciler
	middlewares registry.MiddlewareRegistry
	mode        FailureMode
	diagnostics *utils.DiagnosticSystem
}

// Option configures a Discoverer
type Option func(*Discoverer)

// WithFailureMode sets the failure mode, FailFast by default
func WithFailureMode(mode FailureMode) Option {
	return func(d *Discoverer) { d.mode = mode }
}

// WithDiagnostics sets where progress and skipped handlers are reported
func WithDiagnostics(diagnostics *utils.DiagnosticSystem) Option {
	return func(d *Discoverer) { d.diagnostics = diagnostics }
}

// WithMiddlewareRegistry rejects routes naming middleware missing from
// middlewares
func WithMiddlewareRegistry(middlewares registry.MiddlewareRegistry) Option {
	return func(d *Discoverer) { d.middlewares = middlewares }
}

// New creates a Discoverer over enumerator
func New(enumerator HandlerEnumerator, res *resolver.Resolver, opts ...Option) *Discoverer {
	d := &Discoverer{
		enumerator:  enumerator,
		resolver:    res,
		reconciler:  binding.New(res),
		diagnostics: utils.NewSilentDiagnostics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover builds one route per enumerated handler, in enumeration order.
// With SkipAndContinue the routes that could be built are returned together
// with an *errors.MultipleErrors naming every skipped handler.
func (d *Discoverer) Discover(ctx context.Context) ([]route.Route, error) {
	handlers, err := d.enumerator.Handlers(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.DiscoveryErrorCode, "failed to enumerate handlers", err)
	}
	d.diagnostics.Info("Discovered %d handler(s)", len(handlers))

	routes := make([]route.Route, 0, len(handlers))
	skipped := errors.NewMultipleErrors()

	d.diagnostics.Indent()
	defer d.diagnostics.Unindent()

	for _, h := range handlers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := d.Build(h)
		if err != nil {
			if d.mode == FailFast {
				return nil, err
			}
			d.diagnostics.Warn("Skipping %s: %v", h.ID, err)
			skipped.Add(err)
			continue
		}

		d.diagnostics.Verbose("%s %s -> %s", r.Method, r.Path, r.DefaultResponse)
		routes = append(routes, r)
	}

	return routes, skipped.ErrorOrNil()
}

// Build constructs the route of a single handler
func (d *Discoverer) Build(h Handler) (route.Route, error) {
	if h.Err != nil {
		return route.Route{}, h.Err
	}

	r := route.Route{
		Method:   route.DefaultMethod,
		Handler:  h.ID,
		Location: h.Location,
		Dispatch: h.Dispatch,
	}

	if err := d.applyRouteTags(&r, h); err != nil {
		return route.Route{}, err
	}

	responses := distinct(annotations.FilterTags(h.Tags, annotations.IntentResponse), func(t annotations.Tag) string { return t.TypeExpr })
	if len(responses) > 1 {
		return route.Route{}, &route.ConflictingRouteError{Method: h.ID, Field: "response", Values: responses, Position: h.Location}
	}

	sig := resolver.Signature{
		Method:       h.ID,
		Position:     h.Location,
		Results:      h.Results,
		Explicit:     annotations.HasIntent(h.Tags, annotations.IntentResponse),
		ExplicitType: h.Response,
	}
	for _, p := range h.Params {
		sig.Params = append(sig.Params, p.Type)
	}

	res, err := d.resolver.Resolve(sig)
	if err != nil {
		return route.Route{}, err
	}
	r.DefaultResponse = res.Response

	r.Parameters = make([]route.ParameterBinding, 0, len(h.Params))
	for i, p := range h.Params {
		if p.Position == "" {
			p.Position = h.Location
		}

		if i == res.Continuation {
			ref, err := d.resolver.Mapper().Map(p.Type)
			if err != nil {
				return route.Route{}, err
			}
			r.Parameters = append(r.Parameters, route.ParameterBinding{Source: route.SourceContext, Type: ref})
			continue
		}

		b, err := d.reconciler.Reconcile(h.ID, i, p)
		if err != nil {
			return route.Route{}, err
		}
		r.Parameters = append(r.Parameters, b)
	}

	if d.middlewares != nil && len(r.Middleware) > 0 {
		if err := d.middlewares.Validate(r.Middleware); err != nil {
			return route.Route{}, errors.Wrapf(errors.ValidationErrorCode, err, "%s", h.ID).
				WithContext("handler", h.ID).
				WithSuggestion("registered middleware: " + strings.Join(d.middlewares.Names(), ", "))
		}
	}

	return r, nil
}

// applyRouteTags merges the route tags of every vocabulary; they must agree
// on verb and path
func (d *Discoverer) applyRouteTags(r *route.Route, h Handler) error {
	tags := annotations.FilterTags(h.Tags, annotations.IntentRoute)

	methods := distinct(tags, func(t annotations.Tag) string { return t.Method })
	if len(methods) > 1 {
		return &route.ConflictingRouteError{Method: h.ID, Field: "method", Values: methods, Position: h.Location}
	}
	if len(methods) == 1 {
		r.Method = methods[0]
	}

	paths := distinct(tags, func(t annotations.Tag) string { return t.Path })
	if len(paths) > 1 {
		return &route.ConflictingRouteError{Method: h.ID, Field: "path", Values: paths, Position: h.Location}
	}
	if len(paths) == 1 {
		r.Path = paths[0]
	}

	for _, t := range tags {
		for _, mw := range t.Middleware {
			if !slices.Contains(r.Middleware, mw) {
				r.Middleware = append(r.Middleware, mw)
			}
		}
	}

	if dispatch := annotations.FilterTags(h.Tags, annotations.IntentDispatch); len(dispatch) > 0 {
		r.Dispatch = dispatch[len(dispatch)-1].Name
	}
	return nil
}

// distinct returns the non-empty values of key over tags, first occurrence
// first
func distinct(tags []annotations.Tag, key func(annotations.Tag) string) []string {
	var values []string
	for _, t := range tags {
		if v := key(t); v != "" && !slices.Contains(values, v) {
			values = append(values, v)
		}
	}
	return values
}
