package resolver

import (
	"errors"
	"fmt"
	"go/types"

	"github.com/toyz/axonroute/internal/registry"
	"github.com/toyz/axonroute/pkg/route"
)

// Signature is the part of a handler the resolver inspects
type Signature struct {
	// Method identifies the handler in errors, "pkg/path.Type.Method"
	Method   string
	Position string

	Params  []types.Type
	Results []types.Type

	// Explicit is set when a response annotation was present. A nil
	// ExplicitType with Explicit set declares no body.
	Explicit     bool
	ExplicitType types.Type
}

// Resolution is the outcome of resolving a signature
type Resolution struct {
	Response route.TypeRef
	// Continuation is the index of a suspend-style continuation parameter,
	// or -1
	Continuation int
}

// Resolver resolves the default response of handler signatures
type Resolver struct {
	mapper *Mapper
	types  registry.TypeLookup
}

// New creates a resolver over lookup
func New(lookup registry.TypeLookup) *Resolver {
	return &Resolver{mapper: NewMapper(lookup), types: lookup}
}

// Mapper returns the type mapper the resolver uses
func (r *Resolver) Mapper() *Mapper {
	return r.mapper
}

// IsContext reports whether t, after dereferencing, is a registered context
// type
func (r *Resolver) IsContext(t types.Type) bool {
	return r.types.IsContext(QualifiedName(t))
}

// Injectable returns the source a request-scoped type binds to without an
// annotation
func (r *Resolver) Injectable(t types.Type) (route.Source, bool) {
	return r.types.Injectable(QualifiedName(t))
}

// Resolve determines the response payload of sig
func (r *Resolver) Resolve(sig Signature) (Resolution, error) {
	res := Resolution{Continuation: -1}

	ref, err := r.resolve(sig, &res)
	if err != nil {
		return Resolution{}, attach(err, sig)
	}
	res.Response = ref
	return res, nil
}

func (r *Resolver) resolve(sig Signature, res *Resolution) (route.TypeRef, error) {
	if sig.Explicit {
		if sig.ExplicitType == nil {
			return route.Void(), nil
		}
		return r.payload(sig.ExplicitType)
	}

	results := sig.Results
	if n := len(results); n > 0 && isError(results[n-1]) {
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		if n := len(sig.Params); n > 0 {
			if payload, ok := continuation(sig.Params[n-1]); ok {
				res.Continuation = n - 1
				return r.unwrapped(payload)
			}
		}
		if len(sig.Params) == 1 && r.IsContext(sig.Params[0]) {
			return r.mapper.Map(sig.Params[0])
		}
		return route.Void(), nil

	case 1:
		return r.unwrapped(results[0])

	default:
		return route.TypeRef{}, &route.UnresolvedTypeError{
			Type:   tupleString(results),
			Reason: fmt.Sprintf("%d results besides error, expected at most one", len(results)),
		}
	}
}

// unwrapped removes one level of deferred wrapper from t and maps the
// payload. A wrapper nested inside the payload is not unwrapped.
func (r *Resolver) unwrapped(t types.Type) (route.TypeRef, error) {
	payload, ok := r.deferred(t)
	if !ok {
		return r.payload(t)
	}
	if _, nested := r.deferred(payload); nested {
		return route.TypeRef{}, &route.UnresolvedTypeError{
			Type:   types.TypeString(t, nil),
			Reason: "nested deferred wrappers are not unwrapped",
		}
	}
	return r.payload(payload)
}

func (r *Resolver) payload(t types.Type) (route.TypeRef, error) {
	if st, ok := types.Unalias(t).(*types.Struct); ok && st.NumFields() == 0 {
		return route.Void(), nil
	}
	return r.mapper.Map(t)
}

// deferred returns the payload of a deferred wrapper: a channel, a nullary
// func returning T or (T, error), or a registered generic wrapper type
func (r *Resolver) deferred(t types.Type) (types.Type, bool) {
	t = types.Unalias(t)

	switch tt := t.(type) {
	case *types.Chan:
		return tt.Elem(), true

	case *types.Signature:
		if tt.Params().Len() != 0 {
			return nil, false
		}
		switch tt.Results().Len() {
		case 1:
			return tt.Results().At(0).Type(), true
		case 2:
			if isError(tt.Results().At(1).Type()) {
				return tt.Results().At(0).Type(), true
			}
		}
		return nil, false
	}

	n, ok := Deref(t).(*types.Named)
	if !ok || n.TypeArgs().Len() == 0 || !r.types.IsDeferred(QualifiedName(n)) {
		return nil, false
	}
	return n.TypeArgs().At(0), true
}

// continuation reports whether t is a suspend-style callback, func(T) or
// func(T, error), and returns T
func continuation(t types.Type) (types.Type, bool) {
	sig, ok := types.Unalias(t).(*types.Signature)
	if !ok || sig.Results().Len() != 0 || sig.Variadic() {
		return nil, false
	}
	switch sig.Params().Len() {
	case 1:
		return sig.Params().At(0).Type(), true
	case 2:
		if isError(sig.Params().At(1).Type()) {
			return sig.Params().At(0).Type(), true
		}
	}
	return nil, false
}

var errorType = types.Universe.Lookup("error").Type()

func isError(t types.Type) bool {
	return types.Identical(t, errorType)
}

func tupleString(ts []types.Type) string {
	s := "("
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += types.TypeString(t, nil)
	}
	return s + ")"
}

func attach(err error, sig Signature) error {
	var ute *route.UnresolvedTypeError
	if errors.As(err, &ute) {
		if ute.Method == "" {
			ute.Method = sig.Method
		}
		if ute.Position == "" {
			ute.Position = sig.Position
		}
	}
	return err
}
