// Package resolver maps go/types types to route.TypeRef values and resolves
// the response payload of handler signatures.
package resolver

import (
	"fmt"
	"go/types"

	"github.com/toyz/axonroute/internal/registry"
	"github.com/toyz/axonroute/pkg/route"
)

// Mapper converts go/types types into TypeRefs
type Mapper struct {
	types registry.TypeLookup
}

// NewMapper creates a mapper that consults lookup for scalar and optional
// types
func NewMapper(lookup registry.TypeLookup) *Mapper {
	return &Mapper{types: lookup}
}

// Map returns the TypeRef of t
func (m *Mapper) Map(t types.Type) (route.TypeRef, error) {
	return m.mapType(t, false)
}

func (m *Mapper) mapType(t types.Type, nullable bool) (route.TypeRef, error) {
	t = types.Unalias(t)

	switch tt := t.(type) {
	case *types.Pointer:
		return m.mapType(tt.Elem(), true)

	case *types.Basic:
		if tt.Kind() == types.Invalid || tt.Info()&types.IsUntyped != 0 {
			return route.TypeRef{}, unresolved(t, "not a concrete type")
		}
		return primitive(tt.Name(), nullable), nil

	case *types.Named:
		return m.mapNamed(tt, nullable)

	case *types.Slice:
		if isByte(tt.Elem()) {
			return primitive("[]byte", nullable), nil
		}
		elem, err := m.mapType(tt.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Collection(types.TypeString(t, nil), elem, nullable), nil

	case *types.Array:
		elem, err := m.mapType(tt.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Collection(types.TypeString(t, nil), elem, nullable), nil

	case *types.Map:
		value, err := m.mapType(tt.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Map(types.TypeString(t, nil), value, nullable), nil

	case *types.Interface:
		if tt.Empty() {
			return route.Bean("any", nullable), nil
		}
		return route.Bean(types.TypeString(t, nil), nullable), nil

	case *types.TypeParam:
		concrete, ok := singleTerm(tt)
		if !ok {
			return route.TypeRef{}, unresolved(t, fmt.Sprintf("type parameter constrained by %s has no single concrete type",
				types.TypeString(tt.Constraint(), nil)))
		}
		return m.mapType(concrete, nullable)

	case *types.Struct, *types.Chan, *types.Signature:
		return route.Bean(types.TypeString(t, nil), nullable), nil

	default:
		return route.TypeRef{}, unresolved(t, fmt.Sprintf("unsupported type %T", t))
	}
}

func (m *Mapper) mapNamed(n *types.Named, nullable bool) (route.TypeRef, error) {
	name := QualifiedName(n)

	switch {
	case m.types.IsScalar(name):
		return primitive(name, nullable), nil

	case m.types.IsOptional(name):
		st, ok := n.Underlying().(*types.Struct)
		if !ok || st.NumFields() == 0 {
			return route.TypeRef{}, unresolved(n, "optional type has no payload field")
		}
		payload, err := m.mapType(st.Field(0).Type(), true)
		if err != nil {
			return route.TypeRef{}, err
		}
		return payload, nil
	}

	name = types.TypeString(n, nil)
	switch u := n.Underlying().(type) {
	case *types.Slice:
		if isByte(u.Elem()) {
			return primitive(name, nullable), nil
		}
		elem, err := m.mapType(u.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Collection(name, elem, nullable), nil

	case *types.Array:
		elem, err := m.mapType(u.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Collection(name, elem, nullable), nil

	case *types.Map:
		value, err := m.mapType(u.Elem(), false)
		if err != nil {
			return route.TypeRef{}, err
		}
		return route.Map(name, value, nullable), nil
	}

	return route.Bean(name, nullable), nil
}

// QualifiedName returns "pkg/path.Name" for named types (the generic origin
// for instances) after dereferencing pointers, and the type string otherwise
func QualifiedName(t types.Type) string {
	t = Deref(t)
	if n, ok := t.(*types.Named); ok {
		obj := n.Origin().Obj()
		if obj.Pkg() == nil {
			return obj.Name()
		}
		return obj.Pkg().Path() + "." + obj.Name()
	}
	return types.TypeString(t, nil)
}

// Deref strips aliases and pointers from t
func Deref(t types.Type) types.Type {
	t = types.Unalias(t)
	for {
		p, ok := t.(*types.Pointer)
		if !ok {
			return t
		}
		t = types.Unalias(p.Elem())
	}
}

func primitive(name string, nullable bool) route.TypeRef {
	if nullable {
		return route.Boxed(name)
	}
	return route.Primitive(name)
}

func isByte(t types.Type) bool {
	b, ok := types.Unalias(t).(*types.Basic)
	return ok && b.Kind() == types.Byte
}

// singleTerm returns the only type in tp's type set when the constraint is
// exactly one non-tilde term
func singleTerm(tp *types.TypeParam) (types.Type, bool) {
	iface, ok := tp.Constraint().Underlying().(*types.Interface)
	if !ok || iface.NumEmbeddeds() != 1 || iface.NumExplicitMethods() != 0 {
		return nil, false
	}

	switch e := types.Unalias(iface.EmbeddedType(0)).(type) {
	case *types.Union:
		if e.Len() != 1 || e.Term(0).Tilde() {
			return nil, false
		}
		return e.Term(0).Type(), true
	case *types.TypeParam:
		return nil, false
	default:
		if types.IsInterface(e) {
			return nil, false
		}
		return e, true
	}
}

func unresolved(t types.Type, reason string) *route.UnresolvedTypeError {
	return &route.UnresolvedTypeError{Type: types.TypeString(t, nil), Reason: reason}
}
