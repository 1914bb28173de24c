package route

import (
	"fmt"
	"strings"
)

// Kind classifies a TypeRef.
type Kind int

const (
	KindPrimitive Kind = iota
	KindBoxed
	KindCollection
	KindMap
	KindBean
	KindVoid
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindBoxed:
		return "boxed"
	case KindCollection:
		return "collection"
	case KindMap:
		return "map"
	case KindBean:
		return "bean"
	case KindVoid:
		return "void"
	default:
		return "unknown"
	}
}

// VoidName is the name carried by the void TypeRef.
const VoidName = "void"

// TypeRef is the canonical description of a resolved type. The zero value is
// not meaningful; build TypeRefs with the constructors below.
//
// A TypeRef exclusively owns its element and value types, and is never
// modified after construction.
type TypeRef struct {
	kind     Kind
	name     string
	nullable bool
	elem     *TypeRef
	value    *TypeRef
}

// New builds a TypeRef of any non-container kind. It panics when asked for a
// nullable primitive, which is a caller error.
func New(kind Kind, name string, nullable bool) TypeRef {
	if kind == KindPrimitive && nullable {
		panic(fmt.Sprintf("route: primitive type %q cannot be nullable", name))
	}
	if kind == KindCollection || kind == KindMap {
		panic(fmt.Sprintf("route: %s type %q needs a nested type, use Collection or Map", kind, name))
	}
	if kind == KindVoid {
		return Void()
	}
	return TypeRef{kind: kind, name: name, nullable: nullable}
}

// Primitive returns a non-null primitive type.
func Primitive(name string) TypeRef {
	return TypeRef{kind: KindPrimitive, name: name}
}

// Boxed returns the nullable form of a primitive type.
func Boxed(name string) TypeRef {
	return TypeRef{kind: KindBoxed, name: name, nullable: true}
}

// Bean returns a structured (object) type.
func Bean(name string, nullable bool) TypeRef {
	return TypeRef{kind: KindBean, name: name, nullable: nullable}
}

// Collection returns a homogeneous sequence of elem.
func Collection(name string, elem TypeRef, nullable bool) TypeRef {
	e := elem
	return TypeRef{kind: KindCollection, name: name, nullable: nullable, elem: &e}
}

// Map returns a keyed collection whose values are value.
func Map(name string, value TypeRef, nullable bool) TypeRef {
	v := value
	return TypeRef{kind: KindMap, name: name, nullable: nullable, value: &v}
}

// Void describes the absence of a payload.
func Void() TypeRef {
	return TypeRef{kind: KindVoid, name: VoidName}
}

func (t TypeRef) Kind() Kind     { return t.kind }
func (t TypeRef) Name() string   { return t.name }
func (t TypeRef) Nullable() bool { return t.nullable }
func (t TypeRef) IsVoid() bool   { return t.kind == KindVoid }
func (t TypeRef) IsZero() bool   { return t.kind == KindPrimitive && t.name == "" }
func (t TypeRef) HasElem() bool  { return t.elem != nil }
func (t TypeRef) HasValue() bool { return t.value != nil }

// Elem returns the element type of a collection. It returns Void for any
// other kind.
func (t TypeRef) Elem() TypeRef {
	if t.elem == nil {
		return Void()
	}
	return *t.elem
}

// Value returns the value type of a map. It returns Void for any other kind.
func (t TypeRef) Value() TypeRef {
	if t.value == nil {
		return Void()
	}
	return *t.value
}

// Equal reports structural equality, including nested types.
func (t TypeRef) Equal(o TypeRef) bool {
	if t.kind != o.kind || t.name != o.name || t.nullable != o.nullable {
		return false
	}
	if (t.elem == nil) != (o.elem == nil) || (t.value == nil) != (o.value == nil) {
		return false
	}
	if t.elem != nil && !t.elem.Equal(*o.elem) {
		return false
	}
	if t.value != nil && !t.value.Equal(*o.value) {
		return false
	}
	return true
}

// String renders the type for diagnostics, e.g. "collection<primitive string>".
func (t TypeRef) String() string {
	var b strings.Builder
	b.WriteString(t.kind.String())
	switch t.kind {
	case KindCollection:
		b.WriteString("<" + t.Elem().String() + ">")
	case KindMap:
		b.WriteString("<" + t.Value().String() + ">")
	case KindVoid:
		return b.String()
	default:
		b.WriteString(" " + t.name)
	}
	if t.nullable {
		b.WriteString("?")
	}
	return b.String()
}
