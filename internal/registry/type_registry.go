package registry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math/big"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/internal/utils"
	"github.com/toyz/axonroute/pkg/route"
)

// SQLNull is the qualified name of the generic database/sql.Null[T]
const SQLNull = "database/sql.Null"

// NameOf returns the qualified name of t, "pkg/path.Name", dereferencing
// pointers first. Unnamed types return their reflect spelling.
func NameOf(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() == "" || t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// TypeName returns the qualified name of T
func TypeName[T any]() string {
	return NameOf(reflect.TypeFor[T]())
}

// BuiltinContextTypes are the request-context types recognized without
// configuration
var BuiltinContextTypes = []string{
	TypeName[echo.Context](),
	TypeName[gin.Context](),
	TypeName[fiber.Ctx](),
	TypeName[http.Request](),
	TypeName[http.ResponseWriter](),
	TypeName[context.Context](),
}

// BuiltinInjectableTypes are request-scoped types bound to a source without
// an annotation
var BuiltinInjectableTypes = map[string]route.Source{
	TypeName[url.Values]():           route.SourceQuery,
	TypeName[http.Header]():          route.SourceHeader,
	TypeName[io.Reader]():            route.SourceBody,
	TypeName[io.ReadCloser]():        route.SourceBody,
	TypeName[multipart.Form]():       route.SourceBody,
	TypeName[multipart.FileHeader](): route.SourceBody,
}

// BuiltinScalarTypes are named types mapped to primitives
var BuiltinScalarTypes = []string{
	TypeName[time.Time](),
	TypeName[time.Duration](),
	TypeName[uuid.UUID](),
	TypeName[json.Number](),
	TypeName[big.Int](),
	TypeName[big.Float](),
}

// BuiltinOptionalTypes are struct types that wrap a nullable payload in their
// first field
var BuiltinOptionalTypes = []string{
	SQLNull,
	TypeName[sql.NullString](),
	TypeName[sql.NullInt64](),
	TypeName[sql.NullInt32](),
	TypeName[sql.NullInt16](),
	TypeName[sql.NullByte](),
	TypeName[sql.NullFloat64](),
	TypeName[sql.NullBool](),
	TypeName[sql.NullTime](),
}

// TypeRegistry holds the qualified type names with special meaning during
// extraction. It is safe for concurrent use.
type TypeRegistry struct {
	contexts    *utils.BaseRegistry[string, struct{}]
	injectables *utils.BaseRegistry[string, route.Source]
	scalars     *utils.BaseRegistry[string, struct{}]
	optionals   *utils.BaseRegistry[string, struct{}]
	deferred    *utils.BaseRegistry[string, struct{}]
}

// NewTypeRegistry creates an empty registry
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		contexts:    newSet("context", "context type"),
		injectables: newInjectables(),
		scalars:     newSet("scalar", "scalar type"),
		optionals:   newSet("optional", "optional type"),
		deferred:    newSet("deferred", "deferred type"),
	}
}

// NewBuiltinTypeRegistry creates a registry holding every builtin type
func NewBuiltinTypeRegistry() *TypeRegistry {
	r := NewTypeRegistry()
	for _, name := range BuiltinContextTypes {
		mustRegister(r.RegisterContext(name))
	}
	for _, name := range slices.Sorted(maps.Keys(BuiltinInjectableTypes)) {
		mustRegister(r.RegisterInjectable(name, BuiltinInjectableTypes[name]))
	}
	for _, name := range BuiltinScalarTypes {
		mustRegister(r.RegisterScalar(name))
	}
	for _, name := range BuiltinOptionalTypes {
		mustRegister(r.RegisterOptional(name))
	}
	return r
}

// RegisterContext marks name as a request-context type. Registering a name
// twice is a no-op.
func (r *TypeRegistry) RegisterContext(name string) error {
	return registerOnce(r.contexts, name, struct{}{})
}

// RegisterInjectable binds name to source. Registering the same name with a
// different source is an error.
func (r *TypeRegistry) RegisterInjectable(name string, source route.Source) error {
	if source == route.SourceUnknown || source == route.SourceContext {
		return errors.WrapRegistrationError("injectable", name,
			fmt.Errorf("source must be query, header, path or body, got %s", source))
	}
	return registerOnce(r.injectables, name, source)
}

// RegisterScalar maps the named type to a primitive
func (r *TypeRegistry) RegisterScalar(name string) error {
	return registerOnce(r.scalars, name, struct{}{})
}

// RegisterOptional marks a struct type whose first field is its nullable
// payload
func (r *TypeRegistry) RegisterOptional(name string) error {
	return registerOnce(r.optionals, name, struct{}{})
}

// RegisterDeferred marks a generic named type as a deferred wrapper of its
// first type argument
func (r *TypeRegistry) RegisterDeferred(name string) error {
	return registerOnce(r.deferred, name, struct{}{})
}

func (r *TypeRegistry) IsContext(name string) bool  { return r.contexts.Has(name) }
func (r *TypeRegistry) IsScalar(name string) bool   { return r.scalars.Has(name) }
func (r *TypeRegistry) IsOptional(name string) bool { return r.optionals.Has(name) }
func (r *TypeRegistry) IsDeferred(name string) bool { return r.deferred.Has(name) }

// Injectable returns the source an injectable type binds to
func (r *TypeRegistry) Injectable(name string) (route.Source, bool) {
	return r.injectables.Get(name)
}

// ContextTypes returns the registered context types in lexical order
func (r *TypeRegistry) ContextTypes() []string {
	return utils.SortedKeys(r.contexts)
}

// DeferredTypes returns the registered deferred wrappers in lexical order
func (r *TypeRegistry) DeferredTypes() []string {
	return utils.SortedKeys(r.deferred)
}

// Clone returns an independent copy of the registry
func (r *TypeRegistry) Clone() *TypeRegistry {
	return &TypeRegistry{
		contexts:    r.contexts.Clone(),
		injectables: r.injectables.Clone(),
		scalars:     r.scalars.Clone(),
		optionals:   r.optionals.Clone(),
		deferred:    r.deferred.Clone(),
	}
}

var _ TypeLookup = (*TypeRegistry)(nil)

func newSet(name, keyDesc string) *utils.BaseRegistry[string, struct{}] {
	set := utils.NewBaseRegistry[string, struct{}](name, keyDesc)
	set.SetValidator(utils.NotEmptyKeyValidator[struct{}](keyDesc))
	return set
}

func newInjectables() *utils.BaseRegistry[string, route.Source] {
	injectables := utils.NewBaseRegistry[string, route.Source]("injectable", "injectable type")
	injectables.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[route.Source]("injectable type"),
		func(key string, source route.Source, existing map[string]route.Source) error {
			if prev, ok := existing[key]; ok && prev != source {
				return fmt.Errorf("injectable type '%s' is already bound to %s", key, prev)
			}
			return nil
		},
	))
	return injectables
}

func registerOnce[V any](r *utils.BaseRegistry[string, V], name string, value V) error {
	if err := r.Register(name, value); err != nil {
		return errors.WrapRegistrationError("type", name, err)
	}
	return nil
}

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("registry: builtin types: %v", err))
	}
}
