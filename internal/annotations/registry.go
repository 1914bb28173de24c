package annotations

import (
	"fmt"
	"sync"

	"github.com/toyz/axonroute/internal/utils"
)

// SchemaRegistry stores the directives a Parser recognizes, keyed by
// directive key ("axon::route", "@GET", "@Router")
type SchemaRegistry interface {
	Register(schema DirectiveSchema) error
	Lookup(key string) (DirectiveSchema, bool)
	Keys() []string
}

type registry struct {
	schemas *utils.BaseRegistry[string, DirectiveSchema]
}

// NewRegistry creates an empty schema registry
func NewRegistry() SchemaRegistry {
	schemas := utils.NewBaseRegistry[string, DirectiveSchema]("directive", "directive")
	schemas.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[DirectiveSchema]("directive key"),
		utils.NoDuplicateValidator[string, DirectiveSchema]("directive"),
		validateSchema,
	))
	return &registry{schemas: schemas}
}

var (
	defaultRegistry     SchemaRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry holding every builtin directive
func DefaultRegistry() SchemaRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(fmt.Sprintf("annotations: builtin schemas: %v", err))
		}
	})
	return defaultRegistry
}

func (r *registry) Register(schema DirectiveSchema) error {
	return r.schemas.Register(schema.Key, schema)
}

func (r *registry) Lookup(key string) (DirectiveSchema, bool) {
	return r.schemas.Get(key)
}

func (r *registry) Keys() []string {
	return utils.SortedKeys(r.schemas)
}

func validateSchema(key string, schema DirectiveSchema, _ map[string]DirectiveSchema) error {
	if schema.Key != key {
		return fmt.Errorf("schema key %q does not match registration key %q", schema.Key, key)
	}
	if schema.Levels == 0 {
		return fmt.Errorf("directive %s must allow at least one level", key)
	}
	if schema.MaxArgs >= 0 && schema.MaxArgs < schema.MinArgs {
		return fmt.Errorf("directive %s: max args %d below min args %d", key, schema.MaxArgs, schema.MinArgs)
	}
	if schema.Build == nil {
		return fmt.Errorf("directive %s has no build function", key)
	}
	return nil
}
