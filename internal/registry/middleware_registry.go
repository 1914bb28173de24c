package registry

import (
	"fmt"
	"strings"

	"github.com/toyz/axonroute/internal/utils"
)

// middlewareRegistry implements the MiddlewareRegistry interface
type middlewareRegistry struct {
	middlewares *utils.BaseRegistry[string, struct{}]
}

// NewMiddlewareRegistry creates a new middleware registry
func NewMiddlewareRegistry(names ...string) (MiddlewareRegistry, error) {
	middlewares := utils.NewBaseRegistry[string, struct{}]("middleware", "middleware")
	middlewares.SetValidator(utils.ChainValidators(
		utils.NotEmptyKeyValidator[struct{}]("middleware name"),
		utils.NoDuplicateValidator[string, struct{}]("middleware"),
	))

	r := &middlewareRegistry{middlewares: middlewares}
	for _, name := range names {
		if err := r.Register(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a middleware name to the registry
func (r *middlewareRegistry) Register(name string) error {
	return r.middlewares.Register(strings.TrimSpace(name), struct{}{})
}

// Validate checks that all middleware names exist in the registry
func (r *middlewareRegistry) Validate(middlewareNames []string) error {
	var missing []string

	for _, name := range middlewareNames {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if !r.middlewares.Has(name) {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("unknown middleware(s): %s", strings.Join(missing, ", "))
	}
	return nil
}

// Has reports whether name is registered
func (r *middlewareRegistry) Has(name string) bool {
	return r.middlewares.Has(name)
}

// Names returns the registered names in lexical order
func (r *middlewareRegistry) Names() []string {
	return utils.SortedKeys(r.middlewares)
}
