package registry

import "github.com/toyz/axonroute/pkg/route"

// TypeLookup answers the questions the reconciler and resolver ask about a
// qualified type name such as "github.com/labstack/echo/v4.Context"
type TypeLookup interface {
	IsContext(name string) bool
	Injectable(name string) (route.Source, bool)
	IsScalar(name string) bool
	IsOptional(name string) bool
	IsDeferred(name string) bool
}

// MiddlewareRegistry defines the interface for tracking and validating the
// middleware names routes may reference
type MiddlewareRegistry interface {
	Register(name string) error
	Validate(middlewareNames []string) error
	Has(name string) bool
	Names() []string
}
