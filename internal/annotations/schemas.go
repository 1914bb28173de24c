package annotations

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toyz/axonroute/internal/utils"
	"github.com/toyz/axonroute/pkg/route"
)

// Built-in directive schemas

var validateMethod = utils.ValidateHTTPMethod("method")
var validatePath = utils.ValidateURLPath("path")

// RouteSchema defines //axon::route [METHOD] [PATH] [-Middleware=A,B]
var RouteSchema = DirectiveSchema{
	Key:         "axon::route",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentRoute,
	Levels:      LevelMethod,
	MaxArgs:     2,
	Description: "Marks a method as an HTTP handler; verb defaults to GET and path to empty",
	Flags: map[string]FlagSpec{
		"Middleware": {
			Description: "Comma-separated list of middleware names applied to the route",
			Validator: func(values []string) error {
				if len(values) == 0 {
					return fmt.Errorf("requires at least one middleware name")
				}
				for _, v := range values {
					if err := utils.NotEmpty("Middleware")(v); err != nil {
						return err
					}
				}
				return nil
			},
		},
	},
	Build: func(d *Directive, tag *Tag) error {
		for _, arg := range d.Args {
			if strings.HasPrefix(arg, "/") {
				if tag.Path != "" {
					return fmt.Errorf("path given twice (%s, %s)", tag.Path, arg)
				}
				if err := validatePath(arg); err != nil {
					return err
				}
				tag.Path = arg
				continue
			}
			if tag.Method != "" {
				return fmt.Errorf("method given twice (%s, %s)", tag.Method, arg)
			}
			method := strings.ToUpper(arg)
			if err := validateMethod(method); err != nil {
				return err
			}
			tag.Method = method
		}
		tag.Middleware = d.Flags["Middleware"]
		return nil
	},
	Examples: []string{
		"//axon::route",
		"//axon::route GET /users",
		"//axon::route DELETE /unit",
		"//axon::route /doParams",
		"//axon::route POST /users -Middleware=Auth,Logging",
	},
}

func bindingSchema(kind string, source route.Source) DirectiveSchema {
	return DirectiveSchema{
		Key:         "axon::" + kind,
		Vocabulary:  VocabularyAxon,
		Intent:      IntentBinding,
		Levels:      LevelParam,
		MaxArgs:     1,
		Description: fmt.Sprintf("Binds a parameter to the request %s; the name defaults to the parameter identifier", source),
		Build: func(d *Directive, tag *Tag) error {
			tag.Source = source
			if len(d.Args) == 1 {
				tag.Name = d.Args[0]
			}
			return nil
		},
		Examples: []string{
			"//axon::" + kind,
			"//axon::" + kind + " name",
		},
	}
}

// QuerySchema, HeaderSchema and PathSchema define the axon binding directives
var (
	QuerySchema  = bindingSchema("query", route.SourceQuery)
	HeaderSchema = bindingSchema("header", route.SourceHeader)
	PathSchema   = bindingSchema("path", route.SourcePath)
)

// BodySchema defines //axon::body
var BodySchema = DirectiveSchema{
	Key:         "axon::body",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentBinding,
	Levels:      LevelParam,
	Description: "Binds a parameter to the decoded request body",
	Build: func(d *Directive, tag *Tag) error {
		tag.Source = route.SourceBody
		return nil
	},
	Examples: []string{"//axon::body"},
}

// NamedSchema defines //axon::named NAME
var NamedSchema = DirectiveSchema{
	Key:         "axon::named",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentNameOverride,
	Levels:      LevelParam,
	MinArgs:     1,
	MaxArgs:     1,
	Description: "Overrides the wire name of a parameter regardless of its binding source",
	Build: func(d *Directive, tag *Tag) error {
		tag.Name = d.Args[0]
		return utils.NotEmpty("name")(tag.Name)
	},
	Examples: []string{"//axon::named x-search"},
}

// ResponseSchema defines //axon::response TYPE
var ResponseSchema = DirectiveSchema{
	Key:         "axon::response",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentResponse,
	Levels:      LevelMethod,
	MinArgs:     1,
	MaxArgs:     -1,
	Description: "Declares the response payload type explicitly as a Go type expression",
	Build: func(d *Directive, tag *Tag) error {
		tag.TypeExpr = strings.Join(d.Args, " ")
		return nil
	},
	Examples: []string{
		"//axon::response []User",
		"//axon::response map[string]any",
		"//axon::response *models.Page[models.User]",
	},
}

// ControllerSchema defines //axon::controller
var ControllerSchema = DirectiveSchema{
	Key:         "axon::controller",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentController,
	Levels:      LevelType,
	Description: "Marks a struct whose methods are route handlers",
	Build:       func(*Directive, *Tag) error { return nil },
	Examples:    []string{"//axon::controller"},
}

// DeferredSchema defines //axon::deferred
var DeferredSchema = DirectiveSchema{
	Key:         "axon::deferred",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentDeferred,
	Levels:      LevelType,
	Description: "Marks a generic type as an asynchronous wrapper of its first type argument",
	Build:       func(*Directive, *Tag) error { return nil },
	Examples:    []string{"//axon::deferred"},
}

// DispatchSchema defines //axon::dispatch [EXECUTOR]
var DispatchSchema = DirectiveSchema{
	Key:         "axon::dispatch",
	Vocabulary:  VocabularyAxon,
	Intent:      IntentDispatch,
	Levels:      LevelMethod | LevelType,
	MaxArgs:     1,
	Description: "Names the executor handlers run on; a method-level value overrides the controller",
	Build: func(d *Directive, tag *Tag) error {
		tag.Name = route.DefaultDispatch
		if len(d.Args) == 1 {
			tag.Name = d.Args[0]
		}
		return nil
	},
	Examples: []string{"//axon::dispatch", "//axon::dispatch single"},
}

func verbSchema(method string) DirectiveSchema {
	return DirectiveSchema{
		Key:         "@" + method,
		Vocabulary:  VocabularyJAXRS,
		Intent:      IntentRoute,
		Levels:      LevelMethod,
		Description: "Sets the HTTP verb to " + method,
		Build: func(d *Directive, tag *Tag) error {
			tag.Method = method
			return nil
		},
		Examples: []string{"//@" + method},
	}
}

// JAXRSPathSchema defines //@Path("/p")
var JAXRSPathSchema = DirectiveSchema{
	Key:         "@Path",
	Vocabulary:  VocabularyJAXRS,
	Intent:      IntentRoute,
	Levels:      LevelMethod,
	MaxCall:     1,
	Description: "Sets the route path; without a verb directive the method is GET",
	Build: func(d *Directive, tag *Tag) error {
		if len(d.Call) != 1 {
			return fmt.Errorf("requires exactly one path value")
		}
		if err := validatePath(d.Call[0]); err != nil {
			return err
		}
		tag.Path = d.Call[0]
		return nil
	},
	Examples: []string{`//@Path("/unit")`},
}

func paramSchema(name string, source route.Source) DirectiveSchema {
	return DirectiveSchema{
		Key:         "@" + name,
		Vocabulary:  VocabularyJAXRS,
		Intent:      IntentBinding,
		Levels:      LevelParam,
		MaxCall:     1,
		Description: fmt.Sprintf("Binds a parameter to the request %s", source),
		Build: func(d *Directive, tag *Tag) error {
			tag.Source = source
			if len(d.Call) == 1 {
				tag.Name = d.Call[0]
			}
			return nil
		},
		Examples: []string{"//@" + name, `//@` + name + `("name")`},
	}
}

// JAXRSNamedSchema defines //@Named("n")
var JAXRSNamedSchema = DirectiveSchema{
	Key:         "@Named",
	Vocabulary:  VocabularyJAXRS,
	Intent:      IntentNameOverride,
	Levels:      LevelParam,
	MaxCall:     1,
	Description: "Overrides the wire name of a parameter",
	Build: func(d *Directive, tag *Tag) error {
		if len(d.Call) != 1 {
			return fmt.Errorf("requires exactly one name")
		}
		tag.Name = d.Call[0]
		return utils.NotEmpty("name")(tag.Name)
	},
	Examples: []string{`//@Named("x-search")`},
}

// SwagRouterSchema defines // @Router /path [verb]
var SwagRouterSchema = DirectiveSchema{
	Key:         "@Router",
	Vocabulary:  VocabularySwag,
	Intent:      IntentRoute,
	Levels:      LevelMethod,
	MinArgs:     1,
	MaxArgs:     2,
	Description: "swaggo router comment",
	Build: func(d *Directive, tag *Tag) error {
		if err := validatePath(d.Args[0]); err != nil {
			return err
		}
		tag.Path = d.Args[0]
		if len(d.Args) == 2 {
			verb := d.Args[1]
			if !strings.HasPrefix(verb, "[") || !strings.HasSuffix(verb, "]") {
				return fmt.Errorf("verb must be written as [verb], got %s", verb)
			}
			method := strings.ToUpper(strings.Trim(verb, "[]"))
			if err := validateMethod(method); err != nil {
				return err
			}
			tag.Method = method
		}
		return nil
	},
	Examples: []string{"// @Router /users/{id} [get]"},
}

// SwagSuccessSchema defines // @Success CODE {object|array} TYPE ["desc"]
var SwagSuccessSchema = DirectiveSchema{
	Key:         "@Success",
	Vocabulary:  VocabularySwag,
	Intent:      IntentResponse,
	Levels:      LevelMethod,
	MinArgs:     1,
	MaxArgs:     4,
	Description: "swaggo success response; {array} wraps the type in a slice",
	Build: func(d *Directive, tag *Tag) error {
		code, err := strconv.Atoi(d.Args[0])
		if err != nil || code < 200 || code > 299 {
			return fmt.Errorf("status code must be 2xx, got %s", d.Args[0])
		}
		rest := d.Args[1:]
		if len(rest) == 0 || !isSwagKind(rest[0]) {
			// a bare code, optionally with a description, declares no body
			return nil
		}
		if len(rest) < 2 {
			return fmt.Errorf("%s needs a type", rest[0])
		}
		typeExpr := rest[1]
		if rest[0] == "{array}" {
			typeExpr = "[]" + typeExpr
		}
		tag.TypeExpr = typeExpr
		return nil
	},
	Examples: []string{
		"// @Success 200 {object} model.User",
		"// @Success 200 {array} string",
		`// @Success 204 "No Content"`,
	},
}

func isSwagKind(arg string) bool {
	return strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}")
}

// BuiltinSchemas returns every builtin directive schema
func BuiltinSchemas() []DirectiveSchema {
	schemas := []DirectiveSchema{
		RouteSchema,
		QuerySchema,
		HeaderSchema,
		PathSchema,
		BodySchema,
		NamedSchema,
		ResponseSchema,
		ControllerSchema,
		DeferredSchema,
		DispatchSchema,
		JAXRSPathSchema,
		paramSchema("QueryParam", route.SourceQuery),
		paramSchema("HeaderParam", route.SourceHeader),
		paramSchema("PathParam", route.SourcePath),
		JAXRSNamedSchema,
		SwagRouterSchema,
		SwagSuccessSchema,
	}
	for _, method := range utils.HTTPMethods {
		schemas = append(schemas, verbSchema(method))
	}
	return schemas
}

// RegisterBuiltinSchemas registers every builtin directive
func RegisterBuiltinSchemas(registry SchemaRegistry) error {
	for _, schema := range BuiltinSchemas() {
		if err := registry.Register(schema); err != nil {
			return fmt.Errorf("failed to register %s: %w", schema.Key, err)
		}
	}
	return nil
}
