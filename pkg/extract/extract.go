// Package extract produces the ordered route list of an application by
// loading its packages from source and analysing the handler methods
// reachable from an entry type.
//
//	routes, err := extract.Must(extract.New()).Routes(ctx, extract.EntryOf[app.App]())
//
// The entry type's own handler methods come first, then those of its fields
// in declaration order, depth first.
package extract

import (
	"context"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/toyz/axonroute/internal/annotations"
	"github.com/toyz/axonroute/internal/discovery"
	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/internal/registry"
	"github.com/toyz/axonroute/internal/resolver"
	"github.com/toyz/axonroute/internal/source"
	"github.com/toyz/axonroute/internal/utils"
	"github.com/toyz/axonroute/pkg/route"
)

// Entry names the application type routes are discovered from
type Entry struct {
	Package string
	Type    string
}

func (e Entry) String() string {
	return e.Package + "." + e.Type
}

// EntryOf returns the Entry of T. Pointers are dereferenced and generic
// instances name their origin type.
func EntryOf[T any]() Entry {
	t := reflect.TypeFor[T]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	name, _, _ := strings.Cut(t.Name(), "[")
	return Entry{Package: t.PkgPath(), Type: name}
}

// ParseEntry splits "pkg/path.Type" into an Entry
func ParseEntry(s string) (Entry, error) {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 || strings.LastIndexByte(s, '/') > dot {
		return Entry{}, errors.Newf(errors.ValidationErrorCode, "invalid entry %q", s).
			WithSuggestion("use the form \"example.com/app.App\"")
	}
	return Entry{Package: s[:dot], Type: s[dot+1:]}, nil
}

func (e Entry) validate() error {
	if e.Package == "" || e.Type == "" {
		return errors.Newf(errors.ValidationErrorCode, "invalid entry %q", e.String()).
			WithSuggestion("the entry must be a named type declared at package level")
	}
	return nil
}

// Extractor discovers routes. Every call to Routes loads packages afresh.
// An Extractor is not safe for concurrent use.
type Extractor struct {
	cfg         Config
	module      utils.ModuleInfo
	parser      *annotations.Parser
	types       *registry.TypeRegistry
	middlewares registry.MiddlewareRegistry
	mode        discovery.FailureMode
	diagnostics *utils.DiagnosticSystem
}

// New creates an Extractor from DefaultConfig and opts
func New(opts ...Option) (*Extractor, error) {
	return NewWithConfig(DefaultConfig(), opts...)
}

// NewWithConfig creates an Extractor from cfg, then applies opts
func NewWithConfig(cfg Config, opts ...Option) (*Extractor, error) {
	s := &settings{cfg: cfg.Clone()}
	for _, opt := range opts {
		opt(s)
	}
	cfg = s.cfg

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	module, err := utils.FindModule(dir)
	if err != nil {
		return nil, errors.WrapConfigurationError("dir", "resolve", err).
			WithSuggestion("run inside a Go module or set dir to a directory containing go.mod")
	}

	level, err := utils.ParseDiagnosticLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.WrapConfigurationError("log_level", "parse", err)
	}
	diagnostics := utils.NewDiagnosticSystem(level)
	if s.output != nil {
		diagnostics.WithOutput(s.output)
	}

	mode, err := discovery.ParseFailureMode(cfg.FailureMode)
	if err != nil {
		return nil, errors.WrapConfigurationError("failure_mode", "parse", err)
	}

	vocabularies := make([]annotations.Vocabulary, 0, len(cfg.Vocabularies))
	for _, name := range cfg.Vocabularies {
		v, err := annotations.ParseVocabulary(name)
		if err != nil {
			return nil, errors.WrapConfigurationError("vocabularies", "parse", err)
		}
		vocabularies = append(vocabularies, v)
	}

	types, err := typeRegistry(cfg)
	if err != nil {
		return nil, err
	}

	e := &Extractor{
		cfg:         cfg,
		module:      module,
		parser:      annotations.NewParser(nil, vocabularies...),
		types:       types,
		mode:        mode,
		diagnostics: diagnostics,
	}

	if len(cfg.Middlewares) > 0 {
		e.middlewares, err = registry.NewMiddlewareRegistry(cfg.Middlewares...)
		if err != nil {
			return nil, errors.WrapConfigurationError("middlewares", "register", err)
		}
	}

	diagnostics.Debug("Module %s at %s", module.Path, module.Root)
	return e, nil
}

// Must panics when err is not nil
func Must(e *Extractor, err error) *Extractor {
	if err != nil {
		panic(err)
	}
	return e
}

func typeRegistry(cfg Config) (*registry.TypeRegistry, error) {
	types := registry.NewBuiltinTypeRegistry()
	errs := errors.NewMultipleErrors()

	for _, name := range cfg.ContextTypes {
		errs.Add(types.RegisterContext(name))
	}
	for _, name := range cfg.ScalarTypes {
		errs.Add(types.RegisterScalar(name))
	}
	for _, name := range cfg.DeferredTypes {
		errs.Add(types.RegisterDeferred(name))
	}
	for _, name := range slices.Sorted(maps.Keys(cfg.InjectableTypes)) {
		src, err := route.ParseSource(cfg.InjectableTypes[name])
		if err != nil {
			errs.Add(err)
			continue
		}
		errs.Add(types.RegisterInjectable(name, src))
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return types, nil
}

// ModulePath returns the path of the module being analysed
func (e *Extractor) ModulePath() string {
	return e.module.Path
}

// Config returns the effective configuration
func (e *Extractor) Config() Config {
	return e.cfg.Clone()
}

// Routes loads the packages reachable from entry and returns one route per
// handler method, in discovery order. With SkipAndContinue the routes that
// could be built are returned along with the error.
func (e *Extractor) Routes(ctx context.Context, entry Entry) ([]route.Route, error) {
	if err := entry.validate(); err != nil {
		return nil, err
	}

	// Deferred types found while loading are registered per run
	types := e.types.Clone()

	loader := source.New(source.Config{
		Module:      e.module,
		BuildTags:   e.cfg.BuildTags,
		Parser:      e.parser,
		Types:       types,
		Diagnostics: e.diagnostics,
	}, entry.Package, entry.Type)

	opts := []discovery.Option{
		discovery.WithFailureMode(e.mode),
		discovery.WithDiagnostics(e.diagnostics),
	}
	if e.middlewares != nil {
		opts = append(opts, discovery.WithMiddlewareRegistry(e.middlewares))
	}

	e.diagnostics.Info("Extracting routes from %s", entry)
	return discovery.New(loader, resolver.New(types), opts...).Discover(ctx)
}
