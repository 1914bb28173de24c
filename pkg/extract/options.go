package extract

import (
	"io"

	"github.com/toyz/axonroute/internal/discovery"
	"github.com/toyz/axonroute/pkg/route"
)

// FailureMode decides what happens to handlers whose route cannot be built
type FailureMode = discovery.FailureMode

const (
	// FailFast stops at the first failing handler
	FailFast = discovery.FailFast
	// SkipAndContinue returns the routes that could be built together with
	// an error listing every skipped handler
	SkipAndContinue = discovery.SkipAndContinue
)

type settings struct {
	cfg    Config
	output io.Writer
}

// Option adjusts the configuration of an Extractor
type Option func(*settings)

// WithDir sets the directory whose enclosing module is analysed
func WithDir(dir string) Option {
	return func(s *settings) { s.cfg.Dir = dir }
}

func WithFailureMode(mode FailureMode) Option {
	return func(s *settings) { s.cfg.FailureMode = mode.String() }
}

// WithLogLevel sets the diagnostic level: silent, error, warn, info, verbose
// or debug
func WithLogLevel(level string) Option {
	return func(s *settings) { s.cfg.LogLevel = level }
}

// WithOutput sends diagnostics to w without colors
func WithOutput(w io.Writer) Option {
	return func(s *settings) { s.output = w }
}

// WithContextTypes adds request-context types by qualified name
func WithContextTypes(names ...string) Option {
	return func(s *settings) { s.cfg.ContextTypes = append(s.cfg.ContextTypes, names...) }
}

// WithDeferredTypes adds generic deferred wrappers by qualified name
func WithDeferredTypes(names ...string) Option {
	return func(s *settings) { s.cfg.DeferredTypes = append(s.cfg.DeferredTypes, names...) }
}

// WithScalarTypes adds named types mapped to primitives
func WithScalarTypes(names ...string) Option {
	return func(s *settings) { s.cfg.ScalarTypes = append(s.cfg.ScalarTypes, names...) }
}

// WithInjectableType binds parameters of the named type to source when they
// carry no binding annotation
func WithInjectableType(name string, source route.Source) Option {
	return func(s *settings) {
		if s.cfg.InjectableTypes == nil {
			s.cfg.InjectableTypes = make(map[string]string)
		}
		s.cfg.InjectableTypes[name] = source.String()
	}
}

// WithVocabularies restricts the recognized annotation dialects
func WithVocabularies(names ...string) Option {
	return func(s *settings) { s.cfg.Vocabularies = names }
}

// WithMiddlewares lists the middleware names routes may refer to
func WithMiddlewares(names ...string) Option {
	return func(s *settings) { s.cfg.Middlewares = append(s.cfg.Middlewares, names...) }
}

func WithBuildTags(tags ...string) Option {
	return func(s *settings) { s.cfg.BuildTags = append(s.cfg.BuildTags, tags...) }
}
