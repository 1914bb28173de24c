package extract

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/toyz/axonroute/internal/errors"
)

// Config holds the extraction settings. It can be loaded from YAML with
// LoadConfig or built from DefaultConfig and options.
type Config struct {
	// Dir is any directory inside the module to analyse. Empty means the
	// working directory.
	Dir string `yaml:"dir"`

	// Vocabularies restricts the recognized annotation dialects, all of
	// them when empty
	Vocabularies []string `yaml:"vocabularies" validate:"unique,dive,oneof=axon jaxrs swag"`

	// ContextTypes, ScalarTypes and DeferredTypes are qualified type names
	// ("pkg/path.Name") added to the built-in sets
	ContextTypes  []string `yaml:"context_types" validate:"dive,qualified"`
	ScalarTypes   []string `yaml:"scalar_types" validate:"dive,qualified"`
	DeferredTypes []string `yaml:"deferred_types" validate:"dive,qualified"`

	// InjectableTypes maps a qualified type name to the source it is
	// injected from
	InjectableTypes map[string]string `yaml:"injectable_types" validate:"dive,keys,qualified,endkeys,oneof=query header path body"`

	// Middlewares lists the known middleware names. When set, a route naming
	// any other middleware fails.
	Middlewares []string `yaml:"middlewares" validate:"unique,dive,required"`

	FailureMode string   `yaml:"failure_mode" validate:"omitempty,oneof=fail-fast skip"`
	LogLevel    string   `yaml:"log_level" validate:"omitempty,oneof=silent error warn info verbose debug"`
	BuildTags   []string `yaml:"build_tags" validate:"dive,buildtag"`
}

var (
	validate = newValidator()
	buildTag = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("qualified", func(fl validator.FieldLevel) bool {
		return isQualified(fl.Field().String())
	})
	_ = v.RegisterValidation("buildtag", func(fl validator.FieldLevel) bool {
		return buildTag.MatchString(fl.Field().String())
	})
	return v
}

// isQualified reports whether s looks like "pkg/path.Name"
func isQualified(s string) bool {
	dot := strings.LastIndexByte(s, '.')
	if dot <= 0 || dot == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t*[]") && strings.LastIndexByte(s, '/') < dot
}

// DefaultConfig returns the settings used when nothing is configured
func DefaultConfig() Config {
	return Config{
		FailureMode: "fail-fast",
		LogLevel:    "warn",
	}
}

// Clone returns a copy of c that shares no slices or maps with it
func (c Config) Clone() Config {
	c.Vocabularies = slices.Clone(c.Vocabularies)
	c.ContextTypes = slices.Clone(c.ContextTypes)
	c.ScalarTypes = slices.Clone(c.ScalarTypes)
	c.DeferredTypes = slices.Clone(c.DeferredTypes)
	c.InjectableTypes = maps.Clone(c.InjectableTypes)
	c.Middlewares = slices.Clone(c.Middlewares)
	c.BuildTags = slices.Clone(c.BuildTags)
	return c
}

// LoadConfig reads a YAML configuration file. Keys missing from the file keep
// their DefaultConfig values; unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.WrapConfigurationError(path, "read", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML configuration data and validates it
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return Config{}, errors.WrapConfigurationError("extract", "decode", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against its allowed values
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.WrapConfigurationError("extract", "validate", err)
	}

	all := errors.NewMultipleErrors()
	for _, fe := range fieldErrs {
		all.Add(errors.Newf(errors.ConfigurationErrorCode, "%s: %s", fieldPath(fe), describe(fe)).
			WithContext("field", fieldPath(fe)).
			WithContext("value", fe.Value()))
	}
	return all.ErrorOrNil()
}

// fieldPath drops the struct name from the namespace, "Config.failure_mode"
// becomes "failure_mode"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "qualified":
		return fmt.Sprintf("%q is not a qualified type name like \"net/http.Request\"", fe.Value())
	case "unique":
		return "contains duplicates"
	case "required":
		return "must not be empty"
	case "buildtag":
		return fmt.Sprintf("%q is not a valid build tag", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
