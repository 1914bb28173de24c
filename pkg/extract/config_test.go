package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/axonroute/internal/errors"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "fail-fast", cfg.FailureMode)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
dir: ./app
vocabularies: [axon, swag]
context_types:
  - example.com/app/web.Context
deferred_types:
  - example.com/app/async.Promise
injectable_types:
  example.com/app/web.Session: header
middlewares: [Auth, Logging]
failure_mode: skip
build_tags: [integration]
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "./app", cfg.Dir)
	assert.Equal(t, []string{"axon", "swag"}, cfg.Vocabularies)
	assert.Equal(t, []string{"example.com/app/web.Context"}, cfg.ContextTypes)
	assert.Equal(t, []string{"example.com/app/async.Promise"}, cfg.DeferredTypes)
	assert.Equal(t, map[string]string{"example.com/app/web.Session": "header"}, cfg.InjectableTypes)
	assert.Equal(t, []string{"Auth", "Logging"}, cfg.Middlewares)
	assert.Equal(t, "skip", cfg.FailureMode)
	assert.Equal(t, []string{"integration"}, cfg.BuildTags)
	assert.Equal(t, "warn", cfg.LogLevel, "missing keys keep their defaults")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	var base *errors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, errors.ConfigurationErrorCode, base.ErrorCode())
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestParseConfig_UnknownKey(t *testing.T) {
	_, err := ParseConfig([]byte("failure_mod: skip\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failure_mod")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"unknown failure mode", func(c *Config) { c.FailureMode = "retry" }, "failure_mode"},
		{"unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"unknown vocabulary", func(c *Config) { c.Vocabularies = []string{"axon", "spring"} }, "vocabularies[1]"},
		{"duplicate vocabulary", func(c *Config) { c.Vocabularies = []string{"axon", "axon"} }, "vocabularies"},
		{"unqualified context type", func(c *Config) { c.ContextTypes = []string{"Context"} }, "context_types[0]"},
		{"pointer scalar type", func(c *Config) { c.ScalarTypes = []string{"*time.Time"} }, "scalar_types[0]"},
		{"unknown injectable source", func(c *Config) {
			c.InjectableTypes = map[string]string{"example.com/web.Session": "cookie"}
		}, "injectable_types[example.com/web.Session]"},
		{"empty middleware", func(c *Config) { c.Middlewares = []string{"Auth", ""} }, "middlewares[1]"},
		{"bad build tag", func(c *Config) { c.BuildTags = []string{"a b"} }, "build_tags[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var all *errors.MultipleErrors
			require.ErrorAs(t, err, &all)
			require.Equal(t, 1, all.Count())

			var base *errors.BaseError
			require.ErrorAs(t, all.Errors[0], &base)
			assert.Equal(t, tt.field, base.Context()["field"])
		})
	}
}

func TestIsQualified(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"net/http.Request", true},
		{"time.Time", true},
		{"example.com/app/web.Context", true},
		{"Context", false},
		{"example.com/app", false},
		{"example.com/app.", false},
		{"*time.Time", false},
		{"example.com/app.Box[int]", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isQualified(tt.name), tt.name)
	}
}
