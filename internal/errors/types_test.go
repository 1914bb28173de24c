package errors

import (
	stderrors "errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceLocation_String(t *testing.T) {
	tests := []struct {
		loc      SourceLocation
		expected string
	}{
		{SourceLocation{}, "unknown location"},
		{SourceLocation{File: "a.go"}, "a.go"},
		{SourceLocation{File: "a.go", Line: 3}, "a.go:3"},
		{SourceLocation{File: "a.go", Line: 3, Column: 7}, "a.go:3:7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.loc.String())
	}
}

func TestBaseError_Builders(t *testing.T) {
	err := Wrap(LoadErrorCode, "failed to load", io.EOF).
		WithLocation(SourceLocation{File: "app.go", Line: 12}).
		WithContext("pattern", "./app").
		WithSuggestion("run go mod tidy")

	assert.Equal(t, "app.go:12: failed to load: EOF", err.Error())
	assert.Equal(t, LoadErrorCode, err.ErrorCode())
	assert.Equal(t, "./app", err.Context()["pattern"])
	assert.Equal(t, []string{"run go mod tidy"}, err.Suggestions())
	assert.ErrorIs(t, err, io.EOF)
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "LoadError", LoadErrorCode.String())
	assert.Equal(t, "TypeResolutionError", TypeResolutionErrorCode.String())
	assert.Equal(t, "UnknownError", ErrorCode(999).String())
}

type customErr struct{ msg string }

func (c *customErr) Error() string { return c.msg }

func TestMultipleErrors(t *testing.T) {
	multi := NewMultipleErrors()
	assert.NoError(t, multi.ErrorOrNil())

	multi.Add(nil)
	assert.True(t, multi.IsEmpty())

	multi.Add(New(SyntaxErrorCode, "bad directive"))
	multi.Add(&customErr{msg: "custom"})
	require.Equal(t, 2, multi.Count())

	err := multi.ErrorOrNil()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple errors (2 total)")
	assert.Contains(t, err.Error(), "1. bad directive")
	assert.Contains(t, err.Error(), "2. custom")

	var target *customErr
	assert.True(t, stderrors.As(err, &target))
	assert.Equal(t, "custom", target.msg)
	assert.True(t, multi.HasCode(SyntaxErrorCode))
	assert.False(t, multi.HasCode(LoadErrorCode))
}

func TestWrappers(t *testing.T) {
	err := WrapLoadError("./missing", io.ErrUnexpectedEOF)
	assert.Equal(t, LoadErrorCode, err.ErrorCode())
	assert.Contains(t, err.Error(), `failed to load package "./missing"`)

	nf := NewEntryNotFoundError("example.com/app", "App")
	assert.Equal(t, EntryNotFoundErrorCode, nf.ErrorCode())
	assert.Contains(t, nf.Error(), "entry type App not found in package example.com/app")
	assert.NotEmpty(t, nf.Suggestions())

	cfg := WrapConfigurationError("extract", "load", io.EOF)
	assert.Equal(t, ConfigurationErrorCode, cfg.ErrorCode())
	assert.Equal(t, "load", cfg.Context()["operation"])
}
