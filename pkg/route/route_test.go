package route

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	for _, s := range []Source{SourceQuery, SourceHeader, SourcePath, SourceBody, SourceContext, SourceUnknown} {
		parsed, err := ParseSource(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	_, err := ParseSource("cookie")
	assert.Error(t, err)
}

func TestRoute_Parameter(t *testing.T) {
	r := Route{
		Method: "GET",
		Path:   "/httpNames",
		Parameters: []ParameterBinding{
			{Name: "Last-Modified-Since", Source: SourceHeader, Type: Primitive("string")},
			{Name: "x-search", Source: SourceQuery, Type: Primitive("string")},
		},
		Handler: "app.C.HTTPNames",
	}

	p, ok := r.Parameter("x-search")
	require.True(t, ok)
	assert.Equal(t, SourceQuery, p.Source)

	_, ok = r.Parameter("q")
	assert.False(t, ok)

	assert.Equal(t, "GET /httpNames", r.Pattern())
	assert.Equal(t, "GET /httpNames -> app.C.HTTPNames", r.String())
}

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "unbound",
			err:      &UnboundParameterError{Method: "app.C.Params", Index: 2, Param: "q", Position: "c.go:10"},
			contains: []string{"c.go:10", "app.C.Params", "parameter 2 (q)"},
		},
		{
			name:     "conflicting sources",
			err:      &ConflictingBindingError{Method: "app.C.P", Index: 0, Param: "id", Sources: []Source{SourceQuery, SourcePath}},
			contains: []string{"sources query, path"},
		},
		{
			name:     "conflicting names",
			err:      &ConflictingBindingError{Method: "app.C.P", Index: 0, Param: "id", Names: []string{"a", "b"}},
			contains: []string{`names "a", "b"`},
		},
		{
			name:     "conflicting route",
			err:      &ConflictingRouteError{Method: "app.C.P", Field: "method", Values: []string{"GET", "POST"}},
			contains: []string{`conflicting route method: "GET" vs "POST"`},
		},
		{
			name:     "unresolved",
			err:      &UnresolvedTypeError{Method: "app.C.P", Type: "T", Reason: "unbounded type parameter"},
			contains: []string{"app.C.P: cannot resolve type T: unbounded type parameter"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.contains {
				assert.Contains(t, tt.err.Error(), s)
			}
		})
	}
}

func TestErrors_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("discover: %w", &UnresolvedTypeError{
		Method:   "app.C.P",
		Type:     "T",
		Reason:   "load failed",
		Position: "c.go:3",
		Cause:    io.ErrUnexpectedEOF,
	})

	var unresolved *UnresolvedTypeError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "c.go:3", unresolved.Position)
	assert.True(t, strings.HasPrefix(unresolved.Error(), "c.go:3: "))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	var unbound *UnboundParameterError
	assert.False(t, errors.As(err, &unbound))
}
