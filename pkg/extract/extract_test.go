package extract

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/axonroute/internal/errors"
	"github.com/toyz/axonroute/internal/testfixtures/kt"
	"github.com/toyz/axonroute/internal/testfixtures/shop"
	"github.com/toyz/axonroute/pkg/route"
)

const shopPkg = "github.com/toyz/axonroute/internal/testfixtures/shop"

func TestEntryOf(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
		want  Entry
	}{
		{"value", EntryOf[kt.App](), Entry{"github.com/toyz/axonroute/internal/testfixtures/kt", "App"}},
		{"pointer", EntryOf[*shop.App](), Entry{shopPkg, "App"}},
		{"generic instance", EntryOf[shop.Store[shop.Item]](), Entry{shopPkg, "Store"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.entry)
		})
	}
}

func TestParseEntry(t *testing.T) {
	entry, err := ParseEntry("example.com/app/web.App")
	require.NoError(t, err)
	assert.Equal(t, Entry{"example.com/app/web", "App"}, entry)
	assert.Equal(t, "example.com/app/web.App", entry.String())

	for _, bad := range []string{"", "App", "example.com/app", "example.com/app."} {
		_, err := ParseEntry(bad)
		assert.Error(t, err, bad)
	}
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(WithLogLevel("loud"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log_level")

	_, err = New(WithInjectableType("net/url.Values", route.SourceHeader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bound to query")
}

func TestNew_OutsideModule(t *testing.T) {
	_, err := New(WithDir(t.TempDir()))
	require.Error(t, err)

	var base *errors.BaseError
	require.ErrorAs(t, err, &base)
	assert.Equal(t, errors.ConfigurationErrorCode, base.ErrorCode())
}

func TestNew_AppliesOptionsAfterConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Middlewares = []string{"Auth"}

	e, err := NewWithConfig(cfg,
		WithFailureMode(SkipAndContinue),
		WithMiddlewares("Audit"),
		WithBuildTags("integration"),
		WithContextTypes("example.com/web.Context"),
		WithScalarTypes("example.com/web.ID"),
		WithDeferredTypes("example.com/web.Promise"),
	)
	require.NoError(t, err)

	got := e.Config()
	assert.Equal(t, "skip", got.FailureMode)
	assert.Equal(t, []string{"Auth", "Audit"}, got.Middlewares)
	assert.Equal(t, []string{"integration"}, got.BuildTags)
	assert.Equal(t, "github.com/toyz/axonroute", e.ModulePath())
}

func TestNew_DoesNotMutateCallerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Middlewares = make([]string, 1, 4)
	cfg.Middlewares[0] = "Auth"
	cfg.InjectableTypes = map[string]string{"example.com/web.Session": "header"}

	e, err := NewWithConfig(cfg,
		WithMiddlewares("Audit"),
		WithInjectableType("example.com/web.User", route.SourceQuery),
	)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"example.com/web.Session": "header"}, cfg.InjectableTypes)
	assert.Equal(t, []string{"Auth"}, cfg.Middlewares)
	assert.Empty(t, cfg.Middlewares[:2][1])

	got := e.Config()
	assert.Len(t, got.InjectableTypes, 2)
	got.InjectableTypes["example.com/web.Other"] = "path"
	assert.Len(t, e.Config().InjectableTypes, 2)
}

func TestNew_FailureModes(t *testing.T) {
	for _, mode := range []string{"fail-fast", "skip"} {
		cfg := DefaultConfig()
		cfg.FailureMode = mode
		_, err := NewWithConfig(cfg)
		assert.NoError(t, err, mode)
	}

	for _, mode := range []string{"skip-and-continue", "SKIP", "retry"} {
		cfg := DefaultConfig()
		cfg.FailureMode = mode
		_, err := NewWithConfig(cfg)
		require.Error(t, err, mode)
		assert.Contains(t, err.Error(), "failure_mode", mode)
	}
}

func TestRoutes_InvalidEntry(t *testing.T) {
	e := Must(New())
	_, err := e.Routes(context.Background(), Entry{Type: "App"})
	require.Error(t, err)
}

func TestRoutes_Shop(t *testing.T) {
	e := Must(New(WithMiddlewares("Auth", "Audit")))

	routes, err := e.Routes(context.Background(), EntryOf[shop.App]())
	require.NoError(t, err)

	patterns := make([]string, len(routes))
	for i, r := range routes {
		patterns[i] = r.Pattern()
	}
	assert.Equal(t, []string{
		"GET /users",
		"GET /users/{id}",
		"POST /users",
		"GET /users/search",
		"GET /users/export",
		"GET /items",
		"GET /items/{sku}",
		"GET /events",
		"GET /events/last",
	}, patterns)

	user := route.Bean(shopPkg+".User", false)
	item := route.Bean(shopPkg+".Item", false)
	event := route.Bean(shopPkg+".Event", false)

	list := routes[0]
	assert.Equal(t, shopPkg+".UserController.List", list.Handler)
	assert.True(t, route.Collection("[]"+shopPkg+".User", user, false).Equal(list.DefaultResponse), list.DefaultResponse.String())
	require.Len(t, list.Parameters, 1)
	assert.Equal(t, route.SourceContext, list.Parameters[0].Source)
	assert.Empty(t, list.Parameters[0].Name)

	get := routes[1]
	assert.True(t, route.Bean(shopPkg+".User", true).Equal(get.DefaultResponse))
	id, ok := get.Parameter("id")
	require.True(t, ok)
	assert.Equal(t, route.SourcePath, id.Source)
	assert.True(t, route.Primitive("github.com/google/uuid.UUID").Equal(id.Type), id.Type.String())

	create := routes[2]
	assert.Equal(t, []string{"Auth"}, create.Middleware)
	body, ok := create.Parameter("user")
	require.True(t, ok)
	assert.Equal(t, route.SourceBody, body.Source)
	assert.True(t, user.Equal(body.Type))

	filter, ok := routes[3].Parameter("filter")
	require.True(t, ok)
	assert.Equal(t, route.SourceQuery, filter.Source)

	export := routes[4]
	assert.Equal(t, []string{"Auth", "Audit"}, export.Middleware)
	assert.True(t, route.Collection("[]"+shopPkg+".User", user, false).Equal(export.DefaultResponse))

	items := routes[5]
	assert.Equal(t, shopPkg+".Store.All", items.Handler)
	assert.True(t, route.Collection("[]"+shopPkg+".Item", item, false).Equal(items.DefaultResponse))

	one := routes[6]
	assert.True(t, route.Bean(shopPkg+".Item", true).Equal(one.DefaultResponse))
	sku, ok := one.Parameter("sku")
	require.True(t, ok)
	assert.True(t, route.Primitive("string").Equal(sku.Type))

	assert.True(t, event.Equal(routes[7].DefaultResponse), "channel payload")
	assert.True(t, event.Equal(routes[8].DefaultResponse), "swag success type")
}

func TestRoutes_UnknownMiddleware(t *testing.T) {
	t.Run("fail fast", func(t *testing.T) {
		e := Must(New(WithMiddlewares("Auth")))

		_, err := e.Routes(context.Background(), EntryOf[shop.App]())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Audit")
	})

	t.Run("skip and continue", func(t *testing.T) {
		var out bytes.Buffer
		e := Must(New(
			WithMiddlewares("Auth"),
			WithFailureMode(SkipAndContinue),
			WithOutput(&out),
		))

		routes, err := e.Routes(context.Background(), EntryOf[shop.App]())
		require.Error(t, err)
		assert.Len(t, routes, 8)

		var all *errors.MultipleErrors
		require.ErrorAs(t, err, &all)
		assert.Equal(t, 1, all.Count())
		assert.Contains(t, out.String(), "Skipping "+shopPkg+".UserController.Export")
	})
}

func TestRoutes_Vocabularies(t *testing.T) {
	e := Must(New(WithVocabularies("axon")))

	routes, err := e.Routes(context.Background(), EntryOf[kt.App]())
	require.NoError(t, err)

	patterns := make([]string, len(routes))
	for i, r := range routes {
		patterns[i] = r.Pattern()
	}
	assert.Equal(t, []string{"GET", "GET /doMap", "GET /coroutine", "GET /future"}, patterns)
}

func TestRoutes_Diagnostics(t *testing.T) {
	var out bytes.Buffer
	e := Must(New(WithLogLevel("verbose"), WithOutput(&out)))

	_, err := e.Routes(context.Background(), EntryOf[kt.App]())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Extracting routes from github.com/toyz/axonroute/internal/testfixtures/kt.App")
	assert.Contains(t, out.String(), "Discovered 7 handler(s)")
	assert.Contains(t, out.String(), "GET /doMap")
}

func TestRoutes_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Must(New()).Routes(ctx, EntryOf[kt.App]())
	assert.ErrorIs(t, err, context.Canceled)
}
