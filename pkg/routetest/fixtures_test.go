package routetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/axonroute/internal/testfixtures/dispatch"
	"github.com/toyz/axonroute/internal/testfixtures/i2598"
	"github.com/toyz/axonroute/internal/testfixtures/kt"
	"github.com/toyz/axonroute/pkg/route"
)

const ktPkg = "github.com/toyz/axonroute/internal/testfixtures/kt"

func param(t *testing.T, r route.Route, name string) route.ParameterBinding {
	t.Helper()
	p, ok := r.Parameter(name)
	require.True(t, ok, "%s has no parameter %q: %v", r.Pattern(), name, r.Parameters)
	return p
}

func TestKtController(t *testing.T) {
	str := route.Primitive("string")

	For[kt.App](t).
		Expect("GET", "", func(r route.Route) {
			assert.Equal(t, ktPkg+".KtController.DoSomething", r.Handler)
			assert.True(t, str.Equal(r.DefaultResponse), r.DefaultResponse.String())
			assert.Empty(t, r.Parameters)
		}).
		Expect("DELETE", "/unit", func(r route.Route) {
			assert.Equal(t, route.KindVoid, r.DefaultResponse.Kind())
		}).
		Expect("GET", "/doMap", func(r route.Route) {
			assert.Equal(t, route.KindMap, r.DefaultResponse.Kind())
			assert.Equal(t, "map[string]any", r.DefaultResponse.Name())
			assert.True(t, route.Bean("any", false).Equal(r.DefaultResponse.Value()))
		}).
		Expect("GET", "/doParams", func(r route.Route) {
			assert.True(t, route.Bean(ktPkg+".ABean", false).Equal(r.DefaultResponse))
			require.Len(t, r.Parameters, 4)

			i := param(t, r, "I")
			assert.Equal(t, route.SourceQuery, i.Source)
			assert.Equal(t, "int", i.Type.Name())
			assert.False(t, i.Type.Nullable())

			oi := param(t, r, "oI")
			assert.Equal(t, "int", oi.Type.Name())
			assert.True(t, oi.Type.Nullable())

			q := param(t, r, "q")
			assert.Equal(t, "string", q.Type.Name())
			assert.False(t, q.Type.Nullable())

			nullq := param(t, r, "nullq")
			assert.Equal(t, "string", nullq.Type.Name())
			assert.True(t, nullq.Type.Nullable())
		}).
		Expect("GET", "/coroutine", func(r route.Route) {
			assert.Equal(t, route.KindCollection, r.DefaultResponse.Kind())
			assert.True(t, str.Equal(r.DefaultResponse.Elem()))

			require.Len(t, r.Parameters, 2)
			for _, p := range r.Parameters {
				assert.Equal(t, route.SourceContext, p.Source)
				assert.Empty(t, p.Name)
			}
		}).
		Expect("GET", "/future", func(r route.Route) {
			assert.True(t, str.Equal(r.DefaultResponse), r.DefaultResponse.String())
		}).
		Expect("GET", "/httpNames", func(r route.Route) {
			assert.True(t, str.Equal(r.DefaultResponse))
			require.Len(t, r.Parameters, 2)

			header := r.Parameters[0]
			assert.Equal(t, route.SourceHeader, header.Source)
			assert.Equal(t, "Last-Modified-Since", header.Name)

			search := r.Parameters[1]
			assert.Equal(t, route.SourceQuery, search.Source)
			assert.Equal(t, "x-search", search.Name)
		}).
		Verify()
}

func TestContextOnlyHandler(t *testing.T) {
	For[i2598.App](t).
		Next(func(r route.Route) {
			assert.Equal(t, "github.com/labstack/echo/v4.Context", r.DefaultResponse.Name())
			require.Len(t, r.Parameters, 1)
			assert.Equal(t, route.SourceContext, r.Parameters[0].Source)
		}).
		Verify()
}

func TestRouteDispatch(t *testing.T) {
	For[dispatch.RouteDispatch](t).
		Expect("GET", "/toplevel", func(r route.Route) {
			assert.Equal(t, route.DefaultDispatch, r.Dispatch)
			assert.True(t, r.DefaultResponse.IsVoid())
		}).
		Expect("GET", "/methodlevel", func(r route.Route) {
			assert.Equal(t, "single", r.Dispatch)
		}).
		Verify()
}
