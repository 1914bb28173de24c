package routetest

import (
	"fmt"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/axonroute/pkg/route"
)

// recorder wraps the running test and records failures instead of reporting
// them. FailNow ends the calling goroutine like the real one does.
type recorder struct {
	testing.TB
	failed   bool
	messages []string
}

func (r *recorder) Helper() {}
func (r *recorder) Fail()   { r.failed = true }
func (r *recorder) Failed() bool {
	return r.failed
}

func (r *recorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}

func (r *recorder) Errorf(format string, args ...any) {
	r.messages = append(r.messages, fmt.Sprintf(format, args...))
	r.failed = true
}

func (r *recorder) Error(args ...any) {
	r.Errorf("%s", fmt.Sprint(args...))
}

func (r *recorder) Fatalf(format string, args ...any) {
	r.Errorf(format, args...)
	r.FailNow()
}

func (r *recorder) Fatal(args ...any) {
	r.Error(args...)
	r.FailNow()
}

func (r *recorder) Logf(string, ...any) {}
func (r *recorder) Log(...any)          {}

func (r *recorder) output() string {
	return strings.Join(r.messages, "\n")
}

// run calls fn on its own goroutine so that FailNow can end it
func run(t *testing.T, fn func(tb *recorder)) *recorder {
	tb := &recorder{TB: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(tb)
	}()
	<-done
	return tb
}

func sample() []route.Route {
	return []route.Route{
		{Method: "GET", Path: "/users", DefaultResponse: route.Collection("[]string", route.Primitive("string"), false)},
		{Method: "POST", Path: "/users", DefaultResponse: route.Void()},
		{Method: "DELETE", Path: "/users/{id}", DefaultResponse: route.Void()},
	}
}

func TestIterator_ConsumeAllThenVerify(t *testing.T) {
	var seen []string
	tb := run(t, func(tb *recorder) {
		New(tb, sample()).
			Next(func(r route.Route) { seen = append(seen, r.Pattern()) }).
			Next(func(r route.Route) { seen = append(seen, r.Pattern()) }).
			Next(func(r route.Route) { seen = append(seen, r.Pattern()) }).
			Verify()
	})

	assert.False(t, tb.failed, tb.output())
	assert.Equal(t, []string{"GET /users", "POST /users", "DELETE /users/{id}"}, seen)
}

func TestIterator_VerifyWithUnconsumedRoutes(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		New(tb, sample()).
			Next(func(route.Route) {}).
			Verify()
	})

	require.True(t, tb.failed)
	assert.Contains(t, tb.output(), "2 of 3 routes were not consumed")
	assert.Contains(t, tb.output(), "POST /users")
}

func TestIterator_VerifyBeforeNext(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		New(tb, sample()).Verify()
	})

	require.True(t, tb.failed)
	assert.Contains(t, tb.output(), "3 of 3 routes were not consumed")
}

func TestIterator_VerifyEmpty(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		New(tb, nil).Verify()
	})
	assert.False(t, tb.failed)
}

func TestIterator_AssertFailureStopsIteration(t *testing.T) {
	calls := 0
	reachedVerify := false
	tb := run(t, func(tb *recorder) {
		it := New(tb, sample()).
			Next(func(r route.Route) {
				calls++
				assert.Equal(tb, "POST", r.Method)
			})
		it.Next(func(route.Route) { calls++ })
		reachedVerify = true
		it.Verify()
	})

	require.True(t, tb.failed)
	assert.Equal(t, 1, calls)
	assert.False(t, reachedVerify)
	assert.Contains(t, tb.output(), "Not equal")
	assert.Contains(t, tb.output(), t.Name())
}

func TestIterator_RequireFailureStopsIteration(t *testing.T) {
	var it *Iterator
	calls := 0
	tb := run(t, func(tb *recorder) {
		it = New(tb, sample())
		it.Next(func(r route.Route) {
			calls++
			require.Equal(tb, "/missing", r.Path)
		})
		it.Next(func(route.Route) { calls++ })
	})

	require.True(t, tb.failed)
	assert.Equal(t, 1, calls)
	assert.Equal(t, route.Failed, it.cursor.State())

	// a failed iterator offers nothing more
	tb = run(t, func(inner *recorder) {
		it.tb = inner
		it.Next(func(route.Route) { calls++ })
	})
	assert.True(t, tb.failed)
	assert.Equal(t, 1, calls)
	assert.Contains(t, tb.output(), route.ErrCursorFailed.Error())
}

func TestIterator_NextPastEnd(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		New(tb, sample()[:1]).
			Next(func(route.Route) {}).
			Next(func(route.Route) {})
	})

	require.True(t, tb.failed)
	assert.Contains(t, tb.output(), route.ErrNoMoreRoutes.Error())
}

func TestIterator_Expect(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		New(tb, sample()).
			Expect("GET", "/users", nil).
			Expect("POST", "/users", func(r route.Route) { assert.True(tb, r.DefaultResponse.IsVoid()) }).
			Expect("DELETE", "/users/{id}", nil).
			Verify()
	})
	assert.False(t, tb.failed, tb.output())

	tb = run(t, func(tb *recorder) {
		New(tb, sample()).
			Expect("POST", "/users", nil)
	})
	require.True(t, tb.failed)
	assert.Contains(t, tb.output(), "expected POST /users, got GET /users")
}

func TestIterator_Skip(t *testing.T) {
	tb := run(t, func(tb *recorder) {
		it := New(tb, sample()).Skip(2)
		assert.Equal(tb, 1, it.Remaining())
		it.Next(func(r route.Route) { assert.Equal(tb, "DELETE", r.Method) }).Verify()
	})
	assert.False(t, tb.failed, tb.output())
}

func TestIterator_EarlierFailureDoesNotStopIteration(t *testing.T) {
	calls := 0
	tb := run(t, func(tb *recorder) {
		tb.Errorf("unrelated failure")
		New(tb, sample()).
			Next(func(route.Route) { calls++ }).
			Next(func(route.Route) { calls++ }).
			Next(func(route.Route) { calls++ }).
			Verify()
	})
	assert.Equal(t, 3, calls)
	assert.Equal(t, []string{"unrelated failure"}, tb.messages)
}
