// Package routetest asserts discovered routes one by one, in discovery order,
// from a test.
//
//	routetest.For[app.App](t).
//		Next(func(r route.Route) { assert.Equal(t, "GET", r.Method) }).
//		Next(func(r route.Route) { ... }).
//		Verify()
//
// An assertion that fails the test stops the iteration: no further routes are
// handed out and Verify is never reached.
package routetest

import (
	"context"
	"errors"
	"testing"

	"github.com/toyz/axonroute/pkg/extract"
	"github.com/toyz/axonroute/pkg/route"
)

var errAssertionFailed = errors.New("assertion failed")

// Iterator hands routes to assertion functions over a route.Cursor
type Iterator struct {
	tb     testing.TB
	cursor *route.Cursor
}

// New returns an iterator over routes
func New(tb testing.TB, routes []route.Route) *Iterator {
	tb.Helper()
	return &Iterator{tb: tb, cursor: route.NewCursor(routes)}
}

// For extracts the routes of the entry type T and returns an iterator over
// them. Extraction errors fail the test immediately.
func For[T any](tb testing.TB, opts ...extract.Option) *Iterator {
	tb.Helper()

	e, err := extract.New(opts...)
	if err != nil {
		tb.Fatalf("routetest: configure: %v", err)
	}

	entry := extract.EntryOf[T]()
	routes, err := e.Routes(context.Background(), entry)
	if err != nil {
		tb.Fatalf("routetest: extract routes of %s: %v", entry, err)
	}
	return New(tb, routes)
}

// Next passes the next route to assert
func (it *Iterator) Next(assert func(route.Route)) *Iterator {
	it.tb.Helper()
	it.check(it.cursor.Next(it.guard(assert)))
	return it
}

// Expect passes the next route to assert after checking its method and path
func (it *Iterator) Expect(method, path string, assert func(route.Route)) *Iterator {
	it.tb.Helper()
	it.check(it.cursor.Expect(method, path, it.guard(assert)))
	return it
}

// Skip consumes n routes without asserting them
func (it *Iterator) Skip(n int) *Iterator {
	it.tb.Helper()
	for range n {
		it.check(it.cursor.Next(nil))
	}
	return it
}

// Remaining returns how many routes are left
func (it *Iterator) Remaining() int {
	return it.cursor.Remaining()
}

// Verify fails the test unless every route was consumed
func (it *Iterator) Verify() {
	it.tb.Helper()
	if err := it.cursor.Verify(); err != nil {
		it.tb.Fatalf("routetest: %v", err)
	}
}

// guard turns a test failure recorded during assert into an error, so the
// cursor stops handing out routes
func (it *Iterator) guard(assert func(route.Route)) func(route.Route) error {
	if assert == nil {
		return nil
	}
	return func(r route.Route) error {
		failed := it.tb.Failed()
		assert(r)
		if !failed && it.tb.Failed() {
			return errAssertionFailed
		}
		return nil
	}
}

func (it *Iterator) check(err error) {
	it.tb.Helper()
	switch {
	case err == nil:
	case errors.Is(err, errAssertionFailed):
		it.tb.FailNow()
	default:
		it.tb.Fatalf("routetest: %v", err)
	}
}
