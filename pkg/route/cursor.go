package route

// State is the lifecycle state of a Cursor.
type State int

const (
	NotStarted State = iota
	Iterating
	Verified
	Failed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not-started"
	case Iterating:
		return "iterating"
	case Verified:
		return "verified"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Cursor hands routes to assertions one at a time, in discovery order, and
// checks on Verify that every route was consumed. A Cursor is not safe for
// concurrent use.
type Cursor struct {
	routes []Route
	pos    int
	state  State
}

// NewCursor returns a cursor over routes. The slice is copied.
func NewCursor(routes []Route) *Cursor {
	return &Cursor{routes: append([]Route(nil), routes...)}
}

func (c *Cursor) State() State   { return c.state }
func (c *Cursor) Remaining() int { return len(c.routes) - c.pos }
func (c *Cursor) Total() int     { return len(c.routes) }

// Next passes the next route to assert. An error returned by assert is
// returned unchanged and fails the cursor; so does a panic or runtime.Goexit
// inside assert.
func (c *Cursor) Next(assert func(Route) error) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.pos >= len(c.routes) {
		c.state = Failed
		return ErrNoMoreRoutes
	}

	c.state = Iterating
	r := c.routes[c.pos]
	c.pos++

	completed := false
	defer func() {
		if !completed {
			c.state = Failed
		}
	}()
	if assert != nil {
		if err := assert(r.clone()); err != nil {
			return err
		}
	}
	completed = true
	return nil
}

// Expect is Next with an order check: the next route must match method and
// path, otherwise the cursor fails with an OutOfOrderError.
func (c *Cursor) Expect(method, path string, assert func(Route) error) error {
	if err := c.usable(); err != nil {
		return err
	}
	if c.pos >= len(c.routes) {
		c.state = Failed
		return ErrNoMoreRoutes
	}
	next := c.routes[c.pos]
	if next.Method != method || next.Path != path {
		c.state = Failed
		return &OutOfOrderError{
			Index:    c.pos,
			Expected: Route{Method: method, Path: path}.Pattern(),
			Actual:   next.Pattern(),
		}
	}
	return c.Next(assert)
}

// Verify succeeds only when every route has been consumed. A cursor that was
// never advanced verifies only if it holds no routes.
func (c *Cursor) Verify() error {
	if err := c.usable(); err != nil {
		return err
	}
	if remaining := c.Remaining(); remaining > 0 {
		c.state = Failed
		return &UnconsumedRoutesError{
			Remaining: remaining,
			Total:     len(c.routes),
			Next:      c.routes[c.pos].String(),
		}
	}
	c.state = Verified
	return nil
}

func (c *Cursor) usable() error {
	switch c.state {
	case Failed:
		return ErrCursorFailed
	case Verified:
		return ErrAlreadyVerified
	}
	return nil
}
