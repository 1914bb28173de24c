// Package dispatch declares handlers with controller-level and method-level
// executors.
package dispatch

//axon::dispatch
type RouteDispatch struct{}

//axon::route GET /toplevel
func (RouteDispatch) Toplevel() {}

//axon::route GET /methodlevel
//axon::dispatch single
func (RouteDispatch) Methodlevel() {}
