// Package kt holds handlers covering nullability, asynchronous results and
// name overrides.
package kt

import "context"

// App is the entry point
type App struct {
	Kt *KtController
}

// ABean is returned by Params
type ABean struct {
	Foo string `json:"foo"`
}

// Future resolves to a T later
//
//axon::deferred
type Future[T any] struct {
	result chan T
}

// Get blocks until the value is available
func (f Future[T]) Get() T {
	return <-f.result
}

//axon::controller
type KtController struct{}

//axon::route GET
func (c *KtController) DoSomething() string {
	return ""
}

//@DELETE
//@Path("/unit")
func (c *KtController) DoUnit() {}

//axon::route GET /doMap
func (c *KtController) DoMap() map[string]any {
	return map[string]any{}
}

//@Path("/doParams")
func (c *KtController) Params(
	i int, //@QueryParam("I")
	oi *int, //@QueryParam("oI")
	q string, //@QueryParam("q")
	nullq *string, //@QueryParam("nullq")
) ABean {
	return ABean{}
}

// Coroutine completes through done instead of returning
//
//axon::route GET /coroutine
func (c *KtController) Coroutine(ctx context.Context, done func([]string, error)) {
	go done([]string{"..."}, nil)
}

//axon::route GET /future
func (c *KtController) CompletableFuture() Future[string] {
	f := Future[string]{result: make(chan string, 1)}
	f.result <- "..."
	return f
}

// @Router /httpNames [get]
func (c *KtController) HttpNames(
	//@HeaderParam("Last-Modified-Since")
	lastModifiedSince string,
	//@Named("x-search")
	//@QueryParam
	q string,
) string {
	return lastModifiedSince
}
