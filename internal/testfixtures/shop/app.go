// Package shop is a small application mixing gin, fiber and echo handlers,
// a generic controller and an embedded one.
package shop

import (
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// App wires the controllers together. Only fields whose types are
// controllers or declare handlers are walked.
type App struct {
	Users *UserController
	Items *Store[Item]
	EventController

	name  string
	clock func() int64
}

//axon::controller
type UserController struct {
	audit *Audit
}

//axon::route GET /users
func (c *UserController) List(ctx *gin.Context) ([]User, error) {
	return nil, nil
}

//axon::route GET /users/{id}
func (c *UserController) Get(
	//axon::path
	id uuid.UUID,
) (*User, error) {
	return nil, nil
}

//axon::route POST /users -Middleware=Auth
func (c *UserController) Create(
	//axon::body
	user User,
) (User, error) {
	return user, nil
}

//axon::route GET /users/search
func (c *UserController) Search(filter url.Values) []User {
	return nil
}

// Export writes the response itself
//
//axon::route GET /users/export -Middleware=Auth,Audit
//axon::response []User
func (c *UserController) Export(ctx echo.Context) error {
	return nil
}

// Audit has no handlers and is not a controller
type Audit struct {
	Users *UserController
}

// Store serves a list of T
//
//axon::controller
type Store[T any] struct {
	items []T
}

//axon::route GET /items
func (s *Store[T]) All() []T {
	return s.items
}

//axon::route GET /items/{sku}
func (s *Store[T]) One(
	sku string, //axon::path
) (*T, error) {
	return nil, nil
}

type EventController struct{}

// @Router /events [get]
func (EventController) Stream(ctx *fiber.Ctx) <-chan Event {
	return nil
}

// @Router /events/last [get]
// @Success 200 {object} Event
func (EventController) Last(ctx *fiber.Ctx) error {
	return nil
}
