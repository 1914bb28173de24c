// Package i2598 has a handler whose only parameter is the framework context.
package i2598

import "github.com/labstack/echo/v4"

type App struct {
	Controller Controller
}

type Controller struct{}

//axon::route GET /2598
func (Controller) Handle(c echo.Context) error {
	return c.NoContent(204)
}
