package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const apiPrefix = "/api/v1"

type Deps struct {
	UserURL    string
	ProductURL string
	OrderURL   string
}

func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	routes := []struct {
		resource string
		target   string
	}{
		{"/users", d.UserURL},
		{"/products", d.ProductURL},
		{"/orders", d.OrderURL},
	}

	api := e.Group(apiPrefix)
	for _, r := range routes {
		proxy, err := newProxy(r.target, apiPrefix)
		if err != nil {
			return err
		}
		api.Any(r.resource, proxy)
		api.Any(r.resource+"/*", proxy)
	}

	return nil
}
