package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	OrderHandler *OrderHTTP
	Metrics      http.Handler
	Ready        func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics))
	}

	orders := e.Group("/orders")
	orders.GET("/health", func(c echo.Context) error { return c.String(http.StatusOK, "Order Service is running") })
	orders.GET("", d.OrderHandler.ListOrders)
	orders.POST("", d.OrderHandler.CreateOrder)
	orders.GET("/user/:userId", d.OrderHandler.ListOrdersByUser)
	orders.GET("/status/:status", d.OrderHandler.ListOrdersByStatus)
	orders.GET("/:id", d.OrderHandler.GetOrder)
	orders.PATCH("/:id/status", d.OrderHandler.UpdateStatus)
	orders.PATCH("/:id/cancel", d.OrderHandler.CancelOrder)
	orders.DELETE("/:id", d.OrderHandler.DeleteOrder)
}
