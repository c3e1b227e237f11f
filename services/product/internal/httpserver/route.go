package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	ProductHandler *ProductHTTP
	Metrics        http.Handler
	Ready          func() error
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

	products := e.Group("/products")
	products.GET("/search", d.ProductHandler.SearchProducts)
	products.GET("", d.ProductHandler.GetProducts)
	products.POST("", d.ProductHandler.CreateProduct)
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.PUT("/:id", d.ProductHandler.UpdateProduct)
	products.PATCH("/:id/stock", d.ProductHandler.SetStock)
	products.PATCH("/:id/decrease-stock", d.ProductHandler.DecreaseStock)
	products.PATCH("/:id/increase-stock", d.ProductHandler.IncreaseStock)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct)
	products.DELETE("/:id/hard", d.ProductHandler.HardDeleteProduct)
}
