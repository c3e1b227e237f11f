package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/product/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/product/internal/service"
	"github.com/Skotchmaster/shop_orders/services/product/internal/transport"
	"github.com/Skotchmaster/shop_orders/services/product/internal/util"
)

type ProductHTTP struct {
	Svc *service.ProductService
}

// httpError logs err under event and converts it to the matching status.
func httpError(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrInsufficientStock):
		l.Warn(event, "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("bad_product_id", "status", 400, "id", c.Param("id"))
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	return id, nil
}

func parseQuantity(c echo.Context) (int, error) {
	q, err := strconv.Atoi(c.QueryParam("quantity"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("bad_quantity", "status", 400, "quantity", c.QueryParam("quantity"))
		return 0, echo.NewHTTPError(http.StatusBadRequest, "quantity must be an integer")
	}
	return q, nil
}

func (h *ProductHTTP) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(c, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(product))
}

func (h *ProductHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	f := repo.Filter{
		ActiveOnly:  util.ParseBoolDefault(c.QueryParam("active"), false),
		InStockOnly: util.ParseBoolDefault(c.QueryParam("in_stock"), false),
		Category:    c.QueryParam("category"),
	}

	total, items, err := h.Svc.GetProducts(ctx, f, offset, limit)
	if err != nil {
		return httpError(c, "get_products_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.FromModels(items),
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *ProductHTTP) SearchProducts(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(c.Request().Context(), c.QueryParam("q"), offset, limit)
	if err != nil {
		return httpError(c, "search_products_failed", err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.FromModels(items),
		"meta": util.Meta(page, offset, limit, total),
	})
}

func (h *ProductHTTP) CreateProduct(c echo.Context) error {
	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(c.Request().Context()).Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	created, err := h.Svc.CreateProduct(c.Request().Context(), req)
	if err != nil {
		return httpError(c, "create_product_failed", err)
	}

	logging.FromContext(c.Request().Context()).Info("create_product_success", "product_id", created.ID)
	return c.JSON(http.StatusCreated, transport.FromModel(created))
}

func (h *ProductHTTP) UpdateProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateProductRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(c.Request().Context()).Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	prod, err := h.Svc.UpdateProduct(c.Request().Context(), id, req)
	if err != nil {
		return httpError(c, "update_product_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(prod))
}

func (h *ProductHTTP) SetStock(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	q, err := parseQuantity(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.SetStock(c.Request().Context(), id, q)
	if err != nil {
		return httpError(c, "set_stock_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(prod))
}

func (h *ProductHTTP) DecreaseStock(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	q, err := parseQuantity(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.DecreaseStock(c.Request().Context(), id, q)
	if err != nil {
		return httpError(c, "decrease_stock_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(prod))
}

func (h *ProductHTTP) IncreaseStock(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	q, err := parseQuantity(c)
	if err != nil {
		return err
	}

	prod, err := h.Svc.IncreaseStock(c.Request().Context(), id, q)
	if err != nil {
		return httpError(c, "increase_stock_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(prod))
}

func (h *ProductHTTP) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return httpError(c, "delete_product_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductHTTP) HardDeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.HardDeleteProduct(c.Request().Context(), id); err != nil {
		return httpError(c, "hard_delete_product_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
