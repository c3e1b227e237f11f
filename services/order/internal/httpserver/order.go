package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/pkg/idempotency"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/order/internal/domain"
	"github.com/Skotchmaster/shop_orders/services/order/internal/service"
	"github.com/Skotchmaster/shop_orders/services/order/internal/transport"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderReplayed       = "Idempotent-Replayed"
)

type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (string, error)
	Complete(ctx context.Context, key, result string) error
	Release(ctx context.Context, key string) error
}

type OrderHTTP struct {
	Svc  *service.Orchestrator
	Idem IdempotencyStore
}

// httpError maps a service error to a response and logs it under event.
func httpError(l *slog.Logger, event string, err error) error {
	status, msg := http.StatusInternalServerError, "internal error"

	var ise *service.InsufficientStockError
	switch {
	case errors.Is(err, service.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrUserNotFound):
		status, msg = http.StatusNotFound, "user not found"
	case errors.As(err, &ise):
		status, msg = http.StatusConflict, ise.Error()
	case errors.Is(err, service.ErrProductUnavailable):
		status, msg = http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrOrderNotFound):
		status, msg = http.StatusNotFound, "order not found"
	case errors.Is(err, service.ErrInvalidTransition):
		status, msg = http.StatusConflict, err.Error()
	}

	if status >= 500 {
		l.Error(event, "status", status, "reason", msg, "error", err)
	} else {
		l.Warn(event, "status", status, "reason", msg, "error", err)
	}
	return echo.NewHTTPError(status, msg)
}

func parseID(c echo.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	key := c.Request().Header.Get(HeaderIdempotencyKey)
	if key != "" && h.Idem != nil {
		prev, err := h.Idem.Reserve(ctx, key)
		switch {
		case errors.Is(err, idempotency.ErrInFlight):
			l.Warn("create_order_error", "status", 409, "reason", "duplicate request in flight", "idempotency_key", key)
			return echo.NewHTTPError(http.StatusConflict, "request with this idempotency key is in progress")
		case err != nil:
			l.Warn("idempotency_unavailable", "error", err)
			key = ""
		case prev != "":
			return h.replay(c, l, prev)
		}
	} else {
		key = ""
	}

	var (
		order *domain.Order
		err   error
	)
	if req.UserID == uuid.Nil && req.Username != "" {
		order, err = h.Svc.CreateOrderForUsername(ctx, req.Username, req.Lines())
	} else {
		order, err = h.Svc.CreateOrder(ctx, req.UserID, req.Lines())
	}
	if err != nil {
		if key != "" {
			cctx, cancel := cleanupContext(ctx)
			if rerr := h.Idem.Release(cctx, key); rerr != nil {
				l.Warn("idempotency_release_failed", "error", rerr)
			}
			cancel()
		}
		return httpError(l, "create_order_error", err)
	}

	if key != "" {
		cctx, cancel := cleanupContext(ctx)
		if cerr := h.Idem.Complete(cctx, key, order.ID.String()); cerr != nil {
			l.Warn("idempotency_complete_failed", "error", cerr)
		}
		cancel()
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.FromDomain(order))
}

const idempotencyCleanupTimeout = 2 * time.Second

// cleanupContext outlives a client that hung up, so the key is settled
// instead of staying reserved until its lease runs out.
func cleanupContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), idempotencyCleanupTimeout)
}

func (h *OrderHTTP) replay(c echo.Context, l *slog.Logger, prev string) error {
	id, err := uuid.Parse(prev)
	if err != nil {
		l.Error("create_order_error", "status", 500, "reason", "corrupt idempotency record", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	order, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(l, "create_order_error", err)
	}

	l.Info("create_order_replayed", "order_id", order.ID)
	c.Response().Header().Set(HeaderReplayed, "true")
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	order, err := h.Svc.GetByID(ctx, id)
	if err != nil {
		return httpError(l, "get_order_error", err)
	}

	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	orders, err := h.Svc.GetAll(ctx)
	if err != nil {
		return httpError(l, "list_orders_error", err)
	}

	l.Info("list_orders_success", "count", len(orders))
	return c.JSON(http.StatusOK, transport.FromDomainList(orders))
}

func (h *OrderHTTP) ListOrdersByUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders_by_user")

	userID, err := parseID(c, "userId")
	if err != nil {
		l.Warn("list_orders_by_user_error", "status", 400, "reason", "user id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "user id not a uuid")
	}

	orders, err := h.Svc.GetByUserID(ctx, userID)
	if err != nil {
		return httpError(l, "list_orders_by_user_error", err)
	}

	return c.JSON(http.StatusOK, transport.FromDomainList(orders))
}

func (h *OrderHTTP) ListOrdersByStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders_by_status")

	orders, err := h.Svc.GetByStatus(ctx, c.Param("status"))
	if err != nil {
		return httpError(l, "list_orders_by_status_error", err)
	}

	return c.JSON(http.StatusOK, transport.FromDomainList(orders))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("update_status_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	status := c.QueryParam("status")
	if status == "" {
		l.Warn("update_status_error", "status", 400, "reason", "status query parameter required")
		return echo.NewHTTPError(http.StatusBadRequest, "status query parameter required")
	}

	order, err := h.Svc.UpdateStatus(ctx, id, status)
	if err != nil {
		return httpError(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, transport.FromDomain(order))
}

func (h *OrderHTTP) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("cancel_order_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	if _, err := h.Svc.Cancel(ctx, id); err != nil {
		return httpError(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseID(c, "id")
	if err != nil {
		l.Warn("delete_order_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	if err := h.Svc.Delete(ctx, id); err != nil {
		return httpError(l, "delete_order_error", err)
	}

	l.Info("delete_order_success", "order_id", id)
	return c.NoContent(http.StatusNoContent)
}
