package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/services/user/internal/service"
	"github.com/Skotchmaster/shop_orders/services/user/internal/transport"
)

type UserHTTP struct {
	Svc *service.UserService
}

func httpError(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, "username or email already taken")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("bad_user_id", "status", 400, "id", c.Param("id"))
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}
	return id, nil
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	users, err := h.Svc.GetUsers(c.Request().Context())
	if err != nil {
		return httpError(c, "list_users_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModels(users))
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	u, err := h.Svc.GetByID(c.Request().Context(), id)
	if err != nil {
		return httpError(c, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(u))
}

func (h *UserHTTP) GetUserByUsername(c echo.Context) error {
	u, err := h.Svc.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return httpError(c, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(u))
}

func (h *UserHTTP) GetUserByEmail(c echo.Context) error {
	u, err := h.Svc.GetByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return httpError(c, "get_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(u))
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Warn("create_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Create(ctx, req)
	if err != nil {
		return httpError(c, "create_user_failed", err)
	}
	return c.JSON(http.StatusCreated, transport.FromModel(u))
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		logging.FromContext(ctx).Warn("update_user_failed", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	u, err := h.Svc.Update(ctx, id, req)
	if err != nil {
		return httpError(c, "update_user_failed", err)
	}
	return c.JSON(http.StatusOK, transport.FromModel(u))
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return httpError(c, "delete_user_failed", err)
	}
	return c.NoContent(http.StatusNoContent)
}
