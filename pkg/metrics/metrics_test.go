package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "order")

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/orders/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, id := range []string{"a", "b", "missing"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders/"+id, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("/orders/:id", http.MethodGet, "200")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("/orders/:id", http.MethodGet, "404")))
}

func TestOutcomesAndHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServerMetrics(reg, "order")

	m.ObserveOutcome("create_order", "ok")
	m.ObserveOutcome("create_order", "insufficient_stock")
	m.ObserveOutcome("create_order", "ok")
	require.Equal(t, 2.0, testutil.ToFloat64(m.Outcomes.WithLabelValues("create_order", "ok")))

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "shop_order_operation_outcomes_total"))
}
