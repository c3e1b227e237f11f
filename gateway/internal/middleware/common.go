package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/otel"

	loggingmw "github.com/Skotchmaster/shop_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/shop_orders/pkg/tracing"
)

func Common(logger *slog.Logger, serviceName string) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		ecM.Recover(),
		ecM.RequestID(),
		tracing.Middleware(otel.GetTracerProvider(), serviceName),
		loggingmw.RequestLogger(logger),
		ecM.Secure(),
		ecM.CORS(),
	}
}
