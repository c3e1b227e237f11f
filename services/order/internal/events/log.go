package events

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

func loggerFrom(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx).With("component", "order.events")
}
