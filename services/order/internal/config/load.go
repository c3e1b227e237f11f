package config

import (
	"time"

	"github.com/Skotchmaster/shop_orders/pkg/config"
)

type ServiceConfig struct {
	config.Config

	CompensateStock  bool
	IdempotencyTTL   time.Duration
	IdempotencyLease time.Duration
	RPCTimeout       time.Duration
}

func Load() ServiceConfig {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	config.MustNonEmpty(cfg.UserServiceURL, "USER_SERVICE_URL")
	config.MustNonEmpty(cfg.ProductServiceURL, "PRODUCT_SERVICE_URL")

	return ServiceConfig{
		Config:           cfg,
		CompensateStock:  config.EnvBoolDefault("ORDER_COMPENSATE_STOCK", false),
		IdempotencyTTL:   config.EnvDurationDefault("IDEMPOTENCY_TTL", 24*time.Hour),
		IdempotencyLease: config.EnvDurationDefault("IDEMPOTENCY_LEASE", 30*time.Second),
		RPCTimeout:       config.EnvDurationDefault("RPC_TIMEOUT", 5*time.Second),
	}
}
