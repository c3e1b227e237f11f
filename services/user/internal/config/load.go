package config

import (
	"github.com/Skotchmaster/shop_orders/pkg/config"
)

func Load() config.Config {
	cfg := config.Load()
	if cfg.ServiceName == "" {
		cfg.ServiceName = "user"
	}

	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	return cfg
}
