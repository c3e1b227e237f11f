package config

import (
	"github.com/Skotchmaster/shop_orders/pkg/config"
)

type Config struct {
	ListenAddr   string
	LogLevel     string
	OTLPEndpoint string
	UserURL      string
	ProductURL   string
	OrderURL     string
}

func Load() *Config {
	cfg := &Config{
		ListenAddr:   config.EnvDefault("GATEWAY_ADDR", ":8080"),
		LogLevel:     config.EnvDefault("LOG_LEVEL", "info"),
		OTLPEndpoint: config.EnvDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		UserURL:      config.EnvDefault("USER_URL", ""),
		ProductURL:   config.EnvDefault("PRODUCT_URL", ""),
		OrderURL:     config.EnvDefault("ORDER_URL", ""),
	}
	config.MustNonEmpty(cfg.UserURL, "USER_URL")
	config.MustNonEmpty(cfg.ProductURL, "PRODUCT_URL")
	config.MustNonEmpty(cfg.OrderURL, "ORDER_URL")
	return cfg
}
