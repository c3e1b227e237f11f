package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/gateway/internal/config"
	"github.com/Skotchmaster/shop_orders/gateway/internal/httpserver"
	"github.com/Skotchmaster/shop_orders/gateway/internal/middleware"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/tracing"
)

const serviceName = "gateway"

func main() {
	if err := godotenv.Load("gateway/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", serviceName)
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(context.Background(), serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracing setup: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	for _, m := range middleware.Common(logger, serviceName) {
		e.Use(m)
	}

	if err := httpserver.Register(e, &httpserver.Deps{
		UserURL:    cfg.UserURL,
		ProductURL: cfg.ProductURL,
		OrderURL:   cfg.OrderURL,
	}); err != nil {
		log.Fatal(err)
	}

	go func() {
		logger.Info("gateway listening", "addr", cfg.ListenAddr)
		if err := e.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("tracing shutdown", "error", err)
	}
}
