package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"

	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/kafka"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/metrics"
	loggingmw "github.com/Skotchmaster/shop_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/shop_orders/pkg/tracing"

	productcfg "github.com/Skotchmaster/shop_orders/services/product/internal/config"
	"github.com/Skotchmaster/shop_orders/services/product/internal/events"
	"github.com/Skotchmaster/shop_orders/services/product/internal/httpserver"
	"github.com/Skotchmaster/shop_orders/services/product/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/product/internal/search"
	"github.com/Skotchmaster/shop_orders/services/product/internal/service"
)

func main() {
	if err := godotenv.Load("services/product/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := productcfg.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(context.Background(), cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracing setup: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	svc := &service.ProductService{Repo: &repo.GormRepo{DB: db}, Events: events.LogPublisher{}}

	if cfg.ESURL != "" {
		idx, err := search.NewESIndex(search.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			log.Fatalf("search index: %v", err)
		}
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := idx.Ping(pingCtx); err != nil {
			logger.Warn("elasticsearch not reachable, search falls back to database", "error", err)
		}
		pingCancel()
		svc.Index = idx
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers)
		svc.Events = events.NewKafkaPublisher(producer)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg, cfg.ServiceName)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(tracing.Middleware(otel.GetTracerProvider(), cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: svc},
		Metrics:        metrics.Handler(reg),
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("product listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka close", "error", err)
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", "error", err)
	}
	_ = pkgdb.Close(db)

	logger.Info("product stopped")
}
