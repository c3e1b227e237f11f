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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/idempotency"
	"github.com/Skotchmaster/shop_orders/pkg/kafka"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/metrics"
	loggingmw "github.com/Skotchmaster/shop_orders/pkg/middleware/logging"
	"github.com/Skotchmaster/shop_orders/pkg/rpcclient"
	"github.com/Skotchmaster/shop_orders/pkg/tracing"

	"github.com/Skotchmaster/shop_orders/services/order/internal/clients"
	ordercfg "github.com/Skotchmaster/shop_orders/services/order/internal/config"
	"github.com/Skotchmaster/shop_orders/services/order/internal/events"
	"github.com/Skotchmaster/shop_orders/services/order/internal/httpserver"
	"github.com/Skotchmaster/shop_orders/services/order/internal/models"
	"github.com/Skotchmaster/shop_orders/services/order/internal/repo"
	"github.com/Skotchmaster/shop_orders/services/order/internal/service"
)

func main() {
	if err := godotenv.Load("services/order/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := ordercfg.Load()

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
	if err := models.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewServerMetrics(reg, cfg.ServiceName)

	users := clients.NewUserClient(rpcclient.NewClient(cfg.UserServiceURL, rpcclient.WithTimeout(cfg.RPCTimeout)))
	products := clients.NewProductClient(rpcclient.NewClient(cfg.ProductServiceURL, rpcclient.WithTimeout(cfg.RPCTimeout)))

	opts := []service.Option{service.WithOutcomes(m), service.WithTracerProvider(otel.GetTracerProvider())}
	if cfg.CompensateStock {
		logger.Info("stock compensation enabled")
		opts = append(opts, service.WithCompensation(products))
	}

	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers)
		opts = append(opts, service.WithEvents(events.NewKafkaPublisher(producer)))
	} else {
		opts = append(opts, service.WithEvents(events.LogPublisher{}))
	}

	svc := service.NewOrchestrator(users, products, &repo.GormRepo{DB: db}, opts...)
	handler := &httpserver.OrderHTTP{Svc: svc}

	var (
		rdb  *redis.Client
		idem *idempotency.Store
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		idem = idempotency.NewStore(rdb, cfg.ServiceName, cfg.IdempotencyTTL, cfg.IdempotencyLease)
		handler.Idem = idem
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(tracing.Middleware(otel.GetTracerProvider(), cfg.ServiceName))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(m.Middleware())
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		OrderHandler: handler,
		Metrics:      metrics.Handler(reg),
		Ready: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.Ping(); err != nil {
				return err
			}
			if idem != nil {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				return idem.Ping(ctx)
			}
			return nil
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
		logger.Info("order listening", "addr", srv.Addr)
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
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", "error", err)
	}
	_ = pkgdb.Close(db)

	logger.Info("order stopped")
}
