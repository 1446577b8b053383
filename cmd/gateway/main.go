package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"cinepay/internal/app"
	"cinepay/internal/broker/kafka"
	"cinepay/internal/config"
	"cinepay/internal/domain"
	"cinepay/internal/handler"
	"cinepay/internal/repository"
	"cinepay/internal/repository/memory"
	"cinepay/internal/repository/postgres"
	"cinepay/internal/service"
)

func main() {
	// Load configuration.
	_ = godotenv.Load()
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the datastores can be instrumented.
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName+"-gateway"),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s-gateway", cfg.NewRelic.AppName)
		}
	}

	resolver := domain.NewMethodResolver(nil)

	// The settlement store: durable when Postgres is configured, in-memory
	// otherwise.
	var paymentStore repository.PaymentStore
	if cfg.Database.Enabled {
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Fatalf("failed to ensure database schema: %v", err)
		}
		paymentStore = postgres.NewPaymentStore(db, resolver)
		log.Println("Connected to PostgreSQL, using durable settlement store")
	} else {
		paymentStore = memory.NewPaymentStore()
		log.Println("Using in-memory settlement store")
	}
	promoStore := memory.NewPromoStore()

	// Redis backs the idempotency middleware when enabled.
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("failed to connect to kafka: %v", err)
	}
	defer producer.Close()

	// Wire dependencies.
	notifier := service.NewNotificationService(cfg.Services.BookingServiceURL, cfg.Services.AccountServiceURL)
	paymentService := service.NewPaymentService(paymentStore, promoStore, resolver, producer, notifier)
	promoService := service.NewPromoService(promoStore)

	router := app.NewRouter(app.RouterDeps{
		PaymentHandler: handler.NewPaymentHandler(paymentService),
		PromoHandler:   handler.NewPromoHandler(promoService),
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting payment gateway on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down gateway...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Gateway exited")
}
