package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cinepay/internal/broker"
	"cinepay/internal/broker/kafka"
	"cinepay/internal/config"
	"cinepay/internal/domain"
	"cinepay/internal/repository/memory"
	"cinepay/internal/worker"
)

func main() {
	// Load configuration.
	_ = godotenv.Load()
	cfg := config.Load()

	consumer, err := kafka.NewConsumer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("failed to connect kafka consumer: %v", err)
	}
	defer consumer.Close()

	// The producer only feeds the dead-letter topic.
	producer, err := kafka.NewProducer(cfg.Kafka.Brokers)
	if err != nil {
		log.Fatalf("failed to connect kafka producer: %v", err)
	}
	defer producer.Close()

	// Wire dependencies. The worker's store is its own working cache.
	store := memory.NewPaymentStore()
	resolver := domain.NewMethodResolver(nil)
	reporter := worker.NewHTTPReporter(
		cfg.Worker.GatewayURL,
		cfg.Worker.CallbackMaxAttempts,
		cfg.Worker.CallbackBackoff,
		producer,
	)
	settler := worker.NewSettler(store, resolver, reporter)

	if err := consumer.Consume(broker.TopicPaymentCreation, settler.HandleCreation); err != nil {
		log.Fatalf("failed to consume %s: %v", broker.TopicPaymentCreation, err)
	}
	if err := consumer.Consume(broker.TopicPaymentValidation, settler.HandleValidation); err != nil {
		log.Fatalf("failed to consume %s: %v", broker.TopicPaymentValidation, err)
	}

	log.Println("Settlement worker is waiting for incoming messages")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down worker...")
}
