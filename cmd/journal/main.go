package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/quickbite/internal/config"
	"github.com/example/quickbite/internal/infrastructure/kafka"
	"github.com/example/quickbite/internal/infrastructure/store"
	"github.com/example/quickbite/internal/projection"
	"github.com/example/quickbite/internal/readmodel"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Projector] Invalid configuration: %v", err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("[Projector] KAFKA_BROKERS is required")
	}

	log.Println("[Projector] ========================================")
	log.Println("[Projector] QuickBite checkout journal projector")
	log.Println("[Projector] ========================================")
	log.Printf("[Projector] Kafka: %v", cfg.KafkaBrokers)
	log.Printf("[Projector] Topic: %s", cfg.KafkaTopic)
	log.Printf("[Projector] Group: %s", cfg.KafkaConsumerGroup)

	projector := projection.NewProjector()
	projector.OnUpdate = func(s readmodel.OrderSummary) {
		log.Printf("[Projector] User %d: %d orders, %d items, spent %s, last order %d",
			s.UserID, s.OrderCount, s.ItemCount, s.TotalSpent.StringFixed(2), s.LastOrderID)
	}

	// Rebuild from the durable journal before following the topic, then keep
	// reading it for entries whose publish failed
	if cfg.DatabaseURL != "" {
		db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[Projector] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		journal := store.NewPostgresEventStore(db, nil)
		n, err := projector.Replay(ctx, journal)
		if err != nil {
			log.Fatalf("[Projector] Replay failed: %v", err)
		}
		log.Printf("[Projector] Replayed %d events", n)

		go projector.RunResync(ctx, journal, cfg.JournalResyncInterval)
		log.Printf("[Projector] Journal resync every %s", cfg.JournalResyncInterval)
	}

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaConsumerGroup)
	defer consumer.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Println("[Projector] Starting event consumer...")
		if err := consumer.Consume(ctx, projector.HandleEvent); err != nil && ctx.Err() == nil {
			log.Printf("[Projector] Consumer error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Projector] Shutting down...")
	cancel()
	<-done

	for _, s := range projector.Summaries() {
		log.Printf("[Projector] Final: user %d, %d orders, spent %s", s.UserID, s.OrderCount, s.TotalSpent.StringFixed(2))
	}
}
