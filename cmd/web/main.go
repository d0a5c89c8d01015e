package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/quickbite/internal/api"
	"github.com/example/quickbite/internal/api/middleware"
	"github.com/example/quickbite/internal/backend"
	"github.com/example/quickbite/internal/checkout"
	"github.com/example/quickbite/internal/config"
	"github.com/example/quickbite/internal/fallback"
	"github.com/example/quickbite/internal/infrastructure/cache"
	"github.com/example/quickbite/internal/infrastructure/kafka"
	"github.com/example/quickbite/internal/infrastructure/store"
	"github.com/example/quickbite/internal/query"
	"github.com/example/quickbite/internal/session"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Web] Invalid configuration: %v", err)
	}

	tokens, err := session.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		log.Fatalf("[Web] %v", err)
	}

	log.Println("[Web] ========================================")
	log.Println("[Web] QuickBite client")
	log.Println("[Web] ========================================")
	log.Printf("[Web] Users:       %s", cfg.Endpoints.Users)
	log.Printf("[Web] Restaurants: %s", cfg.Endpoints.Restaurants)
	log.Printf("[Web] Orders:      %s", cfg.Endpoints.Orders)

	// Backend: fallback(cache(http))
	client := backend.NewClient(cfg.Endpoints, cfg.BackendTimeout)
	var gateway backend.API = client

	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Printf("[Web] Catalog cache disabled: %v", err)
		} else {
			defer rdb.Close()
			gateway = cache.NewCatalogCache(gateway, cache.NewRedisStore(rdb), cfg.CacheTTL)
			log.Printf("[Web] Catalog cache: redis %s (ttl %s)", cfg.RedisAddr, cfg.CacheTTL)
		}
	}
	gateway = fallback.NewGateway(gateway)

	// Checkout journal
	var publisher store.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		publisher = producer
		log.Printf("[Web] Kafka: %v topic %s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}

	var journal store.Journal
	if cfg.DatabaseURL != "" {
		db, err := store.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[Web] Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		pg := store.NewPostgresEventStore(db, publisher)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("[Web] %v", err)
		}
		journal = pg
		log.Println("[Web] Journal: PostgreSQL (checkout_events)")
	} else {
		journal = store.NewEventStore(publisher)
		log.Println("[Web] Journal: in-memory")
	}

	carts := session.NewRegistry(cfg.SessionIdleTTL)
	go carts.RunSweeper(ctx, time.Minute)

	handlers := api.NewHandlers(
		query.NewHandler(gateway),
		checkout.NewService(gateway, journal),
		carts,
		client,
	)
	router := api.NewRouter(handlers, cfg.WebDir)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.SessionMiddleware(tokens, cfg.DemoUserID, cfg.SessionCookieSecure)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("[Web] Server started on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[Web] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Web] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Web] Shutdown error: %v", err)
	}
}
