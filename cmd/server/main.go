// Package main runs the pricewatch service: the HTTP API plus the
// scheduled daily feed import.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"pricewatch/internal/api"
	"pricewatch/internal/config"
	"pricewatch/internal/ingest"
	"pricewatch/internal/scheduler"
	"pricewatch/internal/storage"
	chstore "pricewatch/internal/storage/clickhouse"
	"pricewatch/internal/storage/memory"
	"pricewatch/internal/storage/migrations"
	pgstore "pricewatch/internal/storage/postgres"
)

func main() {
	// Load .env file if exists
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "Path to YAML config file")
	runImportOnStart := flag.Bool("import-on-start", false, "Run the daily import immediately on startup")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("Invalid config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, history, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	fetcher, err := createFetcher(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to create feed fetcher: %v", err)
	}

	importer := ingest.New(ingest.Options{
		ProductStore: products,
		HistoryStore: history,
		Fetcher:      fetcher,
		KeyPattern:   cfg.Feed.KeyPattern,
		Verbose:      true,
	})

	sched := scheduler.New(ctx, importer, log.New(os.Stdout, "[scheduler] ", log.LstdFlags))
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		logger.Fatalf("Failed to register import job: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if *runImportOnStart {
		go sched.RunNow()
	}

	apiServer := api.New(api.Options{
		ProductStore: products,
		HistoryStore: history,
		Logger:       log.New(os.Stdout, "[api] ", log.LstdFlags),
	})

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on %s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("Received signal %v, shutting down...", sig)
	case err := <-errCh:
		logger.Printf("HTTP server error: %v", err)
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Printf("Shutdown error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores builds the product and history stores for the configured
// backend. With postgres and a ClickHouse DSN, history writes are
// mirrored into ClickHouse for analytics.
func createStores(ctx context.Context, cfg *config.Config, logger *log.Logger) (storage.ProductStore, storage.PriceHistoryStore, func(), error) {
	if cfg.Storage.Backend == "memory" {
		return memory.NewProductStore(), memory.NewPriceHistoryStore(), func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	products := pgstore.NewProductStore(pool)
	var history storage.PriceHistoryStore = pgstore.NewPriceHistoryStore(pool)

	if cfg.Storage.ClickhouseDSN == "" {
		return products, history, pool.Close, nil
	}

	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	history = storage.NewMirroredHistoryStore(history, chstore.NewPriceHistoryStore(conn), logger)
	cleanup := func() {
		conn.Close()
		pool.Close()
	}
	return products, history, cleanup, nil
}

// createFetcher builds the feed fetcher for the configured source.
func createFetcher(ctx context.Context, cfg *config.Config) (ingest.ObjectFetcher, error) {
	switch cfg.Feed.Source {
	case "http":
		return &ingest.HTTPFetcher{BaseURL: cfg.Feed.BaseURL}, nil
	case "s3":
		return ingest.NewS3Fetcher(ctx, ingest.S3Options{
			Region:          cfg.Feed.S3.Region,
			Bucket:          cfg.Feed.S3.Bucket,
			Prefix:          cfg.Feed.S3.Prefix,
			Endpoint:        cfg.Feed.S3.Endpoint,
			PathStyle:       cfg.Feed.S3.PathStyle,
			AccessKeyID:     cfg.Feed.S3.AccessKeyID,
			SecretAccessKey: cfg.Feed.S3.SecretAccessKey,
		})
	default:
		return nil, fmt.Errorf("unknown feed source %q", cfg.Feed.Source)
	}
}
