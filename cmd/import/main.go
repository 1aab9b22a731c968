// Package main runs a one-shot feed import, either for a given date from
// the configured remote source or from a local CSV file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pricewatch/internal/config"
	"pricewatch/internal/ingest"
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
	dateStr := flag.String("date", "", "Feed date as YYYY-MM-DD (default today)")
	filePath := flag.String("file", "", "Import a local CSV file instead of fetching")
	flag.Parse()

	logger := log.New(os.Stdout, "[import] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	date := time.Now()
	if *dateStr != "" {
		date, err = time.Parse("2006-01-02", *dateStr)
		if err != nil {
			logger.Fatalf("Invalid --date: %v", err)
		}
	}

	ctx := context.Background()

	products, history, cleanup, err := createStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	opts := ingest.Options{
		ProductStore: products,
		HistoryStore: history,
		KeyPattern:   cfg.Feed.KeyPattern,
		Verbose:      true,
	}

	var report *ingest.Report
	if *filePath != "" {
		f, err := os.Open(*filePath)
		if err != nil {
			logger.Fatalf("Open %s: %v", *filePath, err)
		}
		defer f.Close()

		report, err = ingest.New(opts).ImportFrom(ctx, f, date)
		if err != nil {
			logger.Fatalf("Import failed: %v", err)
		}
	} else {
		if err := cfg.Validate(); err != nil {
			logger.Fatalf("Invalid config: %v", err)
		}
		opts.Fetcher, err = createFetcher(ctx, cfg)
		if err != nil {
			logger.Fatalf("Failed to create feed fetcher: %v", err)
		}

		report, err = ingest.New(opts).ImportDate(ctx, date)
		if err != nil {
			logger.Fatalf("Import failed: %v", err)
		}
	}

	fmt.Printf("Run %s (%s)\n", report.RunID, report.Date.Format("2006-01-02"))
	fmt.Printf("  rows read:   %d\n", report.RowsRead)
	fmt.Printf("  inserted:    %d\n", report.RecordsInserted)
	fmt.Printf("  unchanged:   %d\n", report.UnchangedSkipped)
	fmt.Printf("  duplicates:  %d\n", report.DuplicatesSkipped)
	fmt.Printf("  errors:      %d\n", len(report.Errors))
	for _, msg := range report.Errors {
		fmt.Printf("    %s\n", msg)
	}

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
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
