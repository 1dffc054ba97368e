// Package main backfills missing initial prices across the registry.
// Entries promoted before a historical close could be fetched keep a
// nil initialPrice; this command retries them against the provider
// chain and writes the repaired registry back.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"influencer-stock-lab/internal/config"
	"influencer-stock-lab/internal/prices"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/storage/clickhouse"
	"influencer-stock-lab/internal/storage/file"
	"influencer-stock-lab/internal/storage/memory"
	"influencer-stock-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	dryRun := flag.Bool("dry-run", false, "Report what would change without saving")
	flag.Parse()

	logger := log.New(os.Stdout, "[backfill] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling backfill...", sig)
		cancel()
	}()

	var registryStore storage.RegistryStore = file.NewRegistryStore(filepath.Join(cfg.DataDir, "stocks.json"))
	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("PostgreSQL error: %v", err)
		}
		defer pool.Close()
		registryStore = postgres.NewRegistryStore(pool)
	}

	var priceCache storage.PriceHistoryStore = memory.NewPriceHistoryStore()
	if cfg.ClickHouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			logger.Fatalf("ClickHouse error: %v", err)
		}
		defer conn.Close()
		priceCache = clickhouse.NewPriceHistoryStore(conn)
	}

	priceService := prices.NewService(prices.ServiceOptions{
		Historical: prices.NewYahoo(),
		Cache:      priceCache,
		Logger:     logger,
	})

	entries, err := registryStore.Load(ctx)
	if err != nil {
		logger.Fatalf("Load registry error: %v", err)
	}

	var filled, failed, skipped int
	for i := range entries {
		e := &entries[i]
		if e.HasInitialPrice() {
			continue
		}
		if e.RecommendedDate == "" {
			skipped++
			logger.Printf("%s|%s has no recommended date, skipping", e.Ticker, e.Source)
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Fatalf("Cancelled: %v", err)
		}

		close, err := priceService.HistoricalClose(ctx, e.Ticker, e.RecommendedDate)
		if err != nil || close <= 0 {
			failed++
			logger.Printf("%s on %s: no historical close (%v)", e.Ticker, e.RecommendedDate, err)
			continue
		}
		e.InitialPrice = &close
		filled++
		logger.Printf("%s on %s: %.2f", e.Ticker, e.RecommendedDate, close)
	}

	fmt.Printf("Backfill completed:\n")
	fmt.Printf("  Entries: %d\n", len(entries))
	fmt.Printf("  Filled:  %d\n", filled)
	fmt.Printf("  Failed:  %d\n", failed)
	fmt.Printf("  Skipped: %d\n", skipped)

	if *dryRun {
		fmt.Println("Dry run: registry not saved")
		return
	}
	if filled == 0 {
		fmt.Println("Nothing to save")
		return
	}
	if err := registryStore.Save(ctx, entries); err != nil {
		logger.Fatalf("Save registry error: %v", err)
	}
	fmt.Println("Registry saved")
}
