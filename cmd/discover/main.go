// Package main runs discovery and promotion over the stored video batch:
// new (ticker, channel) combinations with a buying signal are appended to
// the registry as pending-analysis entries. No fetching, no analysis.
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
	"influencer-stock-lab/internal/discovery"
	"influencer-stock-lab/internal/observability"
	"influencer-stock-lab/internal/prices"
	"influencer-stock-lab/internal/registry"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/storage/file"
	"influencer-stock-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	dryRun := flag.Bool("dry-run", false, "Report candidates without touching the registry")
	maxNew := flag.Int("max-new", 0, "Promotion cap (overrides MAX_NEW_TICKERS)")
	flag.Parse()

	logger := log.New(os.Stdout, "[discover] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	if *maxNew <= 0 {
		*maxNew = cfg.MaxNewTickers
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
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
	videoStore := file.NewVideoStore(filepath.Join(cfg.DataDir, "youtube_videos.json"))

	videos, err := videoStore.Load(ctx)
	if err != nil {
		logger.Fatalf("Load videos error: %v", err)
	}
	entries, err := registryStore.Load(ctx)
	if err != nil {
		logger.Fatalf("Load registry error: %v", err)
	}

	disc := discovery.Discover(videos, entries)
	observability.RecordDiscovery(len(disc.NewCandidates), len(disc.ExistingMatches))

	fmt.Printf("Discovery over %d videos:\n", len(videos))
	fmt.Printf("  New candidates:  %d\n", len(disc.NewCandidates))
	fmt.Printf("  Already tracked: %d\n", len(disc.ExistingMatches))
	for _, c := range disc.NewCandidates {
		fmt.Printf("    - %s from %s (%d mentions, bought=%t)\n", c.Ticker, c.Channel, c.MentionCount, c.IsBought)
	}

	if *dryRun || len(disc.NewCandidates) == 0 {
		return
	}

	promoter := registry.NewPromoter(registry.Options{
		Quoter: prices.NewService(prices.ServiceOptions{
			Historical: prices.NewYahoo(),
			Logger:     logger,
		}),
		MaxNewEntries: *maxNew,
		Logger:        logger,
	})

	grown, added, err := promoter.AddCandidates(ctx, entries, disc.NewCandidates)
	if err != nil {
		logger.Fatalf("Promotion error: %v", err)
	}
	if len(added) == 0 {
		fmt.Println("Nothing promoted")
		return
	}
	if err := registryStore.Save(ctx, grown); err != nil {
		logger.Fatalf("Save registry error: %v", err)
	}
	observability.RecordEntriesAdded(len(added))
	fmt.Printf("Promoted %v (registry now %d entries)\n", added, len(grown))
}
