// Package main fetches recent videos from the configured channels,
// persists the batch, and reports what discovery would promote. It never
// touches the registry: use the pipeline command for a full run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"influencer-stock-lab/internal/config"
	"influencer-stock-lab/internal/discovery"
	"influencer-stock-lab/internal/extract"
	"influencer-stock-lab/internal/feed"
	"influencer-stock-lab/internal/ingest"
	"influencer-stock-lab/internal/observability"
	"influencer-stock-lab/internal/storage/file"
)

func main() {
	// Parse flags
	channelsFile := flag.String("channels", "", "Path to channels.json (overrides CHANNELS_FILE)")
	publish := flag.Bool("publish", false, "Also publish the video feed to the output directory")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	flag.Parse()

	logger := log.New(os.Stdout, "[fetch] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}
	if *channelsFile != "" {
		cfg.ChannelsFile = *channelsFile
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling fetch...", sig)
		cancel()
	}()

	channelCfg, err := ingest.LoadChannelConfig(cfg.ChannelsFile)
	if err != nil {
		logger.Fatalf("Channel config error: %v", err)
	}

	var sources []ingest.Source
	if cfg.YouTubeAPIKey != "" {
		sources = append(sources, ingest.NewDataAPI(cfg.YouTubeAPIKey))
	} else {
		logger.Printf("YOUTUBE_API_KEY not set, scraping only")
	}
	sources = append(sources, ingest.NewScraper())

	fetcher := ingest.NewFetcher(ingest.FetcherOptions{
		Sources:   sources,
		Extractor: extract.New(cfg.Tickers),
		Config:    channelCfg,
		Logger:    logger,
	})

	start := time.Now()
	videos, err := fetcher.FetchAll(ctx)
	if err != nil {
		logger.Fatalf("Fetch error: %v", err)
	}
	logger.Printf("Fetched %d videos in %s", len(videos), time.Since(start).Round(time.Millisecond))

	if len(videos) > 0 {
		videoStore := file.NewVideoStore(filepath.Join(cfg.DataDir, "youtube_videos.json"))
		if err := videoStore.Save(ctx, videos); err != nil {
			logger.Fatalf("Save error: %v", err)
		}
	}

	// Preview what a pipeline run would promote.
	registryStore := file.NewRegistryStore(filepath.Join(cfg.DataDir, "stocks.json"))
	entries, err := registryStore.Load(ctx)
	if err != nil {
		logger.Fatalf("Load registry error: %v", err)
	}
	disc := discovery.Discover(videos, entries)

	fmt.Printf("Fetch completed:\n")
	fmt.Printf("  Videos:          %d\n", len(videos))
	fmt.Printf("  New candidates:  %d\n", len(disc.NewCandidates))
	fmt.Printf("  Already tracked: %d\n", len(disc.ExistingMatches))
	for _, c := range disc.NewCandidates {
		fmt.Printf("    - %s from %s (%d mentions, bought=%t)\n", c.Ticker, c.Channel, c.MentionCount, c.IsBought)
	}

	if *publish {
		publisher := feed.NewPublisher(cfg.OutputDir, logger)
		if err := publisher.PublishVideos(videos); err != nil {
			logger.Fatalf("Publish error: %v", err)
		}
	}
}
