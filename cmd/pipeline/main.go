// Package main provides the full pipeline entry point.
// Executes: fetch → discover → add → analyze → reconcile → publish
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

	"influencer-stock-lab/internal/analysis"
	"influencer-stock-lab/internal/cache"
	"influencer-stock-lab/internal/config"
	"influencer-stock-lab/internal/extract"
	"influencer-stock-lab/internal/feed"
	"influencer-stock-lab/internal/ingest"
	"influencer-stock-lab/internal/llm"
	"influencer-stock-lab/internal/observability"
	"influencer-stock-lab/internal/orchestrator"
	"influencer-stock-lab/internal/prices"
	"influencer-stock-lab/internal/reconcile"
	"influencer-stock-lab/internal/registry"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/storage/clickhouse"
	"influencer-stock-lab/internal/storage/file"
	"influencer-stock-lab/internal/storage/memory"
	"influencer-stock-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	skipFetch := flag.Bool("skip-fetch", false, "Reuse the stored video batch instead of fetching")
	skipAnalyze := flag.Bool("skip-analyze", false, "Stop after discovery and promotion")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Printf("\nReceived signal %v, cancelling pipeline...\n", sig)
		cancel()
	}()

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	// Registry and video stores: flat files by default, PostgreSQL
	// registry mirror when configured.
	var registryStore storage.RegistryStore = file.NewRegistryStore(filepath.Join(cfg.DataDir, "stocks.json"))
	videoStore := file.NewVideoStore(filepath.Join(cfg.DataDir, "youtube_videos.json"))

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "PostgreSQL error: %v\n", err)
			os.Exit(1)
		}
		defer pool.Close()
		registryStore = postgres.NewRegistryStore(pool)
		log.Printf("[pipeline] registry backed by PostgreSQL")
	}

	priceService, cleanup, err := buildPriceService(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Price service error: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	fetcher, err := buildFetcher(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ingest error: %v\n", err)
		os.Exit(1)
	}

	analysisCache, closeCache := buildAnalysisCache(cfg)
	defer closeCache()

	orch := orchestrator.New(orchestrator.Options{
		RegistryStore: registryStore,
		VideoStore:    videoStore,
		Fetcher:       fetcher,
		Promoter: registry.NewPromoter(registry.Options{
			Quoter:        priceService,
			MaxNewEntries: cfg.MaxNewTickers,
		}),
		Analyzer: analysis.New(analysis.Options{
			Completer: llm.NewClient(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Model),
			Quoter:    priceService,
			Cache:     analysisCache,
		}),
		Reconciler:  reconcile.New(reconcile.Options{Quoter: priceService}),
		Publisher:   feed.NewPublisher(cfg.OutputDir, nil),
		SkipFetch:   *skipFetch,
		SkipAnalyze: *skipAnalyze,
		Verbose:     *verbose,
	})

	start := time.Now()
	result, err := orch.Run(ctx)
	observability.RecordPipelineRun("full", statusOf(err), time.Since(start).Seconds())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Pipeline error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Pipeline completed:\n")
	fmt.Printf("  Videos:     %d\n", result.VideosFetched)
	fmt.Printf("  Candidates: %d new, %d already tracked\n", result.NewCandidates, result.ExistingMatches)
	fmt.Printf("  Added:      %v\n", result.EntriesAdded)
	fmt.Printf("  Reconciled: %d\n", result.EntriesReconciled)
	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings:   %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}
}

// buildPriceService wires the quote provider chain and the historical
// close cache. The returned cleanup closes any backing connection.
func buildPriceService(ctx context.Context, cfg *config.Config) (*prices.Service, func(), error) {
	yahoo := prices.NewYahoo()
	providers := []prices.Provider{yahoo}
	if cfg.AlphaVantageAPIKey != "" {
		providers = append(providers, prices.NewAlphaVantage(cfg.AlphaVantageAPIKey))
	}
	if cfg.FMPAPIKey != "" {
		providers = append(providers, prices.NewFMP(cfg.FMPAPIKey))
	}

	var priceCache storage.PriceHistoryStore = memory.NewPriceHistoryStore()
	cleanup := func() {}
	if cfg.ClickHouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		priceCache = clickhouse.NewPriceHistoryStore(conn)
		cleanup = func() { conn.Close() }
		log.Printf("[pipeline] price history backed by ClickHouse")
	}

	svc := prices.NewService(prices.ServiceOptions{
		Chain:      prices.NewChain(nil, providers...),
		Historical: yahoo,
		Cache:      priceCache,
	})
	return svc, cleanup, nil
}

// buildFetcher wires the video source chain: the YouTube Data API when a
// key is configured, with page scraping as the fallback.
func buildFetcher(cfg *config.Config) (*ingest.Fetcher, error) {
	channelCfg, err := ingest.LoadChannelConfig(cfg.ChannelsFile)
	if err != nil {
		return nil, err
	}

	var sources []ingest.Source
	if cfg.YouTubeAPIKey != "" {
		sources = append(sources, ingest.NewDataAPI(cfg.YouTubeAPIKey))
	}
	sources = append(sources, ingest.NewScraper())

	return ingest.NewFetcher(ingest.FetcherOptions{
		Sources:   sources,
		Extractor: extract.New(cfg.Tickers),
		Config:    channelCfg,
	}), nil
}

// buildAnalysisCache connects Redis when configured. A failed connection
// degrades to a no-op cache rather than failing the run.
func buildAnalysisCache(cfg *config.Config) (*cache.AnalysisCache, func()) {
	if cfg.RedisHost == "" {
		return nil, func() {}
	}
	rc := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	return cache.NewAnalysisCache(rc), func() { rc.Close() }
}

// serveMetrics exposes Prometheus metrics on the configured address.
func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.Handler())
	log.Printf("[pipeline] metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[pipeline] metrics server stopped: %v", err)
	}
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
