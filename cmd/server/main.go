// Package main provides the unified service: scheduled pipeline runs
// plus an HTTP API serving the published feed, the performance report,
// and Prometheus metrics.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
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
	"influencer-stock-lab/internal/reporting"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/storage/clickhouse"
	"influencer-stock-lab/internal/storage/file"
	"influencer-stock-lab/internal/storage/memory"
	"influencer-stock-lab/internal/storage/postgres"
)

// Server runs the pipeline on a schedule and serves the results.
type Server struct {
	registryStore storage.RegistryStore
	videoStore    storage.VideoStore
	orchestrator  *orchestrator.Orchestrator
	reporter      *reporting.Generator
	logger        *log.Logger

	pipelineInterval time.Duration

	mu              sync.Mutex
	pipelineRunning bool
	lastRun         time.Time
	lastResult      *orchestrator.RunResult
	lastErr         error
	runs            int
	startedAt       time.Time
}

func main() {
	// Parse flags
	addr := flag.String("addr", ":8080", "HTTP listen address")
	pipelineInterval := flag.Duration("pipeline-interval", 24*time.Hour, "Pipeline run interval")
	runOnStart := flag.Bool("run-on-start", true, "Run the pipeline once at startup")
	verbose := flag.Bool("verbose", false, "Verbose pipeline output")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	server, cleanup, err := buildServer(ctx, cfg, *pipelineInterval, *verbose, logger)
	if err != nil {
		logger.Fatalf("Setup error: %v", err)
	}
	defer cleanup()

	go server.runScheduler(ctx, *runOnStart)

	httpServer := &http.Server{
		Addr:    *addr,
		Handler: server.routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Printf("Listening on %s (pipeline every %s)", *addr, *pipelineInterval)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}
}

// buildServer wires every component from configuration. The returned
// cleanup closes backing connections.
func buildServer(ctx context.Context, cfg *config.Config, interval time.Duration, verbose bool, logger *log.Logger) (*Server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var registryStore storage.RegistryStore = file.NewRegistryStore(filepath.Join(cfg.DataDir, "stocks.json"))
	videoStore := file.NewVideoStore(filepath.Join(cfg.DataDir, "youtube_videos.json"))

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres: %w", err)
		}
		cleanups = append(cleanups, pool.Close)
		registryStore = postgres.NewRegistryStore(pool)
		logger.Printf("Registry backed by PostgreSQL")
	}

	yahoo := prices.NewYahoo()
	providers := []prices.Provider{yahoo}
	if cfg.AlphaVantageAPIKey != "" {
		providers = append(providers, prices.NewAlphaVantage(cfg.AlphaVantageAPIKey))
	}
	if cfg.FMPAPIKey != "" {
		providers = append(providers, prices.NewFMP(cfg.FMPAPIKey))
	}

	var priceCache storage.PriceHistoryStore = memory.NewPriceHistoryStore()
	if cfg.ClickHouseDSN != "" {
		conn, err := clickhouse.NewConn(ctx, cfg.ClickHouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse: %w", err)
		}
		cleanups = append(cleanups, func() { conn.Close() })
		priceCache = clickhouse.NewPriceHistoryStore(conn)
		logger.Printf("Price history backed by ClickHouse")
	}

	priceService := prices.NewService(prices.ServiceOptions{
		Chain:      prices.NewChain(nil, providers...),
		Historical: yahoo,
		Cache:      priceCache,
		Logger:     logger,
	})

	channelCfg, err := ingest.LoadChannelConfig(cfg.ChannelsFile)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	var sources []ingest.Source
	if cfg.YouTubeAPIKey != "" {
		sources = append(sources, ingest.NewDataAPI(cfg.YouTubeAPIKey))
	}
	sources = append(sources, ingest.NewScraper())

	var analysisCache *cache.AnalysisCache
	if cfg.RedisHost != "" {
		rc := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
		cleanups = append(cleanups, func() { rc.Close() })
		analysisCache = cache.NewAnalysisCache(rc)
	}

	orch := orchestrator.New(orchestrator.Options{
		RegistryStore: registryStore,
		VideoStore:    videoStore,
		Fetcher: ingest.NewFetcher(ingest.FetcherOptions{
			Sources:   sources,
			Extractor: extract.New(cfg.Tickers),
			Config:    channelCfg,
			Logger:    logger,
		}),
		Promoter: registry.NewPromoter(registry.Options{
			Quoter:        priceService,
			MaxNewEntries: cfg.MaxNewTickers,
			Logger:        logger,
		}),
		Analyzer: analysis.New(analysis.Options{
			Completer: llm.NewClient(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Model),
			Quoter:    priceService,
			Cache:     analysisCache,
			Logger:    logger,
		}),
		Reconciler: reconcile.New(reconcile.Options{Quoter: priceService, Logger: logger}),
		Publisher:  feed.NewPublisher(cfg.OutputDir, logger),
		Verbose:    verbose,
	})

	return &Server{
		registryStore:    registryStore,
		videoStore:       videoStore,
		orchestrator:     orch,
		reporter:         reporting.NewGenerator(registryStore, priceService),
		logger:           logger,
		pipelineInterval: interval,
		startedAt:        time.Now(),
	}, cleanup, nil
}

// runScheduler triggers pipeline runs on the configured interval.
func (s *Server) runScheduler(ctx context.Context, runOnStart bool) {
	if runOnStart {
		s.runPipeline(ctx)
	}

	ticker := time.NewTicker(s.pipelineInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline executes one run unless one is already in flight.
func (s *Server) runPipeline(ctx context.Context) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		s.logger.Printf("Pipeline already running, skipping scheduled run")
		return
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	start := time.Now()
	result, err := s.orchestrator.Run(ctx)
	observability.RecordPipelineRun("full", statusOf(err), time.Since(start).Seconds())
	if err != nil {
		s.logger.Printf("Pipeline failed: %v", err)
	} else {
		s.logger.Printf("Pipeline completed: %d videos, %d added, %d reconciled",
			result.VideosFetched, len(result.EntriesAdded), result.EntriesReconciled)
	}

	s.mu.Lock()
	s.pipelineRunning = false
	s.lastRun = time.Now()
	s.lastResult = result
	s.lastErr = err
	s.runs++
	s.mu.Unlock()
}

// routes builds the HTTP mux.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/stocks", s.handleStocks)
	mux.HandleFunc("/api/videos", s.handleVideos)
	mux.HandleFunc("/api/report", s.handleReport)
	mux.HandleFunc("/api/trigger", s.handleTrigger)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())
	return mux
}

func (s *Server) handleStocks(w http.ResponseWriter, r *http.Request) {
	entries, err := s.registryStore.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, entries)
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := s.videoStore.Load(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, videos)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reporter.Generate(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Write([]byte(reporting.RenderMarkdown(report)))
}

// handleTrigger kicks off an immediate pipeline run.
func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	go s.runPipeline(context.Background())
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("pipeline run triggered\n"))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"uptime":          time.Since(s.startedAt).Round(time.Second).String(),
		"pipelineRunning": s.pipelineRunning,
		"pipelineRuns":    s.runs,
	}
	if !s.lastRun.IsZero() {
		status["lastRun"] = s.lastRun.Format(time.RFC3339)
	}
	if s.lastErr != nil {
		status["lastError"] = s.lastErr.Error()
	}
	if s.lastResult != nil {
		status["lastResult"] = s.lastResult
	}
	writeJSON(w, status)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(v)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
