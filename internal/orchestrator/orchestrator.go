// Package orchestrator provides end-to-end pipeline orchestration.
// It coordinates: fetch → discover → add → analyze → reconcile → publish
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"influencer-stock-lab/internal/analysis"
	"influencer-stock-lab/internal/discovery"
	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/feed"
	"influencer-stock-lab/internal/ingest"
	"influencer-stock-lab/internal/observability"
	"influencer-stock-lab/internal/reconcile"
	"influencer-stock-lab/internal/registry"
	"influencer-stock-lab/internal/storage"
	"influencer-stock-lab/internal/verification"
)

// Orchestrator coordinates one full pipeline run. The run is strictly
// sequential; each phase persists only on success so a failure leaves
// the prior registry intact.
type Orchestrator struct {
	registryStore storage.RegistryStore
	videoStore    storage.VideoStore

	fetcher    *ingest.Fetcher
	promoter   *registry.Promoter
	analyzer   *analysis.Analyzer
	reconciler *reconcile.Reconciler
	publisher  *feed.Publisher

	skipFetch   bool
	skipAnalyze bool
	verbose     bool
	now         func() time.Time
}

// Options for creating Orchestrator.
type Options struct {
	// Required stores
	RegistryStore storage.RegistryStore
	VideoStore    storage.VideoStore

	// Phase components
	Fetcher    *ingest.Fetcher
	Promoter   *registry.Promoter
	Analyzer   *analysis.Analyzer
	Reconciler *reconcile.Reconciler
	Publisher  *feed.Publisher

	// SkipFetch reuses the stored video batch instead of hitting YouTube.
	SkipFetch bool

	// SkipAnalyze stops after registry promotion; discovery-only runs.
	SkipAnalyze bool

	Verbose bool

	// Now supplies the clock; tests override it.
	Now func() time.Time
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		registryStore: opts.RegistryStore,
		videoStore:    opts.VideoStore,
		fetcher:       opts.Fetcher,
		promoter:      opts.Promoter,
		analyzer:      opts.Analyzer,
		reconciler:    opts.Reconciler,
		publisher:     opts.Publisher,
		skipFetch:     opts.SkipFetch,
		skipAnalyze:   opts.SkipAnalyze,
		verbose:       opts.Verbose,
		now:           opts.Now,
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// RunResult contains results from one pipeline run.
type RunResult struct {
	VideosFetched     int
	NewCandidates     int
	ExistingMatches   int
	EntriesAdded      []string
	EntriesReconciled int
	Errors            []string
}

// Run executes the full pipeline.
// Phases:
//  1. Fetch videos (or reuse the stored batch)
//  2. Discover new (ticker, channel) candidates
//  3. Promote candidates into the registry
//  4. Analyze the full registry
//  5. Reconcile analysis output with the prior registry
//  6. Publish the feed
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	today := o.now().Format("2006-01-02")

	// Phase 1: video batch
	videos, err := o.runFetch(ctx, result)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (fetch) failed: %w", err)
	}
	result.VideosFetched = len(videos)
	o.log("Phase 1: %d videos in batch", len(videos))

	// Phase 2: discovery
	prior, err := o.registryStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (discovery) failed: load registry: %w", err)
	}
	disc := discovery.Discover(videos, prior)
	result.NewCandidates = len(disc.NewCandidates)
	result.ExistingMatches = len(disc.ExistingMatches)
	observability.RecordDiscovery(len(disc.NewCandidates), len(disc.ExistingMatches))
	o.log("Phase 2: %d new candidates, %d existing matches", len(disc.NewCandidates), len(disc.ExistingMatches))

	// Phase 3: promotion
	grown, added, err := o.promoter.AddCandidates(ctx, prior, disc.NewCandidates)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (promotion) failed: %w", err)
	}
	result.EntriesAdded = added
	observability.RecordEntriesAdded(len(added))
	if len(added) > 0 {
		if err := o.registryStore.Save(ctx, grown); err != nil {
			return nil, fmt.Errorf("phase 3 (promotion) failed: save registry: %w", err)
		}
	}
	o.log("Phase 3: added %d entries %v", len(added), added)

	if o.skipAnalyze {
		o.log("Phase 4: skipping analysis (skipAnalyze=true)")
		return result, nil
	}

	// Phase 4: analysis
	start := time.Now()
	fresh, err := o.analyzer.Analyze(ctx, grown)
	observability.RecordPipelineRun("analyze", statusOf(err), time.Since(start).Seconds())
	if err != nil {
		// The prior registry stays untouched; promotion already persisted.
		return nil, fmt.Errorf("phase 4 (analysis) failed: %w", err)
	}
	o.log("Phase 4: %d fresh records", len(fresh))

	// Phase 5: reconciliation
	reconciled := o.reconciler.Reconcile(ctx, fresh, grown, today)
	result.EntriesReconciled = len(reconciled)
	observability.RecordReconciled(len(reconciled))

	if report := verification.VerifyRegistry(reconciled); !report.OK() {
		for _, v := range report.Violations {
			result.Errors = append(result.Errors, "integrity: "+v.String())
		}
		o.log("Phase 5: %d integrity violations", len(report.Violations))
	}

	if err := o.registryStore.Save(ctx, reconciled); err != nil {
		return nil, fmt.Errorf("phase 5 (reconcile) failed: save registry: %w", err)
	}
	o.log("Phase 5: reconciled %d entries", len(reconciled))

	// Phase 6: publish
	if o.publisher != nil {
		if err := o.publisher.PublishStocks(reconciled); err != nil {
			return nil, fmt.Errorf("phase 6 (publish) failed: %w", err)
		}
		if err := o.publisher.PublishVideos(videos); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("publish videos: %v", err))
		}
	}

	o.log("Pipeline completed: %d videos, %d added, %d reconciled",
		result.VideosFetched, len(result.EntriesAdded), result.EntriesReconciled)
	return result, nil
}

// runFetch returns the working video batch: a fresh fetch persisted to
// the video store, or the stored batch when fetching is skipped.
func (o *Orchestrator) runFetch(ctx context.Context, result *RunResult) ([]domain.VideoRecord, error) {
	if o.skipFetch || o.fetcher == nil {
		o.log("Phase 1: reusing stored video batch (skipFetch=true)")
		return o.videoStore.Load(ctx)
	}

	videos, err := o.fetcher.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		// A fetch that finds nothing falls back to the stored batch so
		// a transient YouTube outage does not erase prior signal.
		o.log("Phase 1: fetch returned no videos, reusing stored batch")
		result.Errors = append(result.Errors, "fetch returned no videos")
		return o.videoStore.Load(ctx)
	}
	if err := o.videoStore.Save(ctx, videos); err != nil {
		return nil, fmt.Errorf("save video batch: %w", err)
	}
	return videos, nil
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if o.verbose {
		log.Printf("[orchestrator] "+format, args...)
	}
}
