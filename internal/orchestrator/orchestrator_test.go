package orchestrator

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"influencer-stock-lab/internal/analysis"
	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/feed"
	"influencer-stock-lab/internal/reconcile"
	"influencer-stock-lab/internal/registry"
	"influencer-stock-lab/internal/storage/memory"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	s.calls++
	return s.response, s.err
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

func discard() *log.Logger { return log.New(io.Discard, "", 0) }

const duolAnalysis = `[{
	"category": "Growth",
	"ticker": "DUOL",
	"name": "Duolingo, Inc.",
	"price": 250.00,
	"dcf": {"conservative": "180-210", "base": "210-260", "aggressive": "260-320"},
	"fcfQuality": 4,
	"roicStrength": 4,
	"revenueDurability": 4,
	"balanceSheetStrength": 5,
	"insiderActivity": 3,
	"valueRank": 3,
	"expectedReturn": 4,
	"lastUpdated": "2025-06-15"
}]`

func newTestOrchestrator(t *testing.T, completer analysis.Completer, regStore *memory.RegistryStore, vidStore *memory.VideoStore) *Orchestrator {
	t.Helper()
	return New(Options{
		RegistryStore: regStore,
		VideoStore:    vidStore,
		Promoter: registry.NewPromoter(registry.Options{
			FetchDelay: time.Millisecond,
			Logger:     discard(),
			Now:        fixedNow,
		}),
		Analyzer: analysis.New(analysis.Options{
			Completer: completer,
			Logger:    discard(),
			Now:       fixedNow,
		}),
		Reconciler: reconcile.New(reconcile.Options{Logger: discard()}),
		Publisher:  feed.NewPublisher(t.TempDir(), discard()),
		SkipFetch:  true,
		Now:        fixedNow,
	})
}

func TestRun_EndToEnd(t *testing.T) {
	regStore := memory.NewRegistryStore()
	vidStore := memory.NewVideoStore()

	ctx := context.Background()
	err := vidStore.Save(ctx, []domain.VideoRecord{{
		VideoID:       "vid00000001",
		Title:         "Why I Bought DUOL",
		PublishedAt:   "2025-02-01",
		ChannelName:   "ChanB",
		ChannelID:     "chan-b",
		TickersBought: []string{"DUOL"},
	}})
	if err != nil {
		t.Fatalf("seed videos: %v", err)
	}

	o := newTestOrchestrator(t, &stubCompleter{response: duolAnalysis}, regStore, vidStore)

	result, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.VideosFetched != 1 {
		t.Errorf("expected 1 video in batch, got %d", result.VideosFetched)
	}
	if result.NewCandidates != 1 {
		t.Errorf("expected 1 candidate, got %d", result.NewCandidates)
	}
	if len(result.EntriesAdded) != 1 || result.EntriesAdded[0] != "DUOL" {
		t.Errorf("expected DUOL added, got %v", result.EntriesAdded)
	}
	if result.EntriesReconciled != 1 {
		t.Errorf("expected 1 reconciled entry, got %d", result.EntriesReconciled)
	}

	entries, err := regStore.Load(ctx)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 registry entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Ticker != "DUOL" || e.Source != "ChanB" {
		t.Errorf("unexpected identity %s|%s", e.Ticker, e.Source)
	}
	if e.Price != 250 {
		t.Errorf("expected analyzed price 250, got %v", e.Price)
	}
	if e.RecommendedDate != "2025-02-01" {
		t.Errorf("expected recommendedDate carried from promotion, got %q", e.RecommendedDate)
	}
	if e.LastUpdated != "2025-06-15" {
		t.Errorf("expected lastUpdated stamped with run date, got %q", e.LastUpdated)
	}
	// No quoter configured: backfill falls to the analyzed price.
	if !e.HasInitialPrice() || *e.InitialPrice != 250 {
		t.Errorf("expected initialPrice backfilled from price, got %v", e.InitialPrice)
	}
}

func TestRun_AnalysisFailureKeepsPromotedRegistry(t *testing.T) {
	regStore := memory.NewRegistryStore()
	vidStore := memory.NewVideoStore()

	ctx := context.Background()
	if err := vidStore.Save(ctx, []domain.VideoRecord{{
		VideoID:       "vid00000002",
		Title:         "Buying MELI",
		PublishedAt:   "2025-03-01",
		ChannelName:   "ChanC",
		TickersBought: []string{"MELI"},
	}}); err != nil {
		t.Fatalf("seed videos: %v", err)
	}

	o := newTestOrchestrator(t, &stubCompleter{err: errors.New("rate limited")}, regStore, vidStore)

	if _, err := o.Run(ctx); err == nil {
		t.Fatal("expected run to fail when analysis fails")
	}

	// Promotion persisted before the failing phase; the placeholder
	// entry must survive.
	entries, err := regStore.Load(ctx)
	if err != nil {
		t.Fatalf("load registry: %v", err)
	}
	if len(entries) != 1 || entries[0].Ticker != "MELI" {
		t.Fatalf("expected promoted MELI entry to survive, got %+v", entries)
	}
	if entries[0].Name != "MELI (pending analysis)" {
		t.Errorf("expected placeholder name, got %q", entries[0].Name)
	}
}

func TestRun_SkipAnalyzeStopsAfterPromotion(t *testing.T) {
	regStore := memory.NewRegistryStore()
	vidStore := memory.NewVideoStore()

	ctx := context.Background()
	if err := vidStore.Save(ctx, []domain.VideoRecord{{
		VideoID:       "vid00000003",
		Title:         "Adding NVDA",
		PublishedAt:   "2025-01-10",
		ChannelName:   "ChanA",
		TickersBought: []string{"NVDA"},
	}}); err != nil {
		t.Fatalf("seed videos: %v", err)
	}

	completer := &stubCompleter{response: duolAnalysis}
	o := New(Options{
		RegistryStore: regStore,
		VideoStore:    vidStore,
		Promoter: registry.NewPromoter(registry.Options{
			FetchDelay: time.Millisecond,
			Logger:     discard(),
			Now:        fixedNow,
		}),
		Analyzer:    analysis.New(analysis.Options{Completer: completer, Logger: discard(), Now: fixedNow}),
		SkipFetch:   true,
		SkipAnalyze: true,
		Now:         fixedNow,
	})

	result, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.EntriesAdded) != 1 {
		t.Errorf("expected promotion to run, got %v", result.EntriesAdded)
	}
	if result.EntriesReconciled != 0 {
		t.Errorf("expected no reconciliation in discovery-only run, got %d", result.EntriesReconciled)
	}
	if completer.calls != 0 {
		t.Errorf("expected no LLM calls, got %d", completer.calls)
	}
}

func TestRun_TrackedCombinationNotRediscovered(t *testing.T) {
	regStore := memory.NewRegistryStore()
	vidStore := memory.NewVideoStore()

	ctx := context.Background()
	if err := regStore.Save(ctx, []domain.StockEntry{{
		Category: domain.CategoryGrowth,
		Ticker:   "NVDA",
		Source:   "ChanA",
		Price:    180,
	}}); err != nil {
		t.Fatalf("seed registry: %v", err)
	}
	if err := vidStore.Save(ctx, []domain.VideoRecord{{
		VideoID:       "vid00000004",
		Title:         "Bought more NVDA",
		PublishedAt:   "2025-05-01",
		ChannelName:   "ChanA",
		TickersBought: []string{"NVDA"},
	}}); err != nil {
		t.Fatalf("seed videos: %v", err)
	}

	o := New(Options{
		RegistryStore: regStore,
		VideoStore:    vidStore,
		Promoter:      registry.NewPromoter(registry.Options{FetchDelay: time.Millisecond, Logger: discard(), Now: fixedNow}),
		SkipFetch:     true,
		SkipAnalyze:   true,
		Now:           fixedNow,
	})

	result, err := o.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.NewCandidates != 0 {
		t.Errorf("tracked combination must not re-promote, got %d candidates", result.NewCandidates)
	}
	if result.ExistingMatches != 1 {
		t.Errorf("expected 1 existing match, got %d", result.ExistingMatches)
	}
}
