package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"influencer-stock-lab/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func TestRegistryStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	store := NewRegistryStore(path)
	ctx := context.Background()

	entries := []domain.StockEntry{{
		Category:        domain.CategoryGrowth,
		Ticker:          "NVDA",
		Name:            "NVIDIA Corporation",
		Price:           180.5,
		InitialPrice:    ptr(120),
		RecommendedDate: "2025-01-15",
		DCF:             domain.DCF{Conservative: "120-150", Base: "150-190", Aggressive: "190-240"},
		FCFQuality:      5, ROICStrength: 5, RevenueDurable: 4,
		BalanceSheet: 5, InsiderActivity: 3, ValueRank: 2, ExpectedReturn: 4,
		LastUpdated: "2025-06-15",
		Source:      "ChanA",
		SourceDetails: &domain.SourceDetails{
			ChannelID: "chan-a",
			Videos:    []string{"Why I Bought NVDA"},
			IsBought:  true,
		},
	}}

	if err := store.Save(ctx, entries); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(loaded))
	}
	e := loaded[0]
	if e.Ticker != "NVDA" || e.Source != "ChanA" {
		t.Errorf("unexpected identity %s|%s", e.Ticker, e.Source)
	}
	if e.InitialPrice == nil || *e.InitialPrice != 120 {
		t.Errorf("initialPrice did not survive the round trip: %v", e.InitialPrice)
	}
	if e.SourceDetails == nil || !e.SourceDetails.IsBought {
		t.Errorf("sourceDetails did not survive the round trip: %+v", e.SourceDetails)
	}
}

func TestRegistryStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := NewRegistryStore(filepath.Join(t.TempDir(), "does-not-exist.json"))

	loaded, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Errorf("expected empty registry, got %d entries", len(loaded))
	}
}

func TestRegistryStore_LoadMalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewRegistryStore(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error for malformed file")
	}
}

func TestRegistryStore_WritesPrettyNewlineTerminatedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stocks.json")
	store := NewRegistryStore(path)

	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "[]\n" {
		t.Errorf("expected empty array with trailing newline, got %q", string(data))
	}
}

func TestRegistryStore_SaveCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "stocks.json")
	store := NewRegistryStore(path)

	if err := store.Save(context.Background(), []domain.StockEntry{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %v", err)
	}
}

func TestRegistryStore_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewRegistryStore(filepath.Join(dir, "stocks.json"))

	if err := store.Save(context.Background(), []domain.StockEntry{}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		if strings.Contains(f.Name(), ".tmp-") {
			t.Errorf("temp file left behind: %s", f.Name())
		}
	}
}

func TestVideoStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "youtube_videos.json")
	store := NewVideoStore(path)
	ctx := context.Background()

	videos := []domain.VideoRecord{{
		VideoID:          "vid00000001",
		Title:            "Why I Bought NVDA",
		PublishedAt:      "2025-01-15",
		ChannelName:      "ChanA",
		TickersMentioned: []string{"NVDA"},
		TickersBought:    []string{"NVDA"},
	}}

	if err := store.Save(ctx, videos); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].VideoID != "vid00000001" {
		t.Fatalf("unexpected batch %+v", loaded)
	}
}
