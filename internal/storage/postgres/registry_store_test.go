package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"influencer-stock-lab/internal/domain"
)

func testEntries() []domain.StockEntry {
	return []domain.StockEntry{
		{
			Category:        domain.CategoryGrowth,
			Ticker:          "NVDA",
			Name:            "NVIDIA Corporation",
			Price:           180.50,
			InitialPrice:    ptr(120.0),
			RecommendedDate: "2025-01-15",
			DCF: domain.DCF{
				Conservative: "120-150",
				Base:         "150-190",
				Aggressive:   "190-240",
			},
			FCFQuality:      5,
			ROICStrength:    5,
			RevenueDurable:  4,
			BalanceSheet:    5,
			InsiderActivity: 3,
			ValueRank:       2,
			ExpectedReturn:  4,
			LastUpdated:     "2025-06-15",
			Source:          "ChanA",
			SourceDetails: &domain.SourceDetails{
				ChannelID:      "chan-a",
				FirstMentioned: "2025-01-15",
				Videos:         []string{"Why I Bought NVDA"},
				IsBought:       true,
				AddedOn:        "2025-01-16",
			},
		},
		{
			Category:       domain.CategoryDividend,
			Ticker:         "O",
			Name:           "Realty Income",
			Price:          55.20,
			DCF:            domain.DCF{Conservative: "45-55", Base: "55-65", Aggressive: "65-75"},
			FCFQuality:     4,
			ROICStrength:   3,
			RevenueDurable: 5,
			BalanceSheet:   4, InsiderActivity: 3, ValueRank: 3, ExpectedReturn: 3,
			LastUpdated: "2025-06-15",
			Source:      "ChanB",
		},
	}
}

func TestRegistryStore_SaveAndLoad(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRegistryStore(pool)

	require.NoError(t, store.Save(ctx, testEntries()))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Ordered by (ticker, source).
	nvda := loaded[0]
	assert.Equal(t, "NVDA", nvda.Ticker)
	assert.Equal(t, "ChanA", nvda.Source)
	assert.Equal(t, domain.CategoryGrowth, nvda.Category)
	assert.Equal(t, 180.50, nvda.Price)
	require.NotNil(t, nvda.InitialPrice)
	assert.Equal(t, 120.0, *nvda.InitialPrice)
	assert.Equal(t, "2025-01-15", nvda.RecommendedDate)
	assert.Equal(t, "150-190", nvda.DCF.Base)
	require.NotNil(t, nvda.SourceDetails)
	assert.True(t, nvda.SourceDetails.IsBought)
	assert.Equal(t, []string{"Why I Bought NVDA"}, nvda.SourceDetails.Videos)

	o := loaded[1]
	assert.Equal(t, "O", o.Ticker)
	assert.Nil(t, o.InitialPrice)
	assert.Empty(t, o.RecommendedDate)
	assert.Nil(t, o.SourceDetails)
}

func TestRegistryStore_SaveReplacesFully(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRegistryStore(pool)

	require.NoError(t, store.Save(ctx, testEntries()))

	replacement := []domain.StockEntry{{
		Category: domain.CategoryGrowth,
		Ticker:   "MELI",
		Name:     "MercadoLibre",
		Price:    2000,
		DCF:      domain.DCF{Conservative: "0-0", Base: "0-0", Aggressive: "0-0"},
		FCFQuality: 3, ROICStrength: 3, RevenueDurable: 3,
		BalanceSheet: 3, InsiderActivity: 3, ValueRank: 3, ExpectedReturn: 3,
		LastUpdated: "2025-06-16",
		Source:      "ChanC",
	}}
	require.NoError(t, store.Save(ctx, replacement))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "MELI", loaded[0].Ticker)
}

func TestRegistryStore_LoadEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewRegistryStore(pool)
	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.NotNil(t, loaded)
}

func TestRegistryStore_SameTickerTwoSources(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewRegistryStore(pool)

	entries := testEntries()
	dup := entries[0]
	dup.Source = "ChanZ"
	dup.SourceDetails = nil
	entries = append(entries, dup)

	require.NoError(t, store.Save(ctx, entries))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "ChanA", loaded[0].Source)
	assert.Equal(t, "ChanZ", loaded[1].Source)
}
