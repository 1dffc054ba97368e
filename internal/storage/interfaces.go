package storage

import (
	"context"

	"influencer-stock-lab/internal/domain"
)

// RegistryStore provides access to the tracked stock registry.
// The registry is read once and written once per pipeline run; writes
// replace the full set so a failed run never leaves a partial state.
type RegistryStore interface {
	// Load returns all tracked entries. A registry that does not exist
	// yet loads as an empty slice, not an error.
	Load(ctx context.Context) ([]domain.StockEntry, error)

	// Save replaces the registry with the given entries.
	Save(ctx context.Context, entries []domain.StockEntry) error
}

// VideoStore provides access to the fetched video batch.
type VideoStore interface {
	// Load returns the last fetched batch, empty if none exists.
	Load(ctx context.Context) ([]domain.VideoRecord, error)

	// Save replaces the stored batch.
	Save(ctx context.Context, videos []domain.VideoRecord) error
}

// PriceHistoryStore caches historical closing prices by (ticker, date).
type PriceHistoryStore interface {
	// Get returns the cached close for a ticker on a date.
	// Returns ErrNotFound if the point was never stored.
	Get(ctx context.Context, ticker, date string) (*domain.PricePoint, error)

	// Put stores a point. Overwrites any existing (ticker, date) value.
	Put(ctx context.Context, p *domain.PricePoint) error
}
