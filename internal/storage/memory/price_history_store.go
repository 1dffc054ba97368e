package memory

import (
	"context"
	"sync"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore, used when no ClickHouse DSN is configured.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[priceKey]*domain.PricePoint
}

type priceKey struct {
	ticker string
	date   string
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[priceKey]*domain.PricePoint),
	}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Get returns the cached close for a ticker on a date.
func (s *PriceHistoryStore) Get(_ context.Context, ticker, date string) (*domain.PricePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.data[priceKey{ticker, date}]
	if !exists {
		return nil, storage.ErrNotFound
	}

	// Return a copy to prevent external mutation
	pointCopy := *p
	return &pointCopy, nil
}

// Put stores a point, overwriting any existing (ticker, date) value.
func (s *PriceHistoryStore) Put(_ context.Context, p *domain.PricePoint) error {
	if p == nil || p.Ticker == "" || p.Date == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pointCopy := *p
	s.data[priceKey{p.Ticker, p.Date}] = &pointCopy
	return nil
}
