package memory

import (
	"context"
	"sync"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// RegistryStore is an in-memory implementation of storage.RegistryStore.
type RegistryStore struct {
	mu      sync.RWMutex
	entries []domain.StockEntry
}

// NewRegistryStore creates a new in-memory registry store.
func NewRegistryStore() *RegistryStore {
	return &RegistryStore{}
}

// Compile-time interface check.
var _ storage.RegistryStore = (*RegistryStore)(nil)

// Load returns a copy of all tracked entries.
func (s *RegistryStore) Load(_ context.Context) ([]domain.StockEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StockEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Save replaces the registry with a copy of the given entries.
func (s *RegistryStore) Save(_ context.Context, entries []domain.StockEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]domain.StockEntry, len(entries))
	copy(s.entries, entries)
	return nil
}

// VideoStore is an in-memory implementation of storage.VideoStore.
type VideoStore struct {
	mu     sync.RWMutex
	videos []domain.VideoRecord
}

// NewVideoStore creates a new in-memory video store.
func NewVideoStore() *VideoStore {
	return &VideoStore{}
}

var _ storage.VideoStore = (*VideoStore)(nil)

// Load returns a copy of the stored batch.
func (s *VideoStore) Load(_ context.Context) ([]domain.VideoRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.VideoRecord, len(s.videos))
	copy(out, s.videos)
	return out, nil
}

// Save replaces the stored batch with a copy.
func (s *VideoStore) Save(_ context.Context, videos []domain.VideoRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.videos = make([]domain.VideoRecord, len(videos))
	copy(s.videos, videos)
	return nil
}
