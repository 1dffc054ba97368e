package clickhouse

import (
	"context"
	"fmt"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// Historical closes never change once a trading day has settled, so the
// table acts as a durable write-through cache in front of the price APIs.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Get returns the cached close for a ticker on a date.
// With ReplacingMergeTree the newest fetched_at wins for a (ticker, date).
func (s *PriceHistoryStore) Get(ctx context.Context, ticker, date string) (*domain.PricePoint, error) {
	query := `
		SELECT ticker, date, close, fetched_at
		FROM price_history
		WHERE ticker = ? AND date = ?
		ORDER BY fetched_at DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, ticker, date)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate price history rows: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	var p domain.PricePoint
	var fetchedAt uint64
	if err := rows.Scan(&p.Ticker, &p.Date, &p.Close, &fetchedAt); err != nil {
		return nil, fmt.Errorf("scan price history row: %w", err)
	}
	p.FetchedAt = int64(fetchedAt)

	return &p, nil
}

// Put stores a point. ReplacingMergeTree collapses repeated (ticker, date)
// rows, so overwrites are plain inserts.
func (s *PriceHistoryStore) Put(ctx context.Context, p *domain.PricePoint) error {
	if p == nil || p.Ticker == "" || p.Date == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (ticker, date, close, fetched_at)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	if err := batch.Append(p.Ticker, p.Date, p.Close, uint64(p.FetchedAt)); err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}
