package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// RegistryStore implements storage.RegistryStore using PostgreSQL.
// Intended for deployments where several consumers read the registry;
// the JSON feed is still published from it after each run.
type RegistryStore struct {
	pool *Pool
}

// NewRegistryStore creates a new RegistryStore.
func NewRegistryStore(pool *Pool) *RegistryStore {
	return &RegistryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RegistryStore = (*RegistryStore)(nil)

// Load returns all tracked entries ordered by (ticker, source).
func (s *RegistryStore) Load(ctx context.Context) ([]domain.StockEntry, error) {
	query := `
		SELECT category, ticker, name, price, initial_price, recommended_date,
		       dcf_conservative, dcf_base, dcf_aggressive,
		       fcf_quality, roic_strength, revenue_durability, balance_sheet_strength,
		       insider_activity, value_rank, expected_return,
		       last_updated, source, source_details
		FROM stock_entries
		ORDER BY ticker ASC, source ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load stock entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Save replaces the full registry in one transaction.
func (s *RegistryStore) Save(ctx context.Context, entries []domain.StockEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM stock_entries`); err != nil {
		return fmt.Errorf("clear stock entries: %w", err)
	}

	query := `
		INSERT INTO stock_entries (
			category, ticker, name, price, initial_price, recommended_date,
			dcf_conservative, dcf_base, dcf_aggressive,
			fcf_quality, roic_strength, revenue_durability, balance_sheet_strength,
			insider_activity, value_rank, expected_return,
			last_updated, source, source_details
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`

	for i := range entries {
		e := &entries[i]

		var details []byte
		if e.SourceDetails != nil {
			details, err = json.Marshal(e.SourceDetails)
			if err != nil {
				return fmt.Errorf("marshal source details for %s: %w", e.Ticker, err)
			}
		}

		var recommendedDate *string
		if e.RecommendedDate != "" {
			recommendedDate = &e.RecommendedDate
		}

		_, err = tx.Exec(ctx, query,
			string(e.Category), e.Ticker, e.Name, e.Price, e.InitialPrice, recommendedDate,
			e.DCF.Conservative, e.DCF.Base, e.DCF.Aggressive,
			e.FCFQuality, e.ROICStrength, e.RevenueDurable, e.BalanceSheet,
			e.InsiderActivity, e.ValueRank, e.ExpectedReturn,
			e.LastUpdated, e.Source, details,
		)
		if err != nil {
			return fmt.Errorf("insert stock entry %s|%s: %w", e.Ticker, e.Source, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// scanEntries scans rows into a slice of StockEntry.
func scanEntries(rows pgx.Rows) ([]domain.StockEntry, error) {
	entries := []domain.StockEntry{}

	for rows.Next() {
		var e domain.StockEntry
		var categoryStr string
		var recommendedDate *string
		var details []byte

		err := rows.Scan(
			&categoryStr, &e.Ticker, &e.Name, &e.Price, &e.InitialPrice, &recommendedDate,
			&e.DCF.Conservative, &e.DCF.Base, &e.DCF.Aggressive,
			&e.FCFQuality, &e.ROICStrength, &e.RevenueDurable, &e.BalanceSheet,
			&e.InsiderActivity, &e.ValueRank, &e.ExpectedReturn,
			&e.LastUpdated, &e.Source, &details,
		)
		if err != nil {
			return nil, fmt.Errorf("scan stock entry row: %w", err)
		}

		e.Category = domain.Category(categoryStr)
		if recommendedDate != nil {
			e.RecommendedDate = *recommendedDate
		}
		if len(details) > 0 {
			var sd domain.SourceDetails
			if err := json.Unmarshal(details, &sd); err != nil {
				return nil, fmt.Errorf("parse source details for %s: %w", e.Ticker, err)
			}
			e.SourceDetails = &sd
		}

		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stock entry rows: %w", err)
	}

	return entries, nil
}
