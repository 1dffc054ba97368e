// Package reconcile merges freshly analyzed records into the prior
// registry. Fresh data wins for every field except the protected set
// (initialPrice, source, recommendedDate), which carries forward from
// the prior entry when the fresh record lacks it. Entries the current
// run did not touch survive verbatim apart from lastUpdated.
package reconcile

import (
	"context"
	"log"
	"sort"
	"strings"

	"influencer-stock-lab/internal/domain"
)

// HistoricalQuoter resolves a ticker's closing price on or near a date
// (YYYY-MM-DD). Used to backfill initialPrice for entries that were
// promoted before a price could be fetched.
type HistoricalQuoter interface {
	HistoricalClose(ctx context.Context, ticker, date string) (float64, error)
}

// Options configures a Reconciler.
type Options struct {
	// Quoter backfills missing initial prices. Nil skips the historical
	// lookup; the entry's current price is used instead.
	Quoter HistoricalQuoter

	Logger *log.Logger
}

// Reconciler merges analysis output with the prior registry.
type Reconciler struct {
	quoter HistoricalQuoter
	logger *log.Logger
}

// New creates a reconciler from the given options.
func New(opts Options) *Reconciler {
	r := &Reconciler{
		quoter: opts.Quoter,
		logger: opts.Logger,
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// Reconcile merges fresh analysis records into the prior registry and
// returns the full registry sorted by (ticker, source). today is the
// run date in YYYY-MM-DD form; every output entry's lastUpdated is set
// to it. No identity key present in prior is ever dropped.
func (r *Reconciler) Reconcile(ctx context.Context, fresh, prior []domain.StockEntry, today string) []domain.StockEntry {
	byKey := make(map[domain.Key]domain.StockEntry, len(prior))
	byTicker := make(map[string][]domain.Key, len(prior))
	for _, entry := range prior {
		key := entry.Key()
		if !key.IsValid() {
			continue
		}
		byKey[key] = entry
		byTicker[key.Ticker] = append(byTicker[key.Ticker], key)
	}

	out := make(map[domain.Key]domain.StockEntry, len(prior)+len(fresh))
	for key, entry := range byKey {
		out[key] = entry
	}

	for _, rec := range fresh {
		if strings.TrimSpace(rec.Ticker) == "" {
			r.logger.Printf("[reconcile] skipping analysis record without ticker")
			continue
		}

		key := rec.Key()
		priorEntry, tracked := byKey[key]
		if !tracked && strings.TrimSpace(rec.Source) == "" {
			// Analysis output may drop the source. Adopt the prior
			// entry's identity when the ticker maps to exactly one.
			if keys := byTicker[key.Ticker]; len(keys) == 1 {
				key = keys[0]
				priorEntry, tracked = byKey[key]
			}
		}

		if tracked {
			if !rec.HasInitialPrice() && priorEntry.HasInitialPrice() {
				v := *priorEntry.InitialPrice
				rec.InitialPrice = &v
			}
			if strings.TrimSpace(rec.Source) == "" && priorEntry.Source != "" {
				rec.Source = priorEntry.Source
			}
			if rec.RecommendedDate == "" && priorEntry.RecommendedDate != "" {
				rec.RecommendedDate = priorEntry.RecommendedDate
			}
		}

		rec.Ticker = key.Ticker
		if strings.TrimSpace(rec.Source) == "" {
			rec.Source = key.Source
		}

		r.backfillInitialPrice(ctx, &rec, today)
		rec.LastUpdated = today
		out[key] = rec
	}

	entries := make([]domain.StockEntry, 0, len(out))
	for _, entry := range out {
		entry.LastUpdated = today
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Ticker != entries[j].Ticker {
			return entries[i].Ticker < entries[j].Ticker
		}
		return entries[i].Source < entries[j].Source
	})
	return entries
}

// backfillInitialPrice fills a missing initialPrice: from the historical
// close at recommendedDate when that date is in the past, otherwise from
// the entry's current price. Fixed YYYY-MM-DD format makes the date
// comparison lexicographic.
func (r *Reconciler) backfillInitialPrice(ctx context.Context, rec *domain.StockEntry, today string) {
	if rec.HasInitialPrice() {
		return
	}

	if rec.RecommendedDate != "" && rec.RecommendedDate < today && r.quoter != nil {
		close, err := r.quoter.HistoricalClose(ctx, rec.Ticker, rec.RecommendedDate)
		if err != nil {
			r.logger.Printf("[reconcile] historical backfill for %s on %s failed: %v", rec.Ticker, rec.RecommendedDate, err)
		} else if close > 0 {
			rec.InitialPrice = &close
			return
		}
	}

	if rec.Price > 0 {
		p := rec.Price
		rec.InitialPrice = &p
	}
}
