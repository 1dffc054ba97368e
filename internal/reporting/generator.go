package reporting

import (
	"context"
	"sort"
	"time"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/storage"
)

// Quoter resolves current prices for a set of tickers. Unpriceable
// tickers are absent from the result.
type Quoter interface {
	Quotes(ctx context.Context, tickers []string) map[string]float64
}

// Generator produces performance reports from the tracked registry.
type Generator struct {
	registryStore storage.RegistryStore
	quoter        Quoter
	now           func() time.Time
}

// NewGenerator creates a report generator. A nil quoter falls back to
// each entry's last analyzed price.
func NewGenerator(registryStore storage.RegistryStore, quoter Quoter) *Generator {
	return &Generator{
		registryStore: registryStore,
		quoter:        quoter,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a performance report over the full registry.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	entries, err := g.registryStore.Load(ctx)
	if err != nil {
		return nil, err
	}

	var quotes map[string]float64
	if g.quoter != nil {
		quotes = g.quoter.Quotes(ctx, uniqueTickers(entries))
	}

	report := &Report{GeneratedAt: g.now()}
	for i := range entries {
		report.Rows = append(report.Rows, g.buildRow(&entries[i], quotes))
	}
	sortRows(report.Rows)
	report.Summary = summarize(report.Rows)
	return report, nil
}

// buildRow computes one entry's performance. The current price prefers a
// live quote and falls back to the last analyzed price.
func (g *Generator) buildRow(entry *domain.StockEntry, quotes map[string]float64) PerformanceRow {
	row := PerformanceRow{
		Ticker:          entry.Ticker,
		Source:          entry.Source,
		Category:        entry.Category.String(),
		RecommendedDate: entry.RecommendedDate,
		CurrentPrice:    entry.Price,
	}

	if quote, ok := quotes[entry.Ticker]; ok && quote > 0 {
		row.CurrentPrice = quote
	}
	if entry.HasInitialPrice() {
		row.InitialPrice = *entry.InitialPrice
	}
	if row.InitialPrice > 0 && row.CurrentPrice > 0 {
		pct := (row.CurrentPrice - row.InitialPrice) / row.InitialPrice * 100
		row.ReturnPct = &pct
	}
	if entry.RecommendedDate != "" {
		if recommended, err := time.Parse("2006-01-02", entry.RecommendedDate); err == nil {
			if days := int(g.now().Sub(recommended).Hours() / 24); days > 0 {
				row.DaysHeld = days
			}
		}
	}
	return row
}

// sortRows orders by return descending; rows without a return sort last,
// by ticker.
func sortRows(rows []PerformanceRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].ReturnPct, rows[j].ReturnPct
		switch {
		case a != nil && b != nil:
			return *a > *b
		case a != nil:
			return true
		case b != nil:
			return false
		default:
			return rows[i].Ticker < rows[j].Ticker
		}
	})
}

// summarize computes aggregate statistics over the rows.
func summarize(rows []PerformanceRow) Summary {
	s := Summary{TotalEntries: len(rows)}

	var returns []float64
	for _, row := range rows {
		if row.InitialPrice > 0 {
			s.WithInitialPrice++
		}
		if row.ReturnPct == nil {
			continue
		}
		s.Priced++
		r := *row.ReturnPct
		returns = append(returns, r)
		if r >= 0 {
			s.Winners++
		} else {
			s.Losers++
		}
		if s.BestTicker == "" || r > s.BestReturn {
			s.BestTicker, s.BestReturn = row.Ticker, r
		}
		if s.WorstTicker == "" || r < s.WorstReturn {
			s.WorstTicker, s.WorstReturn = row.Ticker, r
		}
	}

	if len(returns) == 0 {
		return s
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	s.MeanReturnPct = sum / float64(len(returns))

	sort.Float64s(returns)
	mid := len(returns) / 2
	if len(returns)%2 == 1 {
		s.MedianReturnPct = returns[mid]
	} else {
		s.MedianReturnPct = (returns[mid-1] + returns[mid]) / 2
	}
	return s
}

// uniqueTickers returns the registry's distinct tickers in order.
func uniqueTickers(entries []domain.StockEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	var out []string
	for i := range entries {
		key := entries[i].Key()
		if !key.IsValid() {
			continue
		}
		if _, ok := seen[key.Ticker]; ok {
			continue
		}
		seen[key.Ticker] = struct{}{}
		out = append(out, key.Ticker)
	}
	return out
}
