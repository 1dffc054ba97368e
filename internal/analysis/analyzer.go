// Package analysis turns the tracked registry into fresh valuation
// records through an LLM, validates the output, and caches it against
// the input state.
package analysis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"

	"influencer-stock-lab/internal/cache"
	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/observability"
)

// Completer produces a chat completion for a system+user prompt pair.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Quoter resolves current prices for a set of tickers. Unpriceable
// tickers are absent from the result.
type Quoter interface {
	Quotes(ctx context.Context, tickers []string) map[string]float64
}

// Options configures an Analyzer.
type Options struct {
	Completer Completer

	// Quoter feeds current prices into the prompt. Nil lets the model
	// estimate prices itself.
	Quoter Quoter

	// Cache short-circuits the LLM round trip when the input state is
	// unchanged. Nil disables caching.
	Cache *cache.AnalysisCache

	Logger *log.Logger

	// Now supplies the clock; tests override it.
	Now func() time.Time
}

// Analyzer runs the valuation pass over the registry.
type Analyzer struct {
	completer Completer
	quoter    Quoter
	cache     *cache.AnalysisCache
	validate  *validator.Validate
	logger    *log.Logger
	now       func() time.Time
}

// New creates an analyzer from the given options.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		completer: opts.Completer,
		quoter:    opts.Quoter,
		cache:     opts.Cache,
		validate:  newValidator(),
		logger:    opts.Logger,
		now:       opts.Now,
	}
	if a.logger == nil {
		a.logger = log.Default()
	}
	if a.now == nil {
		a.now = time.Now
	}
	return a
}

// analysisInput is the cache fingerprint: same tickers at the same
// prices means the same analysis.
type analysisInput struct {
	Tickers []string           `json:"tickers"`
	Prices  map[string]float64 `json:"prices"`
}

// Analyze produces fresh valuation records for every ticker in the
// registry. Output records are validated individually; invalid ones are
// dropped with a warning so one bad record never poisons the run. An
// unparseable response is a hard error and the caller must keep the
// prior registry untouched.
func (a *Analyzer) Analyze(ctx context.Context, entries []domain.StockEntry) ([]domain.StockEntry, error) {
	tickers := registryTickers(entries)
	if len(tickers) == 0 {
		return nil, nil
	}
	if a.completer == nil {
		return nil, fmt.Errorf("analysis: no completer configured")
	}

	var prices map[string]float64
	if a.quoter != nil {
		prices = a.quoter.Quotes(ctx, tickers)
	}

	hash := cache.DataHash(analysisInput{Tickers: tickers, Prices: prices})
	if cached, ok := a.cache.Get(ctx, hash); ok {
		observability.RecordAnalysisCache("hit")
		a.logger.Printf("[analysis] reusing cached analysis for %d tickers", len(tickers))
		return cached, nil
	}
	observability.RecordAnalysisCache("miss")

	today := a.now().Format("2006-01-02")
	prompt := BuildPrompt(tickers, prices, today)

	start := time.Now()
	raw, err := a.completer.Complete(ctx, systemPrompt, prompt)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		observability.RecordLLMRequest("error", elapsed)
		return nil, fmt.Errorf("analysis completion: %w", err)
	}
	observability.RecordLLMRequest("ok", elapsed)

	records, err := Parse(raw)
	if err != nil {
		return nil, err
	}

	valid := a.filterValid(records)
	a.logger.Printf("[analysis] %d/%d records passed validation", len(valid), len(records))

	if len(valid) > 0 && a.cache != nil {
		if err := a.cache.Set(ctx, hash, valid, 0); err != nil {
			a.logger.Printf("[analysis] cache write failed: %v", err)
		}
	}
	return valid, nil
}

// filterValid drops records that fail struct validation.
func (a *Analyzer) filterValid(records []domain.StockEntry) []domain.StockEntry {
	valid := make([]domain.StockEntry, 0, len(records))
	for i := range records {
		if err := a.validate.Struct(&records[i]); err != nil {
			observability.RecordRecordRejected()
			a.logger.Printf("[analysis] rejecting record %q: %v", records[i].Ticker, err)
			continue
		}
		valid = append(valid, records[i])
	}
	return valid
}

// registryTickers returns the unique uppercase tickers of the registry,
// in registry order.
func registryTickers(entries []domain.StockEntry) []string {
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
