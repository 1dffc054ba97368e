// Package registry promotes discovered candidates into tracked stock
// entries. New entries carry placeholder valuation fields until the
// analysis pipeline fills them in.
package registry

import (
	"context"
	"log"
	"time"

	"influencer-stock-lab/internal/domain"
)

// DefaultMaxNewEntries caps how many candidates a single run may promote.
const DefaultMaxNewEntries = 5

// defaultFetchDelay spaces out historical price lookups between promotions.
const defaultFetchDelay = 300 * time.Millisecond

// HistoricalQuoter resolves a ticker's closing price on or near a date
// (YYYY-MM-DD).
type HistoricalQuoter interface {
	HistoricalClose(ctx context.Context, ticker, date string) (float64, error)
}

// Options configures a Promoter. Zero values select defaults.
type Options struct {
	// Quoter backfills initialPrice from the first-mentioned date.
	// Nil disables the lookup; entries start without an initial price.
	Quoter HistoricalQuoter

	// MaxNewEntries caps promotions per call. Zero means DefaultMaxNewEntries.
	MaxNewEntries int

	// FetchDelay is the pause between historical lookups.
	FetchDelay time.Duration

	Logger *log.Logger

	// Now supplies the clock; tests override it.
	Now func() time.Time
}

// Promoter turns discovery candidates into registry entries.
type Promoter struct {
	quoter HistoricalQuoter
	maxNew int
	delay  time.Duration
	logger *log.Logger
	now    func() time.Time
}

// NewPromoter creates a promoter from the given options.
func NewPromoter(opts Options) *Promoter {
	p := &Promoter{
		quoter: opts.Quoter,
		maxNew: opts.MaxNewEntries,
		delay:  opts.FetchDelay,
		logger: opts.Logger,
		now:    opts.Now,
	}
	if p.maxNew <= 0 {
		p.maxNew = DefaultMaxNewEntries
	}
	if p.delay <= 0 {
		p.delay = defaultFetchDelay
	}
	if p.logger == nil {
		p.logger = log.Default()
	}
	if p.now == nil {
		p.now = time.Now
	}
	return p
}

// AddCandidates appends placeholder entries for up to MaxNewEntries
// candidates, in the given order, and returns the grown slice plus the
// tickers that were added. Existing entries are never modified. A failed
// historical lookup leaves initialPrice unset; reconciliation backfills
// it later.
func (p *Promoter) AddCandidates(ctx context.Context, entries []domain.StockEntry, candidates []*domain.Recommendation) ([]domain.StockEntry, []string, error) {
	var added []string

	for i, rec := range candidates {
		if len(added) >= p.maxNew {
			p.logger.Printf("[registry] promotion cap reached (%d), skipping %d remaining candidates", p.maxNew, len(candidates)-i)
			break
		}
		if err := ctx.Err(); err != nil {
			return entries, added, err
		}

		entry := p.newEntry(ctx, rec)
		entries = append(entries, entry)
		added = append(added, entry.Ticker)
		p.logger.Printf("[registry] added %s from %s (mentions=%d, bought=%t)", entry.Ticker, entry.Source, rec.MentionCount, rec.IsBought)
	}

	return entries, added, nil
}

// newEntry builds the placeholder entry for one candidate.
func (p *Promoter) newEntry(ctx context.Context, rec *domain.Recommendation) domain.StockEntry {
	today := p.now().Format("2006-01-02")
	key := rec.Key()

	recommendedDate := rec.FirstMentioned
	if recommendedDate == "" {
		recommendedDate = today
	}

	entry := domain.StockEntry{
		Category:        domain.CategoryGrowth,
		Ticker:          key.Ticker,
		Name:            key.Ticker + " (pending analysis)",
		Price:           0,
		RecommendedDate: recommendedDate,
		DCF: domain.DCF{
			Conservative: "0-0",
			Base:         "0-0",
			Aggressive:   "0-0",
		},
		FCFQuality:      3,
		ROICStrength:    3,
		RevenueDurable:  3,
		BalanceSheet:    3,
		InsiderActivity: 3,
		ValueRank:       3,
		ExpectedReturn:  3,
		LastUpdated:     today,
		Source:          key.Source,
		SourceDetails: &domain.SourceDetails{
			ChannelID:      rec.ChannelID,
			FirstMentioned: recommendedDate,
			Videos:         capTitles(rec.Videos),
			IsBought:       rec.IsBought,
			AddedOn:        today,
		},
	}

	if p.quoter != nil {
		if close, err := p.quoter.HistoricalClose(ctx, key.Ticker, recommendedDate); err != nil {
			p.logger.Printf("[registry] historical price for %s on %s unavailable: %v", key.Ticker, recommendedDate, err)
		} else if close > 0 {
			entry.InitialPrice = &close
		}
		p.sleep(ctx)
	}

	return entry
}

// capTitles copies at most MaxRecommendationVideos titles.
func capTitles(titles []string) []string {
	if len(titles) > domain.MaxRecommendationVideos {
		titles = titles[:domain.MaxRecommendationVideos]
	}
	out := make([]string, len(titles))
	copy(out, titles)
	return out
}

// sleep waits the fetch delay unless the context is cancelled first.
func (p *Promoter) sleep(ctx context.Context) {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
