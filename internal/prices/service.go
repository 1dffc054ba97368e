package prices

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"influencer-stock-lab/internal/domain"
	"influencer-stock-lab/internal/observability"
	"influencer-stock-lab/internal/storage"
)

const (
	// defaultRetryAttempts matches the historical lookup retry budget:
	// two tries total with a short pause between them.
	defaultRetryAttempts = 2
	defaultRetryDelay    = 500 * time.Millisecond

	// defaultLookupInterval spaces out provider calls as a rate-limit
	// courtesy.
	defaultLookupInterval = 300 * time.Millisecond
)

// ServiceOptions configures a Service. Zero values select defaults.
type ServiceOptions struct {
	// Chain resolves live quotes.
	Chain *Chain

	// Historical resolves dated closing prices.
	Historical HistoricalProvider

	// Cache is a write-through store for historical closes. Nil disables
	// caching.
	Cache storage.PriceHistoryStore

	// LookupInterval throttles provider calls.
	LookupInterval time.Duration

	RetryAttempts int
	RetryDelay    time.Duration

	Logger *log.Logger
}

// Service is the price lookup front door: throttled, retried, and backed
// by a write-through historical cache. It serves both candidate
// promotion and reconciliation backfill.
type Service struct {
	chain      *Chain
	historical HistoricalProvider
	cache      storage.PriceHistoryStore
	limiter    *rate.Limiter
	retries    int
	retryDelay time.Duration
	logger     *log.Logger
}

// NewService creates a price service from the given options.
func NewService(opts ServiceOptions) *Service {
	s := &Service{
		chain:      opts.Chain,
		historical: opts.Historical,
		cache:      opts.Cache,
		retries:    opts.RetryAttempts,
		retryDelay: opts.RetryDelay,
		logger:     opts.Logger,
	}
	interval := opts.LookupInterval
	if interval <= 0 {
		interval = defaultLookupInterval
	}
	s.limiter = rate.NewLimiter(rate.Every(interval), 1)
	if s.retries <= 0 {
		s.retries = defaultRetryAttempts
	}
	if s.retryDelay <= 0 {
		s.retryDelay = defaultRetryDelay
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	return s
}

// Quote returns the current market price for a ticker.
func (s *Service) Quote(ctx context.Context, ticker string) (float64, error) {
	if s.chain == nil {
		return 0, ErrPriceUnavailable
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	return s.chain.Quote(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

// Quotes resolves current prices for a set of tickers, throttled.
// Unpriceable tickers are absent from the result.
func (s *Service) Quotes(ctx context.Context, tickers []string) map[string]float64 {
	out := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		price, err := s.Quote(ctx, ticker)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			continue
		}
		out[strings.ToUpper(strings.TrimSpace(ticker))] = price
	}
	return out
}

// HistoricalClose returns the closing price on or near the given date
// (YYYY-MM-DD), consulting the cache first and writing through on a
// provider hit.
func (s *Service) HistoricalClose(ctx context.Context, ticker, date string) (float64, error) {
	if s.historical == nil {
		return 0, ErrPriceUnavailable
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	if s.cache != nil {
		point, err := s.cache.Get(ctx, ticker, date)
		if err == nil {
			observability.RecordPriceCache(true)
			return point.Close, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("[prices] cache read for %s/%s failed: %v", ticker, date, err)
		}
		observability.RecordPriceCache(false)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	var (
		close   float64
		lastErr error
	)
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.retryDelay); err != nil {
				return 0, err
			}
		}
		start := time.Now()
		close, lastErr = s.historical.HistoricalClose(ctx, ticker, date)
		elapsed := time.Since(start).Seconds()
		if lastErr == nil {
			observability.RecordPriceLookup(s.historical.Name(), "ok", elapsed)
			break
		}
		observability.RecordPriceLookup(s.historical.Name(), "error", elapsed)
	}
	if lastErr != nil {
		return 0, lastErr
	}

	if s.cache != nil {
		point := &domain.PricePoint{
			Ticker:    ticker,
			Date:      date,
			Close:     close,
			FetchedAt: time.Now().UnixMilli(),
		}
		if err := s.cache.Put(ctx, point); err != nil {
			s.logger.Printf("[prices] cache write for %s/%s failed: %v", ticker, date, err)
		}
	}

	return close, nil
}

// sleepCtx waits the duration unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
