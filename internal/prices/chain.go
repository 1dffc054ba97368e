package prices

import (
	"context"
	"log"
	"time"

	"influencer-stock-lab/internal/observability"
)

// Chain tries providers in order until one returns a usable price.
type Chain struct {
	providers []Provider
	logger    *log.Logger
}

// NewChain creates a fallback chain. Provider order is priority order.
func NewChain(logger *log.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

// Quote returns the first price any provider supplies for the ticker.
func (c *Chain) Quote(ctx context.Context, ticker string) (float64, error) {
	var lastErr error = ErrPriceUnavailable
	for _, p := range c.providers {
		start := time.Now()
		price, err := p.Quote(ctx, ticker)
		elapsed := time.Since(start).Seconds()
		if err != nil {
			observability.RecordPriceLookup(p.Name(), "error", elapsed)
			c.logger.Printf("[prices] %s failed for %s: %v", p.Name(), ticker, err)
			lastErr = err
			continue
		}
		observability.RecordPriceLookup(p.Name(), "ok", elapsed)
		return price, nil
	}
	return 0, lastErr
}

// Quotes resolves prices for a set of tickers. Tickers no provider can
// price are absent from the result; the caller decides how to degrade.
func (c *Chain) Quotes(ctx context.Context, tickers []string) map[string]float64 {
	out := make(map[string]float64, len(tickers))
	for _, ticker := range tickers {
		if ctx.Err() != nil {
			break
		}
		price, err := c.Quote(ctx, ticker)
		if err != nil {
			c.logger.Printf("[prices] no provider could price %s: %v", ticker, err)
			continue
		}
		out[ticker] = price
	}
	return out
}
