// Package prices resolves live and historical stock prices from a chain
// of market data providers with per-ticker fallback.
package prices

import (
	"context"
	"errors"
	"math"
)

// ErrPriceUnavailable is returned when no provider can supply a price.
var ErrPriceUnavailable = errors.New("price unavailable")

// Provider supplies the current market price for a ticker.
type Provider interface {
	Name() string
	Quote(ctx context.Context, ticker string) (float64, error)
}

// HistoricalProvider supplies the closing price on or near a date
// (YYYY-MM-DD). Weekends and holidays resolve to the closest trading day.
type HistoricalProvider interface {
	Name() string
	HistoricalClose(ctx context.Context, ticker, date string) (float64, error)
}

// round2 rounds to cents. Provider responses carry float noise past
// two decimals.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
