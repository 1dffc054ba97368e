package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"
)

// historicalWindowBefore/After pad the chart request around the target
// date so weekends and holidays still return a nearby trading day.
const (
	historicalWindowBefore = 5
	historicalWindowAfter  = 2
)

// Yahoo resolves prices through the Yahoo Finance chart and quote APIs.
// Primary provider; needs no API key.
type Yahoo struct{}

// NewYahoo creates the Yahoo provider.
func NewYahoo() *Yahoo {
	return &Yahoo{}
}

// Name returns the provider name.
func (y *Yahoo) Name() string { return "yahoo" }

// Quote returns the current market price, falling back to the previous
// close outside trading hours.
func (y *Yahoo) Quote(_ context.Context, ticker string) (float64, error) {
	q, err := quote.Get(ticker)
	if err != nil {
		return 0, fmt.Errorf("yahoo quote %s: %w", ticker, err)
	}
	if q == nil {
		return 0, fmt.Errorf("yahoo quote %s: %w", ticker, ErrPriceUnavailable)
	}

	price := q.RegularMarketPrice
	if price <= 0 {
		price = q.RegularMarketPreviousClose
	}
	if price <= 0 {
		return 0, fmt.Errorf("yahoo quote %s: %w", ticker, ErrPriceUnavailable)
	}
	return round2(price), nil
}

// HistoricalClose returns the closing price on the trading day closest
// to the given date.
func (y *Yahoo) HistoricalClose(_ context.Context, ticker, date string) (float64, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("yahoo historical %s: bad date %q: %w", ticker, date, err)
	}

	start := day.AddDate(0, 0, -historicalWindowBefore)
	end := day.AddDate(0, 0, historicalWindowAfter)

	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Interval: datetime.OneDay,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
	})

	target := day.Unix()
	var (
		best     float64
		bestDiff int64 = -1
	)
	for iter.Next() {
		bar := iter.Bar()
		close, _ := bar.Close.Float64()
		if close <= 0 {
			continue
		}
		diff := int64(bar.Timestamp) - target
		if diff < 0 {
			diff = -diff
		}
		if bestDiff < 0 || diff < bestDiff {
			bestDiff = diff
			best = close
		}
	}
	if err := iter.Err(); err != nil && bestDiff < 0 {
		return 0, fmt.Errorf("yahoo historical %s on %s: %w", ticker, date, err)
	}
	if bestDiff < 0 {
		return 0, fmt.Errorf("yahoo historical %s on %s: %w", ticker, date, ErrPriceUnavailable)
	}
	return round2(best), nil
}
