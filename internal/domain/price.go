package domain

// PricePoint is one observed closing price for a ticker on a trading day.
// Corresponds to one row of the price_history table in ClickHouse and is
// used as a write-through cache for historical-price lookups.
type PricePoint struct {
	Ticker    string  // uppercase symbol
	Date      string  // ISO date, YYYY-MM-DD
	Close     float64 // closing price in USD
	FetchedAt int64   // Unix timestamp in milliseconds
}
