// Package reporting builds portfolio performance reports from the
// tracked registry: per-entry return since recommendation plus summary
// statistics, rendered as Markdown and CSV.
package reporting

import "time"

// Report is one generated performance report.
type Report struct {
	GeneratedAt time.Time

	Summary Summary

	// Rows sorted by return descending; entries without a computable
	// return sort last, by ticker.
	Rows []PerformanceRow
}

// Summary aggregates the per-entry returns.
type Summary struct {
	TotalEntries     int
	WithInitialPrice int
	Priced           int
	Winners          int
	Losers           int

	MeanReturnPct   float64
	MedianReturnPct float64

	BestTicker  string
	BestReturn  float64
	WorstTicker string
	WorstReturn float64
}

// PerformanceRow is one registry entry's performance since its
// recommendation date.
type PerformanceRow struct {
	Ticker          string
	Source          string
	Category        string
	RecommendedDate string

	InitialPrice float64 // 0 when never backfilled
	CurrentPrice float64 // 0 when no quote was available

	// ReturnPct is nil when either price is missing.
	ReturnPct *float64

	DaysHeld int
}
