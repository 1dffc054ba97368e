package domain

import "strings"

// SourceUnknown is the sentinel source used when a channel name is absent.
const SourceUnknown = "Unknown"

// Key identifies a tracked (ticker, source) combination.
// It is a value type so it can be used directly as a map key wherever
// identity matters; the string form is what the JSON feed exposes.
type Key struct {
	Ticker string
	Source string
}

// NewKey builds a canonical identity key: ticker uppercased and trimmed,
// source trimmed with the "Unknown" sentinel when absent.
// The same derivation is used at discovery and reconciliation time so the
// channel name reported by video ingest and the source stored in the
// registry always dedup against each other.
func NewKey(ticker, source string) Key {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	s := strings.TrimSpace(source)
	if s == "" {
		s = SourceUnknown
	}
	return Key{Ticker: t, Source: s}
}

// String returns the "TICKER|Source" form of the key.
func (k Key) String() string {
	return k.Ticker + "|" + k.Source
}

// IsValid reports whether the key carries a non-empty ticker.
func (k Key) IsValid() bool {
	return k.Ticker != ""
}
