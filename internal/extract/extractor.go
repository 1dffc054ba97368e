// Package extract maps free text to stock ticker symbols using a known-ticker
// dictionary and the $TICKER convention.
package extract

import (
	"regexp"
	"sort"
	"strings"
)

// defaultTickers is the built-in allow-list of symbols worth matching in
// titles and descriptions. Overridable through configuration.
var defaultTickers = []string{
	"AAPL", "MSFT", "GOOGL", "GOOG", "AMZN", "META", "NVDA", "TSLA",
	"JPM", "V", "MA", "JNJ", "UNH", "HD", "PG", "KO", "PEP", "MCD",
	"DIS", "NFLX", "ADBE", "CRM", "PYPL", "INTC", "AMD", "QCOM",
	"T", "VZ", "CMCSA", "NKE", "SBUX", "WMT", "COST", "TGT",
	"BA", "CAT", "GE", "MMM", "IBM", "ORCL", "CSCO", "TXN",
	"O", "SCHD", "VTI", "VOO", "SPY", "QQQ", "VYM", "JEPI",
	"SPGI", "EFX", "ASML", "MELI", "CMG", "DUOL", "CRWV",
	"BRK.A", "BRK.B", "WFC", "BAC", "GS", "MS", "C",
	"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO",
	"LMT", "RTX", "NOC", "GD",
	"ABBV", "MRK", "PFE", "LLY", "BMY", "GILD", "AMGN",
	"NEE", "DUK", "SO", "D", "AEP", "EXC", "SRE",
	"AMT", "PLD", "CCI", "EQIX", "SPG", "PSA", "DLR",
	"NOW", "SNOW", "PLTR", "DDOG", "ZS", "CRWD", "NET",
}

// DefaultTickers returns a copy of the built-in allow-list.
func DefaultTickers() []string {
	out := make([]string, len(defaultTickers))
	copy(out, defaultTickers)
	return out
}

// dollarTickerRe matches the $TICKER convention: 2-5 capital letters.
// Single letters are skipped; "$5 billion" style text produces too many
// false positives otherwise.
var dollarTickerRe = regexp.MustCompile(`\$([A-Z]{2,5})\b`)

// Extractor matches known tickers and $TICKER patterns in free text.
type Extractor struct {
	known    map[string]struct{}
	patterns map[string]*regexp.Regexp
}

// New creates an extractor over the given allow-list; an empty list falls
// back to the built-in default tickers.
func New(allowList []string) *Extractor {
	if len(allowList) == 0 {
		allowList = defaultTickers
	}

	e := &Extractor{
		known:    make(map[string]struct{}, len(allowList)),
		patterns: make(map[string]*regexp.Regexp, len(allowList)),
	}
	for _, t := range allowList {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		e.known[t] = struct{}{}
		e.patterns[t] = regexp.MustCompile(`\b` + regexp.QuoteMeta(t) + `\b`)
	}
	return e
}

// Extract returns every ticker found in the text, deduplicated and sorted.
func (e *Extractor) Extract(text string) []string {
	if text == "" {
		return nil
	}

	upper := strings.ToUpper(text)
	found := make(map[string]struct{})

	for ticker, pattern := range e.patterns {
		if pattern.MatchString(upper) {
			found[ticker] = struct{}{}
		}
	}

	for _, m := range dollarTickerRe.FindAllStringSubmatch(upper, -1) {
		found[m[1]] = struct{}{}
	}

	if len(found) == 0 {
		return nil
	}

	out := make([]string, 0, len(found))
	for t := range found {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Knows reports whether the ticker is part of the allow-list.
func (e *Extractor) Knows(ticker string) bool {
	_, ok := e.known[strings.ToUpper(strings.TrimSpace(ticker))]
	return ok
}
