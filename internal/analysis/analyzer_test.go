package analysis

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"influencer-stock-lab/internal/domain"
)

const validRecord = `{
	"category": "Growth",
	"ticker": "NVDA",
	"name": "NVIDIA Corporation",
	"price": 180.00,
	"dcf": {"conservative": "120-150", "base": "150-200", "aggressive": "200-260"},
	"fcfQuality": 5,
	"roicStrength": 5,
	"revenueDurability": 4,
	"balanceSheetStrength": 5,
	"insiderActivity": 3,
	"valueRank": 3,
	"expectedReturn": 4,
	"lastUpdated": "2025-06-15"
}`

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(context.Context, string, string) (string, error) {
	s.calls++
	return s.response, s.err
}

type stubQuoter struct {
	prices map[string]float64
}

func (s *stubQuoter) Quotes(context.Context, []string) map[string]float64 {
	return s.prices
}

func newTestAnalyzer(c Completer) *Analyzer {
	return New(Options{
		Completer: c,
		Quoter:    &stubQuoter{prices: map[string]float64{"NVDA": 180}},
		Logger:    log.New(io.Discard, "", 0),
		Now:       func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) },
	})
}

func registry(tickers ...string) []domain.StockEntry {
	entries := make([]domain.StockEntry, 0, len(tickers))
	for _, t := range tickers {
		entries = append(entries, domain.StockEntry{Ticker: t, Source: "ChanA"})
	}
	return entries
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `[{"a":1}]`, `[{"a":1}]`},
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"plain fence", "```\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"leading fence only", "```json\n[{\"a\":1}]", `[{"a":1}]`},
		{"surrounding whitespace", "  \n```json\n[{\"a\":1}]\n```\n ", `[{"a":1}]`},
		{"fence only", "```", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFences(tt.in); got != tt.want {
				t.Errorf("StripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParse_FencedArray(t *testing.T) {
	entries, err := Parse("```json\n[" + validRecord + "]\n```")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 1 || entries[0].Ticker != "NVDA" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].DCF.Base != "150-200" {
		t.Errorf("unexpected dcf base %q", entries[0].DCF.Base)
	}
}

func TestParse_InvalidJSONFails(t *testing.T) {
	if _, err := Parse("the model apologizes and refuses"); err == nil {
		t.Fatal("expected parse error for non-JSON output")
	}
	if _, err := Parse(""); err == nil {
		t.Fatal("expected parse error for empty output")
	}
}

func TestAnalyze_ValidOutput(t *testing.T) {
	completer := &stubCompleter{response: "[" + validRecord + "]"}
	a := newTestAnalyzer(completer)

	got, err := a.Analyze(context.Background(), registry("NVDA"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "NVDA" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestAnalyze_CompletionErrorAborts(t *testing.T) {
	completer := &stubCompleter{err: errors.New("rate limited")}
	a := newTestAnalyzer(completer)

	if _, err := a.Analyze(context.Background(), registry("NVDA")); err == nil {
		t.Fatal("expected error when completion fails")
	}
}

func TestAnalyze_UnparseableOutputAborts(t *testing.T) {
	completer := &stubCompleter{response: "no json here"}
	a := newTestAnalyzer(completer)

	if _, err := a.Analyze(context.Background(), registry("NVDA")); err == nil {
		t.Fatal("expected error for unparseable output")
	}
}

func TestAnalyze_DropsInvalidRecords(t *testing.T) {
	bad := `{
		"category": "Momentum",
		"ticker": "AMD",
		"price": 100,
		"dcf": {"conservative": "0-0", "base": "0-0", "aggressive": "0-0"},
		"fcfQuality": 9,
		"roicStrength": 3,
		"revenueDurability": 3,
		"balanceSheetStrength": 3,
		"insiderActivity": 3,
		"valueRank": 3,
		"expectedReturn": 3,
		"lastUpdated": "2025-06-15"
	}`
	completer := &stubCompleter{response: "[" + validRecord + "," + bad + "]"}
	a := newTestAnalyzer(completer)

	got, err := a.Analyze(context.Background(), registry("NVDA", "AMD"))
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(got) != 1 || got[0].Ticker != "NVDA" {
		t.Fatalf("expected only the valid record, got %+v", got)
	}
}

func TestAnalyze_EmptyRegistrySkipsLLM(t *testing.T) {
	completer := &stubCompleter{response: "[]"}
	a := newTestAnalyzer(completer)

	got, err := a.Analyze(context.Background(), nil)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil result for empty registry, got %+v", got)
	}
	if completer.calls != 0 {
		t.Errorf("LLM must not be called for an empty registry")
	}
}

func TestDCFRangeValidation(t *testing.T) {
	v := newValidator()
	tests := []struct {
		dcf string
		ok  bool
	}{
		{"150-200", true},
		{"150.5-200.25", true},
		{"200-150", false},
		{"0-0", false},
		{"150", false},
		{"abc-def", false},
		{"", false},
	}
	for _, tt := range tests {
		err := v.Var(tt.dcf, "dcfrange")
		if tt.ok && err != nil {
			t.Errorf("dcfrange %q: unexpected error %v", tt.dcf, err)
		}
		if !tt.ok && err == nil {
			t.Errorf("dcfrange %q: expected rejection", tt.dcf)
		}
	}
}

func TestBuildPrompt_IncludesPricesAndSchema(t *testing.T) {
	prompt := BuildPrompt([]string{"NVDA", "ZZZZ"}, map[string]float64{"NVDA": 180}, "2025-06-15")

	for _, want := range []string{
		"NVDA: 180.00",
		"ZZZZ: price unavailable",
		`"lastUpdated": "2025-06-15"`,
		`"conservative": "low-high"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
