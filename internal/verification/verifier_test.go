package verification

import (
	"testing"

	"influencer-stock-lab/internal/domain"
)

func ptr(v float64) *float64 { return &v }

func validEntry(ticker, source string) domain.StockEntry {
	return domain.StockEntry{
		Category:        domain.CategoryGrowth,
		Ticker:          ticker,
		Source:          source,
		Price:           100,
		InitialPrice:    ptr(90),
		RecommendedDate: "2025-01-15",
		FCFQuality:      3,
		ROICStrength:    3,
		RevenueDurable:  3,
		BalanceSheet:    3,
		InsiderActivity: 3,
		ValueRank:       3,
		ExpectedReturn:  3,
		LastUpdated:     "2025-06-15",
	}
}

func TestVerifyRegistry_CleanRegistry(t *testing.T) {
	report := VerifyRegistry([]domain.StockEntry{
		validEntry("NVDA", "ChanA"),
		validEntry("NVDA", "ChanB"), // same ticker, different source is fine
		validEntry("MELI", "ChanA"),
	})
	if !report.OK() {
		t.Fatalf("expected clean report, got %v", report.Violations)
	}
	if report.Entries != 3 {
		t.Errorf("expected 3 entries counted, got %d", report.Entries)
	}
}

func TestVerifyRegistry_DuplicateKey(t *testing.T) {
	report := VerifyRegistry([]domain.StockEntry{
		validEntry("NVDA", "ChanA"),
		validEntry("NVDA", "ChanA"),
	})
	if report.OK() {
		t.Fatal("expected duplicate key violation")
	}
	v := report.Violations[0]
	if v.Field != "key" || v.Key.String() != "NVDA|ChanA" {
		t.Errorf("unexpected violation %v", v)
	}
}

func TestVerifyRegistry_FieldChecks(t *testing.T) {
	bad := validEntry("AMD", "ChanA")
	bad.Category = "Momentum"
	bad.InitialPrice = ptr(0)
	bad.RecommendedDate = "15/01/2025"
	bad.FCFQuality = 9

	report := VerifyRegistry([]domain.StockEntry{bad})
	want := map[string]bool{
		"category":        false,
		"initialPrice":    false,
		"recommendedDate": false,
		"fcfQuality":      false,
	}
	for _, v := range report.Violations {
		if _, ok := want[v.Field]; ok {
			want[v.Field] = true
		} else {
			t.Errorf("unexpected violation field %q", v.Field)
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("missing violation for %s", field)
		}
	}
}

func TestVerifyRegistry_EmptyTickerSkipsFieldChecks(t *testing.T) {
	bad := domain.StockEntry{Category: "Nonsense"}
	report := VerifyRegistry([]domain.StockEntry{bad})
	if len(report.Violations) != 1 || report.Violations[0].Field != "ticker" {
		t.Errorf("expected only the ticker violation, got %v", report.Violations)
	}
}
