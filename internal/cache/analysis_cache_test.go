package cache

import (
	"context"
	"testing"
	"time"

	"influencer-stock-lab/internal/domain"
)

func TestDataHash_Deterministic(t *testing.T) {
	input := map[string]interface{}{
		"registry": []domain.StockEntry{{Ticker: "NVDA", Source: "ChanA"}},
		"prices":   map[string]float64{"NVDA": 180.5},
	}

	first := DataHash(input)
	second := DataHash(input)
	if first != second {
		t.Errorf("hash is not deterministic: %s vs %s", first, second)
	}
	if len(first) != 16 {
		t.Errorf("expected 16 hex chars, got %q", first)
	}
}

func TestDataHash_ChangesWithInput(t *testing.T) {
	a := DataHash([]domain.StockEntry{{Ticker: "NVDA", Source: "ChanA"}})
	b := DataHash([]domain.StockEntry{{Ticker: "NVDA", Source: "ChanB"}})
	if a == b {
		t.Error("different inputs must produce different hashes")
	}
}

func TestAnalysisCache_NilSafe(t *testing.T) {
	ctx := context.Background()

	var c *AnalysisCache
	if _, ok := c.Get(ctx, "deadbeef"); ok {
		t.Error("nil cache must always miss")
	}

	c = NewAnalysisCache(nil)
	if _, ok := c.Get(ctx, "deadbeef"); ok {
		t.Error("cache without redis must always miss")
	}
	if err := c.Set(ctx, "deadbeef", nil, time.Minute); err == nil {
		t.Error("Set without redis must fail")
	}
}
