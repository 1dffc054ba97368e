package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"influencer-stock-lab/internal/domain"
)

// DefaultAnalysisTTL bounds how long an analysis result stays valid.
const DefaultAnalysisTTL = 6 * time.Hour

// AnalysisCache caches full analysis output keyed on the registry state
// that produced it. A hash of the input detects whether anything changed
// since the last run; unchanged input skips the LLM round trip entirely.
type AnalysisCache struct {
	redis *RedisClient
}

// NewAnalysisCache creates an analysis cache. A nil redis client yields
// a cache that always misses.
func NewAnalysisCache(redis *RedisClient) *AnalysisCache {
	return &AnalysisCache{redis: redis}
}

// Get returns the cached analysis for an input hash, if present.
func (c *AnalysisCache) Get(ctx context.Context, dataHash string) ([]domain.StockEntry, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}

	var entries []domain.StockEntry
	if err := c.redis.Get(ctx, analysisKey(dataHash), &entries); err != nil {
		return nil, false
	}
	return entries, true
}

// Set caches analysis output under its input hash.
func (c *AnalysisCache) Set(ctx context.Context, dataHash string, entries []domain.StockEntry, ttl time.Duration) error {
	if c == nil || c.redis == nil {
		return fmt.Errorf("redis client not available")
	}
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return c.redis.Set(ctx, analysisKey(dataHash), entries, ttl)
}

func analysisKey(dataHash string) string {
	return "analysis:registry:" + dataHash
}

// DataHash fingerprints analysis input so cache keys change whenever the
// registry or the prices feeding the prompt change.
func DataHash(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	sum := sha256.Sum256(jsonData)
	return fmt.Sprintf("%x", sum[:8])
}
