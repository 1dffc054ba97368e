package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"influencer-stock-lab/internal/domain"
)

// StripFences removes markdown code fences wrapping a JSON payload.
// Models routinely wrap output in ```json ... ``` despite instructions
// not to.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		} else {
			text = ""
		}
	}
	if strings.HasSuffix(strings.TrimSpace(text), "```") {
		text = strings.TrimSpace(text)
		if idx := strings.LastIndex(text, "\n"); idx >= 0 {
			text = text[:idx]
		} else {
			text = ""
		}
	}
	return strings.TrimSpace(text)
}

// Parse decodes analysis output into stock entries after stripping
// fence markers. A decode failure is fatal for the run: the caller must
// abort reconciliation and keep the prior registry.
func Parse(raw string) ([]domain.StockEntry, error) {
	text := StripFences(raw)
	if text == "" {
		return nil, fmt.Errorf("analysis output empty after fence stripping")
	}

	var entries []domain.StockEntry
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, fmt.Errorf("analysis output is not a valid JSON array: %w", err)
	}
	return entries, nil
}
