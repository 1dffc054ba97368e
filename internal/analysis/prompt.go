package analysis

import (
	"fmt"
	"strings"
)

// systemPrompt frames the model as a conservative valuation analyst.
const systemPrompt = "You are a disciplined equity analyst. Base every number strictly on the data provided and widely known fundamentals. Never invent prices. Output must be machine-parseable JSON with no commentary."

// BuildPrompt renders the valuation request for a set of tickers with
// their current prices. The JSON schema in the prompt must stay in sync
// with the StockEntry field set.
func BuildPrompt(tickers []string, prices map[string]float64, today string) string {
	var b strings.Builder

	b.WriteString("Analyze the following stocks and produce a valuation record for each.\n\n")
	b.WriteString("Tickers and current prices (USD):\n")
	for _, t := range tickers {
		if price, ok := prices[t]; ok {
			fmt.Fprintf(&b, "- %s: %.2f\n", t, price)
		} else {
			fmt.Fprintf(&b, "- %s: price unavailable, use your best estimate of the latest close\n", t)
		}
	}

	b.WriteString(`
For each ticker:

1. Calculate per-share DCF valuation ranges (USD, same share units as the price above):
   - conservative (pessimistic assumptions)
   - base (most likely assumptions)
   - aggressive (optimistic assumptions)
   Requirements: conservative high <= base low, aggressive low >= base high;
   every range needs a non-zero spread (high-low >= 5% of price); each range
   stays within 200% of the given price unless fundamentals clearly justify more.

2. Assign integer factor scores from 1 to 5:
   fcfQuality, roicStrength, revenueDurability, balanceSheetStrength,
   insiderActivity, valueRank, expectedReturn.

Respond with ONLY a valid JSON array in this exact structure, no commentary,
no markdown fences, no trailing commas:

[
  {
    "category": "Growth" or "Dividend",
    "ticker": "TICKER",
    "name": "Company Name",
    "price": 0.00,
    "dcf": {
      "conservative": "low-high",
      "base": "low-high",
      "aggressive": "low-high"
    },
    "fcfQuality": 1-5,
    "roicStrength": 1-5,
    "revenueDurability": 1-5,
    "balanceSheetStrength": 1-5,
    "insiderActivity": 1-5,
    "valueRank": 1-5,
    "expectedReturn": 1-5,
`)
	fmt.Fprintf(&b, "    \"lastUpdated\": %q\n  }\n]\n\n", today)
	b.WriteString("Use the exact prices supplied above; never zero them out. DCF ranges are strings in the form \"low-high\" (e.g. \"450-500\") with low < high.")

	return b.String()
}

