package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the report as a Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	sb.WriteString("# Portfolio Performance Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Summary
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Tracked Entries | %d |\n", r.Summary.TotalEntries))
	sb.WriteString(fmt.Sprintf("| With Initial Price | %d |\n", r.Summary.WithInitialPrice))
	sb.WriteString(fmt.Sprintf("| Priced | %d |\n", r.Summary.Priced))
	sb.WriteString(fmt.Sprintf("| Winners | %d |\n", r.Summary.Winners))
	sb.WriteString(fmt.Sprintf("| Losers | %d |\n", r.Summary.Losers))
	if r.Summary.Priced > 0 {
		sb.WriteString(fmt.Sprintf("| Mean Return | %.2f%% |\n", r.Summary.MeanReturnPct))
		sb.WriteString(fmt.Sprintf("| Median Return | %.2f%% |\n", r.Summary.MedianReturnPct))
		sb.WriteString(fmt.Sprintf("| Best | %s (%.2f%%) |\n", r.Summary.BestTicker, r.Summary.BestReturn))
		sb.WriteString(fmt.Sprintf("| Worst | %s (%.2f%%) |\n", r.Summary.WorstTicker, r.Summary.WorstReturn))
	}
	sb.WriteString("\n")

	// Per-entry performance
	sb.WriteString("## Entries\n\n")
	if len(r.Rows) == 0 {
		sb.WriteString("Registry is empty.\n")
		return sb.String()
	}
	sb.WriteString("| Ticker | Source | Category | Recommended | Initial | Current | Return | Days |\n")
	sb.WriteString("|--------|--------|----------|-------------|---------|---------|--------|------|\n")
	for _, row := range r.Rows {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %d |\n",
			row.Ticker,
			row.Source,
			row.Category,
			orDash(row.RecommendedDate),
			price(row.InitialPrice),
			price(row.CurrentPrice),
			returnPct(row.ReturnPct),
			row.DaysHeld,
		))
	}
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func price(v float64) string {
	if v <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func returnPct(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}
