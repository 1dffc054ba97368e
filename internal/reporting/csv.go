package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the per-entry rows as a CSV string.
func RenderCSV(rows []PerformanceRow) string {
	var sb strings.Builder

	sb.WriteString("ticker,source,category,recommended_date,initial_price,current_price,return_pct,days_held\n")

	for _, row := range rows {
		ret := ""
		if row.ReturnPct != nil {
			ret = fmt.Sprintf("%.4f", *row.ReturnPct)
		}
		sb.WriteString(fmt.Sprintf("%s,%s,%s,%s,%.2f,%.2f,%s,%d\n",
			row.Ticker,
			csvEscape(row.Source),
			row.Category,
			row.RecommendedDate,
			row.InitialPrice,
			row.CurrentPrice,
			ret,
			row.DaysHeld,
		))
	}

	return sb.String()
}

// csvEscape quotes fields containing commas or quotes. Channel names are
// free text.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
