package ingest

import (
	"fmt"
	"strings"
)

// buyingKeywords flag titles where the host explicitly says they are
// buying. Conservative on purpose: the analysis pass owns sentiment,
// this only seeds the bought list.
var buyingKeywords = []string{"buying", "bought", "i'm buying", "i bought", "adding", "added"}

// titleSuggestsBuying reports whether the title carries explicit buying
// language.
func titleSuggestsBuying(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range buyingKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// summarizeTitle builds a one-line summary from the title and the
// tickers found in it.
func summarizeTitle(title string, tickers []string, channelName string) string {
	lower := strings.ToLower(title)
	host := "The host"
	if fields := strings.Fields(channelName); len(fields) > 0 {
		host = fields[0]
	}

	top := tickers
	if len(top) > 3 {
		top = top[:3]
	}

	switch {
	case strings.Contains(lower, "buying") || strings.Contains(lower, "bought"):
		if len(top) > 0 {
			return fmt.Sprintf("%s discusses stocks being bought, mentioning %s. Investment thesis and portfolio strategy shared.", host, strings.Join(top, ", "))
		}
		return fmt.Sprintf("%s shares which stocks are being bought and the reasoning behind these investment decisions.", host)
	case strings.Contains(lower, "overvalued"):
		return fmt.Sprintf("%s analyzes current market valuations and discusses how to find value in an overvalued market.", host)
	case strings.Contains(lower, "portfolio"):
		return fmt.Sprintf("%s provides a portfolio update, discussing recent buys, sells, and overall investment strategy.", host)
	case strings.Contains(lower, "ai") || strings.Contains(lower, "artificial intelligence"):
		return fmt.Sprintf("%s covers AI-related investment opportunities and which companies may benefit from AI growth.", host)
	case strings.Contains(lower, "dividend"):
		return fmt.Sprintf("%s discusses dividend investing strategies and income-generating stocks.", host)
	case len(top) > 0:
		return fmt.Sprintf("%s analyzes %s and shares investment perspectives on these companies.", host, strings.Join(top, ", "))
	default:
		return fmt.Sprintf("%s shares market analysis and investment insights in this episode.", host)
	}
}

// keyInsights builds the placeholder insight list for a fetched video.
func keyInsights(bought, mentioned []string) []string {
	var insights []string
	if len(bought) > 0 {
		insights = append(insights, "Title suggests buying "+strings.Join(bought, ", "))
	}
	if len(mentioned) > 0 {
		top := mentioned
		if len(top) > 5 {
			top = top[:5]
		}
		insights = append(insights, "Stocks mentioned: "+strings.Join(top, ", "))
	}
	insights = append(insights, "Awaiting transcript analysis for accurate sentiment")
	return insights
}
