package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantage resolves quotes through the Alpha Vantage GLOBAL_QUOTE
// endpoint. Fallback provider; needs an API key.
type AlphaVantage struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAlphaVantage creates the Alpha Vantage provider.
func NewAlphaVantage(apiKey string) *AlphaVantage {
	return &AlphaVantage{
		apiKey:  apiKey,
		baseURL: defaultAlphaVantageURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider name.
func (a *AlphaVantage) Name() string { return "alphavantage" }

type globalQuoteResponse struct {
	Quote struct {
		Price string `json:"05. price"`
	} `json:"Global Quote"`
}

// Quote returns the current market price for a ticker.
func (a *AlphaVantage) Quote(ctx context.Context, ticker string) (float64, error) {
	endpoint := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		a.baseURL, url.QueryEscape(ticker), url.QueryEscape(a.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("alphavantage quote %s: %w", ticker, err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("alphavantage quote %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("alphavantage quote %s: status %d: %s", ticker, resp.StatusCode, string(body))
	}

	var parsed globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("alphavantage quote %s: decode: %w", ticker, err)
	}
	if parsed.Quote.Price == "" {
		return 0, fmt.Errorf("alphavantage quote %s: %w", ticker, ErrPriceUnavailable)
	}

	price, err := strconv.ParseFloat(parsed.Quote.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("alphavantage quote %s: parse %q: %w", ticker, parsed.Quote.Price, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("alphavantage quote %s: %w", ticker, ErrPriceUnavailable)
	}
	return round2(price), nil
}
