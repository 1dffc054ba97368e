package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultFMPURL = "https://financialmodelingprep.com"

// FMP resolves quotes through the Financial Modeling Prep quote
// endpoint. Last fallback provider; needs an API key.
type FMP struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFMP creates the Financial Modeling Prep provider.
func NewFMP(apiKey string) *FMP {
	return &FMP{
		apiKey:  apiKey,
		baseURL: defaultFMPURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the provider name.
func (f *FMP) Name() string { return "fmp" }

type fmpQuote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Quote returns the current market price for a ticker.
func (f *FMP) Quote(ctx context.Context, ticker string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/quote/%s?apikey=%s",
		f.baseURL, url.PathEscape(ticker), url.QueryEscape(f.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("fmp quote %s: %w", ticker, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fmp quote %s: %w", ticker, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("fmp quote %s: status %d: %s", ticker, resp.StatusCode, string(body))
	}

	var quotes []fmpQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return 0, fmt.Errorf("fmp quote %s: decode: %w", ticker, err)
	}

	for _, q := range quotes {
		if q.Symbol == ticker && q.Price > 0 {
			return round2(q.Price), nil
		}
	}
	return 0, fmt.Errorf("fmp quote %s: %w", ticker, ErrPriceUnavailable)
}
