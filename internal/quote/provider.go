package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stockwatch/internal/models"
)

// ErrNoQuote is returned when the provider responds but has no usable quote
// for the symbol. An unknown symbol and an exhausted API quota look the same
// at this layer: the expected fields are simply absent.
var ErrNoQuote = errors.New("provider returned no quote data")

// Provider fetches live quotes from the Alpha Vantage GLOBAL_QUOTE endpoint
type Provider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewProvider creates a quote provider with a bounded request timeout
func NewProvider(apiKey, baseURL string, timeout time.Duration) *Provider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Provider{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type globalQuoteResponse struct {
	GlobalQuote map[string]string `json:"Global Quote"`
}

// FetchQuote retrieves the current quote for a symbol. Transport failures
// come back wrapped; a well-formed response without price data returns
// ErrNoQuote.
func (p *Provider) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("provider API key not configured: %w", ErrNoQuote)
	}

	u := fmt.Sprintf("%s/query?function=GLOBAL_QUOTE&symbol=%s&apikey=%s",
		p.baseURL, url.QueryEscape(symbol), url.QueryEscape(p.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote request for %s returned status %d", symbol, resp.StatusCode)
	}

	var body globalQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode quote response for %s: %w", symbol, err)
	}

	priceStr, ok := body.GlobalQuote["05. price"]
	if !ok || priceStr == "" {
		return nil, fmt.Errorf("no price data for %s: %w", symbol, ErrNoQuote)
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q for %s: %w", priceStr, symbol, ErrNoQuote)
	}

	changePercent := decimal.Zero
	if cpStr, ok := body.GlobalQuote["10. change percent"]; ok {
		cp, err := decimal.NewFromString(strings.TrimSuffix(cpStr, "%"))
		if err == nil {
			changePercent = cp
		}
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		ChangePercent: changePercent,
		Timestamp:     time.Now(),
	}, nil
}
