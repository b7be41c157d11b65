package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Coin is a CoinGecko coin id with the ticker shown to users
type Coin struct {
	ID     string
	Symbol string
}

// Quote holds the prices of one coin keyed by lowercase fiat code
type Quote struct {
	Coin   Coin
	Prices map[string]float64
}

// Client fetches simple price quotes from the CoinGecko REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	coins      []Coin
	currencies []string
}

// NewClient creates a price client for the given coins and fiat currencies
func NewClient(baseURL string, coins []Coin, currencies []string, timeout time.Duration) *Client {
	normalized := make([]string, 0, len(currencies))
	for _, c := range currencies {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			normalized = append(normalized, c)
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		coins:      coins,
		currencies: normalized,
	}
}

// Currencies returns the fiat codes quotes are requested in
func (c *Client) Currencies() []string {
	return c.currencies
}

// Quotes returns one quote per configured coin, in configuration order.
// Coins missing from the response come back with an empty price map.
func (c *Client) Quotes(ctx context.Context) ([]Quote, error) {
	ids := make([]string, len(c.coins))
	for i, coin := range c.coins {
		ids[i] = coin.ID
	}

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", strings.Join(c.currencies, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/simple/price?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("price API returned status %d", resp.StatusCode)
	}

	var data map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode prices: %w", err)
	}

	quotes := make([]Quote, len(c.coins))
	for i, coin := range c.coins {
		prices := data[coin.ID]
		if prices == nil {
			prices = map[string]float64{}
		}
		quotes[i] = Quote{Coin: coin, Prices: prices}
	}
	return quotes, nil
}
