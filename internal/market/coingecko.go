package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const coinGeckoBase = "https://api.coingecko.com/api/v3"

const defaultHTTPTimeout = 10 * time.Second

// CoinGecko fetches spot market data from the CoinGecko public API.
type CoinGecko struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewCoinGecko builds a client. An empty baseURL uses the public API; a nil
// httpClient gets a default timeout.
func NewCoinGecko(baseURL string, httpClient *http.Client, logger *zap.Logger) *CoinGecko {
	if baseURL == "" {
		baseURL = coinGeckoBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoinGecko{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

type simplePriceEntry struct {
	USD          float64 `json:"usd"`
	USDMarketCap float64 `json:"usd_market_cap"`
	USD24hVol    float64 `json:"usd_24h_vol"`
	USD24hChange float64 `json:"usd_24h_change"`
}

// Prices renders a markdown quote block for a comma-separated coin list.
func (c *CoinGecko) Prices(ctx context.Context, query string) (string, error) {
	coinIDs := SplitCoins(query)
	if len(coinIDs) == 0 {
		return "", fmt.Errorf("no coin name given, try BTC, ETH or bitcoin")
	}

	params := url.Values{}
	params.Set("ids", strings.Join(coinIDs, ","))
	params.Set("vs_currencies", "usd")
	params.Set("include_24hr_change", "true")
	params.Set("include_24hr_vol", "true")
	params.Set("include_market_cap", "true")
	params.Set("include_last_updated_at", "true")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/simple/price?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("CoinGecko request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("CoinGecko returned status %d", resp.StatusCode)
	}

	var data map[string]simplePriceEntry
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("CoinGecko decode failed: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no data for %q, check the coin name", query)
	}

	var sb strings.Builder
	sb.WriteString("Spot market quotes (source: CoinGecko)\n")
	for _, id := range coinIDs {
		info, ok := data[id]
		if !ok {
			fmt.Fprintf(&sb, "\n%s: not found\n", id)
			continue
		}
		direction := "up"
		if info.USD24hChange < 0 {
			direction = "down"
		}
		fmt.Fprintf(&sb, "\n**%s**\n", strings.ToUpper(id))
		fmt.Fprintf(&sb, "  price: %s\n", fmtUSD(info.USD))
		fmt.Fprintf(&sb, "  24h change: %+.2f%% (%s)\n", info.USD24hChange, direction)
		fmt.Fprintf(&sb, "  24h volume: %s\n", fmtBig(info.USD24hVol))
		fmt.Fprintf(&sb, "  market cap: %s\n", fmtBig(info.USDMarketCap))
	}
	return sb.String(), nil
}
