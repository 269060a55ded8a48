package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const binanceSpotBase = "https://api.binance.com"

// Kline is one OHLCV candle.
type Kline struct {
	OpenTime time.Time
	Open     float64
	High     float64
	Low      float64
	Close    float64
	Volume   float64
}

// Binance fetches spot klines and ticker prices from the Binance public API.
type Binance struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewBinance builds a client; empty baseURL uses the public spot API.
func NewBinance(baseURL string, httpClient *http.Client, logger *zap.Logger) *Binance {
	if baseURL == "" {
		baseURL = binanceSpotBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Binance{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

// Klines fetches up to limit candles for a trading pair. Binance encodes each
// candle as a mixed-type JSON array; numeric fields arrive as strings.
func (b *Binance) Klines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.baseURL+"/api/v3/klines?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kline request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kline API returned status %d", resp.StatusCode)
	}

	var raw [][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("kline decode failed: %w", err)
	}

	klines := make([]Kline, 0, len(raw))
	for _, row := range raw {
		if len(row) < 6 {
			continue
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			continue
		}
		vals := make([]float64, 5)
		ok := true
		for i := 0; i < 5; i++ {
			var s string
			if err := json.Unmarshal(row[i+1], &s); err != nil {
				ok = false
				break
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if !ok {
			continue
		}
		klines = append(klines, Kline{
			OpenTime: time.UnixMilli(openMs),
			Open:     vals[0],
			High:     vals[1],
			Low:      vals[2],
			Close:    vals[3],
			Volume:   vals[4],
		})
	}
	if len(klines) == 0 {
		return nil, fmt.Errorf("no kline data for %s, check the coin name", symbol)
	}
	return klines, nil
}

// SpotPrice fetches the latest ticker price for a trading pair.
func (b *Binance) SpotPrice(ctx context.Context, symbol string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.baseURL+"/api/v3/ticker/price?symbol="+url.QueryEscape(symbol), nil)
	if err != nil {
		return 0, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ticker request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ticker API returned status %d", resp.StatusCode)
	}

	var ticker struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return 0, fmt.Errorf("ticker decode failed: %w", err)
	}
	return strconv.ParseFloat(ticker.Price, 64)
}
