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

const binanceFuturesBase = "https://fapi.binance.com"

// Futures fetches derivatives data from the Binance futures public API:
// funding rates, open interest and the long/short account ratio. Sections
// degrade independently so one failing endpoint never hides the others.
type Futures struct {
	baseURL string
	spot    *Binance // for the OI dollar estimate
	http    *http.Client
	logger  *zap.Logger
}

// NewFutures builds a client; empty baseURL uses the public futures API. The
// spot client is optional and only used to price open interest in dollars.
func NewFutures(baseURL string, spot *Binance, httpClient *http.Client, logger *zap.Logger) *Futures {
	if baseURL == "" {
		baseURL = binanceFuturesBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Futures{baseURL: strings.TrimRight(baseURL, "/"), spot: spot, http: httpClient, logger: logger}
}

func (f *Futures) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		f.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("futures API returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type fundingEntry struct {
	FundingRate string `json:"fundingRate"`
	FundingTime int64  `json:"fundingTime"`
}

type longShortEntry struct {
	LongAccount    string `json:"longAccount"`
	ShortAccount   string `json:"shortAccount"`
	LongShortRatio string `json:"longShortRatio"`
	Timestamp      int64  `json:"timestamp"`
}

// Data renders the derivatives report for a coin. The query is a coin name;
// anything after the first token or comma is ignored.
func (f *Futures) Data(ctx context.Context, query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		q = "BTC"
	}
	first := strings.Split(q, ",")[0]
	if fields := strings.Fields(first); len(fields) > 0 {
		first = fields[0]
	}
	symbol := ResolveSymbol(first)

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s futures data** (source: Binance Futures)\n\n", symbol)

	f.writeFunding(ctx, &sb, symbol)
	f.writeOpenInterest(ctx, &sb, symbol)
	f.writeLongShort(ctx, &sb, symbol)

	return sb.String(), nil
}

func (f *Futures) writeFunding(ctx context.Context, sb *strings.Builder, symbol string) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("limit", "5")
	var funding []fundingEntry
	if err := f.getJSON(ctx, "/fapi/v1/fundingRate", params, &funding); err != nil || len(funding) == 0 {
		f.logger.Debug("funding rate lookup failed", zap.Error(err))
		fmt.Fprintf(sb, "  funding rate unavailable: %v\n\n", err)
		return
	}

	sb.WriteString("**Funding rate (last 5 periods)**\n")
	for _, item := range funding {
		rate, _ := strconv.ParseFloat(item.FundingRate, 64)
		ts := time.UnixMilli(item.FundingTime).Format("01-02 15:04")
		fmt.Fprintf(sb, "  %s: %+.4f%%\n", ts, rate*100)
	}
	latest, _ := strconv.ParseFloat(funding[len(funding)-1].FundingRate, 64)
	switch {
	case latest > 0.0005:
		sb.WriteString("  reading: elevated rate, longs pay shorts, long side overheated\n")
	case latest < -0.0005:
		sb.WriteString("  reading: negative rate, shorts pay longs, short side overheated, rebound possible\n")
	default:
		sb.WriteString("  reading: rate in normal range, balanced positioning\n")
	}
	sb.WriteString("\n")
}

func (f *Futures) writeOpenInterest(ctx context.Context, sb *strings.Builder, symbol string) {
	params := url.Values{}
	params.Set("symbol", symbol)
	var oiResp struct {
		OpenInterest string `json:"openInterest"`
	}
	if err := f.getJSON(ctx, "/fapi/v1/openInterest", params, &oiResp); err != nil {
		f.logger.Debug("open interest lookup failed", zap.Error(err))
		fmt.Fprintf(sb, "  open interest unavailable: %v\n\n", err)
		return
	}
	oi, _ := strconv.ParseFloat(oiResp.OpenInterest, 64)

	sb.WriteString("**Open interest**\n")
	fmt.Fprintf(sb, "  OI = %s %s\n", fmtQty(oi), strings.TrimSuffix(symbol, "USDT"))
	if f.spot != nil {
		if price, err := f.spot.SpotPrice(ctx, symbol); err == nil {
			fmt.Fprintf(sb, "  OI (USD) ~ %s\n", fmtBig(oi*price))
		}
	}
	sb.WriteString("\n")
}

func (f *Futures) writeLongShort(ctx context.Context, sb *strings.Builder, symbol string) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("period", "1h")
	params.Set("limit", "5")
	var entries []longShortEntry
	if err := f.getJSON(ctx, "/futures/data/globalLongShortAccountRatio", params, &entries); err != nil || len(entries) == 0 {
		f.logger.Debug("long/short ratio lookup failed", zap.Error(err))
		fmt.Fprintf(sb, "  long/short ratio unavailable: %v\n", err)
		return
	}

	sb.WriteString("**Long/short account ratio (last 5 hours)**\n")
	for _, item := range entries {
		ts := time.UnixMilli(item.Timestamp).Format("01-02 15:04")
		longPct, _ := strconv.ParseFloat(item.LongAccount, 64)
		shortPct, _ := strconv.ParseFloat(item.ShortAccount, 64)
		ratio, _ := strconv.ParseFloat(item.LongShortRatio, 64)
		fmt.Fprintf(sb, "  %s: long %.1f%% | short %.1f%% | ratio %.2f\n",
			ts, longPct*100, shortPct*100, ratio)
	}
	latest, _ := strconv.ParseFloat(entries[len(entries)-1].LongShortRatio, 64)
	switch {
	case latest > 2.0:
		sb.WriteString("  reading: long side crowded, watch for long squeezes\n")
	case latest < 0.8:
		sb.WriteString("  reading: shorts dominate, short-covering rallies possible\n")
	default:
		sb.WriteString("  reading: ratio in normal range\n")
	}
}
