package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// klineJSON renders n Binance-style kline rows with linearly rising closes.
func klineJSON(n int, base float64) string {
	rows := make([]string, n)
	for i := 0; i < n; i++ {
		c := base + float64(i)
		rows[i] = fmt.Sprintf(`[%d,"%f","%f","%f","%f","10.5"]`,
			1700000000000+int64(i)*3600000, c-0.5, c+1, c-1, c)
	}
	return "[" + strings.Join(rows, ",") + "]"
}

func TestCoinGeckoPrices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/simple/price" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if ids := r.URL.Query().Get("ids"); ids != "bitcoin,ethereum" {
			t.Errorf("ids = %q", ids)
		}
		fmt.Fprint(w, `{
			"bitcoin": {"usd": 67432.18, "usd_market_cap": 1300000000000, "usd_24h_vol": 30000000000, "usd_24h_change": 2.5},
			"ethereum": {"usd": 3500.00, "usd_market_cap": 420000000000, "usd_24h_vol": 15000000000, "usd_24h_change": -1.2}
		}`)
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, nil, nil)
	out, err := c.Prices(context.Background(), "BTC, ETH")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"BITCOIN", "$67,432.18", "+2.50% (up)", "ETHEREUM", "-1.20% (down)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCoinGeckoPrices_EmptyQuery(t *testing.T) {
	c := NewCoinGecko("http://unused.invalid", nil, nil)
	if _, err := c.Prices(context.Background(), "  "); err == nil {
		t.Error("expected error for an empty coin list")
	}
}

func TestCoinGeckoPrices_UnknownCoin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := NewCoinGecko(srv.URL, nil, nil)
	if _, err := c.Prices(context.Background(), "notacoin"); err == nil {
		t.Error("expected error when the API returns no data")
	}
}

func TestFearGreedIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit := r.URL.Query().Get("limit"); limit != "3" {
			t.Errorf("limit = %q, want 3", limit)
		}
		fmt.Fprint(w, `{"data": [
			{"value": "20", "value_classification": "Extreme Fear", "timestamp": "1700000000"},
			{"value": "35", "value_classification": "Fear", "timestamp": "1699913600"},
			{"value": "55", "value_classification": "Greed", "timestamp": "1699827200"}
		]}`)
	}))
	defer srv.Close()

	f := NewFearGreed(srv.URL, nil, nil)
	out, err := f.Index(context.Background(), "3")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Current: 20 — Extreme Fear", "Extreme fear", "Last 3 days"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFearGreedIndex_DayClamping(t *testing.T) {
	var gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		fmt.Fprint(w, `{"data": [{"value": "50", "value_classification": "Neutral", "timestamp": "1700000000"}]}`)
	}))
	defer srv.Close()

	f := NewFearGreed(srv.URL, nil, nil)
	tests := []struct {
		query string
		want  string
	}{
		{"90", "30"},     // clamped high
		{"0", "1"},       // clamped low
		{"banana", "7"},  // unparsable defaults
		{"", "7"},        // empty defaults
	}
	for _, tt := range tests {
		if _, err := f.Index(context.Background(), tt.query); err != nil {
			t.Fatal(err)
		}
		if gotLimit != tt.want {
			t.Errorf("Index(%q) requested limit %q, want %q", tt.query, gotLimit, tt.want)
		}
	}
}

func TestBinanceKlines(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sym := r.URL.Query().Get("symbol"); sym != "BTCUSDT" {
			t.Errorf("symbol = %q", sym)
		}
		fmt.Fprint(w, klineJSON(3, 100))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, nil)
	klines, err := b.Klines(context.Background(), "BTCUSDT", "1h", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(klines) != 3 {
		t.Fatalf("klines = %d, want 3", len(klines))
	}
	if klines[0].Close != 100 || klines[2].Close != 102 {
		t.Errorf("closes = %v, %v", klines[0].Close, klines[2].Close)
	}
	if klines[0].Volume != 10.5 {
		t.Errorf("volume = %v", klines[0].Volume)
	}
}

func TestBinanceKlines_SkipsMalformedRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			[1700000000000,"100","101","99","100","10"],
			[1700003600000,"not-a-number","101","99","100","10"],
			["bad-time","100","101","99","100","10"]
		]`)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, nil)
	klines, err := b.Klines(context.Background(), "BTCUSDT", "1h", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(klines) != 1 {
		t.Errorf("klines = %d, want only the well-formed row", len(klines))
	}
}

func TestBinanceKlines_Empty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, nil)
	if _, err := b.Klines(context.Background(), "XXXUSDT", "1h", 10); err == nil {
		t.Error("expected error for an empty kline response")
	}
}

func TestBinanceSpotPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"symbol": "BTCUSDT", "price": "67000.50"}`)
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, nil)
	price, err := b.SpotPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatal(err)
	}
	if price != 67000.50 {
		t.Errorf("price = %v", price)
	}
}

func TestTechnicalReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, klineJSON(100, 1000))
	}))
	defer srv.Close()

	b := NewBinance(srv.URL, nil, nil)
	out, err := b.Technical(context.Background(), "BTC 1h")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"BTCUSDT 1h technicals",
		"Current price",
		"RSI (14)",
		"MACD (12, 26, 9)",
		"Bollinger bands (20, 2)",
		"EMA7=", "EMA25=", "EMA99=",
		"support:", "resistance:",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	// A monotone uptrend reads overbought and bullish.
	if !strings.Contains(out, "overbought") {
		t.Error("uptrend report should read overbought")
	}
	if !strings.Contains(out, "short EMA above long (bullish)") {
		t.Error("uptrend report should read bullish EMA alignment")
	}
}

func TestFuturesData_SectionsDegradeIndependently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/fapi/v1/fundingRate":
			fmt.Fprint(w, `[
				{"fundingRate": "0.0001", "fundingTime": 1700000000000},
				{"fundingRate": "0.0008", "fundingTime": 1700028800000}
			]`)
		case "/fapi/v1/openInterest":
			http.Error(w, "down", http.StatusInternalServerError)
		case "/futures/data/globalLongShortAccountRatio":
			fmt.Fprint(w, `[
				{"longAccount": "0.72", "shortAccount": "0.28", "longShortRatio": "2.57", "timestamp": 1700000000000}
			]`)
		}
	}))
	defer srv.Close()

	f := NewFutures(srv.URL, nil, nil, nil)
	out, err := f.Data(context.Background(), "BTC")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"BTCUSDT futures data",
		"Funding rate (last 5 periods)",
		"long side overheated", // latest 0.0008 > 0.0005
		"open interest unavailable",
		"Long/short account ratio",
		"long side crowded", // ratio 2.57 > 2.0
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnalyzer_FanOutSurvivesFailures(t *testing.T) {
	priceSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"bitcoin": {"usd": 67000, "usd_market_cap": 1, "usd_24h_vol": 1, "usd_24h_change": 1}}`)
	}))
	defer priceSrv.Close()
	klineSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, klineJSON(100, 1000))
	}))
	defer klineSrv.Close()
	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer downSrv.Close()

	a, err := NewAnalyzer(
		NewCoinGecko(priceSrv.URL, nil, nil),
		NewBinance(klineSrv.URL, nil, nil),
		NewFearGreed(downSrv.URL, nil, nil),
		NewFutures(downSrv.URL, nil, nil, nil),
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	out := a.Analyze(context.Background(), "BTC 1h")

	// All four sections present, failures rendered as error lines.
	priceIdx := strings.Index(out, "Spot market quotes")
	techIdx := strings.Index(out, "technicals")
	fngIdx := strings.Index(out, "fear_greed lookup failed")
	futIdx := strings.Index(out, "futures data")
	if priceIdx < 0 || techIdx < 0 || fngIdx < 0 || futIdx < 0 {
		t.Fatalf("missing section:\n%s", out)
	}
	// Section order is stable regardless of completion order.
	if !(priceIdx < techIdx && techIdx < fngIdx && fngIdx < futIdx) {
		t.Errorf("sections out of order: %d %d %d %d", priceIdx, techIdx, fngIdx, futIdx)
	}
	if strings.Count(out, "\n\n---\n\n") != 3 {
		t.Errorf("separator count = %d, want 3", strings.Count(out, "\n\n---\n\n"))
	}
}

func TestAnalyzer_DefaultQuery(t *testing.T) {
	downSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer downSrv.Close()

	a, err := NewAnalyzer(
		NewCoinGecko(downSrv.URL, nil, nil),
		NewBinance(downSrv.URL, nil, nil),
		NewFearGreed(downSrv.URL, nil, nil),
		NewFutures(downSrv.URL, nil, nil, nil),
		nil,
	)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	out := a.Analyze(context.Background(), "")
	if out == "" {
		t.Fatal("output must never be empty, failures become error lines")
	}
	for _, want := range []string{"price lookup failed", "technical lookup failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
