package market

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/stratos/coinsage/internal/tools"
)

const analyzerPoolSize = 4

// Analyzer runs the combined market lookup: price, technicals, fear & greed
// and futures data fetched concurrently on a shared worker pool.
type Analyzer struct {
	prices  *CoinGecko
	binance *Binance
	fng     *FearGreed
	futures *Futures
	pool    *ants.Pool
	logger  *zap.Logger
}

// NewAnalyzer builds the combined analyzer over the individual clients.
func NewAnalyzer(prices *CoinGecko, binance *Binance, fng *FearGreed, futures *Futures, logger *zap.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := ants.NewPool(analyzerPoolSize)
	if err != nil {
		return nil, fmt.Errorf("create analyzer pool: %w", err)
	}
	return &Analyzer{
		prices:  prices,
		binance: binance,
		fng:     fng,
		futures: futures,
		pool:    pool,
		logger:  logger,
	}, nil
}

// Close releases the worker pool.
func (a *Analyzer) Close() {
	a.pool.Release()
}

// Analyze fetches all four market views for "COIN interval" input in
// parallel. It never fails as a whole: a failing lookup contributes an error
// line and the remaining sections still render. Section order is stable
// regardless of completion order.
func (a *Analyzer) Analyze(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		query = "BTC 1h"
	}
	coin, interval := SplitCoinInterval(query)

	type task struct {
		name string
		fn   func() (string, error)
	}
	tasks := []task{
		{"price", func() (string, error) { return a.prices.Prices(ctx, coin) }},
		{"technical", func() (string, error) { return a.binance.Technical(ctx, coin+" "+interval) }},
		{"fear_greed", func() (string, error) { return a.fng.Index(ctx, "7") }},
		{"futures", func() (string, error) { return a.futures.Data(ctx, coin) }},
	}

	sections := make([]string, len(tasks))
	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			out, err := t.fn()
			if err != nil {
				a.logger.Warn("market lookup failed",
					zap.String("section", t.name), zap.Error(err))
				out = fmt.Sprintf("%s lookup failed: %v", t.name, err)
			}
			sections[i] = out
		}
		if err := a.pool.Submit(run); err != nil {
			// Pool saturated or released; degrade to inline execution.
			run()
		}
	}
	wg.Wait()

	var nonEmpty []string
	for _, s := range sections {
		if strings.TrimSpace(s) != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	return strings.Join(nonEmpty, "\n\n---\n\n")
}

// Register wires the market tools into a registry under their canonical
// names.
func (a *Analyzer) Register(reg *tools.Registry) {
	reg.Register("crypto_price",
		"Real-time crypto price, market cap, 24h volume and change. "+
			"Supports BTC/ETH/SOL/BNB/XRP/DOGE/ADA/DOT/LINK/UNI and other majors; "+
			"separate multiple coins with commas.",
		func(ctx context.Context, input string) (string, error) {
			return a.prices.Prices(ctx, input)
		})
	reg.Register("technical",
		"Technical indicators (RSI, MACD, Bollinger bands, EMA, support/resistance) "+
			"computed from Binance klines. Input: coin and interval, e.g. \"BTC 1h\" or "+
			"\"ETH 4h\". Defaults to BTC 1h.",
		func(ctx context.Context, input string) (string, error) {
			return a.binance.Technical(ctx, input)
		})
	reg.Register("fear_greed",
		"Crypto Fear & Greed index, 0-100: 0-24 extreme fear, 25-49 fear, 50 neutral, "+
			"51-74 greed, 75-100 extreme greed. Input: day count 1-30, default 7.",
		func(ctx context.Context, input string) (string, error) {
			return a.fng.Index(ctx, input)
		})
	reg.Register("futures_data",
		"Futures market data: funding rate, open interest and long/short ratio. "+
			"Very high funding suggests overheated longs; negative funding suggests "+
			"overheated shorts. Input: coin name, default BTC.",
		func(ctx context.Context, input string) (string, error) {
			return a.futures.Data(ctx, input)
		})
	reg.Register("crypto_analysis",
		"Combined lookup: price, technicals, fear & greed and futures data fetched "+
			"in one parallel call. Input: coin and interval, e.g. \"BTC 1h\"; interval "+
			"defaults to 1h. Prefer this for single-coin analysis.",
		func(ctx context.Context, input string) (string, error) {
			return a.Analyze(ctx, input), nil
		})
}
