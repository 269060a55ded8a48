package market

import (
	"context"
	"fmt"
	"math"
	"strings"
)

const klineWindow = 100

// ema returns the exponential moving average series, seeded with the simple
// average of the first period values. Entries before the seed are NaN.
func ema(values []float64, period int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if period <= 0 || len(values) < period {
		return out
	}
	sum := 0.0
	for _, v := range values[:period] {
		sum += v
	}
	out[period-1] = sum / float64(period)
	k := 2.0 / float64(period+1)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// lastEMA returns the final EMA value, or NaN when the series is too short.
func lastEMA(values []float64, period int) float64 {
	series := ema(values, period)
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}

// rsi computes Wilder's RSI: the first average is a simple mean, later ones
// are smoothed. A window with no losses reads exactly 100.
func rsi(closes []float64, period int) (float64, bool) {
	if len(closes) < period+1 {
		return 0, false
	}
	var gain, loss float64
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	avgGain := gain / float64(period)
	avgLoss := loss / float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		g, l := 0.0, 0.0
		if d > 0 {
			g = d
		} else {
			l = -d
		}
		avgGain = (avgGain*float64(period-1) + g) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + l) / float64(period)
	}
	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// macd computes MACD(12, 26, 9): the fast/slow EMA difference, its 9-period
// signal EMA, and the histogram.
func macd(closes []float64) (line, signal, hist float64, ok bool) {
	const fast, slow, sig = 12, 26, 9
	if len(closes) < slow+sig {
		return 0, 0, 0, false
	}
	fastEMA := ema(closes, fast)
	slowEMA := ema(closes, slow)

	diffs := make([]float64, 0, len(closes)-slow+1)
	for i := slow - 1; i < len(closes); i++ {
		diffs = append(diffs, fastEMA[i]-slowEMA[i])
	}
	signalSeries := ema(diffs, sig)

	line = diffs[len(diffs)-1]
	signal = signalSeries[len(signalSeries)-1]
	if math.IsNaN(signal) {
		return 0, 0, 0, false
	}
	return line, signal, line - signal, true
}

// bollinger computes the Bollinger bands over the last period closes with a
// population standard deviation.
func bollinger(closes []float64, period int, mult float64) (upper, mid, lower float64, ok bool) {
	if len(closes) < period {
		return 0, 0, 0, false
	}
	window := closes[len(closes)-period:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	mid = sum / float64(period)
	var variance float64
	for _, v := range window {
		variance += (v - mid) * (v - mid)
	}
	sd := math.Sqrt(variance / float64(period))
	return mid + mult*sd, mid, mid - mult*sd, true
}

// supportResistance takes the extreme low and high of the last window
// candles.
func supportResistance(klines []Kline, window int) (support, resistance float64) {
	if len(klines) == 0 {
		return 0, 0
	}
	if len(klines) > window {
		klines = klines[len(klines)-window:]
	}
	support, resistance = klines[0].Low, klines[0].High
	for _, k := range klines[1:] {
		if k.Low < support {
			support = k.Low
		}
		if k.High > resistance {
			resistance = k.High
		}
	}
	return support, resistance
}

// Technical fetches klines for "COIN interval" input and renders a technical
// indicator report: RSI, MACD, Bollinger bands, EMAs and support/resistance.
func (b *Binance) Technical(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		query = "BTC 1h"
	}
	coin, intervalRaw := SplitCoinInterval(query)
	symbol := ResolveSymbol(coin)
	interval := ResolveInterval(intervalRaw)

	klines, err := b.Klines(ctx, symbol, interval, klineWindow)
	if err != nil {
		return "", err
	}

	closes := make([]float64, len(klines))
	for i, k := range klines {
		closes[i] = k.Close
	}
	currentPrice := closes[len(closes)-1]

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s %s technicals** (last %d candles, Binance spot data)\n\n", symbol, interval, len(klines))
	fmt.Fprintf(&sb, "**Current price**: %s\n\n", fmtUSD(currentPrice))

	sb.WriteString("**RSI (14)**\n")
	if v, ok := rsi(closes, 14); ok {
		status := "neutral"
		if v < 30 {
			status = "oversold"
		} else if v > 70 {
			status = "overbought"
		}
		fmt.Fprintf(&sb, "  RSI = %.1f — %s\n", v, status)
	} else {
		sb.WriteString("  RSI = N/A\n")
	}

	sb.WriteString("\n**MACD (12, 26, 9)**\n")
	if line, signal, hist, ok := macd(closes); ok {
		trend := "bullish cross"
		if hist <= 0 {
			trend = "bearish cross"
		}
		fmt.Fprintf(&sb, "  MACD = %.2f, Signal = %.2f, Hist = %.2f\n", line, signal, hist)
		fmt.Fprintf(&sb, "  state: %s\n", trend)
	} else {
		sb.WriteString("  MACD = N/A\n")
	}

	sb.WriteString("\n**Bollinger bands (20, 2)**\n")
	if upper, mid, lower, ok := bollinger(closes, 20, 2); ok {
		pos := "near the middle band"
		if currentPrice > upper*0.98 {
			pos = "near the upper band (possibly overbought)"
		} else if currentPrice < lower*1.02 {
			pos = "near the lower band (possibly oversold)"
		}
		fmt.Fprintf(&sb, "  upper: %s | middle: %s | lower: %s\n", fmtUSD(upper), fmtUSD(mid), fmtUSD(lower))
		fmt.Fprintf(&sb, "  position: %s\n", pos)
	} else {
		sb.WriteString("  Bollinger = N/A\n")
	}

	sb.WriteString("\n**EMAs**\n")
	var emaParts []string
	ema7 := lastEMA(closes, 7)
	ema25 := lastEMA(closes, 25)
	if !math.IsNaN(ema7) {
		emaParts = append(emaParts, "EMA7="+fmtUSD(ema7))
	}
	if !math.IsNaN(ema25) {
		emaParts = append(emaParts, "EMA25="+fmtUSD(ema25))
	}
	if ema99 := lastEMA(closes, 99); !math.IsNaN(ema99) {
		emaParts = append(emaParts, "EMA99="+fmtUSD(ema99))
	}
	fmt.Fprintf(&sb, "  %s\n", strings.Join(emaParts, " | "))
	if !math.IsNaN(ema7) && !math.IsNaN(ema25) {
		if ema7 > ema25 {
			sb.WriteString("  alignment: short EMA above long (bullish)\n")
		} else {
			sb.WriteString("  alignment: short EMA below long (bearish)\n")
		}
	}

	support, resistance := supportResistance(klines, 20)
	sb.WriteString("\n**Recent support/resistance (20 candles)**\n")
	fmt.Fprintf(&sb, "  support: %s\n", fmtUSD(support))
	fmt.Fprintf(&sb, "  resistance: %s\n", fmtUSD(resistance))
	if support > 0 {
		fmt.Fprintf(&sb, "  distance to support: %+.1f%%\n", (currentPrice-support)/support*100)
	}
	if resistance > 0 {
		fmt.Fprintf(&sb, "  distance to resistance: %+.1f%%\n", (currentPrice-resistance)/resistance*100)
	}
	return sb.String(), nil
}
