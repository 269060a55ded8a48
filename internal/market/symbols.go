// Package market provides crypto market data tools: spot prices, technical
// indicators computed from exchange klines, sentiment and futures data, and a
// combined concurrent lookup.
package market

import "strings"

// coinAliases maps user-facing coin names to CoinGecko IDs. Users ask in both
// English and Chinese.
var coinAliases = map[string]string{
	"btc": "bitcoin", "比特币": "bitcoin", "bitcoin": "bitcoin",
	"eth": "ethereum", "以太坊": "ethereum", "ethereum": "ethereum",
	"sol": "solana", "索拉纳": "solana", "solana": "solana",
	"bnb": "binancecoin", "币安币": "binancecoin",
	"xrp": "ripple", "瑞波": "ripple", "ripple": "ripple",
	"doge": "dogecoin", "狗狗币": "dogecoin", "dogecoin": "dogecoin",
	"ada": "cardano", "卡尔达诺": "cardano", "cardano": "cardano",
	"avax": "avalanche-2", "雪崩": "avalanche-2",
	"dot": "polkadot", "波卡": "polkadot", "polkadot": "polkadot",
	"link": "chainlink", "chainlink": "chainlink",
	"matic": "matic-network", "polygon": "matic-network",
	"uni": "uniswap", "uniswap": "uniswap",
	"atom": "cosmos", "cosmos": "cosmos",
	"ltc": "litecoin", "莱特币": "litecoin", "litecoin": "litecoin",
	"trx": "tron", "波场": "tron", "tron": "tron",
}

// symbolMap maps coin names to Binance spot/futures trading pairs.
var symbolMap = map[string]string{
	"btc": "BTCUSDT", "bitcoin": "BTCUSDT", "比特币": "BTCUSDT",
	"eth": "ETHUSDT", "ethereum": "ETHUSDT", "以太坊": "ETHUSDT",
	"sol": "SOLUSDT", "solana": "SOLUSDT", "索拉纳": "SOLUSDT",
	"bnb": "BNBUSDT", "doge": "DOGEUSDT", "狗狗币": "DOGEUSDT",
	"xrp": "XRPUSDT", "ada": "ADAUSDT", "dot": "DOTUSDT",
	"link": "LINKUSDT", "avax": "AVAXUSDT", "matic": "MATICUSDT",
	"uni": "UNIUSDT", "atom": "ATOMUSDT", "ltc": "LTCUSDT",
	"trx": "TRXUSDT", "near": "NEARUSDT", "apt": "APTUSDT",
}

// intervalMap maps user-facing interval names to Binance kline intervals.
var intervalMap = map[string]string{
	"1m": "1m", "5m": "5m", "15m": "15m", "30m": "30m",
	"1h": "1h", "小时": "1h", "小时线": "1h",
	"4h": "4h", "4小时": "4h",
	"1d": "1d", "日线": "1d", "日": "1d",
	"1w": "1w", "周线": "1w", "周": "1w",
}

// ResolveCoinID resolves a coin name to its CoinGecko ID; unknown names pass
// through lowercased so less common CoinGecko IDs still work verbatim.
func ResolveCoinID(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if id, ok := coinAliases[key]; ok {
		return id
	}
	return key
}

// ResolveSymbol resolves a coin name to its Binance USDT pair; unknown names
// become NAME+USDT.
func ResolveSymbol(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if sym, ok := symbolMap[key]; ok {
		return sym
	}
	return strings.ToUpper(key) + "USDT"
}

// ResolveInterval resolves an interval name, defaulting to 1h.
func ResolveInterval(text string) string {
	key := strings.ToLower(strings.TrimSpace(text))
	if iv, ok := intervalMap[key]; ok {
		return iv
	}
	return "1h"
}

// SplitCoinInterval parses tool input of the form "COIN [interval]", e.g.
// "BTC 1h" or "ETH 4h". Commas are treated as spaces; missing parts default
// to BTC and 1h.
func SplitCoinInterval(query string) (coin, interval string) {
	cleaned := strings.NewReplacer(",", " ", "，", " ").Replace(query)
	parts := strings.Fields(cleaned)
	coin, interval = "BTC", "1h"
	if len(parts) > 0 {
		coin = parts[0]
	}
	if len(parts) > 1 {
		interval = parts[1]
	}
	return coin, interval
}

// SplitCoins parses a comma-separated coin list, deduplicating while keeping
// order.
func SplitCoins(query string) []string {
	cleaned := strings.ReplaceAll(query, "，", ",")
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(cleaned, ",") {
		id := ResolveCoinID(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
