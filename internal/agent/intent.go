package agent

import "strings"

// Classifier decides whether a question belongs to the agent's domain before
// any model or tool call is made. Confidence is in [0, 1].
type Classifier interface {
	Classify(question, recentDialogue string) (ok bool, confidence float64)
}

// RefusalMessage is the fixed reply for questions outside the crypto research
// domain.
const RefusalMessage = "I am a crypto research assistant focused on market analysis, " +
	"technical indicators, and trading context for cryptocurrencies.\n\n" +
	"Your question does not look crypto-related. I can help with things like:\n" +
	"- Price outlook for a coin (\"where is BTC heading tomorrow?\")\n" +
	"- Technical readings (\"is the RSI oversold on the 1h chart?\")\n" +
	"- Market sentiment (\"what is the current fear & greed index?\")\n" +
	"- Positioning ideas (\"is this a dip worth buying?\")\n\n" +
	"Please try a crypto-related question."

// cryptoKeywords is the bilingual keyword table used by the default
// classifier. Follow-up questions are matched against the recent dialogue as
// well, so a terse "短线呢?" after a BTC discussion still passes.
var cryptoKeywords = []string{
	"btc", "eth", "sol", "bnb", "xrp", "doge", "ada", "dot", "link",
	"bitcoin", "ethereum", "solana", "crypto", "blockchain", "defi", "nft",
	"比特币", "以太坊", "加密", "币", "区块链", "链上",
	"k线", "kline", "macd", "rsi", "布林", "支撑", "阻力", "均线",
	"合约", "资金费率", "杠杆", "做多", "做空", "多头", "空头",
	"涨", "跌", "行情", "走势", "价格", "市值", "抄底", "追高",
	"牛市", "熊市", "减半", "挖矿", "矿工", "gas", "质押", "staking",
	"恐惧", "贪婪", "fear", "greed", "whale", "巨鲸",
	"交易所", "binance", "coinbase", "okx", "bybit", "exchange",
	"usdt", "usdc", "稳定币", "stablecoin", "token", "代币",
	"短线", "中线", "长线", "日线", "小时线", "周线", "月线",
	"etf", "灰度", "grayscale", "web3", "funding rate", "open interest",
	"altcoin", "bull", "bear", "halving",
}

// KeywordClassifier is the default Classifier: a fixed keyword table matched
// against the question plus the recent dialogue, no model call involved.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier returns a classifier over the default crypto keyword
// table plus any extra keywords.
func NewKeywordClassifier(extra ...string) *KeywordClassifier {
	kws := make([]string, 0, len(cryptoKeywords)+len(extra))
	kws = append(kws, cryptoKeywords...)
	kws = append(kws, extra...)
	return &KeywordClassifier{keywords: kws}
}

// Classify reports whether the question (in the context of the recent
// dialogue) is in domain. Confidence grows with the number of keyword hits
// and caps at 1.
func (c *KeywordClassifier) Classify(question, recentDialogue string) (bool, float64) {
	haystack := strings.ToLower(strings.TrimSpace(question)) + " " + strings.ToLower(recentDialogue)
	hits := 0
	for _, kw := range c.keywords {
		if strings.Contains(haystack, kw) {
			hits++
		}
	}
	if hits == 0 {
		return false, 0
	}
	confidence := 0.5 + 0.125*float64(hits)
	if confidence > 1 {
		confidence = 1
	}
	return true, confidence
}
