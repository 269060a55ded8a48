package market

import "testing"

func TestResolveCoinID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"BTC", "bitcoin"},
		{"btc", "bitcoin"},
		{"比特币", "bitcoin"},
		{"Ethereum", "ethereum"},
		{" sol ", "solana"},
		{"pepe", "pepe"}, // unknown passes through lowercased
		{"SHIB", "shib"},
	}
	for _, tt := range tests {
		if got := ResolveCoinID(tt.in); got != tt.want {
			t.Errorf("ResolveCoinID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"btc", "BTCUSDT"},
		{"以太坊", "ETHUSDT"},
		{"DOGE", "DOGEUSDT"},
		{"pepe", "PEPEUSDT"}, // unknown becomes NAME+USDT
	}
	for _, tt := range tests {
		if got := ResolveSymbol(tt.in); got != tt.want {
			t.Errorf("ResolveSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1h", "1h"},
		{"4H", "4h"},
		{"日线", "1d"},
		{"周线", "1w"},
		{"", "1h"},
		{"banana", "1h"}, // unknown defaults
	}
	for _, tt := range tests {
		if got := ResolveInterval(tt.in); got != tt.want {
			t.Errorf("ResolveInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitCoinInterval(t *testing.T) {
	tests := []struct {
		in           string
		wantCoin     string
		wantInterval string
	}{
		{"BTC 1h", "BTC", "1h"},
		{"ETH,4h", "ETH", "4h"},
		{"SOL，日线", "SOL", "日线"},
		{"BTC", "BTC", "1h"},
		{"", "BTC", "1h"},
	}
	for _, tt := range tests {
		coin, interval := SplitCoinInterval(tt.in)
		if coin != tt.wantCoin || interval != tt.wantInterval {
			t.Errorf("SplitCoinInterval(%q) = (%q, %q), want (%q, %q)",
				tt.in, coin, interval, tt.wantCoin, tt.wantInterval)
		}
	}
}

func TestSplitCoins(t *testing.T) {
	got := SplitCoins("BTC, eth，BTC,bitcoin")
	want := []string{"bitcoin", "ethereum"}
	if len(got) != len(want) {
		t.Fatalf("SplitCoins = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("SplitCoins[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSplitCoins_Empty(t *testing.T) {
	if got := SplitCoins(" , "); len(got) != 0 {
		t.Errorf("SplitCoins = %v, want none", got)
	}
}
