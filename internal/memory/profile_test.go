package memory

import (
	"strings"
	"testing"
)

func TestProfile_ToSummary(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    string
	}{
		{
			name: "full",
			profile: Profile{
				Coins:          []string{"BTC", "ETH"},
				Timeframe:      "short-term",
				RiskPreference: "conservative",
				Notes:          "avoids leverage",
			},
			want: "watched coins: BTC, ETH; preferred timeframe: short-term; " +
				"risk appetite: conservative; notes: avoids leverage",
		},
		{
			name:    "coins only",
			profile: Profile{Coins: []string{"SOL"}},
			want:    "watched coins: SOL",
		},
		{
			name: "empty",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.ToSummary(); got != tt.want {
				t.Errorf("ToSummary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProfile_ToSummaryCapsLength(t *testing.T) {
	p := Profile{Notes: strings.Repeat("长", 600)}
	got := p.ToSummary()
	if !strings.HasSuffix(got, "...") {
		t.Errorf("long summary must end with ellipsis, got %q", got[len(got)-10:])
	}
	if n := len([]rune(got)); n != summaryMaxRunes+3 {
		t.Errorf("summary runes = %d, want %d", n, summaryMaxRunes+3)
	}
}

func TestProfileStore_RoundTrip(t *testing.T) {
	store, err := NewProfileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if got := store.Get("anon_abc"); got != nil {
		t.Errorf("Get of unknown user = %+v, want nil", got)
	}

	p := &Profile{UserID: "anon_abc", Coins: []string{"BTC"}, Timeframe: "mid-term"}
	if err := store.Set(p); err != nil {
		t.Fatal(err)
	}

	got := store.Get("anon_abc")
	if got == nil {
		t.Fatal("Get returned nil after Set")
	}
	if got.Timeframe != "mid-term" || len(got.Coins) != 1 || got.Coins[0] != "BTC" {
		t.Errorf("Get = %+v", got)
	}
	if s := store.Summary("anon_abc"); !strings.Contains(s, "BTC") {
		t.Errorf("Summary = %q", s)
	}
}

func TestProfileStore_SanitizesUserIDForFilename(t *testing.T) {
	store, err := NewProfileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	id := "../../etc/passwd"
	if err := store.Set(&Profile{UserID: id, Timeframe: "short-term"}); err != nil {
		t.Fatal(err)
	}
	if got := store.Get(id); got == nil || got.Timeframe != "short-term" {
		t.Errorf("Get = %+v", got)
	}
}

func TestUpdateFromText(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		wantExtracted bool
		wantCoins     []string
		wantTimeframe string
		wantRisk      string
	}{
		{
			name:          "english preferences",
			content:       "I mostly trade BTC and ETH, short-term, fairly conservative",
			wantExtracted: true,
			wantCoins:     []string{"BTC", "ETH"},
			wantTimeframe: "short-term",
			wantRisk:      "conservative",
		},
		{
			name:          "chinese preferences",
			content:       "我主要看 sol，偏好长线，风格激进",
			wantExtracted: true,
			wantCoins:     []string{"SOL"},
			wantTimeframe: "long-term",
			wantRisk:      "aggressive",
		},
		{
			name:          "nothing extractable",
			content:       "remember that I like coffee",
			wantExtracted: false,
		},
		{
			name:          "too short",
			content:       "x",
			wantExtracted: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewProfileStore(t.TempDir(), nil)
			if err != nil {
				t.Fatal(err)
			}
			got := store.UpdateFromText("anon_u", tt.content)
			if got != tt.wantExtracted {
				t.Fatalf("UpdateFromText = %v, want %v", got, tt.wantExtracted)
			}
			if !tt.wantExtracted {
				if store.Get("anon_u") != nil {
					t.Error("no profile should be written when nothing was extracted")
				}
				return
			}
			p := store.Get("anon_u")
			if p == nil {
				t.Fatal("profile missing after extraction")
			}
			if len(p.Coins) != len(tt.wantCoins) {
				t.Fatalf("coins = %v, want %v", p.Coins, tt.wantCoins)
			}
			for i := range tt.wantCoins {
				if p.Coins[i] != tt.wantCoins[i] {
					t.Errorf("coins = %v, want %v", p.Coins, tt.wantCoins)
				}
			}
			if p.Timeframe != tt.wantTimeframe {
				t.Errorf("timeframe = %q, want %q", p.Timeframe, tt.wantTimeframe)
			}
			if p.RiskPreference != tt.wantRisk {
				t.Errorf("risk = %q, want %q", p.RiskPreference, tt.wantRisk)
			}
		})
	}
}

func TestUpdateFromText_MergesWithoutDuplicates(t *testing.T) {
	store, err := NewProfileStore(t.TempDir(), nil)
	if err != nil {
		t.Fatal(err)
	}
	store.UpdateFromText("anon_u", "watching btc short-term")
	store.UpdateFromText("anon_u", "also btc and eth now, mid-term")

	p := store.Get("anon_u")
	if p == nil {
		t.Fatal("profile missing")
	}
	if len(p.Coins) != 2 || p.Coins[0] != "BTC" || p.Coins[1] != "ETH" {
		t.Errorf("coins = %v, want [BTC ETH]", p.Coins)
	}
	if p.Timeframe != "mid-term" {
		t.Errorf("timeframe = %q, want the later value", p.Timeframe)
	}
}
