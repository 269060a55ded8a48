package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// Profile is a user's persisted research preferences, injected into report
// prompts when present.
type Profile struct {
	UserID         string   `json:"user_id"`
	Coins          []string `json:"coins"`
	Timeframe      string   `json:"timeframe"`
	RiskPreference string   `json:"risk_preference"`
	Notes          string   `json:"notes"`
}

const summaryMaxRunes = 400

// ToSummary renders the profile as one prompt-injectable line, or "" when
// the profile is empty.
func (p *Profile) ToSummary() string {
	var parts []string
	if len(p.Coins) > 0 {
		parts = append(parts, "watched coins: "+strings.Join(p.Coins, ", "))
	}
	if p.Timeframe != "" {
		parts = append(parts, "preferred timeframe: "+p.Timeframe)
	}
	if p.RiskPreference != "" {
		parts = append(parts, "risk appetite: "+p.RiskPreference)
	}
	if p.Notes != "" {
		parts = append(parts, "notes: "+p.Notes)
	}
	if len(parts) == 0 {
		return ""
	}
	s := strings.Join(parts, "; ")
	runes := []rune(s)
	if len(runes) > summaryMaxRunes {
		return string(runes[:summaryMaxRunes]) + "..."
	}
	return s
}

var unsafeFilenameChars = regexp.MustCompile(`[^\w\-]`)

// ProfileStore persists profiles as one JSON file per user.
type ProfileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewProfileStore builds a store rooted at baseDir, creating it if needed.
func NewProfileStore(baseDir string, logger *zap.Logger) (*ProfileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileStore{baseDir: baseDir, logger: logger}, nil
}

func (s *ProfileStore) path(userID string) string {
	safe := unsafeFilenameChars.ReplaceAllString(userID, "_")
	return filepath.Join(s.baseDir, safe+".json")
}

// Get returns the stored profile, or nil when the user has none.
func (s *ProfileStore) Get(userID string) *Profile {
	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		return nil
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Debug("could not parse profile", zap.String("user", userID), zap.Error(err))
		return nil
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p
}

// Set writes the profile.
func (s *ProfileStore) Set(p *Profile) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path(p.UserID), data, 0o644); err != nil {
		return fmt.Errorf("write profile %s: %w", p.UserID, err)
	}
	return nil
}

// Summary renders the user's profile for prompt injection; "" when absent.
func (s *ProfileStore) Summary(userID string) string {
	p := s.Get(userID)
	if p == nil {
		return ""
	}
	return p.ToSummary()
}

// coin markers recognized by the heuristic extractor.
var coinMarkers = []struct{ marker, symbol string }{
	{"btc", "BTC"}, {"eth", "ETH"}, {"sol", "SOL"}, {"sui", "SUI"}, {"bnb", "BNB"},
}

const maxProfileCoins = 10

// UpdateFromText extracts preferences from a remembered text heuristically
// (mentioned coins, timeframe, risk words) and merges them into the profile.
// Returns true when anything was extracted.
func (s *ProfileStore) UpdateFromText(userID, content string) bool {
	content = strings.TrimSpace(content)
	if len(content) < 2 {
		return false
	}
	lower := strings.ToLower(content)

	var newCoins []string
	for _, cm := range coinMarkers {
		if strings.Contains(lower, cm.marker) {
			newCoins = append(newCoins, cm.symbol)
		}
	}

	timeframe := ""
	switch {
	case strings.Contains(content, "短线") || strings.Contains(lower, "short-term"):
		timeframe = "short-term"
	case strings.Contains(content, "中线") || strings.Contains(content, "中长线") || strings.Contains(lower, "mid-term"):
		timeframe = "mid-term"
	case strings.Contains(content, "长线") || strings.Contains(lower, "long-term"):
		timeframe = "long-term"
	}

	risk := ""
	switch {
	case strings.Contains(content, "保守") || strings.Contains(content, "稳健") || strings.Contains(lower, "conservative"):
		risk = "conservative"
	case strings.Contains(content, "激进") || strings.Contains(lower, "aggressive"):
		risk = "aggressive"
	case strings.Contains(content, "中性") || strings.Contains(lower, "neutral"):
		risk = "neutral"
	}

	if len(newCoins) == 0 && timeframe == "" && risk == "" {
		return false
	}

	p := s.Get(userID)
	if p == nil {
		p = &Profile{UserID: userID}
	}
	if len(newCoins) > 0 {
		seen := make(map[string]bool)
		var merged []string
		for _, c := range append(p.Coins, newCoins...) {
			if !seen[c] {
				seen[c] = true
				merged = append(merged, c)
			}
		}
		if len(merged) > maxProfileCoins {
			merged = merged[:maxProfileCoins]
		}
		p.Coins = merged
	}
	if timeframe != "" {
		p.Timeframe = timeframe
	}
	if risk != "" {
		p.RiskPreference = risk
	}
	if err := s.Set(p); err != nil {
		s.logger.Warn("could not persist profile", zap.String("user", userID), zap.Error(err))
		return false
	}
	return true
}
