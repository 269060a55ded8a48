package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const fearGreedBase = "https://api.alternative.me"

// FearGreed fetches the crypto Fear & Greed index from Alternative.me.
type FearGreed struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewFearGreed builds a client; empty baseURL uses the public API.
func NewFearGreed(baseURL string, httpClient *http.Client, logger *zap.Logger) *FearGreed {
	if baseURL == "" {
		baseURL = fearGreedBase
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FearGreed{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient, logger: logger}
}

type fngEntry struct {
	Value          string `json:"value"`
	Classification string `json:"value_classification"`
	Timestamp      string `json:"timestamp"`
}

type fngResponse struct {
	Data []fngEntry `json:"data"`
}

// Index renders the current index plus a short history. The query is a day
// count between 1 and 30; anything unparsable falls back to 7.
func (f *FearGreed) Index(ctx context.Context, query string) (string, error) {
	days := 7
	if q := strings.TrimSpace(query); q != "" {
		if n, err := strconv.Atoi(q); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 1
	}
	if days > 30 {
		days = 30
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/fng/?limit=%d", f.baseURL, days), nil)
	if err != nil {
		return "", err
	}
	resp, err := f.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fear & greed request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fear & greed API returned status %d", resp.StatusCode)
	}

	var result fngResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("fear & greed decode failed: %w", err)
	}
	if len(result.Data) == 0 {
		return "", fmt.Errorf("fear & greed API returned no data")
	}

	latest := result.Data[0]
	value, _ := strconv.Atoi(latest.Value)

	var sb strings.Builder
	sb.WriteString("Crypto Fear & Greed index (source: Alternative.me)\n\n")
	fmt.Fprintf(&sb, "**Current: %d — %s**\n", value, latest.Classification)
	sb.WriteString(describeIndex(value))
	sb.WriteString("\n")

	if len(result.Data) > 1 {
		fmt.Fprintf(&sb, "\nLast %d days:\n", len(result.Data))
		for _, item := range result.Data {
			dateStr := "N/A"
			if ts, err := strconv.ParseInt(item.Timestamp, 10, 64); err == nil {
				dateStr = time.Unix(ts, 0).Format("01-02")
			}
			fmt.Fprintf(&sb, "  %s: %s (%s)\n", dateStr, item.Value, item.Classification)
		}
	}
	return sb.String(), nil
}

// describeIndex maps an index value to its standard reading.
func describeIndex(value int) string {
	switch {
	case value <= 24:
		return "Extreme fear: investor confidence is very low, often a contrarian buying window."
	case value <= 49:
		return "Fear: investors are cautious, the market may be correcting or consolidating."
	case value == 50:
		return "Neutral: bulls and bears are balanced, no clear direction."
	case value <= 74:
		return "Greed: sentiment is optimistic, watch the risk of chasing strength."
	default:
		return "Extreme greed: historically a higher-risk zone, be alert for pullbacks."
	}
}
