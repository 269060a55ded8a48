package assistant

import (
	"testing"
	"time"
)

func TestResponseCache_DisabledWhenTTLZero(t *testing.T) {
	c := newResponseCache(0, nil)
	if c != nil {
		t.Fatal("zero TTL must disable the cache")
	}
	// Nil receiver calls are safe no-ops.
	c.Put("q", "a")
	if _, ok := c.Get("q"); ok {
		t.Error("nil cache must never hit")
	}
}

func TestResponseCache_HitWithinTTL(t *testing.T) {
	now := time.Now()
	c := newResponseCache(time.Minute, func() time.Time { return now })

	c.Put("BTC outlook?", "bullish")
	got, ok := c.Get("BTC outlook?")
	if !ok || got != "bullish" {
		t.Errorf("Get = (%q, %v)", got, ok)
	}
}

func TestResponseCache_KeyNormalization(t *testing.T) {
	now := time.Now()
	c := newResponseCache(time.Minute, func() time.Time { return now })

	c.Put("  BTC   Outlook? ", "bullish")
	if got, ok := c.Get("btc outlook?"); !ok || got != "bullish" {
		t.Errorf("Get = (%q, %v), want hit on the normalized key", got, ok)
	}
	if _, ok := c.Get("eth outlook?"); ok {
		t.Error("different question must miss")
	}
}

func TestResponseCache_Expiry(t *testing.T) {
	now := time.Now()
	c := newResponseCache(time.Minute, func() time.Time { return now })

	c.Put("q", "a")
	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("q"); ok {
		t.Error("expired entry must miss")
	}
}

func TestResponseCache_PutSweepsStaleEntries(t *testing.T) {
	now := time.Now()
	c := newResponseCache(time.Minute, func() time.Time { return now })

	c.Put("old", "a")
	now = now.Add(2 * time.Minute)
	c.Put("new", "b")

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[cacheKey("old")]; exists {
		t.Error("stale entry should be swept on Put")
	}
	if _, exists := c.entries[cacheKey("new")]; !exists {
		t.Error("fresh entry missing")
	}
}
