package assistant

import (
	"strings"
	"sync"
	"time"
)

// responseCache reuses answers for repeated questions within a short window,
// so rapid re-asks (UI retries, double submits) skip the full pipeline.
type responseCache struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	answer  string
	expires time.Time
}

// newResponseCache returns nil when ttl is zero or negative, disabling
// caching at the call sites.
func newResponseCache(ttl time.Duration, now func() time.Time) *responseCache {
	if ttl <= 0 {
		return nil
	}
	if now == nil {
		now = time.Now
	}
	return &responseCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

// cacheKey normalizes a question: lowercased, whitespace collapsed.
func cacheKey(question string) string {
	return strings.ToLower(strings.Join(strings.Fields(question), " "))
}

func (c *responseCache) Get(question string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[cacheKey(question)]
	if !ok || c.now().After(entry.expires) {
		return "", false
	}
	return entry.answer, true
}

func (c *responseCache) Put(question, answer string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Drop stale entries opportunistically; the map stays tiny in practice.
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
		}
	}
	c.entries[cacheKey(question)] = cacheEntry{
		answer:  answer,
		expires: now.Add(c.ttl),
	}
}
