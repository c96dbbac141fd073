package booking

import (
	"strings"
	"sync"
	"time"
)

// previewCache stores recently computed recurrence expansions so repeated
// preview requests for the same pattern and range skip re-expansion. Entries
// are pure functions of their key, so the TTL only bounds memory.
type previewCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]previewCacheEntry
}

type previewCacheEntry struct {
	dates     []time.Time
	expiresAt time.Time
}

func newPreviewCache(ttl time.Duration, maxEntries int, now func() time.Time) *previewCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &previewCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]previewCacheEntry),
	}
}

func (c *previewCache) Get(key string) ([]time.Time, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneDates(entry.dates), true
}

func (c *previewCache) Store(key string, dates []time.Time) {
	if c == nil {
		return
	}
	cloned := cloneDates(dates)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = previewCacheEntry{dates: cloned, expiresAt: expiry}
}

func (c *previewCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *previewCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneDates(dates []time.Time) []time.Time {
	if len(dates) == 0 {
		return nil
	}
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}

func previewKey(first time.Time, pattern string, end time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(first.UTC().Format(time.RFC3339Nano))
	builder.WriteString("|")
	builder.WriteString(pattern)
	builder.WriteString("|")
	builder.WriteString(end.UTC().Format(time.RFC3339Nano))
	return builder.String()
}
