// Package searchcache is an in-memory, time-bounded store of computed search
// results keyed by (user, normalized query). It exists so repeated identical
// queries within the TTL window never trigger a second model call. Entries
// are process-local and never persisted.
package searchcache

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/crmfind/internal/domain/result"
)

// Defaults for entry lifetime and the background sweep.
const (
	DefaultTTL           = 300 * time.Second
	DefaultSweepInterval = 60 * time.Second
)

type key struct {
	userID string
	query  string
}

type entry struct {
	value     result.SearchResult
	expiresAt time.Time
}

// Cache is a concurrent TTL cache for search results.
// An invalidation racing an in-flight compute is resolved last-write-wins:
// a stale result may repopulate the cache until the next TTL expiry or
// invalidation. This weak-consistency window is accepted, not locked away.
type Cache struct {
	mu      sync.RWMutex
	entries map[key]entry

	ttl      time.Duration
	now      func() time.Time
	hitTotal *prometheus.CounterVec
	logger   *zap.Logger

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a search cache.
// hitTotal is a counter vec with label "result" ("hit"/"miss"), may be nil.
func New(ttl time.Duration, hitTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries:  make(map[key]entry),
		ttl:      ttl,
		now:      time.Now,
		hitTotal: hitTotal,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// WithClock overrides the time source. Test hook.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

func normalize(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Get returns the cached result for (userID, query). Expired entries are
// treated as a miss without being removed; the sweeper reclaims them.
func (c *Cache) Get(userID, query string) (result.SearchResult, bool) {
	k := key{userID: userID, query: normalize(query)}

	c.mu.RLock()
	e, ok := c.entries[k]
	c.mu.RUnlock()

	if !ok || !c.now().Before(e.expiresAt) {
		c.inc("miss")
		return result.SearchResult{}, false
	}
	c.inc("hit")
	return e.value, true
}

// Put inserts or overwrites the result for (userID, query) with a fresh TTL.
func (c *Cache) Put(userID, query string, value result.SearchResult) {
	k := key{userID: userID, query: normalize(query)}
	e := entry{value: value, expiresAt: c.now().Add(c.ttl)}

	c.mu.Lock()
	c.entries[k] = e
	c.mu.Unlock()
}

// InvalidateUser removes all entries for a user. Called when the user's
// underlying records change; the trigger comes from collaborators, the cache
// does not discover mutations itself.
func (c *Cache) InvalidateUser(userID string) {
	c.mu.Lock()
	for k := range c.entries {
		if k.userID == userID {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Debug("Invalidated search cache for user", zap.String("user_id", userID))
	}
}

// Clear empties the whole cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[key]entry)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartSweeper launches a background goroutine that periodically removes
// expired entries, bounding memory growth under low query traffic.
func (c *Cache) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Stop terminates the background sweeper. Safe to call more than once.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Sweep removes all expired entries in one pass.
func (c *Cache) Sweep() {
	now := c.now()

	c.mu.Lock()
	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
			removed++
		}
	}
	c.mu.Unlock()

	if removed > 0 && c.logger != nil {
		c.logger.Debug("Swept expired search cache entries", zap.Int("removed", removed))
	}
}

func (c *Cache) inc(outcome string) {
	if c.hitTotal != nil {
		c.hitTotal.WithLabelValues(outcome).Inc()
	}
}
