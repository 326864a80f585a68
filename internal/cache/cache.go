package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartspend/internal/core"
)

// AnalyticsCache memoizes analytics read models. Entries are keyed by ledger
// revision, so any committed change makes older entries unreachable; the TTL
// and cleanup only reclaim memory.
type AnalyticsCache struct {
	lru *LRUCache[core.Analytics]
}

func NewAnalyticsCache(maxSize int, ttl time.Duration) *AnalyticsCache {
	return &AnalyticsCache{lru: NewLRUCache[core.Analytics](maxSize, ttl)}
}

// GetOrBuild returns the cached analytics for (revision, timeframe, hour) or
// calls build and stores its result. Within one hour and revision a cached
// result keeps the window end of its first build, so To may lag now by up
// to an hour.
func (c *AnalyticsCache) GetOrBuild(revision uint64, tf core.Timeframe, now time.Time, build func() core.Analytics) core.Analytics {
	key := analyticsKey(revision, tf, now)
	if a, ok := c.lru.Get(key); ok {
		return a
	}
	a := build()
	c.lru.Set(key, a)
	return a
}

// Stats exposes hit/miss counters and the entry count.
func (c *AnalyticsCache) Stats() (hits, misses uint64, size int) {
	hits, misses = c.lru.Stats()
	return hits, misses, c.lru.Size()
}

// CleanExpired implements Cleaner
func (c *AnalyticsCache) CleanExpired() int {
	return c.lru.CleanExpired()
}

func analyticsKey(revision uint64, tf core.Timeframe, now time.Time) string {
	return fmt.Sprintf("%d|%s|%s", revision, tf, now.UTC().Format("2006-01-02T15"))
}

// Manager handles cache lifecycle and cleanup
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// NewManager creates a new cache manager
func NewManager() *Manager {
	return &Manager{
		caches:      make([]Cleaner, 0),
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.caches = append(m.caches, cache)
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go m.cleanup(ctx, interval)
}

func (m *Manager) cleanup(ctx context.Context, interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			totalCleaned := 0
			for _, cache := range m.caches {
				totalCleaned += cache.CleanExpired()
			}
			if totalCleaned > 0 {
				slog.DebugContext(ctx, "Evicted expired cache entries", "count", totalCleaned)
			}
		case <-m.stopCleanup:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop stops the cleanup routine. It must be called at most once, after
// StartCleanup.
func (m *Manager) Stop() {
	select {
	case <-m.stopCleanup:
	default:
		close(m.stopCleanup)
	}
	<-m.cleanupDone
}
