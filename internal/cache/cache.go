// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package cache

import (
	"context"
	"sync"
	"time"
)

const defaultCleanupInterval = time.Minute

// Entry represents a cached item with expiration.
type Entry struct {
	Data      string
	ExpiresAt time.Time
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Evictions   int64
	TotalKeys   int64
	LastCleanup time.Time
}

// Cache is a thread-safe in-memory TTL cache. Every entry carries its own
// expiry; expired entries are dropped lazily on Get and in bulk by a
// background cleanup loop that runs until Close.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry

	statsMu sync.Mutex
	stats   Stats

	stop     chan struct{}
	stopOnce sync.Once
}

// New creates a Cache and starts its cleanup loop.
func New(cleanupInterval time.Duration) *Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	c := &Cache{
		entries: make(map[string]Entry),
		stats:   Stats{LastCleanup: time.Now()},
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop(cleanupInterval)
	return c
}

// Get returns the value for key if present and unexpired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.record(func(s *Stats) { s.Misses++ })
		return "", false
	}

	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		// Re-check: a concurrent Set may have refreshed the entry.
		if current, ok := c.entries[key]; ok && time.Now().After(current.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.record(func(s *Stats) { s.Misses++; s.Evictions++ })
		return "", false
	}

	c.record(func(s *Stats) { s.Hits++ })
	return entry.Data, true
}

// SetWithTTL stores value under key for ttl, overwriting any existing entry.
func (c *Cache) SetWithTTL(key, value string, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = Entry{Data: value, ExpiresAt: time.Now().Add(ttl)}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.record(func(s *Stats) { s.TotalKeys = total })
}

// GetStats returns a copy of the current counters.
func (c *Cache) GetStats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	return c.stats
}

// HitRate returns the hit rate as a percentage.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// Close stops the cleanup loop. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	evictions := int64(0)
	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
			evictions++
		}
	}
	total := int64(len(c.entries))
	c.mu.Unlock()

	c.record(func(s *Stats) {
		s.Evictions += evictions
		s.TotalKeys = total
		s.LastCleanup = now
	})
}

func (c *Cache) record(update func(*Stats)) {
	c.statsMu.Lock()
	update(&c.stats)
	c.statsMu.Unlock()
}

// MemoryStore adapts Cache to the Store interface. It is the default
// backend for a single relay instance.
type MemoryStore struct {
	cache *Cache
}

// NewMemoryStore creates a MemoryStore with the default cleanup interval.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: New(defaultCleanupInterval)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := m.cache.Get(key)
	return v, ok, nil
}

// SetWithExpiry implements Store.
func (m *MemoryStore) SetWithExpiry(_ context.Context, key, value string, ttl time.Duration) error {
	m.cache.SetWithTTL(key, value, ttl)
	return nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.cache.Close()
	return nil
}

// Stats returns the underlying cache counters. /health reports them for the
// memory backend.
func (m *MemoryStore) Stats() Stats {
	return m.cache.GetStats()
}
