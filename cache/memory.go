package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryViewCache keeps views in process. It is used when Redis is not
// configured and in tests.
type MemoryViewCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	now      func() time.Time
	versions map[string]uint64
	entries  map[string]memoryEntry
}

func NewMemoryViewCache(ttl time.Duration) *MemoryViewCache {
	return &MemoryViewCache{
		ttl:      ttl,
		now:      time.Now,
		versions: make(map[string]uint64),
		entries:  make(map[string]memoryEntry),
	}
}

func entryKey(path string, version uint64, key string) string {
	return path + "@" + strconv.FormatUint(version, 10) + "/" + key
}

func (c *MemoryViewCache) Get(_ context.Context, path, key string, dest interface{}) (Version, bool, error) {
	c.mu.RLock()
	version := c.versions[path]
	entry, ok := c.entries[entryKey(path, version, key)]
	c.mu.RUnlock()

	if !ok || entry.expired(c.now()) {
		return Version(version), false, nil
	}
	if err := json.Unmarshal(entry.data, dest); err != nil {
		return Version(version), false, err
	}
	return Version(version), true, nil
}

func (c *MemoryViewCache) Set(_ context.Context, path, key string, version Version, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	entry := memoryEntry{data: data}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[path] != uint64(version) {
		return nil
	}
	c.entries[entryKey(path, uint64(version), key)] = entry
	return nil
}

// Invalidate bumps the version of every path and drops its entries.
func (c *MemoryViewCache) Invalidate(_ context.Context, paths ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, path := range paths {
		prefix := entryKey(path, c.versions[path], "")
		for k := range c.entries {
			if strings.HasPrefix(k, prefix) {
				delete(c.entries, k)
			}
		}
		c.versions[path]++
	}
	return nil
}

// Version returns the current version counter of path.
func (c *MemoryViewCache) Version(path string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[path]
}

type MemoryRevocations struct {
	mu      sync.RWMutex
	now     func() time.Time
	revoked map[string]time.Time
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (r *MemoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for id, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, id)
		}
	}
	r.revoked[tokenID] = now.Add(ttl)
	return nil
}

func (r *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.RLock()
	until, ok := r.revoked[tokenID]
	r.mu.RUnlock()
	return ok && !r.now().After(until), nil
}
