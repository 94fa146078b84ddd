package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type page struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
}

func exerciseViewCache(t *testing.T, c ViewCache) {
	t.Helper()
	ctx := context.Background()

	var got page
	version, hit, err := c.Get(ctx, "/public", "page=1", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := page{Items: []string{"a", "b"}, Total: 2}
	require.NoError(t, c.Set(ctx, "/public", "page=1", version, want))
	adminVersion, _, err := c.Get(ctx, "/admin", "stats", &got)
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "/admin", "stats", adminVersion, want))

	_, hit, err = c.Get(ctx, "/public", "page=1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)

	require.NoError(t, c.Invalidate(ctx, "/public"))

	got = page{}
	version, hit, err = c.Get(ctx, "/public", "page=1", &got)
	require.NoError(t, err)
	assert.False(t, hit, "invalidated path must miss")

	_, hit, err = c.Get(ctx, "/admin", "stats", &got)
	require.NoError(t, err)
	assert.True(t, hit, "other paths stay cached")

	require.NoError(t, c.Set(ctx, "/public", "page=1", version, page{Total: 9}))
	_, hit, err = c.Get(ctx, "/public", "page=1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 9, got.Total)
}

// exerciseStaleWrite loads a value across an invalidation: the write made
// with the version read before the invalidation must not be served.
func exerciseStaleWrite(t *testing.T, c ViewCache) {
	t.Helper()
	ctx := context.Background()

	var got page
	version, hit, err := c.Get(ctx, "/stale", "page=1", &got)
	require.NoError(t, err)
	require.False(t, hit)

	require.NoError(t, c.Invalidate(ctx, "/stale"))
	require.NoError(t, c.Set(ctx, "/stale", "page=1", version, page{Total: 1}))

	current, hit, err := c.Get(ctx, "/stale", "page=1", &got)
	require.NoError(t, err)
	assert.False(t, hit, "value loaded before the invalidation must not be cached")
	assert.NotEqual(t, version, current)

	require.NoError(t, c.Set(ctx, "/stale", "page=1", current, page{Total: 2}))
	_, hit, err = c.Get(ctx, "/stale", "page=1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 2, got.Total)
}

func TestMemoryViewCache(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewMemoryViewCache(time.Minute)
	exerciseViewCache(t, c)
	assert.Equal(t, uint64(1), c.Version("/public"))
	assert.Equal(t, uint64(0), c.Version("/admin"))
}

func TestMemoryViewCache_DropsWriteAfterInvalidate(t *testing.T) {
	defer goleak.VerifyNone(t)

	exerciseStaleWrite(t, NewMemoryViewCache(time.Minute))
}

func TestMemoryViewCache_Expiry(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := NewMemoryViewCache(time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "/public", "k", 0, 1))

	var v int
	_, hit, _ := c.Get(ctx, "/public", "k", &v)
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	_, hit, _ = c.Get(ctx, "/public", "k", &v)
	assert.False(t, hit)
}

func TestMemoryRevocations(t *testing.T) {
	defer goleak.VerifyNone(t)

	r := NewMemoryRevocations()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }
	ctx := context.Background()

	revoked, err := r.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, r.Revoke(ctx, "jti-1", time.Hour))
	revoked, _ = r.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)

	now = now.Add(2 * time.Hour)
	revoked, _ = r.IsRevoked(ctx, "jti-1")
	assert.False(t, revoked, "revocation lapses with the token")

	require.NoError(t, r.Revoke(ctx, "jti-2", time.Hour))
	r.mu.RLock()
	_, stale := r.revoked["jti-1"]
	r.mu.RUnlock()
	assert.False(t, stale, "expired ids are swept on revoke")
}
