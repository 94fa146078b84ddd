// Package cache holds rendered-view caching and session revocation state.
//
// Views are cached per path. Every path carries a version counter and
// invalidating the path bumps the counter, so stale entries are never read
// again and simply expire.
package cache

import (
	"context"
	"time"
)

// Version is the state of a path as seen by Get.
type Version uint64

type ViewCache interface {
	// Get decodes the cached value for key under path into dest. It reports
	// false on a miss. The returned version is passed to Set when the value
	// is loaded after a miss.
	Get(ctx context.Context, path, key string, dest interface{}) (Version, bool, error)
	// Set stores value under the version Get observed. A path invalidated
	// since then keeps the write out, so a value loaded before the
	// invalidation is never served as fresh.
	Set(ctx context.Context, path, key string, version Version, value interface{}) error
	Invalidate(ctx context.Context, paths ...string) error
}

// Revocations tracks signed-out session token ids until they expire.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
