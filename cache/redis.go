package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewPrefix    = "promptcms:view:"
	versionPrefix = "promptcms:version:"
	revokedPrefix = "promptcms:revoked:"
)

// RedisViewCache shares cached views between server instances.
type RedisViewCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisViewCache(rdb *redis.Client, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{rdb: rdb, ttl: ttl}
}

func (c *RedisViewCache) version(ctx context.Context, get func(ctx context.Context, key string) *redis.StringCmd, path string) (Version, error) {
	v, err := get(ctx, versionPrefix+path).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return Version(v), err
}

func redisKey(path string, version Version, key string) string {
	return fmt.Sprintf("%s%s@%d/%s", viewPrefix, path, version, key)
}

func (c *RedisViewCache) Get(ctx context.Context, path, key string, dest interface{}) (Version, bool, error) {
	version, err := c.version(ctx, c.rdb.Get, path)
	if err != nil {
		return 0, false, err
	}

	data, err := c.rdb.Get(ctx, redisKey(path, version, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return version, false, nil
	}
	if err != nil {
		return version, false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return version, false, err
	}
	return version, true, nil
}

// Set writes under a WATCH on the path's version key. A concurrent
// Invalidate aborts the transaction and the value is dropped.
func (c *RedisViewCache) Set(ctx context.Context, path, key string, version Version, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.version(ctx, tx.Get, path)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, redisKey(path, version, key), data, c.ttl)
			return nil
		})
		return err
	}, versionPrefix+path)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the version counter of every path in one round trip.
// Entries under the old version are left to expire.
func (c *RedisViewCache) Invalidate(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, path := range paths {
			pipe.Incr(ctx, versionPrefix+path)
		}
		return nil
	})
	return err
}

type RedisRevocations struct {
	rdb *redis.Client
}

func NewRedisRevocations(rdb *redis.Client) *RedisRevocations {
	return &RedisRevocations{rdb: rdb}
}

func (r *RedisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedPrefix+tokenID, 1, ttl).Err()
}

func (r *RedisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
