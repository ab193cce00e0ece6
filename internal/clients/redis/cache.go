// Package redis caches per-owner category summaries in Redis.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"note-shelf/internal/services/notes"
)

const (
	keyPrefix = "noteshelf:categories:"
	genPrefix = "noteshelf:categories-gen:"

	// minGenTTL keeps generation counters around well past any summary.
	minGenTTL = 24 * time.Hour
)

var errGenerationMoved = errors.New("category generation moved")

// CountsCache implements notes.CountsCache on a Redis client. Entries expire
// after ttl so a lost invalidation heals on its own. Each owner also has a
// generation counter that Invalidate increments; Set watches it.
type CountsCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// New parses url (redis://host:port/db), pings the server and returns a
// cache writing entries with the given ttl.
func New(ctx context.Context, url string, ttl time.Duration) (*CountsCache, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := goredis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewWithClient(rdb, ttl), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(rdb *goredis.Client, ttl time.Duration) *CountsCache {
	return &CountsCache{rdb: rdb, ttl: ttl}
}

func key(ownerID string) string    { return keyPrefix + ownerID }
func genKey(ownerID string) string { return genPrefix + ownerID }

func (c *CountsCache) genTTL() time.Duration {
	return max(c.ttl, minGenTTL)
}

func (c *CountsCache) Get(ctx context.Context, ownerID string) ([]notes.CategoryCount, bool, error) {
	raw, err := c.rdb.Get(ctx, key(ownerID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var counts []notes.CategoryCount
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, fmt.Errorf("decode cached counts: %w", err)
	}
	return counts, true, nil
}

// Generation returns the owner's write generation, 0 when none was recorded.
func (c *CountsCache) Generation(ctx context.Context, ownerID string) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(ownerID)).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores counts unless the owner's generation has moved past gen. A
// moved generation is not an error: the counts are simply dropped.
func (c *CountsCache) Set(ctx context.Context, ownerID string, gen int64, counts []notes.CategoryCount) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return err
	}

	gk := genKey(ownerID)
	err = c.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		cur, err := tx.Get(ctx, gk).Int64()
		if err != nil && !errors.Is(err, goredis.Nil) {
			return err
		}
		if cur != gen {
			return errGenerationMoved
		}
		_, err = tx.TxPipelined(ctx, func(p goredis.Pipeliner) error {
			p.Set(ctx, key(ownerID), raw, c.ttl)
			return nil
		})
		return err
	}, gk)

	if errors.Is(err, errGenerationMoved) || errors.Is(err, goredis.TxFailedErr) {
		return nil
	}
	return err
}

// Invalidate bumps the generation and drops the cached summary in one
// transaction.
func (c *CountsCache) Invalidate(ctx context.Context, ownerID string) error {
	gk := genKey(ownerID)
	_, err := c.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Incr(ctx, gk)
		p.Expire(ctx, gk, c.genTTL())
		p.Del(ctx, key(ownerID))
		return nil
	})
	return err
}

// Ping reports whether Redis is reachable.
func (c *CountsCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *CountsCache) Close() error {
	return c.rdb.Close()
}
