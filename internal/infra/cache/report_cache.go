package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

const reportKeyPrefix = "report:"

// ReportCache stores rendered report payloads in Redis. A nil client turns
// every call into a miss or a no-op.
type ReportCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewReportCache(rdb *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{rdb: rdb, ttl: ttl}
}

func (c *ReportCache) Get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, reportKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("report cache get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		slog.Warn("report cache entry unreadable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *ReportCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("report cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, reportKeyPrefix+key, data, c.ttl).Err(); err != nil {
		slog.Warn("report cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached report.
func (c *ReportCache) Invalidate(ctx context.Context) {
	if c == nil || c.rdb == nil {
		return
	}
	iter := c.rdb.Scan(ctx, 0, reportKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("report cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("report cache invalidate failed", "error", err)
	}
}
