// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// similar.go caches the ranked "similar posts" id list per post in Valkey
// so the detail page skips the tag-overlap query on repeat views.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// similarKeyPrefix is the Valkey key prefix for cached rankings.
	similarKeyPrefix = "similar:"

	// DefaultSimilarTTL bounds staleness if an invalidation is missed.
	DefaultSimilarTTL = 10 * time.Minute
)

// SimilarCache stores ranked post id lists in Valkey. Failures are logged
// and treated as misses so the caller falls back to the database.
type SimilarCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSimilarCache creates a cache backed by the given Valkey client.
func NewSimilarCache(client *redis.Client, ttl time.Duration) *SimilarCache {
	if ttl == 0 {
		ttl = DefaultSimilarTTL
	}
	return &SimilarCache{client: client, ttl: ttl}
}

func similarKey(postID uuid.UUID) string {
	return similarKeyPrefix + postID.String()
}

// Get returns the cached ranking for postID.
func (c *SimilarCache) Get(ctx context.Context, postID uuid.UUID) ([]uuid.UUID, bool) {
	val, err := c.client.Get(ctx, similarKey(postID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("similar cache get error", "post_id", postID, "error", err)
		return nil, false
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(val, &ids); err != nil {
		slog.Warn("similar cache decode error", "post_id", postID, "error", err)
		return nil, false
	}
	slog.Debug("similar cache hit", "post_id", postID)
	return ids, true
}

// Set stores the ranking for postID with the configured TTL. An empty
// ranking is cached too.
func (c *SimilarCache) Set(ctx context.Context, postID uuid.UUID, ids []uuid.UUID) {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		slog.Warn("similar cache encode error", "post_id", postID, "error", err)
		return
	}
	if err := c.client.Set(ctx, similarKey(postID), data, c.ttl).Err(); err != nil {
		slog.Warn("similar cache set error", "post_id", postID, "error", err)
	}
}

// InvalidateAll removes every cached ranking by scanning for the prefix.
// Used on any post or tag change, since any ranking could be affected.
func (c *SimilarCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, similarKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("similar cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("similar cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("similar cache cleared", "deleted", deleted)
	}
}
