// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache. Rendered public
// gallery pages are stored in Valkey so repeat visits skip the DB queries
// and template execution entirely. Every cached page is tagged with the
// category keys it depends on, so a deletion can invalidate exactly the
// affected pages.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// tagKeyPrefix is the Valkey key prefix for tag membership sets.
	tagKeyPrefix = "tag:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// HomepageKey is the cache key for the public homepage.
const HomepageKey = "_homepage"

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// Get retrieves cached HTML for a page key. Returns false on miss.
func (pc *PageCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := pc.client.Get(ctx, pageKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a page key with the configured TTL and
// records the page under each tag for later invalidation.
func (pc *PageCache) Set(ctx context.Context, key string, html []byte, tags ...string) {
	if err := pc.client.Set(ctx, pageKeyPrefix+key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
		return
	}
	for _, tag := range tags {
		if err := pc.client.SAdd(ctx, tagKeyPrefix+tag, key).Err(); err != nil {
			slog.Warn("page cache tag error", "key", key, "tag", tag, "error", err)
		}
	}
}

// InvalidatePage removes a single page from the cache by its key.
func (pc *PageCache) InvalidatePage(ctx context.Context, key string) {
	if err := pc.client.Del(ctx, pageKeyPrefix+key).Err(); err != nil {
		slog.Warn("page cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("page cache invalidated", "key", key)
}

// InvalidateTag removes every page recorded under a tag, then drops the
// tag set itself.
func (pc *PageCache) InvalidateTag(ctx context.Context, tag string) {
	members, err := pc.client.SMembers(ctx, tagKeyPrefix+tag).Result()
	if err != nil {
		slog.Warn("page cache tag lookup error", "tag", tag, "error", err)
		return
	}
	for _, key := range members {
		pc.InvalidatePage(ctx, key)
	}
	if err := pc.client.Del(ctx, tagKeyPrefix+tag).Err(); err != nil {
		slog.Warn("page cache tag delete error", "tag", tag, "error", err)
	}
}

// GalleryKey returns the cache key for a category's gallery page.
func GalleryKey(categoryKey string) string {
	return "gallery:" + categoryKey
}
