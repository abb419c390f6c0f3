// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"log/slog"
	"strings"
)

// Notifier invalidates cached pages after a successful mutation. It is
// strictly fire-and-forget: a cache failure never reaches the caller of
// a delete operation, the worst case is a stale page until TTL expiry.
type Notifier struct {
	pages *PageCache
}

// NewNotifier creates a Notifier over the given page cache.
func NewNotifier(pages *PageCache) *Notifier {
	return &Notifier{pages: pages}
}

// Invalidate drops cached pages by tag and by path. The "media" tag
// covers every page that renders media; category-key tags cover the
// matching gallery pages.
func (n *Notifier) Invalidate(ctx context.Context, tags []string, paths []string) {
	for _, tag := range tags {
		n.pages.InvalidateTag(ctx, tag)
	}
	for _, path := range paths {
		n.pages.InvalidatePage(ctx, pathToKey(path))
	}
	slog.Debug("cache invalidated", "tags", tags, "paths", paths)
}

// pathToKey maps a public URL path to its page cache key.
func pathToKey(path string) string {
	if path == "/" || path == "" {
		return HomepageKey
	}
	if key, ok := strings.CutPrefix(path, "/gallery/"); ok {
		return GalleryKey(key)
	}
	return strings.TrimPrefix(path, "/")
}
