// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Cache tests require a reachable Valkey and are skipped otherwise.
// The pathToKey mapping is tested without any backend.
package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func testClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15, // test database
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		client.FlushDB(ctx)
		client.Close()
	})
	return client
}

func TestPageCacheRoundTrip(t *testing.T) {
	client := testClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	key := GalleryKey("weddings")
	html := []byte("<html>gallery</html>")

	if _, ok := pc.Get(ctx, key); ok {
		t.Fatal("expected miss before set")
	}

	pc.Set(ctx, key, html, "media", "weddings")

	got, ok := pc.Get(ctx, key)
	if !ok {
		t.Fatal("expected hit after set")
	}
	if string(got) != string(html) {
		t.Errorf("cached html: got %q, want %q", got, html)
	}
}

func TestPageCacheInvalidateTag(t *testing.T) {
	client := testClient(t)
	pc := NewPageCache(client, time.Minute)
	ctx := context.Background()

	pc.Set(ctx, GalleryKey("weddings"), []byte("a"), "media", "weddings")
	pc.Set(ctx, GalleryKey("portraits"), []byte("b"), "media", "portraits")
	pc.Set(ctx, HomepageKey, []byte("home"), "media")

	// Invalidating one category tag only drops its own page.
	pc.InvalidateTag(ctx, "weddings")
	if _, ok := pc.Get(ctx, GalleryKey("weddings")); ok {
		t.Error("weddings page should be invalidated")
	}
	if _, ok := pc.Get(ctx, GalleryKey("portraits")); !ok {
		t.Error("portraits page should survive")
	}

	// The media tag covers everything that renders media.
	pc.InvalidateTag(ctx, "media")
	if _, ok := pc.Get(ctx, GalleryKey("portraits")); ok {
		t.Error("portraits page should be invalidated by media tag")
	}
	if _, ok := pc.Get(ctx, HomepageKey); ok {
		t.Error("homepage should be invalidated by media tag")
	}
}

func TestNotifierInvalidate(t *testing.T) {
	client := testClient(t)
	pc := NewPageCache(client, time.Minute)
	n := NewNotifier(pc)
	ctx := context.Background()

	pc.Set(ctx, HomepageKey, []byte("home"))
	pc.Set(ctx, GalleryKey("travel"), []byte("travel"))

	n.Invalidate(ctx, nil, []string{"/", "/gallery/travel"})

	if _, ok := pc.Get(ctx, HomepageKey); ok {
		t.Error("homepage should be invalidated by path")
	}
	if _, ok := pc.Get(ctx, GalleryKey("travel")); ok {
		t.Error("gallery page should be invalidated by path")
	}
}

func TestPathToKey(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/", HomepageKey},
		{"", HomepageKey},
		{"/gallery/weddings", "gallery:weddings"},
		{"/about", "about"},
	}
	for _, tt := range tests {
		if got := pathToKey(tt.path); got != tt.want {
			t.Errorf("pathToKey(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
