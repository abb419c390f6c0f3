// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"aperture/internal/cache"
	"aperture/internal/middleware"
	"aperture/internal/models"
	"aperture/internal/render"
	"aperture/internal/store"
)

// Public groups the public-facing portfolio handlers.
type Public struct {
	renderer      *render.Renderer
	categoryStore *store.CategoryStore
	imageStore    *store.ImageStore
	videoStore    *store.VideoStore
	pageCache     *cache.PageCache
	siteTitle     string
}

// NewPublic creates the public handler group. pageCache may be nil; pages
// are then rendered on every request.
func NewPublic(renderer *render.Renderer, categoryStore *store.CategoryStore, imageStore *store.ImageStore, videoStore *store.VideoStore, pageCache *cache.PageCache, siteTitle string) *Public {
	return &Public{
		renderer:      renderer,
		categoryStore: categoryStore,
		imageStore:    imageStore,
		videoStore:    videoStore,
		pageCache:     pageCache,
		siteTitle:     siteTitle,
	}
}

// Home renders the portfolio homepage listing public top-level categories.
// Logged-in visitors also see private categories; those renders bypass
// the cache so the anonymous variant is the only one stored.
func (p *Public) Home(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	cacheable := sess == nil && p.pageCache != nil

	if cacheable {
		if html, ok := p.pageCache.Get(r.Context(), cache.HomepageKey); ok {
			writeHTML(w, html)
			return
		}
	}

	categories, err := p.categoryStore.ListTopLevel(sess == nil)
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	html, err := p.renderer.Public("home", map[string]any{
		"siteTitle":  p.siteTitle,
		"categories": categories,
	})
	if err != nil {
		slog.Error("render homepage failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable {
		p.pageCache.Set(r.Context(), cache.HomepageKey, html, "media")
	}
	writeHTML(w, html)
}

// Gallery renders one category's gallery page. Private categories return
// 404 to anonymous visitors so their existence is not revealed.
func (p *Public) Gallery(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	sess := middleware.SessionFromCtx(r.Context())

	cat, err := p.categoryStore.FindByKey(key)
	if err != nil {
		slog.Error("find category failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil || (cat.IsPrivate && sess == nil) {
		http.NotFound(w, r)
		return
	}

	cacheable := sess == nil && p.pageCache != nil

	if cacheable {
		if html, ok := p.pageCache.Get(r.Context(), cache.GalleryKey(key)); ok {
			writeHTML(w, html)
			return
		}
	}

	images, err := p.imageStore.ListByCategory(cat.ID)
	if err != nil {
		slog.Error("list images failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	videos, err := p.videoStore.ListByCategory(cat.ID)
	if err != nil {
		slog.Error("list videos failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	// Subcategory media rolls up into the parent gallery.
	subs, err := p.categoryStore.Subcategories(cat.ID)
	if err != nil {
		slog.Error("list subcategories failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	for _, sub := range subs {
		if sub.IsPrivate && sess == nil {
			continue
		}
		subImages, err := p.imageStore.ListByCategory(sub.ID)
		if err == nil {
			images = append(images, subImages...)
		}
		subVideos, err := p.videoStore.ListByCategory(sub.ID)
		if err == nil {
			videos = append(videos, subVideos...)
		}
	}

	html, err := p.renderer.Public("gallery", map[string]any{
		"siteTitle": p.siteTitle,
		"category":  cat,
		"images":    toImagePtrs(images),
		"videos":    toVideoPtrs(videos),
	})
	if err != nil {
		slog.Error("render gallery failed", "error", err, "key", key)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable {
		p.pageCache.Set(r.Context(), cache.GalleryKey(key), html, "media", key)
	}
	writeHTML(w, html)
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func toImagePtrs(images []models.Image) []*models.Image {
	out := make([]*models.Image, len(images))
	for i := range images {
		out[i] = &images[i]
	}
	return out
}

func toVideoPtrs(videos []models.Video) []*models.Video {
	out := make([]*models.Video, len(videos))
	for i := range videos {
		out[i] = &videos[i]
	}
	return out
}
