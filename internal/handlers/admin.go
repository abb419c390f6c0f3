// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the Aperture portfolio
// site. Handlers are grouped by concern (admin, public, auth) and receive
// their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"aperture/internal/reconcile"
	"aperture/internal/render"
	"aperture/internal/session"
	"aperture/internal/storage"
	"aperture/internal/store"
)

// Admin groups all admin panel HTTP handlers and their dependencies.
type Admin struct {
	renderer      *render.Renderer
	sessions      *session.Store
	categoryStore *store.CategoryStore
	imageStore    *store.ImageStore
	videoStore    *store.VideoStore
	storageClient *storage.Client
	engine        *reconcile.Engine
}

// NewAdmin creates a new Admin handler group with the given dependencies.
// storageClient may be nil if S3 is not configured; uploads are then rejected.
func NewAdmin(renderer *render.Renderer, sessions *session.Store, categoryStore *store.CategoryStore, imageStore *store.ImageStore, videoStore *store.VideoStore, storageClient *storage.Client, engine *reconcile.Engine) *Admin {
	return &Admin{
		renderer:      renderer,
		sessions:      sessions,
		categoryStore: categoryStore,
		imageStore:    imageStore,
		videoStore:    videoStore,
		storageClient: storageClient,
		engine:        engine,
	}
}

// Dashboard renders the admin dashboard page with catalog counts.
func (a *Admin) Dashboard(w http.ResponseWriter, r *http.Request) {
	categoryCount, err := a.categoryStore.Count()
	if err != nil {
		slog.Error("dashboard category count failed", "error", err)
	}
	imageCount, err := a.imageStore.Count()
	if err != nil {
		slog.Error("dashboard image count failed", "error", err)
	}
	videoCount, err := a.videoStore.Count()
	if err != nil {
		slog.Error("dashboard video count failed", "error", err)
	}

	a.renderer.Page(w, r, "dashboard", &render.PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data: map[string]any{
			"categoryCount": categoryCount,
			"imageCount":    imageCount,
			"videoCount":    videoCount,
		},
	})
}

// MaintenancePage renders the maintenance page with the orphan sweep control.
func (a *Admin) MaintenancePage(w http.ResponseWriter, r *http.Request) {
	a.renderer.Page(w, r, "orphans", &render.PageData{
		Title:   "Maintenance",
		Section: "maintenance",
		Data:    map[string]any{},
	})
}
