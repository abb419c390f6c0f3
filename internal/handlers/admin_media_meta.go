// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// mediaMetaRequest is the wire shape for metadata updates. Absent fields
// leave the stored value unchanged.
type mediaMetaRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	SortOrder   *int    `json:"sortOrder"`
}

// UpdateImage edits an image's title, description, or sort order.
func (a *Admin) UpdateImage(w http.ResponseWriter, r *http.Request) {
	id, req, ok := decodeMetaRequest(w, r)
	if !ok {
		return
	}

	img, err := a.imageStore.FindByID(id)
	if err != nil {
		slog.Error("find image failed", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if img == nil {
		writeJSONError(w, "image not found", http.StatusNotFound)
		return
	}

	if req.Title != nil {
		if msg := validateMediaTitle(*req.Title); msg != "" {
			writeJSONError(w, msg, http.StatusBadRequest)
			return
		}
		img.Title = *req.Title
	}
	if req.Description != nil {
		if msg := validateDescription(*req.Description); msg != "" {
			writeJSONError(w, msg, http.StatusBadRequest)
			return
		}
		img.Description = req.Description
	}
	if req.SortOrder != nil {
		img.SortOrder = *req.SortOrder
	}

	if err := a.imageStore.Update(img); err != nil {
		slog.Error("update image failed", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

// UpdateVideo edits a video's title, description, or sort order.
func (a *Admin) UpdateVideo(w http.ResponseWriter, r *http.Request) {
	id, req, ok := decodeMetaRequest(w, r)
	if !ok {
		return
	}

	vid, err := a.videoStore.FindByID(id)
	if err != nil {
		slog.Error("find video failed", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if vid == nil {
		writeJSONError(w, "video not found", http.StatusNotFound)
		return
	}

	if req.Title != nil {
		if msg := validateMediaTitle(*req.Title); msg != "" {
			writeJSONError(w, msg, http.StatusBadRequest)
			return
		}
		vid.Title = *req.Title
	}
	if req.Description != nil {
		if msg := validateDescription(*req.Description); msg != "" {
			writeJSONError(w, msg, http.StatusBadRequest)
			return
		}
		vid.Description = req.Description
	}
	if req.SortOrder != nil {
		vid.SortOrder = *req.SortOrder
	}

	if err := a.videoStore.Update(vid); err != nil {
		slog.Error("update video failed", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, vid)
}

// decodeMetaRequest parses the route id and the request body, writing the
// error response itself on failure.
func decodeMetaRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, *mediaMetaRequest, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, nil, false
	}

	var req mediaMetaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return uuid.Nil, nil, false
	}
	return id, &req, true
}
