// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"aperture/internal/reconcile"
)

// maxBulkBodySize caps bulk-delete request bodies. 50 entries of ids plus
// remote ids fit comfortably under this.
const maxBulkBodySize = 1 << 20

// bulkRequest is the wire shape for bulk deletions. Two forms are
// accepted: a bare id list, or full refs carrying the remote id. The
// id-list form is authoritative when both are present.
type bulkRequest struct {
	ImageIDs []uuid.UUID `json:"imageIds"`
	VideoIDs []uuid.UUID `json:"videoIds"`
	Images   []bulkRef   `json:"images"`
	Videos   []bulkRef   `json:"videos"`
}

type bulkRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	RemoteID string    `json:"remoteId"`
}

// DeleteImage removes one image from the media host and the catalog.
func (a *Admin) DeleteImage(w http.ResponseWriter, r *http.Request) {
	a.deleteOne(w, r, reconcile.KindImage)
}

// DeleteVideo removes one video from the media host and the catalog.
func (a *Admin) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	a.deleteOne(w, r, reconcile.KindVideo)
}

func (a *Admin) deleteOne(w http.ResponseWriter, r *http.Request, kind reconcile.Kind) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, "invalid id", http.StatusBadRequest)
		return
	}

	outcome, err := a.engine.DeleteOne(r.Context(), kind, id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// BulkDeleteImages removes up to 50 images in one request.
func (a *Admin) BulkDeleteImages(w http.ResponseWriter, r *http.Request) {
	a.bulkDelete(w, r, reconcile.KindImage)
}

// BulkDeleteVideos removes up to 50 videos in one request.
func (a *Admin) BulkDeleteVideos(w http.ResponseWriter, r *http.Request) {
	a.bulkDelete(w, r, reconcile.KindVideo)
}

func (a *Admin) bulkDelete(w http.ResponseWriter, r *http.Request, kind reconcile.Kind) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBulkBodySize)

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ids, refs := normalizeBulk(kind, &req)

	var outcome *reconcile.BulkOutcome
	var err error
	switch {
	case len(ids) > 0:
		outcome, err = a.engine.BulkDeleteIDs(r.Context(), kind, ids)
	case len(refs) > 0:
		outcome, err = a.engine.BulkDeleteRefs(r.Context(), kind, refs)
	default:
		writeJSONError(w, reconcile.ErrEmptyBatch.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, outcome)
}

// normalizeBulk extracts the deletion targets matching the requested kind.
// The id-list form wins when both are supplied.
func normalizeBulk(kind reconcile.Kind, req *bulkRequest) ([]uuid.UUID, []reconcile.MediaRef) {
	var ids []uuid.UUID
	var raw []bulkRef
	if kind == reconcile.KindImage {
		ids, raw = req.ImageIDs, req.Images
	} else {
		ids, raw = req.VideoIDs, req.Videos
	}

	if len(ids) > 0 {
		return ids, nil
	}

	refs := make([]reconcile.MediaRef, 0, len(raw))
	for _, r := range raw {
		refs = append(refs, reconcile.MediaRef{ID: r.ID, Title: r.Title, RemoteID: r.RemoteID})
	}
	return nil, refs
}

// DeleteCategory removes a category, its direct subcategories, and all
// their media, then cleans up the remote folders.
func (a *Admin) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, "invalid id", http.StatusBadRequest)
		return
	}

	report, err := a.engine.DeleteCategory(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	slog.Info("category deleted",
		"id", id,
		"images", report.DeletedImages,
		"videos", report.DeletedVideos,
		"subcategories", report.DeletedSubcategories,
	)
	writeJSON(w, http.StatusOK, report)
}

// OrphanSweep reconciles the image catalog against the media host and
// removes rows whose remote object is gone.
func (a *Admin) OrphanSweep(w http.ResponseWriter, r *http.Request) {
	report, err := a.engine.OrphanSweep(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	slog.Info("orphan sweep finished", "deleted", report.DeletedCount)
	writeJSON(w, http.StatusOK, report)
}

// writeEngineError maps engine sentinel errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reconcile.ErrNotFound):
		writeJSONError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, reconcile.ErrEmptyBatch), errors.Is(err, reconcile.ErrBatchTooLarge):
		writeJSONError(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("deletion failed", "error", err)
		writeJSONError(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeJSONError writes a JSON error body.
func writeJSONError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
