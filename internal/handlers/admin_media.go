// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"aperture/internal/models"
	"aperture/internal/render"
)

const (
	// maxUploadSize is the maximum allowed size for a single file (200 MB,
	// videos included).
	maxUploadSize = 200 << 20

	// maxImagePixels caps decoded image dimensions to prevent memory bombs.
	// 10000x10000 = 100 million pixels, ~400 MB decoded in RGBA.
	maxImagePixels = 100_000_000
)

// allowedImageTypes defines image MIME types accepted for upload.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// allowedVideoTypes defines video MIME types accepted for upload.
var allowedVideoTypes = map[string]bool{
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// MediaLibrary renders the media library page, optionally filtered to a
// single category.
func (a *Admin) MediaLibrary(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	selected := r.URL.Query().Get("category")

	var images []models.Image
	var videos []models.Video
	for _, cat := range categories {
		if selected != "" && cat.ID.String() != selected {
			continue
		}
		imgs, err := a.imageStore.ListByCategory(cat.ID)
		if err != nil {
			slog.Error("list images failed", "error", err, "category", cat.ID)
			continue
		}
		images = append(images, imgs...)

		vids, err := a.videoStore.ListByCategory(cat.ID)
		if err != nil {
			slog.Error("list videos failed", "error", err, "category", cat.ID)
			continue
		}
		videos = append(videos, vids...)
	}

	a.renderer.Page(w, r, "media_library", &render.PageData{
		Title:   "Media Library",
		Section: "media",
		Data: map[string]any{
			"categories":       categories,
			"selectedCategory": selected,
			"images":           images,
			"videos":           videos,
		},
	})
}

// MediaUpload handles multipart upload of one or more files into a
// category. Images and videos are routed to their respective catalogs;
// each file is stored under the category's remote folder.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	if a.storageClient == nil {
		http.Error(w, "Object storage is not configured.", http.StatusServiceUnavailable)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "Upload too large.", http.StatusRequestEntityTooLarge)
		return
	}

	categoryID, err := uuid.Parse(r.FormValue("category_id"))
	if err != nil {
		http.Error(w, "Invalid category.", http.StatusBadRequest)
		return
	}
	cat, err := a.categoryStore.FindByID(categoryID)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.Error(w, "Category not found.", http.StatusNotFound)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		http.Error(w, "No files provided.", http.StatusBadRequest)
		return
	}

	for _, header := range files {
		if err := a.uploadOne(r, cat, header); err != nil {
			slog.Error("upload failed", "error", err, "filename", header.Filename)
			http.Error(w, fmt.Sprintf("Upload of %q failed.", header.Filename), http.StatusBadRequest)
			return
		}
	}

	http.Redirect(w, r, "/admin/media?category="+cat.ID.String(), http.StatusSeeOther)
}

// uploadOne stores a single file in S3 and records it in the catalog.
func (a *Admin) uploadOne(r *http.Request, cat *models.Category, header *multipart.FileHeader) error {
	if header.Size > maxUploadSize {
		return fmt.Errorf("file too large: %d bytes", header.Size)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	// Detect content type by sniffing the first 512 bytes.
	sniffBuf := make([]byte, 512)
	n, err := file.Read(sniffBuf)
	if err != nil && err != io.EOF {
		return fmt.Errorf("read upload: %w", err)
	}
	contentType := http.DetectContentType(sniffBuf[:n])

	isImage := allowedImageTypes[contentType]
	isVideo := allowedVideoTypes[contentType]
	if !isImage && !isVideo {
		return fmt.Errorf("file type %q is not allowed", contentType)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seek upload: %w", err)
	}

	// Generate the remote ID under the category's folder.
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extensionFromType(contentType)
	}
	remoteID := fmt.Sprintf("%s/%s%s", cat.FolderPath(), uuid.New().String(), ext)

	title := strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	if msg := validateMediaTitle(title); msg != "" {
		return fmt.Errorf("invalid title: %s", msg)
	}

	if isImage {
		return a.uploadImage(r, cat, file, header, contentType, remoteID, title)
	}
	return a.uploadVideo(r, cat, file, header, contentType, remoteID, title)
}

func (a *Admin) uploadImage(r *http.Request, cat *models.Category, file multipart.File, header *multipart.FileHeader, contentType, remoteID, title string) error {
	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}

	// Decode dimensions without a full decode, and guard against bombs.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(fileBytes))
	if err != nil {
		return fmt.Errorf("decode image config: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	ctx := r.Context()
	if err := a.storageClient.Upload(ctx, remoteID, contentType, bytes.NewReader(fileBytes), int64(len(fileBytes))); err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}

	size := int64(len(fileBytes))
	img := &models.Image{
		Title:      title,
		RemoteID:   remoteID,
		URL:        a.storageClient.FileURL(remoteID),
		Width:      &cfg.Width,
		Height:     &cfg.Height,
		Format:     &format,
		SizeBytes:  &size,
		CategoryID: cat.ID,
	}
	if _, err := a.imageStore.Create(img); err != nil {
		// Best-effort cleanup so a failed insert doesn't strand the object.
		if derr := a.storageClient.Delete(ctx, remoteID); derr != nil {
			slog.Warn("orphan cleanup after failed insert", "error", derr, "remote_id", remoteID)
		}
		return fmt.Errorf("insert image row: %w", err)
	}

	slog.Info("image uploaded", "remote_id", remoteID, "category", cat.Key)
	return nil
}

func (a *Admin) uploadVideo(r *http.Request, cat *models.Category, file multipart.File, header *multipart.FileHeader, contentType, remoteID, title string) error {
	ctx := r.Context()
	if err := a.storageClient.Upload(ctx, remoteID, contentType, file, header.Size); err != nil {
		return fmt.Errorf("upload to storage: %w", err)
	}

	size := header.Size
	format := strings.TrimPrefix(contentType, "video/")
	vid := &models.Video{
		Title:      title,
		RemoteID:   remoteID,
		URL:        a.storageClient.FileURL(remoteID),
		Format:     &format,
		SizeBytes:  &size,
		CategoryID: cat.ID,
	}
	if _, err := a.videoStore.Create(vid); err != nil {
		if derr := a.storageClient.Delete(ctx, remoteID); derr != nil {
			slog.Warn("orphan cleanup after failed insert", "error", derr, "remote_id", remoteID)
		}
		return fmt.Errorf("insert video row: %w", err)
	}

	slog.Info("video uploaded", "remote_id", remoteID, "category", cat.Key)
	return nil
}

// extensionFromType returns a file extension for known MIME types.
func extensionFromType(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "video/mp4":
		return ".mp4"
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ""
	}
}
