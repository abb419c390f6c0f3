// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"aperture/internal/models"
)

// VideoStore handles all video-related database operations.
type VideoStore struct {
	db *sql.DB
}

// NewVideoStore creates a new VideoStore with the given database connection.
func NewVideoStore(db *sql.DB) *VideoStore {
	return &VideoStore{db: db}
}

const videoColumns = `id, title, description, remote_id, url, width, height,
	format, size_bytes, duration, thumbnail_url, bitrate, frame_rate,
	sort_order, category_id, created_at, updated_at`

// scanVideo scans a video row from the result set.
func scanVideo(scanner interface{ Scan(...any) error }) (*models.Video, error) {
	var v models.Video
	err := scanner.Scan(
		&v.ID, &v.Title, &v.Description, &v.RemoteID, &v.URL, &v.Width, &v.Height,
		&v.Format, &v.SizeBytes, &v.Duration, &v.ThumbnailURL, &v.Bitrate, &v.FrameRate,
		&v.SortOrder, &v.CategoryID, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a new video record and returns it with the generated ID.
func (s *VideoStore) Create(v *models.Video) (*models.Video, error) {
	row := s.db.QueryRow(`
		INSERT INTO videos (title, description, remote_id, url, width, height,
			format, size_bytes, duration, thumbnail_url, bitrate, frame_rate,
			sort_order, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+videoColumns,
		v.Title, v.Description, v.RemoteID, v.URL, v.Width, v.Height,
		v.Format, v.SizeBytes, v.Duration, v.ThumbnailURL, v.Bitrate, v.FrameRate,
		v.SortOrder, v.CategoryID,
	)
	created, err := scanVideo(row)
	if err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single video by its UUID. Returns nil if not found.
func (s *VideoStore) FindByID(id uuid.UUID) (*models.Video, error) {
	row := s.db.QueryRow(`SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	v, err := scanVideo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return v, nil
}

// ListByCategory returns a category's videos in display order.
func (s *VideoStore) ListByCategory(categoryID uuid.UUID) ([]models.Video, error) {
	rows, err := s.db.Query(`
		SELECT `+videoColumns+` FROM videos
		WHERE category_id = $1 ORDER BY sort_order, created_at`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var items []models.Video
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		items = append(items, *v)
	}
	return items, rows.Err()
}

// Update modifies a video's editable metadata.
func (s *VideoStore) Update(v *models.Video) error {
	_, err := s.db.Exec(`
		UPDATE videos SET title = $1, description = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $4
	`, v.Title, v.Description, v.SortOrder, v.ID)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}
	return nil
}

// Count returns the total number of videos.
func (s *VideoStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM videos`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	return count, nil
}
