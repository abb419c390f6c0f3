// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"aperture/internal/models"
)

// ImageStore handles all image-related database operations.
type ImageStore struct {
	db *sql.DB
}

// NewImageStore creates a new ImageStore with the given database connection.
func NewImageStore(db *sql.DB) *ImageStore {
	return &ImageStore{db: db}
}

const imageColumns = `id, title, description, remote_id, url, width, height,
	format, size_bytes, sort_order, category_id, created_at, updated_at`

// scanImage scans an image row from the result set.
func scanImage(scanner interface{ Scan(...any) error }) (*models.Image, error) {
	var i models.Image
	err := scanner.Scan(
		&i.ID, &i.Title, &i.Description, &i.RemoteID, &i.URL, &i.Width, &i.Height,
		&i.Format, &i.SizeBytes, &i.SortOrder, &i.CategoryID, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts a new image record and returns it with the generated ID.
func (s *ImageStore) Create(i *models.Image) (*models.Image, error) {
	row := s.db.QueryRow(`
		INSERT INTO images (title, description, remote_id, url, width, height,
			format, size_bytes, sort_order, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+imageColumns,
		i.Title, i.Description, i.RemoteID, i.URL, i.Width, i.Height,
		i.Format, i.SizeBytes, i.SortOrder, i.CategoryID,
	)
	created, err := scanImage(row)
	if err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}
	return created, nil
}

// FindByID retrieves a single image by its UUID. Returns nil if not found.
func (s *ImageStore) FindByID(id uuid.UUID) (*models.Image, error) {
	row := s.db.QueryRow(`SELECT `+imageColumns+` FROM images WHERE id = $1`, id)
	i, err := scanImage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find image by id: %w", err)
	}
	return i, nil
}

// ListByCategory returns a category's images in display order.
func (s *ImageStore) ListByCategory(categoryID uuid.UUID) ([]models.Image, error) {
	rows, err := s.db.Query(`
		SELECT `+imageColumns+` FROM images
		WHERE category_id = $1 ORDER BY sort_order, created_at`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	defer rows.Close()

	var items []models.Image
	for rows.Next() {
		i, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
		items = append(items, *i)
	}
	return items, rows.Err()
}

// Update modifies an image's editable metadata.
func (s *ImageStore) Update(i *models.Image) error {
	_, err := s.db.Exec(`
		UPDATE images SET title = $1, description = $2, sort_order = $3, updated_at = NOW()
		WHERE id = $4
	`, i.Title, i.Description, i.SortOrder, i.ID)
	if err != nil {
		return fmt.Errorf("update image: %w", err)
	}
	return nil
}

// Count returns the total number of images.
func (s *ImageStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM images`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count images: %w", err)
	}
	return count, nil
}

// idPlaceholders builds "$1, $2, ..., $n" for IN clauses.
func idPlaceholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}

// idArgs converts UUIDs to the any slice database/sql expects.
func idArgs(ids []uuid.UUID) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
