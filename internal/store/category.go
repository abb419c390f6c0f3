// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"aperture/internal/models"
)

// ErrKeyConflict is returned when an insert or update collides with the
// unique constraint on categories.key. The constraint, not the pre-check
// in the handler, is the authoritative conflict signal.
var ErrKeyConflict = errors.New("category key already exists")

// CategoryStore manages gallery categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, key, name, description, is_private, parent_id, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Key, &c.Name, &c.Description,
		&c.IsPrivate, &c.ParentID, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all categories ordered by sort_order, with media counts.
func (s *CategoryStore) List() ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.key, c.name, c.description, c.is_private, c.parent_id,
		       c.sort_order, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM images i WHERE i.category_id = c.id) AS image_count,
		       (SELECT COUNT(*) FROM videos v WHERE v.category_id = c.id) AS video_count
		FROM categories c
		ORDER BY c.sort_order, c.name
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		var c models.Category
		err := rows.Scan(
			&c.ID, &c.Key, &c.Name, &c.Description, &c.IsPrivate, &c.ParentID,
			&c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
			&c.ImageCount, &c.VideoCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// ListTopLevel returns top-level categories, with their subcategories
// attached as Children. Used by the public homepage and the admin list.
// onlyPublic filters out private categories at both levels.
func (s *CategoryStore) ListTopLevel(onlyPublic bool) ([]models.Category, error) {
	flat, err := s.List()
	if err != nil {
		return nil, err
	}

	var top []models.Category
	for _, c := range flat {
		if c.ParentID != nil {
			continue
		}
		if onlyPublic && c.IsPrivate {
			continue
		}
		for _, child := range flat {
			if child.ParentID != nil && *child.ParentID == c.ID {
				if onlyPublic && child.IsPrivate {
					continue
				}
				c.Children = append(c.Children, child)
			}
		}
		top = append(top, c)
	}
	return top, nil
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindByKey retrieves a category by its URL key. Returns nil if not found.
func (s *CategoryStore) FindByKey(key string) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE key = $1`, key)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by key: %w", err)
	}
	return c, nil
}

// Subcategories returns the direct children of a category.
func (s *CategoryStore) Subcategories(parentID uuid.UUID) ([]models.Category, error) {
	rows, err := s.db.Query(`
		SELECT `+categoryColumns+` FROM categories
		WHERE parent_id = $1 ORDER BY sort_order, name`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list subcategories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// KeyExists reports whether a category key is already taken.
func (s *CategoryStore) KeyExists(key string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM categories WHERE key = $1)`, key).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category key: %w", err)
	}
	return exists, nil
}

// Create inserts a new category and returns it. A collision on the key
// unique constraint is reported as ErrKeyConflict.
func (s *CategoryStore) Create(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (key, name, description, is_private, parent_id, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Key, c.Name, c.Description, c.IsPrivate, c.ParentID, c.SortOrder,
	)
	result, err := scanCategory(row)
	if isUniqueViolation(err) {
		return nil, ErrKeyConflict
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return result, nil
}

// Update modifies an existing category.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, description = $2, is_private = $3, parent_id = $4,
			sort_order = $5, updated_at = NOW()
		WHERE id = $6
	`, c.Name, c.Description, c.IsPrivate, c.ParentID, c.SortOrder, c.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

// NextSortOrder returns the next sort_order value for a given parent.
func (s *CategoryStore) NextSortOrder(parentID *uuid.UUID) (int, error) {
	var maxOrder sql.NullInt64
	var err error
	if parentID == nil {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id IS NULL`).Scan(&maxOrder)
	} else {
		err = s.db.QueryRow(`SELECT MAX(sort_order) FROM categories WHERE parent_id = $1`, *parentID).Scan(&maxOrder)
	}
	if err != nil {
		return 0, err
	}
	if maxOrder.Valid {
		return int(maxOrder.Int64) + 1, nil
	}
	return 0, nil
}

// Count returns the total number of categories.
func (s *CategoryStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return count, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
