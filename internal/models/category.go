// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a gallery of images and videos. Categories form a
// two-level tree: top-level categories may have subcategories, but
// subcategories have no children of their own.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Key         string     `json:"key"` // URL-safe, globally unique
	Name        string     `json:"name"`
	Description *string    `json:"description,omitempty"`
	IsPrivate   bool       `json:"is_private"`
	ParentID    *uuid.UUID `json:"parent_id"`
	SortOrder   int        `json:"sort_order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Virtual fields populated by store methods.
	Children   []Category `json:"children,omitempty"`
	ImageCount int        `json:"image_count"`
	VideoCount int        `json:"video_count"`
}

// IsTopLevel returns true if the category has no parent.
func (c *Category) IsTopLevel() bool {
	return c.ParentID == nil
}

// FolderPath returns the object-storage folder holding this category's media.
func (c *Category) FolderPath() string {
	return "portfolio/" + c.Key
}
