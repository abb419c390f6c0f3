// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Image represents a photograph whose binary lives in object storage.
// RemoteID correlates the row to its object in the media host; it is
// expected, but not guaranteed, to point at a live object.
type Image struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	RemoteID    string    `json:"remote_id"`
	URL         string    `json:"url"`
	Width       *int      `json:"width,omitempty"`
	Height      *int      `json:"height,omitempty"`
	Format      *string   `json:"format,omitempty"`
	SizeBytes   *int64    `json:"size_bytes,omitempty"`
	SortOrder   int       `json:"sort_order"`
	CategoryID  uuid.UUID `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HumanSize returns a human-readable file size string, or "" if unknown.
func (i *Image) HumanSize() string {
	if i.SizeBytes == nil {
		return ""
	}
	return humanSize(*i.SizeBytes)
}

// humanSize formats a byte count for display.
func humanSize(n int64) string {
	const (
		kb = 1024
		mb = 1024 * kb
	)
	switch {
	case n >= mb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(mb))
	case n >= kb:
		return fmt.Sprintf("%.0f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
