// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Video represents a hosted video clip. Like Image, the binary lives in
// the media host and RemoteID is the correlation key.
type Video struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Description  *string   `json:"description,omitempty"`
	RemoteID     string    `json:"remote_id"`
	URL          string    `json:"url"`
	Width        *int      `json:"width,omitempty"`
	Height       *int      `json:"height,omitempty"`
	Format       *string   `json:"format,omitempty"`
	SizeBytes    *int64    `json:"size_bytes,omitempty"`
	Duration     *float64  `json:"duration,omitempty"` // seconds
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	Bitrate      *int      `json:"bitrate,omitempty"`
	FrameRate    *float64  `json:"frame_rate,omitempty"`
	SortOrder    int       `json:"sort_order"`
	CategoryID   uuid.UUID `json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HumanSize returns a human-readable file size string, or "" if unknown.
func (v *Video) HumanSize() string {
	if v.SizeBytes == nil {
		return ""
	}
	return humanSize(*v.SizeBytes)
}
