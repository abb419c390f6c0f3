// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile keeps the relational metadata store and the remote
// media host in agreement when images, videos, or whole categories are
// deleted. Remote deletion is attempted first and tolerated on failure;
// local rows are then removed unconditionally, so a flaky media host can
// never leave a gallery stuck in the admin UI. The cost is a possible
// remote orphan, which the sweep in this package cannot see (it only
// detects local rows whose remote object is gone).
package reconcile

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Kind distinguishes image rows from video rows.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// MaxBatchSize is the hard cap on bulk deletion requests. Larger batches
// fail validation before any side effect.
const MaxBatchSize = 50

// DefaultSweepLimit caps how many remote IDs the orphan sweep lists.
const DefaultSweepLimit = 500

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrNotFound      = errors.New("media not found")
	ErrEmptyBatch    = errors.New("no media ids supplied")
	ErrBatchTooLarge = fmt.Errorf("batch exceeds %d items", MaxBatchSize)
)

// Remote failure reasons recorded per item in bulk outcomes.
const (
	ReasonNoRemoteID   = "no-remote-id"
	ReasonRemoteFailed = "remote-delete-failed"
)

// MediaRef is the canonical internal shape for one deletion target.
// Handlers normalize both accepted request forms into this before the
// engine sees them.
type MediaRef struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title,omitempty"`
	RemoteID string    `json:"remote_id"`
}

// Subtree is one direct subcategory with its media, as loaded for a
// category deletion. Only one level of nesting is walked; deeper trees
// are out of contract.
type Subtree struct {
	ID     uuid.UUID
	Key    string
	Images []MediaRef
	Videos []MediaRef
}

// CategoryTree is a category plus everything a subtree deletion touches.
type CategoryTree struct {
	ID            uuid.UUID
	Key           string
	Images        []MediaRef
	Videos        []MediaRef
	Subcategories []Subtree
}

// MediaCount returns the total number of media rows in the tree.
func (t *CategoryTree) MediaCount() int {
	n := len(t.Images) + len(t.Videos)
	for _, sub := range t.Subcategories {
		n += len(sub.Images) + len(sub.Videos)
	}
	return n
}

// RemoteFailure records one media item whose remote deletion did not happen.
type RemoteFailure struct {
	ID       uuid.UUID `json:"id"`
	RemoteID string    `json:"remote_id,omitempty"`
	Reason   string    `json:"reason"`
}

// Outcome reports a single-media deletion.
type Outcome struct {
	ID            uuid.UUID `json:"id"`
	RemoteID      string    `json:"remote_id"`
	RemoteDeleted bool      `json:"remote_deleted"`
}

// BulkOutcome aggregates a bulk deletion. The local delete is one batch
// covering every resolved id, so LocalDeleted is all-or-nothing.
type BulkOutcome struct {
	Requested     int             `json:"requested"`
	Found         int             `json:"found"`
	LocalDeleted  int             `json:"local_deleted"`
	RemoteDeleted int             `json:"remote_deleted"`
	RemoteFailed  []RemoteFailure `json:"remote_failed,omitempty"`
}

// CategoryReport summarizes a category subtree deletion.
type CategoryReport struct {
	DeletedImages        int             `json:"deleted_images"`
	DeletedVideos        int             `json:"deleted_videos"`
	DeletedSubcategories int             `json:"deleted_subcategories"`
	RemoteDeleted        int             `json:"remote_deleted"`
	RemoteFailed         []RemoteFailure `json:"remote_failed,omitempty"`
	DeletedFolders       []string        `json:"deleted_folders"`
}

// OrphanReport lists local image rows whose remote object no longer
// exists, as found and removed by a sweep.
type OrphanReport struct {
	Orphaned     []MediaRef `json:"orphaned"`
	DeletedCount int        `json:"deleted_count"`
}
