// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Catalog is the slice of the metadata store the engine needs. The
// concrete implementation lives in internal/store; tests use an
// in-memory fake.
type Catalog interface {
	// MediaRefs resolves ids to {id, title, remoteID} refs. Unknown ids
	// are silently dropped from the result.
	MediaRefs(ctx context.Context, kind Kind, ids []uuid.UUID) ([]MediaRef, error)

	// DeleteMediaRows removes the given rows in one batch and returns
	// how many were deleted.
	DeleteMediaRows(ctx context.Context, kind Kind, ids []uuid.UUID) (int, error)

	// CategoryTree loads a category with its own media and its direct
	// subcategories' media. Returns nil if the category does not exist.
	CategoryTree(ctx context.Context, id uuid.UUID) (*CategoryTree, error)

	// DeleteCategoryTree removes every row in the tree inside a single
	// transaction, in dependency order.
	DeleteCategoryTree(ctx context.Context, tree *CategoryTree) error

	// AllImageRefs returns every image row's ref, for the orphan sweep.
	AllImageRefs(ctx context.Context) ([]MediaRef, error)
}

// Host is the remote media store. All delete operations are treated as
// idempotent; a failure on one item never blocks its siblings.
type Host interface {
	Delete(ctx context.Context, remoteID string) error
	DeleteFolder(ctx context.Context, path string) error
	ListRemoteIDs(ctx context.Context, prefix string, max int) ([]string, error)
}

// Notifier invalidates cached pages after a successful mutation.
// Implementations must be fire-and-forget: failures are logged, never
// returned.
type Notifier interface {
	Invalidate(ctx context.Context, tags []string, paths []string)
}

// Engine coordinates deletions across the catalog and the media host.
type Engine struct {
	catalog    Catalog
	host       Host
	notifier   Notifier
	prefix     string // remote storage prefix, e.g. "portfolio/"
	sweepLimit int
}

// New creates an Engine. prefix scopes the orphan sweep's remote listing.
func New(catalog Catalog, host Host, notifier Notifier, prefix string) *Engine {
	return &Engine{
		catalog:    catalog,
		host:       host,
		notifier:   notifier,
		prefix:     prefix,
		sweepLimit: DefaultSweepLimit,
	}
}

// DeleteOne removes a single image or video. The remote delete is
// attempted exactly once; its failure is reported in the outcome but does
// not abort the local delete.
func (e *Engine) DeleteOne(ctx context.Context, kind Kind, id uuid.UUID) (*Outcome, error) {
	refs, err := e.catalog.MediaRefs(ctx, kind, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", kind, id, err)
	}
	if len(refs) == 0 {
		return nil, ErrNotFound
	}
	ref := refs[0]

	outcome := &Outcome{ID: ref.ID, RemoteID: ref.RemoteID}
	if ref.RemoteID != "" {
		if err := e.host.Delete(ctx, ref.RemoteID); err != nil {
			slog.Warn("remote delete failed, removing local row anyway",
				"kind", kind, "id", ref.ID, "remote_id", ref.RemoteID, "error", err)
		} else {
			outcome.RemoteDeleted = true
		}
	}

	if _, err := e.catalog.DeleteMediaRows(ctx, kind, []uuid.UUID{ref.ID}); err != nil {
		return nil, fmt.Errorf("delete %s row %s: %w", kind, ref.ID, err)
	}

	e.notifier.Invalidate(ctx, []string{"media"}, nil)
	return outcome, nil
}

// BulkDeleteIDs removes up to MaxBatchSize media rows given ids only.
// The ids are resolved to refs first; if none resolve, nothing is deleted.
func (e *Engine) BulkDeleteIDs(ctx context.Context, kind Kind, ids []uuid.UUID) (*BulkOutcome, error) {
	ids = dedupeIDs(ids)
	if err := validateBatch(len(ids)); err != nil {
		return nil, err
	}

	refs, err := e.catalog.MediaRefs(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve %s batch: %w", kind, err)
	}
	if len(refs) == 0 {
		return nil, ErrNotFound
	}

	return e.bulkDelete(ctx, kind, len(ids), refs)
}

// BulkDeleteRefs removes media rows given caller-supplied {id, remoteID}
// pairs, skipping the resolution step.
func (e *Engine) BulkDeleteRefs(ctx context.Context, kind Kind, refs []MediaRef) (*BulkOutcome, error) {
	refs = dedupeRefs(refs)
	if err := validateBatch(len(refs)); err != nil {
		return nil, err
	}
	return e.bulkDelete(ctx, kind, len(refs), refs)
}

// bulkDelete fans out remote deletions, waits for every attempt to
// settle, then removes all resolved rows in one local batch regardless of
// individual remote outcomes.
func (e *Engine) bulkDelete(ctx context.Context, kind Kind, requested int, refs []MediaRef) (*BulkOutcome, error) {
	remoteOK, failures := e.deleteRemotes(ctx, refs)

	ids := make([]uuid.UUID, len(refs))
	for i, ref := range refs {
		ids[i] = ref.ID
	}
	deleted, err := e.catalog.DeleteMediaRows(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("delete %s rows: %w", kind, err)
	}

	e.notifier.Invalidate(ctx, []string{"media"}, nil)
	return &BulkOutcome{
		Requested:     requested,
		Found:         len(refs),
		LocalDeleted:  deleted,
		RemoteDeleted: remoteOK,
		RemoteFailed:  failures,
	}, nil
}

// DeleteCategory removes a category, its direct subcategories, and all
// their media. Remote deletions are attempted first (settle-all); the
// local delete then runs in a single transaction. If that transaction
// fails, the already-attempted remote deletions are not compensated —
// an accepted inconsistency window, since a remote orphan only costs
// storage while a local orphan breaks public rendering.
func (e *Engine) DeleteCategory(ctx context.Context, id uuid.UUID) (*CategoryReport, error) {
	tree, err := e.catalog.CategoryTree(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load category %s: %w", id, err)
	}
	if tree == nil {
		return nil, ErrNotFound
	}

	// Full media set: the category's own media plus all subcategory media.
	var all []MediaRef
	var images, videos int
	for _, sub := range tree.Subcategories {
		all = append(all, sub.Images...)
		all = append(all, sub.Videos...)
		images += len(sub.Images)
		videos += len(sub.Videos)
	}
	all = append(all, tree.Images...)
	all = append(all, tree.Videos...)
	images += len(tree.Images)
	videos += len(tree.Videos)

	remoteOK, failures := e.deleteRemotes(ctx, all)

	if err := e.catalog.DeleteCategoryTree(ctx, tree); err != nil {
		return nil, fmt.Errorf("delete category tree %s: %w", tree.Key, err)
	}

	// Best-effort folder cleanup. A folder that is already gone counts as
	// removed; any other failure is logged and skipped.
	folders := []string{e.prefix + tree.Key}
	for _, sub := range tree.Subcategories {
		folders = append(folders, e.prefix+sub.Key)
	}
	var deletedFolders []string
	for _, folder := range folders {
		if err := e.host.DeleteFolder(ctx, folder); err != nil {
			slog.Warn("folder cleanup failed", "folder", folder, "error", err)
			continue
		}
		deletedFolders = append(deletedFolders, folder)
	}

	tags := []string{"media", tree.Key}
	paths := []string{"/", "/gallery/" + tree.Key}
	for _, sub := range tree.Subcategories {
		tags = append(tags, sub.Key)
		paths = append(paths, "/gallery/"+sub.Key)
	}
	e.notifier.Invalidate(ctx, tags, paths)

	return &CategoryReport{
		DeletedImages:        images,
		DeletedVideos:        videos,
		DeletedSubcategories: len(tree.Subcategories),
		RemoteDeleted:        remoteOK,
		RemoteFailed:         failures,
		DeletedFolders:       deletedFolders,
	}, nil
}

// OrphanSweep removes local image rows whose remote object no longer
// exists. It is one-directional and idempotent: rows with a live remote
// counterpart are never touched, and a second sweep right after the
// first deletes nothing.
func (e *Engine) OrphanSweep(ctx context.Context) (*OrphanReport, error) {
	locals, err := e.catalog.AllImageRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list local images: %w", err)
	}

	remoteIDs, err := e.host.ListRemoteIDs(ctx, e.prefix, e.sweepLimit)
	if err != nil {
		return nil, fmt.Errorf("list remote ids: %w", err)
	}
	present := make(map[string]bool, len(remoteIDs))
	for _, id := range remoteIDs {
		present[id] = true
	}

	var orphaned []MediaRef
	var ids []uuid.UUID
	for _, ref := range locals {
		if !present[ref.RemoteID] {
			orphaned = append(orphaned, ref)
			ids = append(ids, ref.ID)
		}
	}

	if len(ids) == 0 {
		return &OrphanReport{}, nil
	}

	deleted, err := e.catalog.DeleteMediaRows(ctx, KindImage, ids)
	if err != nil {
		return nil, fmt.Errorf("delete orphaned rows: %w", err)
	}

	slog.Info("orphan sweep removed local rows", "count", deleted)
	e.notifier.Invalidate(ctx, []string{"media"}, nil)
	return &OrphanReport{Orphaned: orphaned, DeletedCount: deleted}, nil
}

// deleteRemotes issues one remote delete per ref concurrently and waits
// for every attempt to settle. One failure never cancels or blocks the
// others. Returns the success count and per-item failures.
func (e *Engine) deleteRemotes(ctx context.Context, refs []MediaRef) (int, []RemoteFailure) {
	type result struct {
		ok      bool
		failure RemoteFailure
	}
	results := make([]result, len(refs))

	var wg sync.WaitGroup
	for i, ref := range refs {
		if ref.RemoteID == "" {
			results[i] = result{failure: RemoteFailure{ID: ref.ID, Reason: ReasonNoRemoteID}}
			continue
		}
		wg.Add(1)
		go func(i int, ref MediaRef) {
			defer wg.Done()
			if err := e.host.Delete(ctx, ref.RemoteID); err != nil {
				slog.Warn("remote delete failed", "id", ref.ID, "remote_id", ref.RemoteID, "error", err)
				results[i] = result{failure: RemoteFailure{
					ID: ref.ID, RemoteID: ref.RemoteID, Reason: ReasonRemoteFailed,
				}}
				return
			}
			results[i] = result{ok: true}
		}(i, ref)
	}
	wg.Wait()

	var ok int
	var failures []RemoteFailure
	for _, res := range results {
		if res.ok {
			ok++
		} else {
			failures = append(failures, res.failure)
		}
	}
	return ok, failures
}

// validateBatch rejects empty and oversized batches before any side effect.
func validateBatch(n int) error {
	if n == 0 {
		return ErrEmptyBatch
	}
	if n > MaxBatchSize {
		return ErrBatchTooLarge
	}
	return nil
}

// dedupeIDs drops duplicate ids, preserving first-seen order.
func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// dedupeRefs drops refs with duplicate ids, preserving first-seen order.
func dedupeRefs(refs []MediaRef) []MediaRef {
	seen := make(map[uuid.UUID]bool, len(refs))
	out := refs[:0:0]
	for _, ref := range refs {
		if !seen[ref.ID] {
			seen[ref.ID] = true
			out = append(out, ref)
		}
	}
	return out
}
