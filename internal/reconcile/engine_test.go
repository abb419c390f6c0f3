// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
)

// fakeCatalog is an in-memory stand-in for the metadata store.
type fakeCatalog struct {
	mu     sync.Mutex
	images map[uuid.UUID]MediaRef
	videos map[uuid.UUID]MediaRef
	trees  map[uuid.UUID]*CategoryTree

	treeDeleteErr error
	rowDeleteErr  error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		images: make(map[uuid.UUID]MediaRef),
		videos: make(map[uuid.UUID]MediaRef),
		trees:  make(map[uuid.UUID]*CategoryTree),
	}
}

func (c *fakeCatalog) table(kind Kind) map[uuid.UUID]MediaRef {
	if kind == KindVideo {
		return c.videos
	}
	return c.images
}

func (c *fakeCatalog) MediaRefs(_ context.Context, kind Kind, ids []uuid.UUID) ([]MediaRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var refs []MediaRef
	for _, id := range ids {
		if ref, ok := c.table(kind)[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}

func (c *fakeCatalog) DeleteMediaRows(_ context.Context, kind Kind, ids []uuid.UUID) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rowDeleteErr != nil {
		return 0, c.rowDeleteErr
	}
	deleted := 0
	for _, id := range ids {
		if _, ok := c.table(kind)[id]; ok {
			delete(c.table(kind), id)
			deleted++
		}
	}
	return deleted, nil
}

func (c *fakeCatalog) CategoryTree(_ context.Context, id uuid.UUID) (*CategoryTree, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trees[id], nil
}

func (c *fakeCatalog) DeleteCategoryTree(_ context.Context, tree *CategoryTree) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.treeDeleteErr != nil {
		return c.treeDeleteErr
	}
	remove := func(refs []MediaRef) {
		for _, ref := range refs {
			delete(c.images, ref.ID)
			delete(c.videos, ref.ID)
		}
	}
	for _, sub := range tree.Subcategories {
		remove(sub.Images)
		remove(sub.Videos)
	}
	remove(tree.Images)
	remove(tree.Videos)
	delete(c.trees, tree.ID)
	return nil
}

func (c *fakeCatalog) AllImageRefs(_ context.Context) ([]MediaRef, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var refs []MediaRef
	for _, ref := range c.images {
		refs = append(refs, ref)
	}
	return refs, nil
}

func (c *fakeCatalog) imageCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// fakeHost is an in-memory media host with scriptable per-ID failures.
type fakeHost struct {
	mu             sync.Mutex
	deleteAttempts []string
	failFor        map[string]bool
	deletedFolders []string
	folderErr      map[string]error
	remoteIDs      []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		failFor:   make(map[string]bool),
		folderErr: make(map[string]error),
	}
}

func (h *fakeHost) Delete(_ context.Context, remoteID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.deleteAttempts = append(h.deleteAttempts, remoteID)
	if h.failFor[remoteID] {
		return errors.New("remote unavailable")
	}
	return nil
}

func (h *fakeHost) DeleteFolder(_ context.Context, path string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.folderErr[path]; err != nil {
		return err
	}
	h.deletedFolders = append(h.deletedFolders, path)
	return nil
}

func (h *fakeHost) ListRemoteIDs(_ context.Context, _ string, _ int) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.remoteIDs, nil
}

func (h *fakeHost) attempts() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.deleteAttempts)
}

// fakeNotifier records invalidation calls.
type fakeNotifier struct {
	mu    sync.Mutex
	calls int
	tags  []string
}

func (n *fakeNotifier) Invalidate(_ context.Context, tags []string, _ []string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	n.tags = append(n.tags, tags...)
}

func newTestEngine() (*Engine, *fakeCatalog, *fakeHost, *fakeNotifier) {
	catalog := newFakeCatalog()
	host := newFakeHost()
	notifier := &fakeNotifier{}
	return New(catalog, host, notifier, "portfolio/"), catalog, host, notifier
}

// addImage inserts a fake image row and returns its ref.
func addImage(c *fakeCatalog, remoteID string) MediaRef {
	ref := MediaRef{ID: uuid.New(), Title: "img-" + remoteID, RemoteID: remoteID}
	c.mu.Lock()
	c.images[ref.ID] = ref
	c.mu.Unlock()
	return ref
}

func TestDeleteOne(t *testing.T) {
	t.Run("removes row and attempts remote exactly once", func(t *testing.T) {
		eng, catalog, host, notifier := newTestEngine()
		ref := addImage(catalog, "portfolio/weddings/a.jpg")

		outcome, err := eng.DeleteOne(context.Background(), KindImage, ref.ID)
		if err != nil {
			t.Fatalf("DeleteOne: %v", err)
		}
		if !outcome.RemoteDeleted {
			t.Error("expected remote delete to succeed")
		}
		if host.attempts() != 1 {
			t.Errorf("remote attempts: got %d, want 1", host.attempts())
		}
		if catalog.imageCount() != 0 {
			t.Errorf("local rows remaining: got %d, want 0", catalog.imageCount())
		}
		if notifier.calls != 1 {
			t.Errorf("invalidations: got %d, want 1", notifier.calls)
		}
	})

	t.Run("remote failure still removes local row", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		ref := addImage(catalog, "portfolio/weddings/b.jpg")
		host.failFor[ref.RemoteID] = true

		outcome, err := eng.DeleteOne(context.Background(), KindImage, ref.ID)
		if err != nil {
			t.Fatalf("DeleteOne: %v", err)
		}
		if outcome.RemoteDeleted {
			t.Error("expected remote delete to be reported failed")
		}
		if host.attempts() != 1 {
			t.Errorf("remote attempts: got %d, want 1", host.attempts())
		}
		if catalog.imageCount() != 0 {
			t.Error("local row should be removed despite remote failure")
		}
	})

	t.Run("unknown id is NotFound with no side effects", func(t *testing.T) {
		eng, catalog, host, notifier := newTestEngine()
		addImage(catalog, "portfolio/x/keep.jpg")

		_, err := eng.DeleteOne(context.Background(), KindImage, uuid.New())
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if host.attempts() != 0 {
			t.Error("no remote attempt expected for unknown id")
		}
		if catalog.imageCount() != 1 {
			t.Error("existing row must be untouched")
		}
		if notifier.calls != 0 {
			t.Error("no invalidation expected")
		}
	})
}

func TestBulkDeleteIDs(t *testing.T) {
	t.Run("partial remote failure never blocks local batch", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()

		const n = 12
		var ids []uuid.UUID
		for i := 0; i < n; i++ {
			ref := addImage(catalog, fmt.Sprintf("portfolio/bulk/%d.jpg", i))
			ids = append(ids, ref.ID)
			if i%4 == 0 { // fail 0, 4, 8
				host.failFor[ref.RemoteID] = true
			}
		}

		outcome, err := eng.BulkDeleteIDs(context.Background(), KindImage, ids)
		if err != nil {
			t.Fatalf("BulkDeleteIDs: %v", err)
		}
		if outcome.Found != n {
			t.Errorf("found: got %d, want %d", outcome.Found, n)
		}
		if outcome.LocalDeleted != n {
			t.Errorf("local deleted: got %d, want %d", outcome.LocalDeleted, n)
		}
		if outcome.RemoteDeleted != n-3 {
			t.Errorf("remote deleted: got %d, want %d", outcome.RemoteDeleted, n-3)
		}
		if len(outcome.RemoteFailed) != 3 {
			t.Errorf("remote failures: got %d, want 3", len(outcome.RemoteFailed))
		}
		for _, f := range outcome.RemoteFailed {
			if f.Reason != ReasonRemoteFailed {
				t.Errorf("reason: got %q, want %q", f.Reason, ReasonRemoteFailed)
			}
		}
		if catalog.imageCount() != 0 {
			t.Errorf("local rows remaining: got %d, want 0", catalog.imageCount())
		}
	})

	t.Run("oversized batch fails before any side effect", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		var ids []uuid.UUID
		for i := 0; i < MaxBatchSize+1; i++ {
			ids = append(ids, addImage(catalog, fmt.Sprintf("portfolio/big/%d.jpg", i)).ID)
		}

		_, err := eng.BulkDeleteIDs(context.Background(), KindImage, ids)
		if !errors.Is(err, ErrBatchTooLarge) {
			t.Fatalf("expected ErrBatchTooLarge, got %v", err)
		}
		if host.attempts() != 0 {
			t.Error("no remote attempt expected on validation failure")
		}
		if catalog.imageCount() != MaxBatchSize+1 {
			t.Error("local store must be unchanged on validation failure")
		}
	})

	t.Run("empty batch fails validation", func(t *testing.T) {
		eng, _, _, _ := newTestEngine()
		_, err := eng.BulkDeleteIDs(context.Background(), KindImage, nil)
		if !errors.Is(err, ErrEmptyBatch) {
			t.Fatalf("expected ErrEmptyBatch, got %v", err)
		}
	})

	t.Run("nothing resolves is NotFound with no deletions", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		addImage(catalog, "portfolio/keep/1.jpg")

		_, err := eng.BulkDeleteIDs(context.Background(), KindImage, []uuid.UUID{uuid.New(), uuid.New()})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if host.attempts() != 0 || catalog.imageCount() != 1 {
			t.Error("no side effects expected when nothing resolves")
		}
	})

	t.Run("duplicate ids collapse to one target", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		ref := addImage(catalog, "portfolio/dup/a.jpg")

		outcome, err := eng.BulkDeleteIDs(context.Background(), KindImage, []uuid.UUID{ref.ID, ref.ID, ref.ID})
		if err != nil {
			t.Fatalf("BulkDeleteIDs: %v", err)
		}
		if outcome.Requested != 1 || outcome.Found != 1 {
			t.Errorf("requested/found: got %d/%d, want 1/1", outcome.Requested, outcome.Found)
		}
		if host.attempts() != 1 {
			t.Errorf("remote attempts: got %d, want 1", host.attempts())
		}
	})
}

func TestBulkDeleteRefs(t *testing.T) {
	t.Run("pairs without remote id are tagged and still removed locally", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		withRemote := addImage(catalog, "portfolio/mix/a.jpg")
		orphanRow := addImage(catalog, "")

		outcome, err := eng.BulkDeleteRefs(context.Background(), KindImage, []MediaRef{
			{ID: withRemote.ID, RemoteID: withRemote.RemoteID},
			{ID: orphanRow.ID},
		})
		if err != nil {
			t.Fatalf("BulkDeleteRefs: %v", err)
		}
		if outcome.RemoteDeleted != 1 {
			t.Errorf("remote deleted: got %d, want 1", outcome.RemoteDeleted)
		}
		if len(outcome.RemoteFailed) != 1 || outcome.RemoteFailed[0].Reason != ReasonNoRemoteID {
			t.Errorf("expected one %s failure, got %+v", ReasonNoRemoteID, outcome.RemoteFailed)
		}
		if host.attempts() != 1 {
			t.Errorf("remote attempts: got %d, want 1", host.attempts())
		}
		if catalog.imageCount() != 0 {
			t.Error("both rows should be removed locally")
		}
	})
}

// buildCategory installs a category with 2 own images and 1 subcategory
// holding 3 images, matching the round-trip property.
func buildCategory(catalog *fakeCatalog) *CategoryTree {
	own := []MediaRef{
		addImage(catalog, "portfolio/weddings/1.jpg"),
		addImage(catalog, "portfolio/weddings/2.jpg"),
	}
	sub := []MediaRef{
		addImage(catalog, "portfolio/weddings-2026/1.jpg"),
		addImage(catalog, "portfolio/weddings-2026/2.jpg"),
		addImage(catalog, "portfolio/weddings-2026/3.jpg"),
	}
	tree := &CategoryTree{
		ID:     uuid.New(),
		Key:    "weddings",
		Images: own,
		Subcategories: []Subtree{
			{ID: uuid.New(), Key: "weddings-2026", Images: sub},
		},
	}
	catalog.trees[tree.ID] = tree
	return tree
}

func TestDeleteCategory(t *testing.T) {
	t.Run("round trip removes subtree and reports counts", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		tree := buildCategory(catalog)

		report, err := eng.DeleteCategory(context.Background(), tree.ID)
		if err != nil {
			t.Fatalf("DeleteCategory: %v", err)
		}
		if report.DeletedImages != 5 {
			t.Errorf("deleted images: got %d, want 5", report.DeletedImages)
		}
		if report.DeletedSubcategories != 1 {
			t.Errorf("deleted subcategories: got %d, want 1", report.DeletedSubcategories)
		}
		if report.RemoteDeleted != 5 {
			t.Errorf("remote deleted: got %d, want 5", report.RemoteDeleted)
		}
		if host.attempts() != 5 {
			t.Errorf("remote attempts: got %d, want 5", host.attempts())
		}
		if catalog.imageCount() != 0 {
			t.Errorf("local rows remaining: got %d, want 0", catalog.imageCount())
		}
		if len(report.DeletedFolders) != 2 {
			t.Errorf("deleted folders: got %v, want 2 entries", report.DeletedFolders)
		}
	})

	t.Run("second delete is NotFound with no extra side effect", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		tree := buildCategory(catalog)

		if _, err := eng.DeleteCategory(context.Background(), tree.ID); err != nil {
			t.Fatalf("first DeleteCategory: %v", err)
		}
		attempts := host.attempts()

		_, err := eng.DeleteCategory(context.Background(), tree.ID)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if host.attempts() != attempts {
			t.Error("second delete must not attempt remote deletions")
		}
	})

	t.Run("remote failures do not abort the subtree delete", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		tree := buildCategory(catalog)
		host.failFor["portfolio/weddings/1.jpg"] = true
		host.failFor["portfolio/weddings-2026/2.jpg"] = true

		report, err := eng.DeleteCategory(context.Background(), tree.ID)
		if err != nil {
			t.Fatalf("DeleteCategory: %v", err)
		}
		if report.RemoteDeleted != 3 {
			t.Errorf("remote deleted: got %d, want 3", report.RemoteDeleted)
		}
		if len(report.RemoteFailed) != 2 {
			t.Errorf("remote failed: got %d, want 2", len(report.RemoteFailed))
		}
		if catalog.imageCount() != 0 {
			t.Error("local subtree must still be fully removed")
		}
	})

	t.Run("transaction failure surfaces and skips folder cleanup", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		tree := buildCategory(catalog)
		catalog.treeDeleteErr = errors.New("deadlock detected")

		_, err := eng.DeleteCategory(context.Background(), tree.ID)
		if err == nil {
			t.Fatal("expected persistence error")
		}
		// Remote deletions were already attempted — the documented
		// inconsistency window.
		if host.attempts() != 5 {
			t.Errorf("remote attempts: got %d, want 5", host.attempts())
		}
		if len(host.deletedFolders) != 0 {
			t.Error("folder cleanup must not run after a failed transaction")
		}
	})

	t.Run("folder cleanup failure is non-fatal", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()
		tree := buildCategory(catalog)
		host.folderErr["portfolio/weddings"] = errors.New("listing timed out")

		report, err := eng.DeleteCategory(context.Background(), tree.ID)
		if err != nil {
			t.Fatalf("DeleteCategory: %v", err)
		}
		if len(report.DeletedFolders) != 1 || report.DeletedFolders[0] != "portfolio/weddings-2026" {
			t.Errorf("deleted folders: got %v, want only the subcategory folder", report.DeletedFolders)
		}
	})
}

func TestOrphanSweep(t *testing.T) {
	t.Run("deletes exactly the unmatched rows and converges", func(t *testing.T) {
		eng, catalog, host, _ := newTestEngine()

		var refs []MediaRef
		for i := 0; i < 10; i++ {
			refs = append(refs, addImage(catalog, fmt.Sprintf("portfolio/sweep/%d.jpg", i)))
		}
		// Remote listing only knows the first 7.
		for i := 0; i < 7; i++ {
			host.remoteIDs = append(host.remoteIDs, refs[i].RemoteID)
		}

		report, err := eng.OrphanSweep(context.Background())
		if err != nil {
			t.Fatalf("OrphanSweep: %v", err)
		}
		if report.DeletedCount != 3 {
			t.Errorf("deleted: got %d, want 3", report.DeletedCount)
		}
		if len(report.Orphaned) != 3 {
			t.Errorf("orphan list: got %d, want 3", len(report.Orphaned))
		}
		if catalog.imageCount() != 7 {
			t.Errorf("rows remaining: got %d, want 7", catalog.imageCount())
		}

		// Idempotent convergence: a second sweep deletes nothing.
		report, err = eng.OrphanSweep(context.Background())
		if err != nil {
			t.Fatalf("second OrphanSweep: %v", err)
		}
		if report.DeletedCount != 0 {
			t.Errorf("second sweep deleted %d rows, want 0", report.DeletedCount)
		}
		if catalog.imageCount() != 7 {
			t.Error("live rows must never be touched")
		}
	})

	t.Run("empty catalog sweeps cleanly", func(t *testing.T) {
		eng, _, _, notifier := newTestEngine()
		report, err := eng.OrphanSweep(context.Background())
		if err != nil {
			t.Fatalf("OrphanSweep: %v", err)
		}
		if report.DeletedCount != 0 || len(report.Orphaned) != 0 {
			t.Errorf("expected empty report, got %+v", report)
		}
		if notifier.calls != 0 {
			t.Error("no invalidation expected when nothing was deleted")
		}
	})
}

func TestMediaCount(t *testing.T) {
	tree := &CategoryTree{
		Images: make([]MediaRef, 2),
		Videos: make([]MediaRef, 1),
		Subcategories: []Subtree{
			{Images: make([]MediaRef, 3), Videos: make([]MediaRef, 2)},
		},
	}
	if got := tree.MediaCount(); got != 8 {
		t.Errorf("MediaCount: got %d, want 8", got)
	}
}
