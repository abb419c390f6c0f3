// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"aperture/internal/reconcile"
)

// Catalog implements the reconciliation engine's store contract. It is
// the only place in the store layer that runs a multi-statement
// transaction: the category subtree delete must remove media rows,
// subcategories, and the category itself atomically.
type Catalog struct {
	db *sql.DB
}

// NewCatalog returns a Catalog over the given connection pool.
func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

// mediaTable maps a media kind to its table name. Kinds are fixed by the
// engine, never caller input, so interpolation is safe here.
func mediaTable(kind reconcile.Kind) string {
	if kind == reconcile.KindVideo {
		return "videos"
	}
	return "images"
}

// MediaRefs resolves ids to {id, title, remote_id} refs. Unknown ids are
// dropped from the result.
func (c *Catalog) MediaRefs(ctx context.Context, kind reconcile.Kind, ids []uuid.UUID) ([]reconcile.MediaRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, title, remote_id FROM %s WHERE id IN (%s)`,
		mediaTable(kind), idPlaceholders(len(ids)))
	rows, err := c.db.QueryContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("resolve media refs: %w", err)
	}
	defer rows.Close()

	var refs []reconcile.MediaRef
	for rows.Next() {
		var ref reconcile.MediaRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.RemoteID); err != nil {
			return nil, fmt.Errorf("scan media ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// DeleteMediaRows removes the given rows in one statement and returns
// how many were deleted.
func (c *Catalog) DeleteMediaRows(ctx context.Context, kind reconcile.Kind, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id IN (%s)`,
		mediaTable(kind), idPlaceholders(len(ids)))
	result, err := c.db.ExecContext(ctx, query, idArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete media rows: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(affected), nil
}

// CategoryTree loads a category with its own media and its direct
// subcategories' media. Only one level of nesting is walked. Returns nil
// if the category does not exist.
func (c *Catalog) CategoryTree(ctx context.Context, id uuid.UUID) (*reconcile.CategoryTree, error) {
	tree := &reconcile.CategoryTree{ID: id}
	err := c.db.QueryRowContext(ctx,
		`SELECT key FROM categories WHERE id = $1`, id).Scan(&tree.Key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load category: %w", err)
	}

	tree.Images, err = c.categoryMediaRefs(ctx, reconcile.KindImage, id)
	if err != nil {
		return nil, err
	}
	tree.Videos, err = c.categoryMediaRefs(ctx, reconcile.KindVideo, id)
	if err != nil {
		return nil, err
	}

	subRows, err := c.db.QueryContext(ctx,
		`SELECT id, key FROM categories WHERE parent_id = $1 ORDER BY sort_order`, id)
	if err != nil {
		return nil, fmt.Errorf("load subcategories: %w", err)
	}
	defer subRows.Close()

	for subRows.Next() {
		var sub reconcile.Subtree
		if err := subRows.Scan(&sub.ID, &sub.Key); err != nil {
			return nil, fmt.Errorf("scan subcategory: %w", err)
		}
		tree.Subcategories = append(tree.Subcategories, sub)
	}
	if err := subRows.Err(); err != nil {
		return nil, err
	}

	for i := range tree.Subcategories {
		sub := &tree.Subcategories[i]
		sub.Images, err = c.categoryMediaRefs(ctx, reconcile.KindImage, sub.ID)
		if err != nil {
			return nil, err
		}
		sub.Videos, err = c.categoryMediaRefs(ctx, reconcile.KindVideo, sub.ID)
		if err != nil {
			return nil, err
		}
	}

	return tree, nil
}

// categoryMediaRefs lists one category's media refs for a single kind.
func (c *Catalog) categoryMediaRefs(ctx context.Context, kind reconcile.Kind, categoryID uuid.UUID) ([]reconcile.MediaRef, error) {
	query := fmt.Sprintf(`SELECT id, title, remote_id FROM %s WHERE category_id = $1`, mediaTable(kind))
	rows, err := c.db.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category media: %w", err)
	}
	defer rows.Close()

	var refs []reconcile.MediaRef
	for rows.Next() {
		var ref reconcile.MediaRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.RemoteID); err != nil {
			return nil, fmt.Errorf("scan category media: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// DeleteCategoryTree removes the whole subtree in one transaction, in
// dependency order: subcategory media, subcategories, own media, the
// category. Any failure rolls the entire delete back.
func (c *Catalog) DeleteCategoryTree(ctx context.Context, tree *reconcile.CategoryTree) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, sub := range tree.Subcategories {
		if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE category_id = $1`, sub.ID); err != nil {
			return fmt.Errorf("delete subcategory images: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE category_id = $1`, sub.ID); err != nil {
			return fmt.Errorf("delete subcategory videos: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, sub.ID); err != nil {
			return fmt.Errorf("delete subcategory: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE category_id = $1`, tree.ID); err != nil {
		return fmt.Errorf("delete category images: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM videos WHERE category_id = $1`, tree.ID); err != nil {
		return fmt.Errorf("delete category videos: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, tree.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	return tx.Commit()
}

// AllImageRefs returns every image row's ref for the orphan sweep.
func (c *Catalog) AllImageRefs(ctx context.Context) ([]reconcile.MediaRef, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT id, title, remote_id FROM images`)
	if err != nil {
		return nil, fmt.Errorf("list all images: %w", err)
	}
	defer rows.Close()

	var refs []reconcile.MediaRef
	for rows.Next() {
		var ref reconcile.MediaRef
		if err := rows.Scan(&ref.ID, &ref.Title, &ref.RemoteID); err != nil {
			return nil, fmt.Errorf("scan image ref: %w", err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
