// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"aperture/internal/models"
)

func TestCategoryCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	key := testKey("gallery")
	created := makeCategory(t, db, key, nil)

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Key != key {
		t.Errorf("key: got %q, want %q", created.Key, key)
	}

	found, err := s.FindByKey(key)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("FindByKey returned %+v, want id %s", found, created.ID)
	}

	// Not found.
	missing, _ := s.FindByID(uuid.New())
	if missing != nil {
		t.Error("expected nil for random UUID")
	}
}

func TestCategoryKeyConflict(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	key := testKey("dup")
	makeCategory(t, db, key, nil)

	_, err := s.Create(&models.Category{Key: key, Name: "duplicate"})
	if !errors.Is(err, ErrKeyConflict) {
		t.Errorf("expected ErrKeyConflict, got %v", err)
	}

	exists, err := s.KeyExists(key)
	if err != nil {
		t.Fatalf("KeyExists: %v", err)
	}
	if !exists {
		t.Error("expected key to exist")
	}
}

func TestCategorySubcategories(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	parent := makeCategory(t, db, testKey("parent"), nil)
	child := makeCategory(t, db, testKey("child"), &parent.ID)

	subs, err := s.Subcategories(parent.ID)
	if err != nil {
		t.Fatalf("Subcategories: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != child.ID {
		t.Errorf("subcategories: got %+v, want the one child", subs)
	}
}

func TestCategoryNextSortOrder(t *testing.T) {
	db := testDB(t)
	s := NewCategoryStore(db)

	parent := makeCategory(t, db, testKey("order"), nil)

	next, err := s.NextSortOrder(&parent.ID)
	if err != nil {
		t.Fatalf("NextSortOrder: %v", err)
	}
	if next != 0 {
		t.Errorf("first sort order: got %d, want 0", next)
	}

	makeCategory(t, db, testKey("order-child"), &parent.ID)
	next, err = s.NextSortOrder(&parent.ID)
	if err != nil {
		t.Fatalf("NextSortOrder: %v", err)
	}
	if next != 1 {
		t.Errorf("second sort order: got %d, want 1", next)
	}
}
