// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"aperture/internal/models"
	"aperture/internal/render"
	"aperture/internal/slug"
	"aperture/internal/store"
)

// CategoriesPage lists all categories with their media counts.
func (a *Admin) CategoriesPage(w http.ResponseWriter, r *http.Request) {
	categories, err := a.categoryStore.List()
	if err != nil {
		slog.Error("list categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "categories", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    map[string]any{"categories": categories},
	})
}

// CategoryNewPage renders the empty category form.
func (a *Admin) CategoryNewPage(w http.ResponseWriter, r *http.Request) {
	parents, err := a.categoryStore.ListTopLevel(false)
	if err != nil {
		slog.Error("list parent categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   "New Category",
		Section: "categories",
		Data:    map[string]any{"parents": parents},
	})
}

// CategoryCreate processes the new category form. The category key is
// derived from the name and made globally unique; the database unique
// constraint stays authoritative, a concurrent insert of the same key is
// retried once with a fresh suffix.
func (a *Admin) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	name := r.FormValue("name")
	if msg := validateCategoryName(name); msg != "" {
		a.categoryFormError(w, r, nil, msg)
		return
	}

	cat := &models.Category{
		Name:      name,
		IsPrivate: r.FormValue("is_private") == "1",
	}
	if desc := r.FormValue("description"); desc != "" {
		if msg := validateDescription(desc); msg != "" {
			a.categoryFormError(w, r, nil, msg)
			return
		}
		cat.Description = &desc
	}
	if parent := r.FormValue("parent_id"); parent != "" {
		parentID, err := uuid.Parse(parent)
		if err != nil {
			a.categoryFormError(w, r, nil, "Invalid parent category.")
			return
		}
		cat.ParentID = &parentID
	}

	order, err := a.categoryStore.NextSortOrder(cat.ParentID)
	if err != nil {
		slog.Error("next sort order failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	cat.SortOrder = order

	created, err := a.createWithUniqueKey(cat)
	if err != nil {
		slog.Error("create category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	slog.Info("category created", "id", created.ID, "key", created.Key)
	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// createWithUniqueKey assigns a unique key and inserts the category. A
// unique-constraint conflict from a concurrent insert gets one retry with
// a freshly probed key.
func (a *Admin) createWithUniqueKey(cat *models.Category) (*models.Category, error) {
	for attempt := 0; attempt < 2; attempt++ {
		key, err := slug.Unique(cat.Name, a.categoryStore.KeyExists)
		if err != nil {
			return nil, err
		}
		cat.Key = key

		created, err := a.categoryStore.Create(cat)
		if errors.Is(err, store.ErrKeyConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return created, nil
	}
	return nil, store.ErrKeyConflict
}

// CategoryEditPage renders the form pre-filled with an existing category.
func (a *Admin) CategoryEditPage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cat, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	parents, err := a.categoryStore.ListTopLevel(false)
	if err != nil {
		slog.Error("list parent categories failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   "Edit Category",
		Section: "categories",
		Data:    map[string]any{"category": cat, "parents": parents},
	})
}

// CategoryUpdate processes the edit form. The key is preserved: renaming
// a category does not move its remote folder.
func (a *Admin) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.NotFound(w, r)
		return
	}

	cat, err := a.categoryStore.FindByID(id)
	if err != nil {
		slog.Error("find category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cat == nil {
		http.NotFound(w, r)
		return
	}

	name := r.FormValue("name")
	if msg := validateCategoryName(name); msg != "" {
		a.categoryFormError(w, r, cat, msg)
		return
	}

	cat.Name = name
	cat.IsPrivate = r.FormValue("is_private") == "1"
	cat.Description = nil
	if desc := r.FormValue("description"); desc != "" {
		if msg := validateDescription(desc); msg != "" {
			a.categoryFormError(w, r, cat, msg)
			return
		}
		cat.Description = &desc
	}
	cat.ParentID = nil
	if parent := r.FormValue("parent_id"); parent != "" {
		parentID, err := uuid.Parse(parent)
		if err != nil {
			a.categoryFormError(w, r, cat, "Invalid parent category.")
			return
		}
		if parentID == cat.ID {
			a.categoryFormError(w, r, cat, "A category cannot be its own parent.")
			return
		}
		cat.ParentID = &parentID
	}

	if err := a.categoryStore.Update(cat); err != nil {
		slog.Error("update category failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/admin/categories", http.StatusSeeOther)
}

// categoryFormError re-renders the form with a flash message.
func (a *Admin) categoryFormError(w http.ResponseWriter, r *http.Request, cat *models.Category, msg string) {
	parents, _ := a.categoryStore.ListTopLevel(false)
	data := map[string]any{"parents": parents}
	if cat != nil {
		data["category"] = cat
	}
	a.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   "Category",
		Section: "categories",
		Data:    data,
		Flashes: []render.Flash{{Type: "error", Message: msg}},
	})
}
