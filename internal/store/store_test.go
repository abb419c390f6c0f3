// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"aperture/internal/database"
	"aperture/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching docker-compose.yml.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "aperture")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "aperture")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := testDSN()
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	// Run migrations to ensure the schema is current.
	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// makeCategory inserts a test category and registers cleanup of the whole
// row family (media first, then the category).
func makeCategory(t *testing.T, db *sql.DB, key string, parentID *uuid.UUID) *models.Category {
	t.Helper()

	s := NewCategoryStore(db)
	c, err := s.Create(&models.Category{Key: key, Name: key, ParentID: parentID})
	if err != nil {
		t.Fatalf("create category %q: %v", key, err)
	}
	t.Cleanup(func() {
		db.Exec("DELETE FROM images WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM videos WHERE category_id = $1", c.ID)
		db.Exec("DELETE FROM categories WHERE id = $1", c.ID)
	})
	return c
}

// makeImage inserts a test image into a category.
func makeImage(t *testing.T, db *sql.DB, categoryID uuid.UUID, remoteID string) *models.Image {
	t.Helper()

	s := NewImageStore(db)
	img, err := s.Create(&models.Image{
		Title:      "test " + remoteID,
		RemoteID:   remoteID,
		URL:        "https://cdn.example.com/" + remoteID,
		CategoryID: categoryID,
	})
	if err != nil {
		t.Fatalf("create image %q: %v", remoteID, err)
	}
	return img
}

// testKey builds a unique category key per test run.
func testKey(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
