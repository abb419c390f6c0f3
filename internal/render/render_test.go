package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"aperture/internal/models"
	"aperture/internal/session"
)

func helperSession() *session.Data {
	return &session.Data{
		UserID:      uuid.New(),
		Email:       "admin@aperture.local",
		DisplayName: "Admin",
		Role:        "admin",
		TwoFADone:   true,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		devMode bool
	}{
		{"dev mode", true},
		{"prod mode", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rn, err := New(tt.devMode)
			if err != nil {
				t.Fatalf("New(devMode=%v) returned error: %v", tt.devMode, err)
			}
			if rn == nil {
				t.Fatal("New() returned nil renderer")
			}
		})
	}
}

func TestPageRendersDashboard(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()

	rn.Page(rr, req, "dashboard", &PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Session: helperSession(),
		Data: map[string]any{
			"categoryCount": 3,
			"imageCount":    42,
			"videoCount":    5,
		},
	})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Dashboard") {
		t.Error("dashboard page missing title")
	}
	if !strings.Contains(body, "42") {
		t.Error("dashboard page missing image count")
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	rn.Page(rr, req, "no-such-page", &PageData{})

	if rr.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rr.Code)
	}
}

func TestPublicGallery(t *testing.T) {
	rn, err := New(true)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	desc := "Weddings shot in 2026"
	html, err := rn.Public("gallery", map[string]any{
		"siteTitle": "Aperture",
		"category": &models.Category{
			Name:        "Weddings",
			Key:         "weddings",
			Description: &desc,
		},
		"images": []*models.Image{
			{Title: "First dance", URL: "https://cdn.example.com/portfolio/weddings/a.jpg"},
		},
		"videos": []*models.Video{},
	})
	if err != nil {
		t.Fatalf("Public: %v", err)
	}

	out := string(html)
	if !strings.Contains(out, "Weddings") {
		t.Error("gallery missing category name")
	}
	if !strings.Contains(out, "First dance") {
		t.Error("gallery missing image title")
	}
	if !strings.Contains(out, "https://cdn.example.com/portfolio/weddings/a.jpg") {
		t.Error("gallery missing image URL")
	}
}
