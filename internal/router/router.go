// Package router sets up all HTTP routes and middleware chains for the
// Aperture portfolio site. It organizes routes into public, admin page,
// and admin API groups with appropriate middleware stacks.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"aperture/internal/handlers"
	"aperture/internal/middleware"
	"aperture/internal/session"
)

// loginRateLimit caps login attempts per IP to slow credential stuffing.
const (
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, admin *handlers.Admin, auth *handlers.Auth, public *handlers.Public) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check. No auth, no CSRF.
	r.Get("/health", healthHandler)

	loginLimiter := middleware.NewRateLimiter(loginRateLimit, loginRateWindow)

	// Admin routes. Everything under /admin carries CSRF protection.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.CSRF)

		// Auth pages, accessible without a session.
		r.Get("/login", auth.LoginPage)
		r.With(loginLimiter.Middleware).Post("/login", auth.LoginSubmit)
		r.Post("/logout", auth.Logout)

		// 2FA requires auth but NOT completed 2FA.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/2fa/setup", auth.TwoFASetupPage)
			r.Post("/2fa/setup", auth.TwoFASetupSubmit)
			r.Get("/2fa/verify", auth.TwoFAVerifyPage)
			r.Post("/2fa/verify", auth.TwoFAVerifySubmit)
		})

		// Authenticated, 2FA-verified admin pages.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.Require2FA)

			r.Get("/", admin.Dashboard)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", admin.CategoriesPage)
				r.Get("/new", admin.CategoryNewPage)
				r.Post("/new", admin.CategoryCreate)
				r.Get("/{id}", admin.CategoryEditPage)
				r.Post("/{id}", admin.CategoryUpdate)
			})

			r.Get("/media", admin.MediaLibrary)
			r.Post("/media/upload", admin.MediaUpload)

			r.Get("/maintenance", admin.MaintenancePage)
		})

		// JSON API. Admin role required; every operation mutates state.
		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Delete("/images/{id}", admin.DeleteImage)
			r.Delete("/videos/{id}", admin.DeleteVideo)
			r.Patch("/images/{id}", admin.UpdateImage)
			r.Patch("/videos/{id}", admin.UpdateVideo)
			r.Post("/images/bulk-delete", admin.BulkDeleteImages)
			r.Post("/videos/bulk-delete", admin.BulkDeleteVideos)
			r.Delete("/categories/{id}", admin.DeleteCategory)
			r.Post("/maintenance/orphan-sweep", admin.OrphanSweep)
		})
	})

	// Public portfolio routes.
	r.Get("/", public.Home)
	r.Get("/gallery/{key}", public.Gallery)

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
