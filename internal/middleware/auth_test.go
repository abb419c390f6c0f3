// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"aperture/internal/session"
)

// withSession attaches session data to a request the way LoadSession does.
func withSession(r *http.Request, data *session.Data) *http.Request {
	ctx := context.WithValue(r.Context(), SessionKey, data)
	return r.WithContext(ctx)
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuthRedirectsAnonymous(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("anonymous request: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/admin/login" {
		t.Errorf("redirect location: got %q, want /admin/login", loc)
	}
}

func TestRequireAuthPassesAuthenticated(t *testing.T) {
	handler := RequireAuth(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = withSession(req, &session.Data{Email: "admin@aperture.local", Role: "admin"})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("authenticated request: got %d, want 200", rr.Code)
	}
}

func TestRequire2FARedirectsIncomplete(t *testing.T) {
	handler := Require2FA(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req = withSession(req, &session.Data{Email: "admin@aperture.local", Role: "admin", TwoFADone: false})
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Errorf("2FA-incomplete request: got %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/admin/2fa/setup" {
		t.Errorf("redirect location: got %q, want /admin/2fa/setup", loc)
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name string
		sess *session.Data
		want int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"2fa incomplete", &session.Data{Role: "admin", TwoFADone: false}, http.StatusUnauthorized},
		{"editor role", &session.Data{Role: "editor", TwoFADone: true}, http.StatusForbidden},
		{"admin", &session.Data{Role: "admin", TwoFADone: true}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := RequireAdmin(okHandler())

			req := httptest.NewRequest(http.MethodDelete, "/admin/api/images/x", nil)
			if tt.sess != nil {
				req = withSession(req, tt.sess)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.want {
				t.Errorf("got %d, want %d", rr.Code, tt.want)
			}
		})
	}
}

func TestSessionFromCtxMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if sess := SessionFromCtx(req.Context()); sess != nil {
		t.Errorf("expected nil session, got %+v", sess)
	}
}
