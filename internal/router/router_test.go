// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router tests verify the HTTP routing configuration, middleware
// chains, and the health endpoint.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"

	"folio/internal/auth"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/handlers"
	"folio/internal/media"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/session"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestHealthHandlerMethods(t *testing.T) {
	// Health endpoint only accepts GET.
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	if w.Code != http.StatusOK {
		t.Errorf("GET /health: got %d, want 200", w.Code)
	}
}

type noSessions struct{}

func (noSessions) Get(context.Context, *http.Request) (*session.Data, error) { return nil, nil }
func (noSessions) Create(context.Context, http.ResponseWriter, *session.Data) (string, error) {
	return "", nil
}
func (noSessions) Update(context.Context, *http.Request, *session.Data) error { return nil }
func (noSessions) Destroy(context.Context, http.ResponseWriter, *http.Request) error {
	return nil
}

type emptyStore struct{}

func (emptyStore) Load(context.Context, uuid.UUID) (*models.Document, error) { return nil, nil }
func (emptyStore) Save(context.Context, uuid.UUID, models.Document) error    { return nil }

type noUsers struct{}

func (noUsers) FindByEmail(context.Context, string) (*models.User, error)    { return nil, nil }
func (noUsers) FindByID(context.Context, uuid.UUID) (*models.User, error)    { return nil, nil }
func (noUsers) Create(context.Context, string, string) (*models.User, error) { return nil, nil }
func (noUsers) SetTOTPSecret(context.Context, uuid.UUID, string) error       { return nil }
func (noUsers) EnableTOTP(context.Context, uuid.UUID) error                  { return nil }
func (noUsers) CheckPassword(*models.User, string) bool                      { return false }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	rn, err := render.New()
	if err != nil {
		t.Fatal(err)
	}
	owner := uuid.New()
	ed := editor.NewManager(emptyStore{})
	hub := auth.NewHub(nil)
	svc := auth.NewService(noUsers{}, hub, "")
	g := gate.New("secret")

	return New(Handlers{
		Public: handlers.NewPublic(rn, ed, nil, g, owner),
		Edit:   handlers.NewEdit(rn, ed, media.NewEncoder()),
		Auth:   handlers.NewAuth(svc, noSessions{}),
		Gate:   handlers.NewGate(g, noSessions{}, svc, ed, owner),
		Live:   handlers.NewLive(rn, ed, hub, g, owner, nil),
	}, Options{
		Sessions: noSessions{},
		Static:   fstest.MapFS{"folio.css": {Data: []byte("body{}")}},
	})
}

func TestRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		csrf   bool
		want   int
	}{
		{"health", "GET", "/health", false, http.StatusOK},
		{"metrics", "GET", "/metrics", false, http.StatusOK},
		{"static", "GET", "/static/folio.css", false, http.StatusOK},
		{"page", "GET", "/", false, http.StatusOK},
		{"unknown page", "GET", "/?page=NOPE", false, http.StatusSeeOther},
		{"me", "GET", "/auth/me", false, http.StatusOK},
		{"edit without csrf", "POST", "/edit/begin", false, http.StatusForbidden},
		{"edit without session", "POST", "/edit/begin", true, http.StatusUnauthorized},
		{"document without session", "GET", "/edit/document", false, http.StatusUnauthorized},
		{"login without csrf", "POST", "/auth/login", false, http.StatusForbidden},
		{"gate wrong secret", "POST", "/gate", true, http.StatusUnauthorized},
		{"unknown route", "GET", "/admin", false, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.method == "POST" {
				body = strings.NewReader(`{"secret":"guess"}`)
			} else {
				body = strings.NewReader("")
			}
			r := httptest.NewRequest(tt.method, tt.path, body)
			if tt.csrf {
				r.AddCookie(&http.Cookie{Name: middleware.CSRFCookieName, Value: "tok"})
				r.Header.Set(middleware.CSRFHeaderName, "tok")
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("%s %s = %d, want %d", tt.method, tt.path, w.Code, tt.want)
			}
		})
	}
}

func TestSecureHeadersApplied(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if w.Header().Get("Content-Security-Policy") == "" {
		t.Error("content security policy missing")
	}
}
