// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides the in-memory collaborators shared by the
// handler tests. None of them need PostgreSQL or Valkey.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"

	"folio/internal/auth"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/session"
)

type memStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]models.Document
	loadErr error
	saveErr error
	loads   int
}

func (s *memStore) Load(_ context.Context, owner uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	doc, ok := s.docs[owner]
	if !ok {
		return nil, nil
	}
	doc = doc.Clone()
	return &doc, nil
}

func (s *memStore) Save(_ context.Context, owner uuid.UUID, doc models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs[owner] = doc.Clone()
	return nil
}

func (s *memStore) doc(owner uuid.UUID) models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[owner].Clone()
}

type memCache struct {
	mu    sync.Mutex
	pages map[string][]byte
	hits  int
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.pages[key]
	if ok {
		c.hits++
	}
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, html []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pages[key] = html
}

type memSessions struct {
	mu        sync.Mutex
	created   []*session.Data
	updated   []*session.Data
	destroyed int
}

func (s *memSessions) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.created = append(s.created, data)
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "test-session"})
	return "test-session", nil
}

func (s *memSessions) Update(_ context.Context, _ *http.Request, data *session.Data) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updated = append(s.updated, data)
	return nil
}

func (s *memSessions) Destroy(_ context.Context, _ http.ResponseWriter, _ *http.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyed++
	return nil
}

func (s *memSessions) last() *session.Data {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.created) == 0 {
		return nil
	}
	return s.created[len(s.created)-1]
}

// memUsers keeps plain-text passwords.
type memUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*models.User
	passwords map[uuid.UUID]string
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memUsers) Create(ctx context.Context, email, password string) (*models.User, error) {
	if u, _ := m.FindByEmail(ctx, email); u != nil {
		return nil, errors.New("email taken")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email}
	m.byID[u.ID] = u
	m.passwords[u.ID] = password
	return u, nil
}

func (m *memUsers) SetTOTPSecret(_ context.Context, id uuid.UUID, secret string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].TOTPSecret = &secret
	return nil
}

func (m *memUsers) EnableTOTP(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[id].TOTPEnabled = true
	return nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.passwords[u.ID] == password
}

const (
	ownerEmail    = "owner@example.com"
	ownerPassword = "correct horse"
	gateSecret    = "open sesame"
)

// fixture wires the handler groups to in-memory collaborators. The site
// owner has an account and a published default document.
type fixture struct {
	owner    uuid.UUID
	store    *memStore
	cache    *memCache
	sessions *memSessions
	users    *memUsers
	editor   *editor.Manager
	renderer *render.Renderer
	auth     *auth.Service
	hub      *auth.Hub
	gate     *gate.Gate
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rn, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	f := &fixture{
		store:    &memStore{docs: map[uuid.UUID]models.Document{}},
		cache:    &memCache{pages: map[string][]byte{}},
		sessions: &memSessions{},
		users:    &memUsers{byID: map[uuid.UUID]*models.User{}, passwords: map[uuid.UUID]string{}},
		renderer: rn,
		hub:      auth.NewHub(nil),
		gate:     gate.New(gateSecret),
	}
	u, err := f.users.Create(context.Background(), ownerEmail, ownerPassword)
	if err != nil {
		t.Fatal(err)
	}
	f.owner = u.ID
	f.store.docs[f.owner] = models.Default()
	f.editor = editor.NewManager(f.store)
	f.auth = auth.NewService(f.users, f.hub, "Folio Test")
	return f
}

// asOwner returns r carrying a session that may edit owner.
func asOwner(r *http.Request, owner uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), &session.Data{
		UserID:    owner,
		Via:       session.ViaAccount,
		TwoFADone: true,
	}))
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func heroName(doc models.Document) string {
	return doc.Sections[doc.SectionIndex("hero")].Data.(models.HeroData).Name
}
