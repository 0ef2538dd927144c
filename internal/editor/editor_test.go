// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"folio/internal/cache"
	"folio/internal/models"
	"folio/internal/mutation"
)

// memStore is an in-memory Store. When gate is set, Save blocks until a
// value is received from it.
type memStore struct {
	mu      sync.Mutex
	docs    map[uuid.UUID]models.Document
	saves   int
	loadErr error
	saveErr error
	gate    chan struct{}
	entered chan struct{}
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[uuid.UUID]models.Document)}
}

func (s *memStore) Load(_ context.Context, owner uuid.UUID) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	d, ok := s.docs[owner]
	if !ok {
		return nil, nil
	}
	d = d.Clone()
	return &d, nil
}

func (s *memStore) Save(_ context.Context, owner uuid.UUID, doc models.Document) error {
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.docs[owner] = doc.Clone()
	return nil
}

type memMirror struct {
	mu     sync.Mutex
	drafts map[uuid.UUID]cache.Draft
}

func (m *memMirror) Put(_ context.Context, owner uuid.UUID, d cache.Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.Doc = d.Doc.Clone()
	m.drafts[owner] = d
	return nil
}

func (m *memMirror) Get(_ context.Context, owner uuid.UUID) (*cache.Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[owner]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (m *memMirror) Delete(_ context.Context, owner uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, owner)
	return nil
}

func heroName(doc models.Document) string {
	return doc.Sections[doc.SectionIndex("hero")].Data.(models.HeroData).Name
}

var setName = mutation.Intent{Op: "setField", Section: "hero", Field: "name", Value: "X"}

func TestCancelLeavesPublishedUnchanged(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	m := NewManager(st)
	owner := uuid.New()

	if _, err := m.Begin(ctx, owner); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	snap, err := m.Apply(ctx, owner, setName)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if heroName(snap.Doc) != "X" {
		t.Fatalf("draft name = %q", heroName(snap.Doc))
	}

	snap, err = m.Cancel(ctx, owner)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if snap.Editing {
		t.Error("still editing after Cancel")
	}
	pub, _ := m.Published(ctx, owner)
	if heroName(pub) != heroName(models.Default()) {
		t.Errorf("published name = %q", heroName(pub))
	}
	if st.saves != 0 {
		t.Error("Cancel reached the store")
	}
}

func TestSavePublishesDraft(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	var saved []uuid.UUID
	m := NewManager(st, OnSaved(func(_ context.Context, owner uuid.UUID, _ models.Document) {
		saved = append(saved, owner)
	}))
	owner := uuid.New()

	m.Begin(ctx, owner)
	m.Apply(ctx, owner, setName)
	snap, err := m.Save(ctx, owner)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if snap.Editing {
		t.Error("still editing after Save")
	}
	if heroName(snap.Doc) != "X" {
		t.Errorf("snapshot name = %q", heroName(snap.Doc))
	}
	pub, _ := m.Published(ctx, owner)
	if heroName(pub) != "X" || heroName(st.docs[owner]) != "X" {
		t.Errorf("published = %q, stored = %q", heroName(pub), heroName(st.docs[owner]))
	}
	if len(saved) != 1 || saved[0] != owner {
		t.Errorf("OnSaved calls = %v", saved)
	}

	// A new session starts from the saved document.
	snap, _ = m.Begin(ctx, owner)
	if heroName(snap.Doc) != "X" {
		t.Errorf("new draft name = %q", heroName(snap.Doc))
	}
}

func TestSingleSaveInFlight(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.gate = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	m := NewManager(st)
	owner := uuid.New()

	m.Begin(ctx, owner)
	m.Apply(ctx, owner, setName)

	first := make(chan error, 1)
	go func() {
		_, err := m.Save(ctx, owner)
		first <- err
	}()
	<-st.entered

	if _, err := m.Save(ctx, owner); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second Save: got %v, want ErrSaveInFlight", err)
	}

	close(st.gate)
	select {
	case err := <-first:
		if err != nil {
			t.Fatalf("first Save: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("first Save did not finish")
	}
	if st.saves != 1 {
		t.Errorf("store saves = %d, want 1", st.saves)
	}
}

func TestEditDuringSaveKeepsEditing(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.gate = make(chan struct{})
	st.entered = make(chan struct{}, 1)
	m := NewManager(st)
	owner := uuid.New()

	m.Begin(ctx, owner)
	m.Apply(ctx, owner, setName)

	done := make(chan Snapshot, 1)
	go func() {
		snap, _ := m.Save(ctx, owner)
		done <- snap
	}()
	<-st.entered

	later := mutation.Intent{Op: "setField", Section: "hero", Field: "name", Value: "Y"}
	if _, err := m.Apply(ctx, owner, later); err != nil {
		t.Fatalf("Apply during save: %v", err)
	}
	close(st.gate)
	snap := <-done

	if !snap.Editing || heroName(snap.Doc) != "Y" {
		t.Errorf("editing = %v, draft name = %q", snap.Editing, heroName(snap.Doc))
	}
	pub, _ := m.Published(ctx, owner)
	if heroName(pub) != "X" {
		t.Errorf("published name = %q, want the saved X", heroName(pub))
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.saveErr = errors.New("connection reset")
	m := NewManager(st)
	owner := uuid.New()

	m.Begin(ctx, owner)
	m.Apply(ctx, owner, setName)
	snap, err := m.Save(ctx, owner)

	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "save" {
		t.Fatalf("Save: got %v, want *PersistenceError", err)
	}
	if !snap.Editing || heroName(snap.Doc) != "X" {
		t.Errorf("draft lost: editing = %v, name = %q", snap.Editing, heroName(snap.Doc))
	}

	st.saveErr = nil
	if _, err := m.Save(ctx, owner); err != nil {
		t.Fatalf("retry Save: %v", err)
	}
	if heroName(st.docs[owner]) != "X" {
		t.Error("retry did not persist the kept draft")
	}
}

func TestStaleResultsDiscarded(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStore())
	owner := uuid.New()

	snap, _ := m.Begin(ctx, owner)
	base := snap.Base

	// An upload started in this session still applies after other edits.
	m.Apply(ctx, owner, setName)
	img := mutation.Intent{Op: "setField", Section: "hero", Field: "image", Value: "data:image/png;base64,AAAA"}
	if _, err := m.ApplyAt(ctx, owner, base, img); err != nil {
		t.Fatalf("ApplyAt in same session: %v", err)
	}

	// After cancel and a new session, the old upload is stale.
	m.Cancel(ctx, owner)
	if _, err := m.ApplyAt(ctx, owner, base, img); !errors.Is(err, ErrStale) {
		t.Errorf("ApplyAt after cancel: got %v, want ErrStale", err)
	}
	m.Begin(ctx, owner)
	snap, err := m.ApplyAt(ctx, owner, base, img)
	if !errors.Is(err, ErrStale) {
		t.Errorf("ApplyAt in new session: got %v, want ErrStale", err)
	}
	if snap.Doc.Sections[0].Data.(models.HeroData).Image == "data:image/png;base64,AAAA" {
		t.Error("stale upload reached the new draft")
	}
}

func TestValidationErrorLeavesDraft(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStore())
	owner := uuid.New()

	before, _ := m.Begin(ctx, owner)
	snap, err := m.Apply(ctx, owner, mutation.Intent{Op: "removeSection", Section: "ghost"})
	if !mutation.IsValidation(err) {
		t.Fatalf("got %v, want validation error", err)
	}
	if snap.Version != before.Version {
		t.Errorf("version moved from %d to %d", before.Version, snap.Version)
	}
}

func TestVersionIsMonotonic(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStore())
	owner := uuid.New()

	var last uint64
	check := func(s Snapshot) {
		t.Helper()
		if s.Version <= last {
			t.Errorf("version %d after %d", s.Version, last)
		}
		last = s.Version
	}
	s, _ := m.Begin(ctx, owner)
	check(s)
	s, _ = m.Apply(ctx, owner, setName)
	check(s)
	s, _ = m.Cancel(ctx, owner)
	check(s)
	s, _ = m.Begin(ctx, owner)
	check(s)
	s, _ = m.Save(ctx, owner)
	check(s)
}

func TestNoSession(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStore())
	owner := uuid.New()

	if _, err := m.Apply(ctx, owner, setName); !errors.Is(err, ErrNoSession) {
		t.Errorf("Apply: %v", err)
	}
	if _, err := m.Save(ctx, owner); !errors.Is(err, ErrNoSession) {
		t.Errorf("Save: %v", err)
	}
	if _, err := m.Cancel(ctx, owner); !errors.Is(err, ErrNoSession) {
		t.Errorf("Cancel: %v", err)
	}
	if _, err := m.Draft(owner); !errors.Is(err, ErrNoSession) {
		t.Errorf("Draft: %v", err)
	}
}

func TestLoadFailureFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	st.loadErr = errors.New("db down")
	m := NewManager(st)
	owner := uuid.New()

	snap, err := m.Current(ctx, owner)
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "load" {
		t.Fatalf("Current: got %v, want load PersistenceError", err)
	}
	if len(snap.Doc.Sections) != 4 {
		t.Error("fallback is not the default document")
	}

	// Recovery: the failure was not cached.
	st.loadErr = nil
	st.docs[owner] = models.Default()
	if _, err := m.Current(ctx, owner); err != nil {
		t.Errorf("Current after recovery: %v", err)
	}
}

func TestDanglingPageIsRepairedOnLoad(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	owner := uuid.New()
	doc := models.Default()
	doc.Sections[3].Page = "GONE"
	st.docs[owner] = doc

	m := NewManager(st)
	if _, err := m.Begin(ctx, owner); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	snap, err := m.Apply(ctx, owner, mutation.Intent{Op: "setField", Section: "hero", Field: "name", Value: "X"})
	if err != nil {
		t.Fatalf("unrelated edit rejected: %v", err)
	}
	if got := snap.Doc.Sections[3].Page; got != "HOME" {
		t.Errorf("orphaned section page = %q, want HOME", got)
	}
}

func TestUnrepairableDocumentFallsBack(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	owner := uuid.New()
	doc := models.Default()
	doc.Sections[1].ID = doc.Sections[0].ID
	st.docs[owner] = doc

	m := NewManager(st)
	snap, err := m.Current(ctx, owner)
	var pe *PersistenceError
	if !errors.As(err, &pe) || pe.Op != "load" {
		t.Fatalf("Current: got %v, want load PersistenceError", err)
	}
	if err := snap.Doc.Validate(); err != nil {
		t.Errorf("fallback document is invalid: %v", err)
	}
}

func TestMirrorResumesDraft(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	mirror := &memMirror{drafts: make(map[uuid.UUID]cache.Draft)}
	owner := uuid.New()

	first := NewManager(st, WithMirror(mirror))
	first.Begin(ctx, owner)
	first.Apply(ctx, owner, setName)
	if _, ok := mirror.drafts[owner]; !ok {
		t.Fatal("draft not mirrored")
	}

	// A fresh manager, as after a restart, resumes the mirrored draft.
	second := NewManager(st, WithMirror(mirror))
	snap, err := second.Begin(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if heroName(snap.Doc) != "X" {
		t.Errorf("resumed name = %q", heroName(snap.Doc))
	}

	second.Cancel(ctx, owner)
	if _, ok := mirror.drafts[owner]; ok {
		t.Error("mirror kept the cancelled draft")
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	st := newMemStore()
	m := NewManager(st)
	owner := uuid.New()

	doc, _ := mutation.SetField(models.Default(), "hero", "name", "Imported")
	if err := m.Replace(ctx, owner, doc); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	pub, _ := m.Published(ctx, owner)
	if heroName(pub) != "Imported" {
		t.Errorf("published name = %q", heroName(pub))
	}

	bad := models.Default()
	bad.Sections[0].Page = "NOWHERE"
	if err := m.Replace(ctx, owner, bad); err == nil {
		t.Error("Replace accepted an invalid document")
	}
}
