// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor owns the edit sessions. Each owner has one published
// document and, while editing, one draft. Mutations only ever touch the
// draft; Save promotes it, Cancel throws it away. At most one save per
// owner is in flight, and results that were started against a draft that
// has since been saved or cancelled are rejected as stale.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"folio/internal/cache"
	"folio/internal/metrics"
	"folio/internal/models"
	"folio/internal/mutation"
)

var (
	// ErrNoSession is returned for draft operations outside an edit session.
	ErrNoSession = errors.New("no edit session")
	// ErrSaveInFlight is returned when a save is requested while one is running.
	ErrSaveInFlight = errors.New("save already in progress")
	// ErrStale is returned for results started against a superseded draft.
	ErrStale = errors.New("draft has been superseded")
)

// PersistenceError reports a failed load or save. After a failed save the
// draft is kept, so no edit is lost.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s portfolio: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store loads and saves published documents.
type Store interface {
	Load(ctx context.Context, owner uuid.UUID) (*models.Document, error)
	Save(ctx context.Context, owner uuid.UUID, doc models.Document) error
}

// Mirror keeps a copy of drafts outside the process.
type Mirror interface {
	Put(ctx context.Context, owner uuid.UUID, d cache.Draft) error
	Get(ctx context.Context, owner uuid.UUID) (*cache.Draft, error)
	Delete(ctx context.Context, owner uuid.UUID) error
}

// Snapshot is a copy of an owner's session state.
type Snapshot struct {
	Doc     models.Document
	Version uint64 // bumped by every change to the draft
	Base    uint64 // version at which the current draft was started
	Editing bool
	Created models.ID // id created by the last add operation, if any
}

type session struct {
	published models.Document
	draft     models.Document
	version   uint64
	base      uint64
	editing   bool
	saving    bool
}

func (s *session) snapshot() Snapshot {
	doc := s.published
	if s.editing {
		doc = s.draft
	}
	return Snapshot{Doc: doc.Clone(), Version: s.version, Base: s.base, Editing: s.editing}
}

// supersede starts a new draft generation.
func (s *session) supersede() {
	s.version++
	s.base = s.version
}

// Option configures a Manager.
type Option func(*Manager)

// WithMirror mirrors drafts so they survive reconnects and restarts.
func WithMirror(m Mirror) Option {
	return func(mg *Manager) { mg.mirror = m }
}

// OnSaved registers a function called after every successful save.
func OnSaved(f func(ctx context.Context, owner uuid.UUID, doc models.Document)) Option {
	return func(mg *Manager) { mg.onSaved = append(mg.onSaved, f) }
}

// Manager holds the sessions of all owners.
type Manager struct {
	store   Store
	mirror  Mirror
	onSaved []func(ctx context.Context, owner uuid.UUID, doc models.Document)

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// NewManager returns a Manager persisting through store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, sessions: make(map[uuid.UUID]*session)}
	for _, o := range opts {
		o(m)
	}
	return m
}

// load returns the owner's session, reading the published document on
// first use. A missing document starts from the default content. A failed
// load also falls back to the default but is not remembered, so the next
// call retries; the error is returned alongside the usable session.
func (m *Manager) load(ctx context.Context, owner uuid.UUID) (*session, error) {
	if s, ok := m.sessions[owner]; ok {
		return s, nil
	}
	doc, err := m.store.Load(ctx, owner)
	if err != nil {
		slog.Error("load portfolio failed, using default", "owner", owner, "error", err)
		return &session{published: models.Default()}, &PersistenceError{Op: "load", Err: err}
	}
	s := &session{published: models.Default()}
	if doc != nil {
		if err := usable(doc); err != nil {
			slog.Error("stored portfolio is invalid, using default", "owner", owner, "error", err)
			return s, &PersistenceError{Op: "load", Err: err}
		}
		s.published = *doc
	}
	m.sessions[owner] = s
	return s, nil
}

// usable repairs dangling page references in a stored document and
// reports the violations that remain.
func usable(doc *models.Document) error {
	if doc.Validate() == nil {
		return nil
	}
	if doc.Repair() {
		slog.Warn("repaired stored portfolio", "first_page", doc.FirstPage())
	}
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	return nil
}

// Current returns the document the owner currently sees: the draft while
// editing, the published document otherwise. A PersistenceError comes
// with a usable default document.
func (m *Manager) Current(ctx context.Context, owner uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.load(ctx, owner)
	return s.snapshot(), err
}

// Published returns the owner's published document.
func (m *Manager) Published(ctx context.Context, owner uuid.UUID) (models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.load(ctx, owner)
	return s.published.Clone(), err
}

// Begin enters edit mode. The draft starts as a copy of the published
// document, or as the mirrored draft if one survived a reconnect. Calling
// Begin while already editing returns the current draft.
func (m *Manager) Begin(ctx context.Context, owner uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, err := m.load(ctx, owner)
	if err != nil {
		return s.snapshot(), err
	}
	if s.editing {
		return s.snapshot(), nil
	}

	s.draft = s.published.Clone()
	s.supersede()
	if m.mirror != nil {
		d, err := m.mirror.Get(ctx, owner)
		if err != nil {
			slog.Warn("draft mirror read failed", "owner", owner, "error", err)
		} else if d != nil {
			d.Doc.Normalize()
			if err := d.Doc.Validate(); err == nil {
				s.draft = d.Doc
				slog.Info("resumed mirrored draft", "owner", owner, "version", d.Version)
			}
		}
	}
	s.editing = true
	m.mirrorPut(ctx, owner, s)
	return s.snapshot(), nil
}

// Draft returns the current draft.
func (m *Manager) Draft(owner uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[owner]
	if !ok || !s.editing {
		return Snapshot{}, ErrNoSession
	}
	return s.snapshot(), nil
}

// Apply applies an intent to the draft. A rejected intent leaves the
// draft unchanged and returns a *mutation.ValidationError.
func (m *Manager) Apply(ctx context.Context, owner uuid.UUID, in mutation.Intent) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[owner]
	if !ok || !s.editing {
		return Snapshot{}, ErrNoSession
	}
	return m.apply(ctx, owner, s, in)
}

// ApplyAt is Apply for results of work started at draft version base,
// such as an upload. If the draft has since been saved or cancelled the
// result is dropped with ErrStale.
func (m *Manager) ApplyAt(ctx context.Context, owner uuid.UUID, base uint64, in mutation.Intent) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[owner]
	if !ok || !s.editing {
		return Snapshot{}, ErrStale
	}
	if base < s.base {
		slog.Info("discarding stale result", "owner", owner, "op", in.Op, "base", base, "current_base", s.base)
		return s.snapshot(), ErrStale
	}
	return m.apply(ctx, owner, s, in)
}

func (m *Manager) apply(ctx context.Context, owner uuid.UUID, s *session, in mutation.Intent) (Snapshot, error) {
	res, err := mutation.Apply(s.draft, in)
	metrics.ObserveMutation(in.Op, err)
	if err != nil {
		var ve *mutation.ValidationError
		if errors.As(err, &ve) {
			slog.Warn("mutation rejected", "owner", owner, "op", ve.Op, "reason", ve.Reason)
		}
		return s.snapshot(), err
	}
	s.draft = res.Doc
	s.version++
	m.mirrorPut(ctx, owner, s)

	snap := s.snapshot()
	snap.Created = res.Created
	return snap, nil
}

// Cancel leaves edit mode and discards the draft.
func (m *Manager) Cancel(ctx context.Context, owner uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[owner]
	if !ok || !s.editing {
		return Snapshot{}, ErrNoSession
	}
	s.draft = s.published.Clone()
	s.editing = false
	s.supersede()
	m.mirrorDelete(ctx, owner)
	return s.snapshot(), nil
}

// Save persists the draft and makes it the published document. While the
// store call runs the draft stays editable; a second Save returns
// ErrSaveInFlight. On failure the draft is kept and a *PersistenceError
// is returned. When no edit arrived during the store call the session
// leaves edit mode.
func (m *Manager) Save(ctx context.Context, owner uuid.UUID) (Snapshot, error) {
	m.mu.Lock()
	s, ok := m.sessions[owner]
	if !ok || !s.editing {
		m.mu.Unlock()
		return Snapshot{}, ErrNoSession
	}
	if s.saving {
		m.mu.Unlock()
		return s.snapshot(), ErrSaveInFlight
	}
	s.saving = true
	doc := s.draft.Clone()
	started := s.version
	m.mu.Unlock()

	err := m.store.Save(ctx, owner, doc)
	metrics.ObserveSave(err)

	m.mu.Lock()
	s.saving = false
	if err != nil {
		snap := s.snapshot()
		m.mu.Unlock()
		slog.Error("save portfolio failed, draft kept", "owner", owner, "error", err)
		return snap, &PersistenceError{Op: "save", Err: err}
	}

	s.published = doc
	if s.version == started {
		s.draft = doc.Clone()
		s.editing = false
		s.supersede()
		m.mirrorDelete(ctx, owner)
	}
	snap := s.snapshot()
	m.mu.Unlock()

	slog.Info("portfolio saved", "owner", owner, "version", started)
	for _, f := range m.onSaved {
		f(ctx, owner, doc.Clone())
	}
	return snap, nil
}

// Replace publishes doc directly, bypassing any edit session. Used by
// imports.
func (m *Manager) Replace(ctx context.Context, owner uuid.UUID, doc models.Document) error {
	doc.Normalize()
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document: %w", err)
	}
	if err := m.store.Save(ctx, owner, doc); err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	m.mu.Lock()
	delete(m.sessions, owner)
	m.mu.Unlock()
	m.mirrorDelete(ctx, owner)
	for _, f := range m.onSaved {
		f(ctx, owner, doc.Clone())
	}
	return nil
}

func (m *Manager) mirrorPut(ctx context.Context, owner uuid.UUID, s *session) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.Put(ctx, owner, cache.Draft{Version: s.version, Doc: s.draft}); err != nil {
		slog.Warn("draft mirror write failed", "owner", owner, "error", err)
	}
}

func (m *Manager) mirrorDelete(ctx context.Context, owner uuid.UUID) {
	if m.mirror == nil {
		return
	}
	if err := m.mirror.Delete(ctx, owner); err != nil {
		slog.Warn("draft mirror delete failed", "owner", owner, "error", err)
	}
}
