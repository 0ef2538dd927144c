// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"folio/internal/auth"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/session"
)

// Gate serves the shared-secret unlock.
type Gate struct {
	gate     *gate.Gate
	sessions Sessions
	auth     *auth.Service
	editor   *editor.Manager
	owner    uuid.UUID
}

// NewGate creates the unlock handler. A successful unlock grants a session
// for owner, the account whose site visitors see.
func NewGate(g *gate.Gate, sessions Sessions, svc *auth.Service, ed *editor.Manager, owner uuid.UUID) *Gate {
	return &Gate{gate: g, sessions: sessions, auth: svc, editor: ed, owner: owner}
}

// Unlock checks the submitted secret. On success the session may edit the
// owner's site and edit mode starts right away.
func (g *Gate) Unlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Secret string `json:"secret"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := g.gate.Check(req.Secret); err != nil {
		slog.Warn("gate unlock refused", "error", err)
		writeErr(w, r, err)
		return
	}

	ctx := r.Context()
	_, err := g.sessions.Create(ctx, w, &session.Data{
		UserID:    g.owner,
		Via:       session.ViaGate,
		TwoFADone: true,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	g.auth.SignedIn(ctx, g.owner, "")

	snap, err := g.editor.Begin(ctx, g.owner)
	if err != nil {
		slog.Error("begin edit after unlock failed", "owner", g.owner, "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "editing": snap.Editing})
}
