// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"folio/internal/cache"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/render"
)

// loadNotice is shown to an owner whose saved portfolio could not be read.
const loadNotice = "Your saved portfolio could not be loaded. Showing the default content."

// Public serves the portfolio page. Visitors get the published document
// in read-only mode, served from the page cache when possible. A signed-in
// owner gets their own document, in edit mode while a draft is open.
type Public struct {
	renderer *render.Renderer
	editor   *editor.Manager
	pages    PageCache
	gate     *gate.Gate
	owner    uuid.UUID
}

// NewPublic creates the page handler. owner is the account whose site
// visitors see. pages may be nil to disable caching.
func NewPublic(renderer *render.Renderer, ed *editor.Manager, pages PageCache, g *gate.Gate, owner uuid.UUID) *Public {
	return &Public{renderer: renderer, editor: ed, pages: pages, gate: g, owner: owner}
}

// Page renders GET / and GET /?page=ID. An unknown page redirects to /.
func (p *Public) Page(w http.ResponseWriter, r *http.Request) {
	if owner, ok := ownerOf(r, p.owner); ok {
		p.ownerPage(w, r, owner)
		return
	}
	p.visitorPage(w, r)
}

func (p *Public) visitorPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := models.PageID(r.URL.Query().Get("page"))
	key := cache.PageKey(p.owner, page)

	if p.pages != nil {
		if cached, ok := p.pages.Get(ctx, key); ok {
			writeHTML(w, cached)
			return
		}
	}

	// A failed load still returns the default document. It is shown but
	// not cached, so the next request retries the database.
	doc, err := p.editor.Published(ctx, p.owner)
	cacheable := err == nil

	switch {
	case page == "":
		page = doc.FirstPage()
	case !doc.HasPage(page):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var b bytes.Buffer
	err = p.renderer.Page(&b, render.PageData{
		Mode:        render.ReadOnly,
		Doc:         doc,
		Active:      page,
		GateEnabled: p.gate.Enabled(),
	})
	if err != nil {
		slog.Error("render visitor page failed", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if cacheable && p.pages != nil {
		p.pages.Set(ctx, key, b.Bytes())
	}
	writeHTML(w, b.Bytes())
}

func (p *Public) ownerPage(w http.ResponseWriter, r *http.Request, owner uuid.UUID) {
	ctx := r.Context()
	snap, err := p.editor.Current(ctx, owner)
	notice := ""
	if err != nil {
		notice = loadNotice
	}

	page := models.PageID(r.URL.Query().Get("page"))
	switch {
	case page == "":
		page = snap.Doc.FirstPage()
	case !snap.Doc.HasPage(page):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var b bytes.Buffer
	err = p.renderer.Page(&b, render.PageData{
		Mode:      render.ModeFor(snap.Editing),
		Doc:       snap.Doc,
		Active:    page,
		Owner:     true,
		CSRFToken: middleware.CSRFTokenFromCtx(ctx),
		Version:   snap.Version,
		Notice:    notice,
	})
	if err != nil {
		slog.Error("render owner page failed", "owner", owner, "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeHTML(w, b.Bytes())
}

func writeHTML(w http.ResponseWriter, html []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(html); err != nil {
		slog.Debug("write page failed", "error", err)
	}
}
