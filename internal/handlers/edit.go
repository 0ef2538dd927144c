// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"folio/internal/editor"
	"folio/internal/media"
	"folio/internal/metrics"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/mutation"
	"folio/internal/render"
)

// uploadOverhead is the multipart framing allowed on top of the file.
const uploadOverhead = 1 << 20

// Edit groups the owner's edit session endpoints. Every route sits behind
// middleware.RequireOwner, so a session that may edit is always present.
type Edit struct {
	renderer *render.Renderer
	editor   *editor.Manager
	encoder  *media.Encoder
}

// NewEdit creates the edit handler group.
func NewEdit(renderer *render.Renderer, ed *editor.Manager, enc *media.Encoder) *Edit {
	return &Edit{renderer: renderer, editor: ed, encoder: enc}
}

// editResponse is returned by every edit endpoint. Body is the re-rendered
// view of the active page, ready to replace #folio-root.
type editResponse struct {
	Version uint64    `json:"version"`
	Base    uint64    `json:"base"`
	Editing bool      `json:"editing"`
	Created models.ID `json:"created,omitempty"`
	Saved   bool      `json:"saved,omitempty"`
	Body    string    `json:"body"`
}

func owner(r *http.Request) uuid.UUID {
	return middleware.SessionFromCtx(r.Context()).UserID
}

func (e *Edit) respond(w http.ResponseWriter, r *http.Request, snap editor.Snapshot, saved bool) {
	body, err := e.renderer.BodyHTML(render.PageData{
		Mode:      render.ModeFor(snap.Editing),
		Doc:       snap.Doc,
		Active:    activePage(r, snap.Doc),
		Owner:     true,
		CSRFToken: middleware.CSRFTokenFromCtx(r.Context()),
		Version:   snap.Version,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editResponse{
		Version: snap.Version,
		Base:    snap.Base,
		Editing: snap.Editing,
		Created: snap.Created,
		Saved:   saved,
		Body:    body,
	})
}

// Begin enters edit mode.
func (e *Edit) Begin(w http.ResponseWriter, r *http.Request) {
	snap, err := e.editor.Begin(r.Context(), owner(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	e.respond(w, r, snap, false)
}

// Mutate applies one intent to the draft. The body is the intent JSON.
func (e *Edit) Mutate(w http.ResponseWriter, r *http.Request) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		writeErr(w, r, badRequest(err))
		return
	}
	in, err := mutation.ParseIntent(b)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	snap, err := e.editor.Apply(r.Context(), owner(r), in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	e.respond(w, r, snap, false)
}

// Save publishes the draft. A failed save keeps the draft and answers 502.
func (e *Edit) Save(w http.ResponseWriter, r *http.Request) {
	snap, err := e.editor.Save(r.Context(), owner(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	e.respond(w, r, snap, true)
}

// Cancel discards the draft.
func (e *Edit) Cancel(w http.ResponseWriter, r *http.Request) {
	snap, err := e.editor.Cancel(r.Context(), owner(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	e.respond(w, r, snap, false)
}

// Upload embeds a file into the draft. The multipart form carries the
// file, the intent the resulting MediaRef is applied with, and the draft
// base the upload was started at. If the draft was saved or cancelled in
// the meantime the result is dropped with 409.
func (e *Edit) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, models.MaxMediaBytes+uploadOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			metrics.ObserveUpload("rejected")
			writeErr(w, r, media.ErrTooLarge)
			return
		}
		writeErr(w, r, badRequest(err))
		return
	}

	in, err := mutation.ParseIntent([]byte(r.FormValue("intent")))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	base, err := strconv.ParseUint(r.FormValue("base"), 10, 64)
	if err != nil {
		writeErr(w, r, badRequest(err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErr(w, r, badRequest(err))
		return
	}
	defer file.Close()

	ref, err := e.encoder.Encode(r.Context(), file, header.Filename, header.Size)
	switch {
	case errors.Is(err, media.ErrTooLarge), errors.Is(err, media.ErrUnsupported):
		metrics.ObserveUpload("rejected")
		slog.Warn("upload rejected", "name", header.Filename, "size", header.Size, "error", err)
		writeErr(w, r, err)
		return
	case err != nil:
		metrics.ObserveUpload("error")
		writeErr(w, r, err)
		return
	}
	metrics.ObserveUpload("ok")

	in.Value = string(ref)
	snap, err := e.editor.ApplyAt(r.Context(), owner(r), base, in)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	e.respond(w, r, snap, false)
}

// documentResponse is the JSON form of the owner's current document.
type documentResponse struct {
	Version  uint64          `json:"version"`
	Base     uint64          `json:"base"`
	Editing  bool            `json:"editing"`
	Document models.Document `json:"document"`
}

// Document returns the draft while editing, the published document
// otherwise.
func (e *Edit) Document(w http.ResponseWriter, r *http.Request) {
	snap, err := e.editor.Current(r.Context(), owner(r))
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentResponse{
		Version:  snap.Version,
		Base:     snap.Base,
		Editing:  snap.Editing,
		Document: snap.Doc,
	})
}
