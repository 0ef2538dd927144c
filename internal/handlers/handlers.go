// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP surface of the folio server: the
// visitor page, the owner's edit session API, account and gate sign-in,
// and the live channel.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"folio/internal/auth"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/media"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/mutation"
	"folio/internal/session"
	"folio/internal/store"
)

// errBadRequest marks requests that could not be decoded.
var errBadRequest = errors.New("malformed request")

// maxJSONBody bounds JSON request bodies. Uploads use multipart and have
// their own limit.
const maxJSONBody = 1 << 20

// Sessions is the session storage the sign-in handlers need.
type Sessions interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// PageCache stores rendered visitor pages.
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, html []byte)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write json response failed", "error", err)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest(err)
	}
	return nil
}

func badRequest(err error) error {
	return fmt.Errorf("%w: %v", errBadRequest, err)
}

// statusOf maps an error to its HTTP status and the message shown to the
// client. Unknown errors become a generic 500.
func statusOf(err error) (int, string) {
	var ve *mutation.ValidationError
	var pe *editor.PersistenceError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &pe):
		if pe.Op == "save" {
			return http.StatusBadGateway, "could not save, your draft is kept"
		}
		return http.StatusBadGateway, "could not load the saved portfolio"
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrNoTOTP):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, media.ErrUnsupported):
		return http.StatusUnsupportedMediaType, err.Error()
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidCode):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, gate.ErrWrongSecret):
		return http.StatusUnauthorized, "wrong password"
	case errors.Is(err, gate.ErrDisabled):
		return http.StatusNotFound, "not found"
	case errors.Is(err, editor.ErrSaveInFlight), errors.Is(err, editor.ErrStale),
		errors.Is(err, editor.ErrNoSession), errors.Is(err, store.ErrEmailTaken):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}

// writeErr logs server-side failures and writes the mapped JSON error.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := statusOf(err)
	if status >= 500 {
		slog.Error("request failed", "path", r.URL.Path, "status", status, "error", err)
	}
	middleware.WriteError(w, status, msg)
}

// ownerOf returns the owner a request acts for: the session's owner when
// it may edit, otherwise the public site owner.
func ownerOf(r *http.Request, public uuid.UUID) (uuid.UUID, bool) {
	if sess := middleware.SessionFromCtx(r.Context()); sess.CanEdit() {
		return sess.UserID, true
	}
	return public, false
}

// activePage picks the page named by ?page=, falling back to the first
// menu page when it is missing or unknown.
func activePage(r *http.Request, doc models.Document) models.PageID {
	if p := models.PageID(r.URL.Query().Get("page")); p != "" && doc.HasPage(p) {
		return p
	}
	return doc.FirstPage()
}
