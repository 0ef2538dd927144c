// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"folio/internal/auth"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/session"
)

// Auth groups the account endpoints. All of them speak JSON.
type Auth struct {
	auth     *auth.Service
	sessions Sessions
}

// NewAuth creates the account handler group.
func NewAuth(svc *auth.Service, sessions Sessions) *Auth {
	return &Auth{auth: svc, sessions: sessions}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type userResponse struct {
	User         *models.User `json:"user"`
	Via          string       `json:"via,omitempty"`
	CanEdit      bool         `json:"can_edit"`
	TOTPRequired bool         `json:"totp_required,omitempty"`
}

// Login checks the password. Accounts with TOTP enabled either send the
// code along or get a pending session and {"totp_required": true}, to be
// completed through TwoFAVerify.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	ctx := r.Context()

	user, err := a.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	done := !user.RequiresTOTP()
	if !done && req.Code != "" {
		if err := a.auth.VerifyCode(ctx, user.ID, req.Code); err != nil {
			writeErr(w, r, err)
			return
		}
		done = true
	}

	_, err = a.sessions.Create(ctx, w, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Via:       session.ViaAccount,
		TwoFADone: done,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}

	if !done {
		writeJSON(w, http.StatusOK, userResponse{User: user, Via: session.ViaAccount, TOTPRequired: true})
		return
	}
	slog.Info("owner signed in", "user_id", user.ID)
	a.auth.SignedIn(ctx, user.ID, user.Email)
	writeJSON(w, http.StatusOK, userResponse{User: user, Via: session.ViaAccount, CanEdit: true})
}

// Register creates an account and signs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	ctx := r.Context()

	user, err := a.auth.Register(ctx, req.Email, req.Password)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	_, err = a.sessions.Create(ctx, w, &session.Data{
		UserID:    user.ID,
		Email:     user.Email,
		Via:       session.ViaAccount,
		TwoFADone: true,
	})
	if err != nil {
		writeErr(w, r, err)
		return
	}
	a.auth.SignedIn(ctx, user.ID, user.Email)
	writeJSON(w, http.StatusCreated, userResponse{User: user, Via: session.ViaAccount, CanEdit: true})
}

// Logout ends the session. An open draft stays mirrored and resumes on
// the next sign-in.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if err := a.sessions.Destroy(ctx, w, r); err != nil {
		slog.Error("session destroy failed", "error", err)
	}
	if sess != nil {
		a.auth.SignedOut(ctx, sess.UserID)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me describes the current session.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeJSON(w, http.StatusOK, userResponse{})
		return
	}
	user, err := a.auth.CurrentUser(r.Context(), sess.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{
		User:         user,
		Via:          sess.Via,
		CanEdit:      sess.CanEdit(),
		TOTPRequired: !sess.TwoFADone,
	})
}

// TwoFASetup starts TOTP enrollment for a signed-in account and returns
// the secret with its QR code as a data URL.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if !sess.CanEdit() || sess.Via != session.ViaAccount {
		middleware.WriteError(w, http.StatusForbidden, "sign in with your account first")
		return
	}
	secret, qrPNG, err := a.auth.SetupTOTP(r.Context(), sess.UserID)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"secret": secret,
		"qr":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify checks a TOTP code. It completes a pending login, and the
// first valid code after setup enables TOTP for the account.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := middleware.SessionFromCtx(ctx)
	if sess == nil || sess.Via != session.ViaAccount {
		middleware.WriteError(w, http.StatusUnauthorized, "sign in required")
		return
	}
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeErr(w, r, err)
		return
	}
	if err := a.auth.VerifyCode(ctx, sess.UserID, req.Code); err != nil {
		writeErr(w, r, err)
		return
	}

	if !sess.TwoFADone {
		sess.TwoFADone = true
		if err := a.sessions.Update(ctx, r, sess); err != nil {
			writeErr(w, r, err)
			return
		}
		slog.Info("owner signed in", "user_id", sess.UserID)
		a.auth.SignedIn(ctx, sess.UserID, sess.Email)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
