// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// folio server: the public page and live channel, account and gate
// sign-in, and the owner's edit API.
package router

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"folio/internal/handlers"
	"folio/internal/metrics"
	"folio/internal/middleware"
)

// Handlers bundles the handler groups the router mounts.
type Handlers struct {
	Public *handlers.Public
	Edit   *handlers.Edit
	Auth   *handlers.Auth
	Gate   *handlers.Gate
	Live   *handlers.Live
}

// Options configures the middleware chain.
type Options struct {
	Sessions      middleware.SessionGetter
	SecureCookies bool
	// Origins allowed to call the API cross-origin. Empty disables CORS.
	Origins []string
	// Limiter throttles sign-in attempts per client IP. May be nil.
	Limiter *middleware.RateLimiter
	// Static is served under /static/.
	Static fs.FS
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(h Handlers, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(metrics.Middleware)
	r.Use(middleware.SecureHeaders)
	if len(opts.Origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.Origins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", middleware.CSRFHeaderName},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Health, metrics and assets: no session, no CSRF.
	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if opts.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(opts.Static))))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(opts.Sessions))
		r.Use(middleware.NewCSRF(opts.SecureCookies))

		r.Get("/", h.Public.Page)
		r.Get("/live", h.Live.ServeHTTP)

		throttled := func(r chi.Router) chi.Router {
			if opts.Limiter == nil {
				return r
			}
			return r.With(opts.Limiter.Middleware)
		}

		r.Route("/auth", func(r chi.Router) {
			throttled(r).Post("/login", h.Auth.Login)
			throttled(r).Post("/register", h.Auth.Register)
			throttled(r).Post("/2fa/verify", h.Auth.TwoFAVerify)
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/logout", h.Auth.Logout)
			r.Get("/me", h.Auth.Me)
		})
		throttled(r).Post("/gate", h.Gate.Unlock)

		// Owner only.
		r.Route("/edit", func(r chi.Router) {
			r.Use(middleware.RequireOwner)
			r.Post("/begin", h.Edit.Begin)
			r.Post("/mutate", h.Edit.Mutate)
			r.Post("/save", h.Edit.Save)
			r.Post("/cancel", h.Edit.Cancel)
			r.Post("/upload", h.Edit.Upload)
			r.Get("/document", h.Edit.Document)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
