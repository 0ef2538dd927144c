// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/auth"
	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/database"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/handlers"
	"folio/internal/media"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/render"
	"folio/internal/router"
	"folio/internal/session"
	"folio/internal/storage"
	"folio/internal/store"
	"folio/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.OwnerEmail == "" {
		return fmt.Errorf("%sOWNER_EMAIL is required", config.EnvPrefix)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		return err
	}

	// Create the owner account on first start (no-op once users exist).
	if err := database.Seed(db, cfg.OwnerEmail, cfg.OwnerPassword); err != nil {
		return err
	}

	// Connect to Valkey (sessions, page cache, draft mirror, auth events).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return err
	}
	defer valkeyClient.Close()

	sessionStore := session.NewStore(valkeyClient, cfg.SecureCookies)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
	drafts := cache.NewDraftMirror(valkeyClient, cache.DefaultDraftTTL)

	hub := auth.NewHub(valkeyClient)
	go hub.Run(ctx)

	userStore := store.NewUserStore(db)
	portfolioStore := store.NewPortfolioStore(db)

	// Resolve whose portfolio visitors see.
	owner, err := userStore.FindByEmail(ctx, cfg.OwnerEmail)
	if err != nil {
		return fmt.Errorf("resolve owner: %w", err)
	}
	if owner == nil {
		return fmt.Errorf("owner account %q not found; set %sOWNER_PASSWORD to create it",
			cfg.OwnerEmail, config.EnvPrefix)
	}

	// Connect to S3-compatible object storage (optional; uploads are
	// embedded as data URLs without it).
	encOpts := []media.Option{media.WithMaxWidth(cfg.MediaMaxWidth)}
	storageClient, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3Bucket, cfg.S3PublicURL,
	)
	if err != nil {
		return fmt.Errorf("initialize s3 storage: %w", err)
	}
	if storageClient != nil {
		encOpts = append(encOpts, media.WithStore(storageClient))
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("s3 storage not configured, uploads are embedded")
	}

	ed := editor.NewManager(portfolioStore,
		editor.WithMirror(drafts),
		editor.OnSaved(func(ctx context.Context, owner uuid.UUID, _ models.Document) {
			pageCache.InvalidateOwner(ctx, owner)
		}),
	)

	renderer, err := render.New()
	if err != nil {
		return fmt.Errorf("initialize template renderer: %w", err)
	}

	g := gate.New(cfg.GateSecret)
	if !g.Enabled() {
		slog.Info("gate disabled, accounts only")
	}

	authService := auth.NewService(userStore, hub, cfg.TOTPIssuer)

	limiter := middleware.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	defer limiter.Stop()

	static, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	r := router.New(router.Handlers{
		Public: handlers.NewPublic(renderer, ed, pageCache, g, owner.ID),
		Edit:   handlers.NewEdit(renderer, ed, media.NewEncoder(encOpts...)),
		Auth:   handlers.NewAuth(authService, sessionStore),
		Gate:   handlers.NewGate(g, sessionStore, authService, ed, owner.ID),
		Live:   handlers.NewLive(renderer, ed, hub, g, owner.ID, cfg.Origins()),
	}, router.Options{
		Sessions:      sessionStore,
		SecureCookies: cfg.SecureCookies,
		Origins:       cfg.Origins(),
		Limiter:       limiter,
		Static:        static,
	})

	// ReadTimeout covers upload bodies. Hijacked live connections manage
	// their own deadlines.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "owner", cfg.OwnerEmail)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
