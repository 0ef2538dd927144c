// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"folio/internal/cache"
	"folio/internal/database"
	"folio/internal/editor"
	"folio/internal/models"
	"folio/internal/store"
)

var exportOut string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(db)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <owner-email>",
	Short: "Write an owner's published document as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <owner-email> <file>",
	Short: "Validate a JSON document and publish it for an owner",
	Long: `Import reads a document previously written by export (use "-" for
stdin), validates it, and publishes it for the owner. Any draft the owner
has open is discarded and cached pages are invalidated.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(migrateCmd, exportCmd, importCmd)
}

func openDB() (*sql.DB, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return database.Connect(cfg.DSN())
}

// ownerID resolves an owner's account by email.
func ownerID(ctx context.Context, db *sql.DB, email string) (uuid.UUID, error) {
	u, err := store.NewUserStore(db).FindByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find owner: %w", err)
	}
	if u == nil {
		return uuid.Nil, fmt.Errorf("no account for %q", email)
	}
	return u.ID, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	owner, err := ownerID(ctx, db, args[0])
	if err != nil {
		return err
	}

	doc, err := store.NewPortfolioStore(db).Load(ctx, owner)
	if err != nil {
		return err
	}
	if doc == nil {
		d := models.Default()
		doc = &d
		slog.Warn("owner has no saved document, exporting the default", "owner", args[0])
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := cmd.Context()
	owner, err := ownerID(ctx, db, args[0])
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if args[1] != "-" {
		f, err := os.Open(args[1])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[1], err)
		}
		defer f.Close()
		r = f
	}

	var doc models.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return fmt.Errorf("decode %s: %w", args[1], err)
	}

	var opts []editor.Option
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("valkey unavailable, cached pages expire on their own", "error", err)
	} else {
		defer valkeyClient.Close()
		pages := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)
		opts = append(opts,
			editor.WithMirror(cache.NewDraftMirror(valkeyClient, cache.DefaultDraftTTL)),
			editor.OnSaved(func(ctx context.Context, owner uuid.UUID, _ models.Document) {
				pages.InvalidateOwner(ctx, owner)
			}),
		)
	}

	if err := editor.NewManager(store.NewPortfolioStore(db), opts...).Replace(ctx, owner, doc); err != nil {
		return err
	}
	slog.Info("document imported", "owner", args[0], "sections", len(doc.Sections))
	return nil
}
