// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"folio/internal/models"
)

// Seed creates the owner account and publishes the default document for
// it when no user exists yet. An empty email skips seeding.
func Seed(db *sql.DB, email, password string) error {
	if email == "" {
		return nil
	}

	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	if password == "" {
		return fmt.Errorf("seed: owner password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	doc, err := json.Marshal(models.Default())
	if err != nil {
		return fmt.Errorf("seed encode document: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var ownerID string
	err = tx.QueryRow(`
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id
	`, email, string(hash)).Scan(&ownerID)
	if err != nil {
		return fmt.Errorf("seed insert owner: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO portfolios (owner_id, document)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO NOTHING
	`, ownerID, string(doc))
	if err != nil {
		return fmt.Errorf("seed insert portfolio: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with owner account", "email", email)
	return nil
}
