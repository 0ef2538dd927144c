// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"folio/internal/models"
)

// PortfolioStore persists one document per owner as JSONB.
type PortfolioStore struct {
	db *sql.DB
}

// NewPortfolioStore creates a new PortfolioStore with the given database connection.
func NewPortfolioStore(db *sql.DB) *PortfolioStore {
	return &PortfolioStore{db: db}
}

// Load returns the owner's published document. Returns nil if the owner
// has never saved one.
func (s *PortfolioStore) Load(ctx context.Context, ownerID uuid.UUID) (*models.Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM portfolios WHERE owner_id = $1`, ownerID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}

	doc := &models.Document{}
	if err := json.Unmarshal(raw, doc); err != nil {
		return nil, fmt.Errorf("decode portfolio: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

// Save writes the owner's document, replacing any previous one. Saving
// the same document twice leaves the same row.
func (s *PortfolioStore) Save(ctx context.Context, ownerID uuid.UUID, doc models.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode portfolio: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO portfolios (owner_id, document)
		VALUES ($1, $2)
		ON CONFLICT (owner_id) DO UPDATE
		SET document = EXCLUDED.document,
		    revision = portfolios.revision + 1,
		    updated_at = NOW()
	`, ownerID, string(raw))
	if err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	return nil
}

// Delete removes the owner's document. The next Load returns nil.
func (s *PortfolioStore) Delete(ctx context.Context, ownerID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM portfolios WHERE owner_id = $1`, ownerID)
	if err != nil {
		return fmt.Errorf("delete portfolio: %w", err)
	}
	return nil
}
