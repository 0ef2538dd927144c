// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"folio/internal/models"
)

const (
	draftKeyPrefix = "draft:"

	// DefaultDraftTTL bounds how long an abandoned draft can be resumed.
	DefaultDraftTTL = 24 * time.Hour
)

// Draft is a mirrored edit session.
type Draft struct {
	Version uint64          `json:"version"`
	Doc     models.Document `json:"doc"`
}

// DraftMirror keeps a copy of each owner's draft in Valkey.
type DraftMirror struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftMirror creates a draft mirror backed by the given Valkey client.
func NewDraftMirror(client *redis.Client, ttl time.Duration) *DraftMirror {
	if ttl == 0 {
		ttl = DefaultDraftTTL
	}
	return &DraftMirror{client: client, ttl: ttl}
}

// Put stores the owner's draft, replacing any previous one.
func (m *DraftMirror) Put(ctx context.Context, owner uuid.UUID, d Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := m.client.Set(ctx, draftKeyPrefix+owner.String(), raw, m.ttl).Err(); err != nil {
		return fmt.Errorf("store draft: %w", err)
	}
	return nil
}

// Get returns the owner's mirrored draft, or nil if there is none.
func (m *DraftMirror) Get(ctx context.Context, owner uuid.UUID) (*Draft, error) {
	raw, err := m.client.Get(ctx, draftKeyPrefix+owner.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	d := &Draft{}
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return d, nil
}

// Delete drops the owner's mirrored draft.
func (m *DraftMirror) Delete(ctx context.Context, owner uuid.UUID) error {
	if err := m.client.Del(ctx, draftKeyPrefix+owner.String()).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
