// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"testing"
)

func TestSeedIdempotent(t *testing.T) {
	db, err := Connect(testDSN())
	if err != nil {
		t.Skipf("skipping: DB not available: %v", err)
	}
	defer db.Close()

	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	// Seed only acts on an empty users table. Other packages may be using
	// the same database, so it is called twice without clearing first.
	if err := Seed(db, "owner@folio.local", "owner-pass"); err != nil {
		t.Fatalf("first Seed: %v", err)
	}
	if err := Seed(db, "owner@folio.local", "owner-pass"); err != nil {
		t.Fatalf("second Seed: %v", err)
	}

	var users int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if users < 1 {
		t.Errorf("expected at least 1 user, got %d", users)
	}
}

func TestSeedSkipsWithoutEmail(t *testing.T) {
	// No database needed: an empty email returns before any query.
	if err := Seed(nil, "", ""); err != nil {
		t.Errorf("Seed with empty email: %v", err)
	}
}
