// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package gate implements the shared-secret unlock: a hidden affordance
// revealed by rapid footer taps, and a constant-time secret check.
package gate

import (
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"sync"
	"time"
)

// ErrDisabled is returned by Check when no secret is configured.
var ErrDisabled = errors.New("gate disabled")

// ErrWrongSecret is returned by Check for a mismatch.
var ErrWrongSecret = errors.New("wrong secret")

// Gate compares submitted secrets against the configured one.
type Gate struct {
	sum     [sha256.Size]byte
	enabled bool
}

// New returns a Gate for secret. An empty secret disables the gate.
func New(secret string) *Gate {
	if secret == "" {
		return &Gate{}
	}
	return &Gate{sum: sha256.Sum256([]byte(secret)), enabled: true}
}

// Enabled reports whether a secret is configured.
func (g *Gate) Enabled() bool { return g.enabled }

// Check compares submitted with the secret in constant time. Both sides
// are hashed first so the comparison does not leak the secret length.
func (g *Gate) Check(submitted string) error {
	if !g.enabled {
		return ErrDisabled
	}
	got := sha256.Sum256([]byte(submitted))
	if subtle.ConstantTimeCompare(got[:], g.sum[:]) != 1 {
		return ErrWrongSecret
	}
	return nil
}

// Taps needed to reveal the unlock dialog, and the window they must fall in.
const (
	Taps   = 3
	Window = 1500 * time.Millisecond
)

// Tapper counts footer taps. Tap reports true on the tap that completes a
// run of Taps within Window, then starts counting afresh.
type Tapper struct {
	now func() time.Time

	mu    sync.Mutex
	times []time.Time
}

// NewTapper returns a Tapper using now as its clock; nil means time.Now.
func NewTapper(now func() time.Time) *Tapper {
	if now == nil {
		now = time.Now
	}
	return &Tapper{now: now}
}

// Tap records one tap.
func (t *Tapper) Tap() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	kept := t.times[:0]
	for _, at := range t.times {
		if now.Sub(at) < Window {
			kept = append(kept, at)
		}
	}
	t.times = append(kept, now)
	if len(t.times) >= Taps {
		t.times = t.times[:0]
		return true
	}
	return false
}

// Reset forgets recorded taps.
func (t *Tapper) Reset() {
	t.mu.Lock()
	t.times = t.times[:0]
	t.mu.Unlock()
}
