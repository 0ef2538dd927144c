// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventKind names an auth state change.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is delivered to OnAuthStateChange listeners.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email,omitempty"`
}

// channel is the Valkey pub/sub channel shared by all server instances.
const channel = "folio:auth"

// listenerBuffer bounds the events queued for a slow listener.
const listenerBuffer = 16

type listener struct {
	fn   func(Event)
	ch   chan Event
	done chan struct{}
}

// Hub fans auth events out to in-process listeners. With a Valkey client
// events travel through pub/sub so listeners on every instance see them;
// without one they are delivered locally.
type Hub struct {
	client *redis.Client

	mu        sync.Mutex
	listeners map[*listener]struct{}
}

// NewHub returns a Hub. client may be nil.
func NewHub(client *redis.Client) *Hub {
	return &Hub{client: client, listeners: make(map[*listener]struct{})}
}

// OnAuthStateChange registers fn for every event. Each listener receives
// events in order on its own goroutine. The returned function removes the
// listener; it is safe to call more than once.
func (h *Hub) OnAuthStateChange(fn func(Event)) (unsubscribe func()) {
	l := &listener{fn: fn, ch: make(chan Event, listenerBuffer), done: make(chan struct{})}
	go func() {
		for {
			select {
			case ev := <-l.ch:
				l.fn(ev)
			case <-l.done:
				return
			}
		}
	}()

	h.mu.Lock()
	h.listeners[l] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, l)
			h.mu.Unlock()
			close(l.done)
		})
	}
}

// Publish sends ev to all listeners. Publishing never blocks on
// listeners; a listener whose queue is full misses the event.
func (h *Hub) Publish(ctx context.Context, ev Event) {
	if h.client == nil {
		h.dispatch(ev)
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("auth event marshal failed", "error", err)
		return
	}
	if err := h.client.Publish(ctx, channel, payload).Err(); err != nil {
		slog.Warn("auth event publish failed, delivering locally", "error", err)
		h.dispatch(ev)
	}
}

// Run relays events from Valkey to local listeners until ctx is done.
// It returns immediately for a Hub without a client.
func (h *Hub) Run(ctx context.Context) {
	if h.client == nil {
		return
	}
	sub := h.client.Subscribe(ctx, channel)
	defer sub.Close()

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				slog.Warn("ignoring malformed auth event", "error", err)
				continue
			}
			h.dispatch(ev)
		}
	}
}

func (h *Hub) dispatch(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for l := range h.listeners {
		select {
		case l.ch <- ev:
		default:
			slog.Warn("auth listener queue full, dropping event", "kind", ev.Kind)
		}
	}
}
