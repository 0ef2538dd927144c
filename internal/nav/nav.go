// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package nav implements tab navigation with a cross-fade. A navigation
// request hides the content, waits for the dwell interval, then swaps the
// active page and scrolls back to the top.
package nav

import (
	"errors"
	"slices"
	"sync"
	"time"

	"folio/internal/models"
)

// Dwell is how long content stays hidden before the page swap.
const Dwell = 300 * time.Millisecond

// ErrUnknownPage is returned when navigating to a page not in the menu.
var ErrUnknownPage = errors.New("nav: unknown page")

// State is the navigator state.
type State int

const (
	Steady State = iota
	Transitioning
)

func (s State) String() string {
	if s == Transitioning {
		return "transitioning"
	}
	return "steady"
}

// EventKind names what a navigation Event announces.
type EventKind string

const (
	// FadeOut is sent when content is hidden at the start of a transition.
	FadeOut EventKind = "fade-out"
	// Swap is sent after the dwell, once the new page is active.
	Swap EventKind = "swap"
)

// Event is delivered to the navigator's listener.
type Event struct {
	Kind      EventKind
	From      models.PageID
	To        models.PageID
	ScrollTop int
}

// Timer is the part of *time.Timer the navigator needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d, like time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

// Option configures a Navigator.
type Option func(*Navigator)

// WithDwell overrides the dwell interval.
func WithDwell(d time.Duration) Option {
	return func(n *Navigator) { n.dwell = d }
}

// WithAfterFunc replaces the timer used for the dwell.
func WithAfterFunc(f AfterFunc) Option {
	return func(n *Navigator) { n.after = f }
}

// Navigator tracks the active page of one client.
type Navigator struct {
	mu       sync.Mutex
	pages    []models.PageID
	state    State
	active   models.PageID
	to       models.PageID
	scroll   int
	dwell    time.Duration
	after    AfterFunc
	timer    Timer
	listener func(Event)
}

// New returns a navigator showing start. listener, if non-nil, receives
// FadeOut and Swap events; it is called without the navigator's lock held.
func New(pages []models.PageID, start models.PageID, listener func(Event), opts ...Option) *Navigator {
	n := &Navigator{
		pages:    slices.Clone(pages),
		active:   start,
		dwell:    Dwell,
		listener: listener,
		after: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// PagesOf returns the menu page ids of doc.
func PagesOf(doc models.Document) []models.PageID {
	out := make([]models.PageID, len(doc.Nav.Menu))
	for i, m := range doc.Nav.Menu {
		out[i] = m.ID
	}
	return out
}

// Navigate requests a switch to page to. It returns false when the
// request is ignored: while editing, or while a transition is running.
func (n *Navigator) Navigate(to models.PageID, editing bool) (bool, error) {
	n.mu.Lock()
	if !slices.Contains(n.pages, to) {
		n.mu.Unlock()
		return false, ErrUnknownPage
	}
	if editing || n.state == Transitioning {
		n.mu.Unlock()
		return false, nil
	}
	from := n.active
	n.state = Transitioning
	n.to = to
	n.timer = n.after(n.dwell, n.finish)
	n.mu.Unlock()

	n.emit(Event{Kind: FadeOut, From: from, To: to, ScrollTop: n.Scroll()})
	return true, nil
}

func (n *Navigator) finish() {
	n.mu.Lock()
	if n.state != Transitioning {
		n.mu.Unlock()
		return
	}
	from := n.active
	n.active = n.to
	n.to = ""
	n.scroll = 0
	n.state = Steady
	n.timer = nil
	to := n.active
	n.mu.Unlock()

	n.emit(Event{Kind: Swap, From: from, To: to, ScrollTop: 0})
}

func (n *Navigator) emit(e Event) {
	if n.listener != nil {
		n.listener(e)
	}
}

// Scrolled records the client's scroll position.
func (n *Navigator) Scrolled(top int) {
	n.mu.Lock()
	n.scroll = top
	n.mu.Unlock()
}

// Scroll returns the last recorded scroll position.
func (n *Navigator) Scroll() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.scroll
}

// Active returns the active page.
func (n *Navigator) Active() models.PageID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.active
}

// State returns the current state.
func (n *Navigator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Close stops a pending transition. The active page stays as it was.
func (n *Navigator) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.state = Steady
	n.to = ""
}
