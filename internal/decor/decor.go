// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package decor implements free-form dragging of decoration shapes. A
// drag keeps its position locally while the pointer moves and commits it
// once, when the pointer is released. Pointer listeners exist only while a
// drag is in progress and are released on every way out of it.
package decor

import (
	"sync"

	"folio/internal/models"
)

// Point is a position in page pixels.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// State is the state of a Drag.
type State int

const (
	Idle State = iota
	Dragging
)

func (s State) String() string {
	if s == Dragging {
		return "dragging"
	}
	return "idle"
}

// Pointer is a source of page-wide pointer events. Listen registers
// handlers for moves and for the release and returns a function that
// removes them.
type Pointer interface {
	Listen(move, up func(Point)) (release func())
}

// CommitFunc receives the final position of a finished drag.
type CommitFunc func(id models.ID, at Point)

// Drag is the drag state machine of one shape.
type Drag struct {
	id      models.ID
	commit  CommitFunc
	state   State
	pos     Point
	offset  Point
	release func()
}

// NewDrag returns an idle drag for d. commit is called once per completed
// gesture.
func NewDrag(d models.Decoration, commit CommitFunc) *Drag {
	return &Drag{id: d.ID, commit: commit, pos: Point{d.X, d.Y}}
}

// ID returns the shape's id.
func (d *Drag) ID() models.ID { return d.id }

// State returns the current state.
func (d *Drag) State() State { return d.state }

// Position returns the shape's position: the transient one while
// dragging, the last committed one otherwise.
func (d *Drag) Position() Point { return d.pos }

// PointerDown starts a drag at pointer position at. Outside Edit mode, or
// when a drag is already in progress, it does nothing and returns false.
func (d *Drag) PointerDown(editing bool, at Point, src Pointer) bool {
	if !editing || d.state == Dragging {
		return false
	}
	d.offset = at.Sub(d.pos)
	d.state = Dragging
	d.release = src.Listen(d.move, d.up)
	return true
}

func (d *Drag) move(at Point) {
	if d.state != Dragging {
		return
	}
	d.pos = at.Sub(d.offset)
}

func (d *Drag) up(at Point) {
	if d.state != Dragging {
		return
	}
	d.pos = at.Sub(d.offset)
	d.stop()
	if d.commit != nil {
		d.commit(d.id, d.pos)
	}
}

// Abort ends a drag without committing and snaps back to origin.
func (d *Drag) Abort(origin Point) {
	d.stop()
	d.pos = origin
}

// Close tears the drag down. An unfinished gesture is dropped.
func (d *Drag) Close() { d.stop() }

func (d *Drag) stop() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.state = Idle
}

// Bus is a Pointer fed by pointer events arriving from a browser.
type Bus struct {
	mu        sync.Mutex
	next      int
	listeners map[int]listener
}

type listener struct {
	move, up func(Point)
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[int]listener)}
}

// Listen implements Pointer.
func (b *Bus) Listen(move, up func(Point)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.listeners[id] = listener{move: move, up: up}
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Move delivers a pointer move to every listener.
func (b *Bus) Move(at Point) {
	for _, l := range b.snapshot() {
		l.move(at)
	}
}

// Up delivers a pointer release to every listener.
func (b *Bus) Up(at Point) {
	for _, l := range b.snapshot() {
		l.up(at)
	}
}

// Listeners returns the number of registered listeners.
func (b *Bus) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

func (b *Bus) snapshot() []listener {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		out = append(out, l)
	}
	return out
}

// Visible returns the decorations shown on page.
func Visible(doc models.Document, page models.PageID) []models.Decoration {
	return doc.DecorationsOn(page)
}
