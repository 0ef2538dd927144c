// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package decor

import (
	"folio/internal/models"
)

// Layer holds the drags of the shapes visible on one page of one client.
// It is driven from a single goroutine.
type Layer struct {
	bus    *Bus
	commit CommitFunc
	drags  map[models.ID]*Drag
}

// NewLayer returns an empty layer. Finished gestures are passed to commit.
func NewLayer(commit CommitFunc) *Layer {
	return &Layer{bus: NewBus(), commit: commit, drags: make(map[models.ID]*Drag)}
}

// Sync makes the layer track the decorations visible on page. Drags of
// shapes that are no longer visible are torn down; idle drags pick up the
// document's positions.
func (l *Layer) Sync(doc models.Document, page models.PageID) {
	visible := make(map[models.ID]models.Decoration)
	for _, d := range Visible(doc, page) {
		visible[d.ID] = d
	}
	for id, dr := range l.drags {
		if _, ok := visible[id]; !ok {
			dr.Close()
			delete(l.drags, id)
		}
	}
	for id, d := range visible {
		dr, ok := l.drags[id]
		if !ok || dr.State() == Idle {
			if ok {
				dr.Close()
			}
			l.drags[id] = NewDrag(d, l.commit)
		}
	}
}

// Down starts dragging shape id. Only one shape is dragged at a time.
func (l *Layer) Down(id models.ID, editing bool, at Point) bool {
	dr, ok := l.drags[id]
	if !ok || l.Dragging() {
		return false
	}
	return dr.PointerDown(editing, at, l.bus)
}

// Move forwards a pointer move.
func (l *Layer) Move(at Point) { l.bus.Move(at) }

// Up forwards a pointer release.
func (l *Layer) Up(at Point) { l.bus.Up(at) }

// Position returns the current position of shape id.
func (l *Layer) Position(id models.ID) (Point, bool) {
	dr, ok := l.drags[id]
	if !ok {
		return Point{}, false
	}
	return dr.Position(), true
}

// Dragging reports whether any shape is being dragged.
func (l *Layer) Dragging() bool {
	for _, dr := range l.drags {
		if dr.State() == Dragging {
			return true
		}
	}
	return false
}

// Listeners returns the number of pointer listeners held.
func (l *Layer) Listeners() int { return l.bus.Listeners() }

// Close tears down every drag. Unfinished gestures are dropped.
func (l *Layer) Close() {
	for id, dr := range l.drags {
		dr.Close()
		delete(l.drags, id)
	}
}
