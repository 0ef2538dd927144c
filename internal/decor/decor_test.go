// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package decor

import (
	"testing"

	"folio/internal/models"
)

type commits struct {
	n  int
	id models.ID
	at Point
}

func (c *commits) record(id models.ID, at Point) {
	c.n++
	c.id, c.at = id, at
}

func shape(x, y float64) models.Decoration {
	return models.Decoration{ID: "d1", Kind: models.DecorationCircle, X: x, Y: y, Size: 100, Page: "HOME"}
}

func TestDragCommitsDelta(t *testing.T) {
	var c commits
	bus := NewBus()
	d := NewDrag(shape(100, 100), c.record)

	if !d.PointerDown(true, Point{130, 140}, bus) {
		t.Fatal("PointerDown in edit mode should start a drag")
	}
	if d.State() != Dragging || bus.Listeners() != 1 {
		t.Fatalf("state = %s, listeners = %d", d.State(), bus.Listeners())
	}

	bus.Move(Point{150, 150})
	if got := d.Position(); got != (Point{120, 110}) {
		t.Errorf("transient position = %+v", got)
	}
	if c.n != 0 {
		t.Error("move committed a position")
	}

	bus.Up(Point{155, 120})
	if c.n != 1 || c.id != "d1" || c.at != (Point{125, 80}) {
		t.Errorf("commit = %+v, want one commit at {125 80}", c)
	}
	if d.State() != Idle || bus.Listeners() != 0 {
		t.Errorf("after up: state = %s, listeners = %d", d.State(), bus.Listeners())
	}

	bus.Move(Point{0, 0})
	bus.Up(Point{0, 0})
	if c.n != 1 {
		t.Error("events after release reached the drag")
	}
}

func TestDragIgnoredOutsideEditMode(t *testing.T) {
	var c commits
	bus := NewBus()
	d := NewDrag(shape(10, 10), c.record)

	if d.PointerDown(false, Point{20, 20}, bus) {
		t.Error("drag started in read-only mode")
	}
	bus.Up(Point{50, 50})
	if c.n != 0 || bus.Listeners() != 0 || d.Position() != (Point{10, 10}) {
		t.Errorf("commits = %d, listeners = %d, pos = %+v", c.n, bus.Listeners(), d.Position())
	}
}

func TestAbandonedDragNeverCommits(t *testing.T) {
	var c commits
	bus := NewBus()
	d := NewDrag(shape(0, 0), c.record)

	d.PointerDown(true, Point{5, 5}, bus)
	bus.Move(Point{50, 50})
	d.Close()

	if bus.Listeners() != 0 {
		t.Errorf("listeners leaked: %d", bus.Listeners())
	}
	bus.Up(Point{60, 60})
	if c.n != 0 {
		t.Error("abandoned drag committed")
	}
}

func TestAbortRestoresOrigin(t *testing.T) {
	bus := NewBus()
	d := NewDrag(shape(7, 8), nil)
	d.PointerDown(true, Point{10, 10}, bus)
	bus.Move(Point{90, 90})
	d.Abort(Point{7, 8})
	if d.State() != Idle || d.Position() != (Point{7, 8}) || bus.Listeners() != 0 {
		t.Errorf("state = %s, pos = %+v, listeners = %d", d.State(), d.Position(), bus.Listeners())
	}
}

func TestLayer(t *testing.T) {
	var c commits
	doc := models.Default()
	doc.Decorations = []models.Decoration{
		{ID: "a", Kind: models.DecorationCircle, X: 10, Y: 10, Page: "HOME"},
		{ID: "b", Kind: models.DecorationRect, X: 20, Y: 20, Page: "ABOUT"},
	}

	l := NewLayer(c.record)
	l.Sync(doc, "HOME")
	if l.Down("b", true, Point{20, 20}) {
		t.Error("shape on another page accepted a drag")
	}
	if !l.Down("a", true, Point{15, 15}) || !l.Dragging() {
		t.Fatal("drag of visible shape did not start")
	}
	l.Move(Point{25, 35})
	if p, _ := l.Position("a"); p != (Point{20, 30}) {
		t.Errorf("position = %+v", p)
	}

	// Switching pages mid-drag tears the drag down without a commit.
	l.Sync(doc, "ABOUT")
	if l.Listeners() != 0 || l.Dragging() {
		t.Errorf("listeners = %d, dragging = %v", l.Listeners(), l.Dragging())
	}
	l.Up(Point{40, 40})
	if c.n != 0 {
		t.Error("drag of a hidden shape committed")
	}

	l.Down("b", true, Point{20, 20})
	l.Up(Point{30, 25})
	if c.n != 1 || c.id != "b" || c.at != (Point{30, 25}) {
		t.Errorf("commit = %+v", c)
	}

	l.Down("b", true, Point{30, 25})
	l.Close()
	if l.Listeners() != 0 {
		t.Errorf("listeners after close = %d", l.Listeners())
	}
}

func TestLayerDragsOneShapeAtATime(t *testing.T) {
	var c commits
	doc := models.Default()
	doc.Decorations = []models.Decoration{
		{ID: "a", Kind: models.DecorationCircle, X: 10, Y: 10, Page: "HOME"},
		{ID: "b", Kind: models.DecorationRect, X: 50, Y: 50, Page: "HOME"},
	}

	l := NewLayer(c.record)
	defer l.Close()
	l.Sync(doc, "HOME")
	if !l.Down("a", true, Point{10, 10}) {
		t.Fatal("first drag did not start")
	}
	if l.Down("b", true, Point{50, 50}) {
		t.Error("second shape accepted a drag while one is active")
	}
	l.Up(Point{20, 20})
	if c.n != 1 || c.id != "a" {
		t.Errorf("commits = %+v, want one for a", c)
	}
	if p, _ := l.Position("b"); p != (Point{50, 50}) {
		t.Errorf("b moved to %+v", p)
	}
}

func TestVisible(t *testing.T) {
	doc := models.Default()
	doc.Decorations = []models.Decoration{
		{ID: "a", Page: "HOME"}, {ID: "b", Page: "ABOUT"}, {ID: "c", Page: "HOME"},
	}
	got := Visible(doc, "HOME")
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Visible = %+v", got)
	}
}
