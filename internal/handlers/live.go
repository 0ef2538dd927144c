// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"folio/internal/auth"
	"folio/internal/decor"
	"folio/internal/editor"
	"folio/internal/gate"
	"folio/internal/metrics"
	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/mutation"
	"folio/internal/nav"
	"folio/internal/render"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = pongWait * 9 / 10
	maxLiveMsg  = 64 << 10
	outboxSize  = 32
	eventBuffer = 8
)

// Live serves the live channel: one WebSocket per open page. The browser
// sends navigation requests, scroll positions, pointer events, footer
// taps and intents; the server answers with fade-out and swap steps,
// drag positions, re-rendered views and auth events.
//
// Each connection is driven by a single goroutine. Incoming messages,
// navigation timers and auth events are all funneled into it, so the
// drag and navigation state machines never run concurrently.
type Live struct {
	renderer *render.Renderer
	editor   *editor.Manager
	hub      *auth.Hub
	gate     *gate.Gate
	owner    uuid.UUID
	navOpts  []nav.Option
	upgrader websocket.Upgrader
}

// NewLive creates the live channel handler. allowedOrigins lists the
// origins that may connect; when empty only same-host pages may.
func NewLive(renderer *render.Renderer, ed *editor.Manager, hub *auth.Hub, g *gate.Gate, owner uuid.UUID, allowedOrigins []string, navOpts ...nav.Option) *Live {
	return &Live{
		renderer: renderer,
		editor:   ed,
		hub:      hub,
		gate:     g,
		owner:    owner,
		navOpts:  navOpts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin(allowedOrigins),
		},
	}
}

func checkOrigin(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if len(allowed) == 0 {
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return strings.EqualFold(u.Host, r.Host)
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		return false
	}
}

// liveIn is a message from the browser.
type liveIn struct {
	Type   string           `json:"type"`
	Page   models.PageID    `json:"page,omitempty"`
	Top    int              `json:"top,omitempty"`
	ID     models.ID        `json:"id,omitempty"`
	X      float64          `json:"x"`
	Y      float64          `json:"y"`
	Intent *mutation.Intent `json:"intent,omitempty"`
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// liveOut is a message to the browser.
type liveOut struct {
	Type      string         `json:"type"`
	Page      models.PageID  `json:"page,omitempty"`
	ScrollTop int            `json:"scrollTop"`
	HTML      string         `json:"html,omitempty"`
	ID        models.ID      `json:"id,omitempty"`
	Pos       *point         `json:"pos,omitempty"`
	Version   uint64         `json:"version,omitempty"`
	Editing   bool           `json:"editing,omitempty"`
	Event     auth.EventKind `json:"event,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// ServeHTTP upgrades the request and runs the connection until either
// side closes it.
func (l *Live) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, canEdit := ownerOf(r, l.owner)
	ws, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("live upgrade failed", "error", err)
		return
	}
	defer ws.Close()
	defer metrics.LiveConnected()()

	c := &liveConn{
		live:    l,
		ws:      ws,
		owner:   owner,
		canEdit: canEdit,
		csrf:    middleware.CSRFTokenFromCtx(r.Context()),
		log:     slog.With("owner", owner, "remote", r.RemoteAddr),
		out:     make(chan liveOut, outboxSize),
		navEv:   make(chan nav.Event, eventBuffer),
		authEv:  make(chan auth.Event, eventBuffer),
	}
	c.run(r.Context(), models.PageID(r.URL.Query().Get("page")))
}

type liveConn struct {
	live    *Live
	ws      *websocket.Conn
	owner   uuid.UUID
	canEdit bool
	csrf    string
	log     *slog.Logger
	cancel  context.CancelFunc

	out    chan liveOut
	navEv  chan nav.Event
	authEv chan auth.Event

	nav    *nav.Navigator
	layer  *decor.Layer
	tapper *gate.Tapper
	drag   models.ID
}

func (c *liveConn) run(parent context.Context, page models.PageID) {
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel

	snap := c.current(ctx)
	if !snap.Doc.HasPage(page) {
		page = snap.Doc.FirstPage()
	}
	c.nav = nav.New(nav.PagesOf(snap.Doc), page, c.onNav, c.live.navOpts...)
	defer c.nav.Close()
	c.layer = decor.NewLayer(func(id models.ID, at decor.Point) { c.commit(ctx, id, at) })
	defer c.layer.Close()
	c.layer.Sync(snap.Doc, page)
	c.tapper = gate.NewTapper(time.Now)
	defer c.live.hub.OnAuthStateChange(c.onAuth)()

	in := make(chan liveIn)
	writerDone := make(chan struct{})
	go c.readLoop(ctx, in)
	go c.writeLoop(ctx, writerDone)
	defer func() {
		cancel()
		<-writerDone
	}()

	c.log.Debug("live connected", "page", page, "can_edit", c.canEdit)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-in:
			c.handle(ctx, msg)
		case ev := <-c.navEv:
			c.handleNav(ctx, ev)
		case ev := <-c.authEv:
			c.send(liveOut{Type: "auth", Event: ev.Kind})
		}
	}
}

func (c *liveConn) readLoop(ctx context.Context, in chan<- liveIn) {
	defer c.cancel()
	c.ws.SetReadLimit(maxLiveMsg)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Info("live read failed", "error", err)
			}
			return
		}
		var msg liveIn
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("malformed message")
			continue
		}
		select {
		case in <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (c *liveConn) writeLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			writeClose(c.ws, websocket.CloseNormalClosure, "")
			return
		case msg := <-c.out:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteJSON(msg); err != nil {
				c.log.Info("live write failed", "error", err)
				c.cancel()
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.cancel()
				return
			}
		}
	}
}

func writeClose(ws *websocket.Conn, code int, text string) {
	deadline := time.Now().Add(time.Second)
	_ = ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, text), deadline)
}

// send queues msg. A client that cannot keep up is disconnected.
func (c *liveConn) send(msg liveOut) {
	select {
	case c.out <- msg:
	default:
		c.log.Warn("live client too slow, closing")
		c.cancel()
	}
}

func (c *liveConn) sendError(msg string) {
	c.send(liveOut{Type: "error", Error: msg})
}

// onNav runs on the navigator's timer goroutine, or inline from Navigate.
func (c *liveConn) onNav(ev nav.Event) {
	select {
	case c.navEv <- ev:
	default:
		c.log.Warn("navigation event dropped", "kind", ev.Kind)
	}
}

// onAuth forwards sign-in changes of the connection's owner. The browser
// asks /auth/me whether they concern it.
func (c *liveConn) onAuth(ev auth.Event) {
	if ev.UserID != c.owner {
		return
	}
	select {
	case c.authEv <- ev:
	default:
	}
}

// current returns what the connection shows: the owner's draft or
// published document, or the published document for visitors.
func (c *liveConn) current(ctx context.Context) editor.Snapshot {
	if c.canEdit {
		snap, err := c.live.editor.Current(ctx, c.owner)
		if err != nil {
			c.log.Warn("live load failed", "error", err)
		}
		return snap
	}
	doc, err := c.live.editor.Published(ctx, c.owner)
	if err != nil {
		c.log.Warn("live load failed", "error", err)
	}
	return editor.Snapshot{Doc: doc}
}

func (c *liveConn) pageData(snap editor.Snapshot, page models.PageID) render.PageData {
	return render.PageData{
		Mode:        render.ModeFor(snap.Editing),
		Doc:         snap.Doc,
		Active:      page,
		Owner:       c.canEdit,
		CSRFToken:   c.csrf,
		Version:     snap.Version,
		GateEnabled: c.live.gate.Enabled(),
	}
}

func (c *liveConn) handle(ctx context.Context, msg liveIn) {
	at := decor.Point{X: msg.X, Y: msg.Y}
	switch msg.Type {
	case "navigate":
		// Navigation is ignored while editing or mid-transition.
		snap := c.current(ctx)
		if _, err := c.nav.Navigate(msg.Page, snap.Editing); err != nil {
			c.sendError(err.Error())
		}
	case "scroll":
		c.nav.Scrolled(msg.Top)
	case "pointer-down":
		if !c.canEdit {
			return
		}
		snap := c.current(ctx)
		c.layer.Sync(snap.Doc, c.nav.Active())
		if c.layer.Down(msg.ID, snap.Editing, at) {
			c.drag = msg.ID
		}
	case "pointer-move":
		if c.drag == "" {
			return
		}
		c.layer.Move(at)
		if p, ok := c.layer.Position(c.drag); ok {
			c.send(liveOut{Type: "position", ID: c.drag, Pos: &point{X: p.X, Y: p.Y}})
		}
	case "pointer-up":
		if c.drag == "" {
			return
		}
		c.drag = ""
		c.layer.Up(at)
	case "intent":
		if !c.canEdit {
			c.sendError("sign in required")
			return
		}
		if msg.Intent == nil || msg.Intent.Op == "" {
			c.sendError("missing intent")
			return
		}
		snap, err := c.live.editor.Apply(ctx, c.owner, *msg.Intent)
		if err != nil {
			_, text := statusOf(err)
			c.sendError(text)
			return
		}
		c.updated(snap)
	case "tap":
		if c.canEdit || !c.live.gate.Enabled() {
			return
		}
		if c.tapper.Tap() {
			c.send(liveOut{Type: "reveal"})
		}
	default:
		c.sendError("unknown message type")
	}
}

func (c *liveConn) handleNav(ctx context.Context, ev nav.Event) {
	switch ev.Kind {
	case nav.FadeOut:
		c.send(liveOut{Type: string(nav.FadeOut), Page: ev.To, ScrollTop: ev.ScrollTop})
	case nav.Swap:
		snap := c.current(ctx)
		c.layer.Sync(snap.Doc, ev.To)
		html, err := c.live.renderer.MainHTML(c.pageData(snap, ev.To))
		if err != nil {
			c.log.Error("render swap failed", "page", ev.To, "error", err)
			c.sendError("internal error")
			return
		}
		c.send(liveOut{Type: string(nav.Swap), Page: ev.To, HTML: html})
	}
}

// commit stores the final position of a dragged shape.
func (c *liveConn) commit(ctx context.Context, id models.ID, at decor.Point) {
	x, y := at.X, at.Y
	snap, err := c.live.editor.Apply(ctx, c.owner, mutation.Intent{Op: "moveDecoration", ID: id, X: &x, Y: &y})
	if err != nil {
		_, text := statusOf(err)
		c.sendError(text)
		return
	}
	c.updated(snap)
}

// updated sends the re-rendered view after a change to the draft.
func (c *liveConn) updated(snap editor.Snapshot) {
	html, err := c.live.renderer.BodyHTML(c.pageData(snap, c.nav.Active()))
	if err != nil {
		c.log.Error("render update failed", "error", err)
		c.sendError("internal error")
		return
	}
	c.send(liveOut{
		Type:    "updated",
		HTML:    html,
		ID:      snap.Created,
		Version: snap.Version,
		Editing: snap.Editing,
	})
}
