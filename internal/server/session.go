package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/jsondiagram/pkg/diagram"
	"github.com/matzehuels/jsondiagram/pkg/document"
	derrors "github.com/matzehuels/jsondiagram/pkg/errors"
	"github.com/matzehuels/jsondiagram/pkg/layout"
	"github.com/matzehuels/jsondiagram/pkg/observability"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = 54 * time.Second

	// Maximum inbound message size (documents travel in edit/load messages).
	maxMessageSize = 16 << 20

	// frameInterval paces drag frames.
	frameInterval = 16 * time.Millisecond

	sendBuffer = 64
)

// session is one interactive diagram bound to a WebSocket connection.
//
// readPump decodes events into inbox; run is the only goroutine that touches
// the view; writePump is the only writer on the connection. Timers never
// touch the view directly: they post guarded closures into posts.
type session struct {
	id     string
	conn   *websocket.Conn
	view   *diagram.View
	logger *log.Logger

	inbox chan Inbound
	posts chan func()
	send  chan Outbound
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	sess := &session{
		id:   id,
		conn: conn,
		view: diagram.New(diagram.Options{
			Direction:   s.cfg.Direction,
			Density:     s.cfg.Density,
			Engine:      s.cfg.Engine,
			SearchDelay: s.cfg.SearchDelay,
			Logger:      s.logger.With("session", id),
		}),
		logger: s.logger.With("session", id),
		inbox:  make(chan Inbound, sendBuffer),
		posts:  make(chan func(), sendBuffer),
		send:   make(chan Outbound, sendBuffer),
	}

	s.sessions.Add(1)
	defer s.sessions.Add(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	start := time.Now()
	observability.Session().OnSessionOpen(ctx, id)
	sess.logger.Debug("session opened", "remote", r.RemoteAddr)

	go sess.writePump(ctx)
	go func() {
		sess.readPump(ctx)
		cancel()
	}()
	sess.run(ctx)

	conn.Close()
	observability.Session().OnSessionClose(ctx, id, time.Since(start))
	sess.logger.Debug("session closed", "took", time.Since(start).Round(time.Millisecond))
}

// readPump decodes client events until the connection fails.
func (c *session) readPump(ctx context.Context) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived,
			) {
				c.logger.Warn("websocket read error", "error", err)
			}
			return
		}

		var msg Inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("malformed message", "error", err)
			continue
		}
		select {
		case c.inbox <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// writePump sends outbound messages and keeps the connection alive.
func (c *session) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("websocket write error", "type", msg.Type, "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// run is the session event loop. It owns the view.
func (c *session) run(ctx context.Context) {
	c.publish(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-c.inbox:
			changed, err := c.handle(ctx, msg)
			observability.Session().OnSessionMessage(ctx, c.id, msg.Type, err)
			if err != nil {
				c.logger.Debug("message rejected", "type", msg.Type, "error", err)
				eb := errorBody(err)
				c.emit(ctx, Outbound{Type: OutError, Error: &eb})
			}
			if changed {
				c.publish(ctx)
			}
		case fn := <-c.posts:
			fn()
		}
	}
}

// post schedules fn on the event loop after d. fn is skipped when the
// diagram was rebuilt in the meantime.
func (c *session) post(ctx context.Context, d time.Duration, fn func()) {
	guarded := c.view.Guard(c.view.Version(), fn)
	time.AfterFunc(d, func() {
		select {
		case c.posts <- guarded:
		case <-ctx.Done():
		}
	})
}

// publish sends the scene, then the viewport requests that apply to it.
func (c *session) publish(ctx context.Context) {
	scene := c.view.Scene()
	c.emit(ctx, Outbound{Type: OutScene, Scene: &scene})
	for _, req := range c.view.TakeViewportRequests() {
		c.emit(ctx, Outbound{Type: OutFitView, Viewport: &req})
	}
}

func (c *session) emit(ctx context.Context, msg Outbound) {
	select {
	case c.send <- msg:
	case <-ctx.Done():
	}
}

// handle applies one event. It reports whether the scene changed.
func (c *session) handle(ctx context.Context, msg Inbound) (bool, error) {
	v := c.view
	switch msg.Type {
	case MsgEdit:
		err := v.Edit(ctx, msg.Text)
		// An invalid edit still changes the scene's problem field.
		return true, err
	case MsgLoad:
		doc, err := document.Import(bytes.NewReader(msg.Data))
		if err != nil {
			return false, err
		}
		v.Load(ctx, doc)
	case MsgExport:
		var buf bytes.Buffer
		if err := v.Export(&buf); err != nil {
			return false, derrors.Wrap(derrors.ErrCodeInternal, err, "export")
		}
		c.emit(ctx, Outbound{Type: OutExport, Export: &ExportBody{Name: document.ExportName, Text: buf.String()}})
		return false, nil
	case MsgToggle:
		return v.Toggle(msg.ID), nil
	case MsgCollapseAll:
		v.CollapseAll()
	case MsgExpandAll:
		v.ExpandAll()
	case MsgLevel:
		if msg.Level < 1 {
			return false, derrors.New(derrors.ErrCodeInvalidInput, "level must be at least 1")
		}
		v.SetLevelThreshold(msg.Level)
	case MsgDirection:
		d, err := layout.ParseDirection(msg.Direction)
		if err != nil {
			return false, err
		}
		v.SetDirection(ctx, d)
	case MsgDensity:
		d, err := layout.ParseDensity(msg.Density)
		if err != nil {
			return false, err
		}
		v.SetDensity(ctx, d)
	case MsgRelayout:
		v.Relayout(ctx)
	case MsgSearch:
		ticket := v.Search(ctx, msg.Term)
		c.post(ctx, ticket.Delay, func() {
			if _, ok := v.FireSearch(ctx, ticket); ok {
				c.publish(ctx)
			}
		})
		return false, nil
	case MsgSearchNext:
		_, ok := v.NextResult()
		return ok, nil
	case MsgSearchPrev:
		_, ok := v.PrevResult()
		return ok, nil
	case MsgSearchClear:
		v.ClearSearch()
	case MsgFocus:
		return v.Focus(msg.ID), nil
	case MsgNodeClick:
		return v.ClickNode(msg.ID), nil
	case MsgPaneClick:
		v.ClickPane()
	case MsgDragStart:
		return v.DragStart(msg.ID), nil
	case MsgDrag:
		if msg.Position == nil {
			return false, derrors.New(derrors.ErrCodeInvalidInput, "drag without position")
		}
		if v.Drag(msg.ID, *msg.Position) {
			c.post(ctx, frameInterval, func() {
				if v.Frame() {
					c.publish(ctx)
				}
			})
		}
		return false, nil
	case MsgDragStop:
		if msg.Position == nil {
			return false, derrors.New(derrors.ErrCodeInvalidInput, "dragStop without position")
		}
		return v.DragStop(msg.ID, *msg.Position), nil
	case MsgNodesChange:
		return len(v.ApplyNodeChanges(msg.Changes)) > 0, nil
	case MsgLock:
		if msg.Locked != nil {
			v.SetLocked(*msg.Locked)
		} else {
			v.ToggleLock()
		}
	default:
		return false, derrors.New(derrors.ErrCodeUnsupported, "unknown message type %q", msg.Type)
	}
	return true, nil
}
