package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/gesture"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Event types a client may send.
const (
	EventPointerDown   = "pointerdown"
	EventPointerMove   = "pointermove"
	EventPointerUp     = "pointerup"
	EventPointerCancel = "pointercancel"
	EventWheel         = "wheel"
	EventSet           = "set"
	EventFlip          = "flip"
	EventReset         = "reset"
	EventZoomIn        = "zoomin"
	EventZoomOut       = "zoomout"
	EventViewport      = "viewport"
)

// Event is one client message. Coordinates are in the client's display
// space as described by the last viewport event; before any viewport event
// they are canvas pixels.
type Event struct {
	Type    string  `json:"type"`
	Pointer int     `json:"pointer,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	DeltaY  float64 `json:"deltaY,omitempty"`
	Field   string  `json:"field,omitempty"`
	Value   string  `json:"value,omitempty"`
	Axis    string  `json:"axis,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
}

// Message is a JSON reply. Rendered frames are sent separately as binary
// PNG messages, each followed by a state message.
type Message struct {
	Type    string     `json:"type"`
	State   *wireState `json:"state,omitempty"`
	Applied *bool      `json:"applied,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// apply runs one event against the session editor. applied is nil for
// events that always take effect.
func (s *Session) apply(ev Event) (applied *bool, err error) {
	ed := s.ed
	id := gesture.PointerID(ev.Pointer)
	ok := func(v bool) *bool { return &v }
	switch ev.Type {
	case EventPointerDown:
		ed.PointerDown(id, ev.X, ev.Y)
	case EventPointerMove:
		ed.PointerMove(id, ev.X, ev.Y)
	case EventPointerUp:
		ed.PointerUp(id)
	case EventPointerCancel:
		ed.PointerCancel(id)
	case EventWheel:
		ed.Wheel(ev.DeltaY, ev.X, ev.Y)
	case EventSet:
		v, err := ed.SetField(ev.Field, ev.Value)
		if err != nil {
			return nil, err
		}
		return ok(v), nil
	case EventFlip:
		switch ev.Axis {
		case "horizontal", "h":
			return ok(ed.ToggleFlipHorizontal()), nil
		case "vertical", "v":
			return ok(ed.ToggleFlipVertical()), nil
		}
		return nil, fmt.Errorf("unknown flip axis %q", ev.Axis)
	case EventReset:
		ed.ResetFilters()
	case EventZoomIn:
		return ok(ed.ZoomIn()), nil
	case EventZoomOut:
		return ok(ed.ZoomOut()), nil
	case EventViewport:
		if ev.Width <= 0 || ev.Height <= 0 {
			return nil, fmt.Errorf("viewport needs a positive size")
		}
		ed.SetViewport(geom.Rect{Left: ev.X, Top: ev.Y, Width: ev.Width, Height: ev.Height})
	default:
		return nil, fmt.Errorf("unknown event %q", ev.Type)
	}
	return nil, nil
}

// client is the single WebSocket attached to a session.
type client struct {
	sess    *Session
	conn    *websocket.Conn
	replies chan Message
	log     *slog.Logger
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !sess.attached.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "session already has a client")
		return
	}
	defer sess.attached.Store(false)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.origins})
	if err != nil {
		s.log.Error("websocket accept", "err", err)
		return
	}
	c := &client{
		sess:    sess,
		conn:    conn,
		replies: make(chan Message, 16),
		log:     s.log.With("session", sess.ID),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sess.markChanged()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.writePump(ctx)
	}()
	c.readPump(ctx)
	cancel()
	wg.Wait()
}

func (c *client) readPump(ctx context.Context) {
	defer c.conn.Close(websocket.StatusNormalClosure, "")
	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if s := websocket.CloseStatus(err); s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway {
				c.log.Debug("read error", "err", err)
			}
			return
		}

		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			c.reply(Message{Type: "error", Error: "invalid message"})
			continue
		}
		applied, err := c.sess.apply(ev)
		switch {
		case err != nil:
			c.reply(Message{Type: "error", Error: err.Error()})
		case applied != nil:
			c.reply(Message{Type: "ack", Applied: applied})
		}
	}
}

func (c *client) reply(m Message) {
	select {
	case c.replies <- m:
	default:
		c.log.Warn("client reply buffer full, dropping message", "type", m.Type)
	}
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case <-c.sess.changed:
			if err := c.writeFrame(ctx); err != nil {
				c.log.Debug("write frame", "err", err)
				return
			}
		case m := <-c.replies:
			if err := c.writeJSON(ctx, m); err != nil {
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *client) writeJSON(ctx context.Context, m Message) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return wsjson.Write(writeCtx, c.conn, m)
}

// writeFrame sends the canvas as PNG followed by the state it reflects.
func (c *client) writeFrame(ctx context.Context) error {
	snap := c.sess.ed.Snapshot()
	st := toWire(c.sess.ed.State())
	if snap != nil {
		var buf bytes.Buffer
		if err := export.Encode(&buf, snap, export.MIMEPNG, export.DefaultOptions()); err != nil {
			return err
		}
		writeCtx, cancel := context.WithTimeout(ctx, writeWait)
		err := c.conn.Write(writeCtx, websocket.MessageBinary, buf.Bytes())
		cancel()
		if err != nil {
			return err
		}
	}
	return c.writeJSON(ctx, Message{Type: "state", State: &st})
}
