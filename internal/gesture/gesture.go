// Package gesture turns raw pointer and wheel input into pan, zoom and draw
// operations. Dispatch is an explicit state machine over the set of active
// pointers.
package gesture

import (
	"math"

	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/geom"
)

// PointerID identifies one pointer (mouse, pen or touch contact).
type PointerID int

// State is the phase of the gesture in progress.
type State int

const (
	Idle State = iota
	Panning
	Drawing
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Panning:
		return "panning"
	case Drawing:
		return "drawing"
	case Pinching:
		return "pinching"
	}
	return "unknown"
}

// Target receives the operations a gesture produces. Positions passed to it
// are in canvas user space.
type Target interface {
	Viewport() geom.Viewport
	Transform() geom.Matrix
	Mode() editstate.Mode
	// Pan composes a user-space translation.
	Pan(delta geom.Point)
	// ZoomBy adds delta to the zoom factor, pivoting about p.
	ZoomBy(delta float64, p geom.Point)
	BeginStroke(p geom.Point)
	ExtendStroke(p geom.Point)
	EndStroke()
}

// Config holds the zoom sensitivities.
type Config struct {
	// PinchSensitivity converts a change in finger distance, in CSS
	// pixels, into a zoom delta.
	PinchSensitivity float64
	// WheelSensitivity converts wheel deltaY into a zoom delta.
	WheelSensitivity float64
}

// DefaultConfig returns the stock sensitivities.
func DefaultConfig() Config {
	return Config{PinchSensitivity: 0.01, WheelSensitivity: 0.01}
}

type phase interface {
	state() State
}

type idle struct{}

type panning struct {
	id     PointerID
	anchor geom.Point
}

type drawing struct {
	id PointerID
}

type pinching struct {
	// prev is the last measured distance, valid once the first
	// two-pointer move has seeded it.
	prev   float64
	seeded bool
}

func (idle) state() State      { return Idle }
func (*panning) state() State  { return Panning }
func (*drawing) state() State  { return Drawing }
func (*pinching) state() State { return Pinching }

// Controller tracks active pointers and drives a Target.
type Controller struct {
	cfg      Config
	target   Target
	pointers map[PointerID]geom.Point
	order    []PointerID
	phase    phase
}

// NewController returns an idle controller for t.
func NewController(t Target, cfg Config) *Controller {
	return &Controller{
		cfg:      cfg,
		target:   t,
		pointers: make(map[PointerID]geom.Point),
		phase:    idle{},
	}
}

// State returns the current phase.
func (c *Controller) State() State { return c.phase.state() }

// Active returns the number of pointers currently down.
func (c *Controller) Active() int { return len(c.pointers) }

// Reset forgets every pointer and returns to Idle without emitting
// operations.
func (c *Controller) Reset() {
	c.pointers = make(map[PointerID]geom.Point)
	c.order = nil
	c.phase = idle{}
}

// PointerDown registers a pointer at client position (x, y).
func (c *Controller) PointerDown(id PointerID, x, y float64) {
	if _, dup := c.pointers[id]; !dup {
		c.order = append(c.order, id)
	}
	c.pointers[id] = geom.Pt(x, y)

	if len(c.pointers) >= 2 {
		c.leave()
		c.phase = &pinching{}
		return
	}

	switch c.target.Mode() {
	case editstate.ModeDraw:
		p, ok := geom.PointerToCanvas(x, y, c.target.Viewport(), c.target.Transform())
		if !ok {
			c.phase = idle{}
			return
		}
		c.target.BeginStroke(p)
		c.phase = &drawing{id: id}
	default:
		c.phase = &panning{id: id, anchor: geom.Pt(x, y)}
	}
}

// PointerMove updates a pointer's position and advances the gesture.
func (c *Controller) PointerMove(id PointerID, x, y float64) {
	if _, ok := c.pointers[id]; !ok {
		return
	}
	c.pointers[id] = geom.Pt(x, y)

	switch ph := c.phase.(type) {
	case *panning:
		if ph.id != id {
			return
		}
		cur := geom.Pt(x, y)
		d := cur.Sub(ph.anchor)
		if d.X == 0 && d.Y == 0 {
			return
		}
		v, ok := geom.DeviceToCanvasVector(d.X, d.Y, c.target.Viewport(), c.target.Transform())
		if !ok {
			return
		}
		c.target.Pan(v)
		ph.anchor = cur
	case *drawing:
		if ph.id != id {
			return
		}
		p, ok := geom.PointerToCanvas(x, y, c.target.Viewport(), c.target.Transform())
		if !ok {
			return
		}
		c.target.ExtendStroke(p)
	case *pinching:
		a, b, ok := c.pair()
		if !ok {
			return
		}
		dist := math.Max(math.Abs(a.X-b.X), math.Abs(a.Y-b.Y))
		if !ph.seeded {
			ph.prev, ph.seeded = dist, true
			return
		}
		delta := (dist - ph.prev) * c.cfg.PinchSensitivity
		ph.prev = dist
		if delta == 0 {
			return
		}
		mid := a.Add(b).Mul(0.5)
		pivot, ok := geom.PointerToCanvas(mid.X, mid.Y, c.target.Viewport(), c.target.Transform())
		if !ok {
			return
		}
		c.target.ZoomBy(delta, pivot)
	}
}

// PointerUp releases a pointer. Any gesture ends and the controller returns
// to Idle.
func (c *Controller) PointerUp(id PointerID) {
	if _, ok := c.pointers[id]; !ok {
		return
	}
	delete(c.pointers, id)
	for i, o := range c.order {
		if o == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.leave()
	c.phase = idle{}
}

// PointerCancel is PointerUp for pointers that left or were interrupted.
func (c *Controller) PointerCancel(id PointerID) { c.PointerUp(id) }

// Wheel zooms about the client position (x, y) by -deltaY times the wheel
// sensitivity.
func (c *Controller) Wheel(deltaY, x, y float64) {
	if deltaY == 0 {
		return
	}
	p, ok := geom.PointerToCanvas(x, y, c.target.Viewport(), c.target.Transform())
	if !ok {
		return
	}
	c.target.ZoomBy(-deltaY*c.cfg.WheelSensitivity, p)
}

// leave finishes the current phase.
func (c *Controller) leave() {
	if _, ok := c.phase.(*drawing); ok {
		c.target.EndStroke()
	}
}

// pair returns the two oldest active pointers.
func (c *Controller) pair() (a, b geom.Point, ok bool) {
	if len(c.order) < 2 {
		return geom.Point{}, geom.Point{}, false
	}
	return c.pointers[c.order[0]], c.pointers[c.order[1]], true
}
