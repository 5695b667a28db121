package editor

import (
	"image/color"

	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/gesture"
	"github.com/example/photoedit/internal/render"
)

// ZoomStep is the zoom change of ZoomIn and ZoomOut.
const ZoomStep = 0.1

func (e *Editor) setFilterValue(set func(*editstate.State, float64) bool, v float64) bool {
	return e.update(func() bool {
		if !e.perms.ColorEditing || !set(&e.state, v) {
			return false
		}
		e.engine.SetFilter(render.FilterFrom(e.state))
		e.redraw()
		return true
	})
}

// SetBrightness sets brightness in percent, [0,200].
func (e *Editor) SetBrightness(v float64) bool {
	return e.setFilterValue((*editstate.State).SetBrightness, v)
}

// SetContrast sets contrast in percent, [0,200].
func (e *Editor) SetContrast(v float64) bool {
	return e.setFilterValue((*editstate.State).SetContrast, v)
}

// SetSaturate sets saturation in percent, [0,200].
func (e *Editor) SetSaturate(v float64) bool {
	return e.setFilterValue((*editstate.State).SetSaturate, v)
}

// SetGrayscale sets the grayscale amount in percent, [0,100].
func (e *Editor) SetGrayscale(v float64) bool {
	return e.setFilterValue((*editstate.State).SetGrayscale, v)
}

// SetRotation sets the absolute rotation in degrees. The transform turns by
// the difference about the canvas center.
func (e *Editor) SetRotation(deg float64) bool {
	return e.update(func() bool {
		return e.setRotation(deg)
	})
}

func (e *Editor) setRotation(deg float64) bool {
	if !e.perms.Rotate {
		return false
	}
	prev := e.state.Rotation
	if !e.state.SetRotation(deg) {
		return false
	}
	e.engine.Rotate(deg - prev)
	e.redraw()
	return true
}

// Rotate turns by delta degrees. The result must stay within [-180,180].
func (e *Editor) Rotate(delta float64) bool {
	return e.update(func() bool {
		return e.setRotation(e.state.Rotation + delta)
	})
}

func (e *Editor) setFlip(axis geom.Axis, v bool) bool {
	return e.update(func() bool {
		if !e.perms.Flip {
			return false
		}
		cur := &e.state.FlipHorizontal
		if axis == geom.Vertical {
			cur = &e.state.FlipVertical
		}
		if *cur == v {
			return true
		}
		*cur = v
		e.engine.Flip(axis, e.state.Rotation)
		e.redraw()
		return true
	})
}

// SetFlipHorizontal mirrors the image left to right.
func (e *Editor) SetFlipHorizontal(v bool) bool { return e.setFlip(geom.Horizontal, v) }

// SetFlipVertical mirrors the image top to bottom.
func (e *Editor) SetFlipVertical(v bool) bool { return e.setFlip(geom.Vertical, v) }

// ToggleFlipHorizontal inverts the horizontal mirror.
func (e *Editor) ToggleFlipHorizontal() bool {
	return e.SetFlipHorizontal(!e.State().FlipHorizontal)
}

// ToggleFlipVertical inverts the vertical mirror.
func (e *Editor) ToggleFlipVertical() bool {
	return e.SetFlipVertical(!e.State().FlipVertical)
}

// zoomBy adds delta to the zoom, flooring at the minimum, and scales the
// transform by the ratio about p. The caller holds the lock.
func (e *Editor) zoomBy(delta float64, p geom.Point) bool {
	if !e.perms.Zoom {
		return false
	}
	prev, next := e.state.AddZoom(delta)
	if prev == next {
		return false
	}
	e.engine.Zoom(next/prev, p)
	e.redraw()
	return true
}

func (e *Editor) center() geom.Point {
	w, h := e.engine.Size()
	return geom.Pt(float64(w)/2, float64(h)/2)
}

// ZoomIn zooms in by ZoomStep about the canvas center.
func (e *Editor) ZoomIn() bool {
	return e.update(func() bool { return e.zoomBy(ZoomStep, e.center()) })
}

// ZoomOut zooms out by ZoomStep about the canvas center, stopping at the
// minimum zoom.
func (e *Editor) ZoomOut() bool {
	return e.update(func() bool { return e.zoomBy(-ZoomStep, e.center()) })
}

// SetZoom sets an absolute zoom factor of at least the minimum.
func (e *Editor) SetZoom(v float64) bool {
	return e.update(func() bool {
		if !e.perms.Zoom {
			return false
		}
		prev := e.state.Zoom
		if !e.state.SetZoom(v) {
			return false
		}
		e.engine.Zoom(v/prev, e.center())
		e.redraw()
		return true
	})
}

// SetMode switches what a primary drag does.
func (e *Editor) SetMode(m editstate.Mode) bool {
	return e.update(func() bool { return e.state.SetMode(m) })
}

// SetLineColor sets the color of strokes started from now on.
func (e *Editor) SetLineColor(c color.RGBA) bool {
	return e.update(func() bool {
		e.state.LineColor = c
		return true
	})
}

// SetLineWidth sets the width of strokes started from now on, [2,100].
func (e *Editor) SetLineWidth(w float64) bool {
	return e.update(func() bool { return e.state.SetLineWidth(w) })
}

// SetField applies raw text input to a named field. Invalid or out of range
// input is ignored and reported as not applied.
func (e *Editor) SetField(name, raw string) (bool, error) {
	var err error
	applied := e.update(func() bool {
		next := e.state
		var ok bool
		ok, err = next.SetField(name, raw)
		if !ok {
			return false
		}
		return e.applyState(next)
	})
	return applied, err
}

// applyState moves the session to next through the same paths the typed
// setters use, so permissions and transform updates stay consistent.
func (e *Editor) applyState(next editstate.State) bool {
	cur := e.state
	switch {
	case next.Brightness != cur.Brightness, next.Contrast != cur.Contrast,
		next.Saturate != cur.Saturate, next.Grayscale != cur.Grayscale:
		if !e.perms.ColorEditing {
			return false
		}
		e.state = next
		e.engine.SetFilter(render.FilterFrom(e.state))
		e.redraw()
		return true
	case next.Rotation != cur.Rotation:
		return e.setRotation(next.Rotation)
	case next.Zoom != cur.Zoom:
		if !e.perms.Zoom {
			return false
		}
		e.state.Zoom = next.Zoom
		e.engine.Zoom(next.Zoom/cur.Zoom, e.center())
		e.redraw()
		return true
	}
	e.state.Mode = next.Mode
	e.state.LineColor = next.LineColor
	e.state.LineWidth = next.LineWidth
	return true
}

// ResetFilters restores the defaults, clears every stroke and the pan
// offset, and switches back to pan mode.
func (e *Editor) ResetFilters() {
	e.update(func() bool {
		e.reset()
		return true
	})
}

func (e *Editor) reset() {
	e.state = e.defaults
	e.state.Mode = editstate.ModePan
	e.strokes.Reset()
	e.gestures.Reset()
	e.engine.SetFilter(render.FilterFrom(e.state))
	e.rebuildTransform()
	e.redraw()
}

// PointerDown forwards a pointer press in client coordinates.
func (e *Editor) PointerDown(id gesture.PointerID, x, y float64) {
	e.update(func() bool {
		e.gestures.PointerDown(id, x, y)
		return true
	})
}

// PointerMove forwards a pointer move in client coordinates.
func (e *Editor) PointerMove(id gesture.PointerID, x, y float64) {
	e.update(func() bool {
		e.gestures.PointerMove(id, x, y)
		return true
	})
}

// PointerUp forwards a pointer release.
func (e *Editor) PointerUp(id gesture.PointerID) {
	e.update(func() bool {
		e.gestures.PointerUp(id)
		return true
	})
}

// PointerCancel forwards a pointer that left the canvas or was cancelled.
func (e *Editor) PointerCancel(id gesture.PointerID) {
	e.update(func() bool {
		e.gestures.PointerCancel(id)
		return true
	})
}

// Wheel forwards a wheel event at client position (x, y).
func (e *Editor) Wheel(deltaY, x, y float64) {
	e.update(func() bool {
		e.gestures.Wheel(deltaY, x, y)
		return true
	})
}

// GestureState reports the gesture in progress.
func (e *Editor) GestureState() gesture.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gestures.State()
}

// StrokeCount returns the number of recorded strokes.
func (e *Editor) StrokeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.strokes.Len()
}

// target adapts the Editor to the gesture controller. Its methods run with
// the session lock held.
type target struct{ e *Editor }

func (t target) Viewport() geom.Viewport { return t.e.viewport() }
func (t target) Transform() geom.Matrix  { return t.e.engine.Transform() }
func (t target) Mode() editstate.Mode    { return t.e.state.Mode }

func (t target) Pan(d geom.Point) {
	t.e.engine.Translate(d.X, d.Y)
	t.e.redraw()
}

func (t target) ZoomBy(delta float64, p geom.Point) { t.e.zoomBy(delta, p) }

func (t target) BeginStroke(p geom.Point) {
	e := t.e
	if !e.engine.Loaded() {
		return
	}
	e.strokes.Begin(e.state.LineColor, e.state.LineWidth, p)
	e.strokeAt = p
	e.engine.StrokeSegment(p, p, e.state.LineColor, e.state.LineWidth)
	e.dirty = true
}

func (t target) ExtendStroke(p geom.Point) {
	e := t.e
	c, w, ok := e.strokes.Style()
	if !ok {
		return
	}
	if err := e.strokes.Append(p); err != nil {
		return
	}
	e.engine.StrokeSegment(e.strokeAt, p, c, w)
	e.strokeAt = p
	e.dirty = true
}

// EndStroke finalizes the stroke and redraws so the canvas matches a
// replay of the log.
func (t target) EndStroke() {
	if t.e.strokes.End() {
		t.e.redraw()
	}
}
