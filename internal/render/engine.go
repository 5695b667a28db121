// Package render owns the canvas bitmap and its cumulative transform and
// composites the source image, the color filter and the recorded strokes.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/stroke"
)

// Engine draws a source image and its strokes onto a canvas under an affine
// transform. The transform only changes through the Engine's methods and is
// rebuilt from identity on Load and ResetTransform.
type Engine struct {
	canvas  *image.RGBA
	src     image.Image
	m       geom.Matrix
	filter  Filter
	strokes *stroke.Log
	interp  xdraw.Interpolator
	z       *vector.Rasterizer
	log     *slog.Logger

	pending bool
	redraws int
}

// Option configures an Engine.
type Option func(*Engine)

// WithInterpolator selects the resampler used to draw the source.
func WithInterpolator(i xdraw.Interpolator) Option { return func(e *Engine) { e.interp = i } }

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option { return func(e *Engine) { e.log = l } }

// NewEngine returns an engine without a source. Strokes recorded in log are
// replayed on every redraw.
func NewEngine(log *stroke.Log, opts ...Option) *Engine {
	if log == nil {
		log = &stroke.Log{}
	}
	e := &Engine{
		m:       geom.Identity(),
		filter:  NeutralFilter,
		strokes: log,
		interp:  xdraw.ApproxBiLinear,
		z:       vector.NewRasterizer(0, 0),
		log:     slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Load installs img as the source, sizes the canvas to its natural size and
// resets the transform. A nil img drops the canvas. Any redraw requested
// while no source was present is serviced here.
func (e *Engine) Load(img image.Image) {
	e.src = img
	e.m = geom.Identity()
	if img == nil {
		e.canvas = nil
		return
	}
	b := img.Bounds()
	e.canvas = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	e.log.Debug("canvas sized", "width", b.Dx(), "height", b.Dy(), "pending", e.pending)
	e.pending = false
	e.Redraw()
}

// Loaded reports whether a source and canvas are present.
func (e *Engine) Loaded() bool { return e.canvas != nil && e.src != nil }

// Canvas returns the live canvas, or nil before a source is loaded.
func (e *Engine) Canvas() *image.RGBA { return e.canvas }

// Snapshot returns a copy of the canvas.
func (e *Engine) Snapshot() *image.RGBA {
	if e.canvas == nil {
		return nil
	}
	out := image.NewRGBA(e.canvas.Bounds())
	copy(out.Pix, e.canvas.Pix)
	return out
}

// Size returns the canvas size in device pixels.
func (e *Engine) Size() (w, h int) {
	if e.canvas == nil {
		return 0, 0
	}
	b := e.canvas.Bounds()
	return b.Dx(), b.Dy()
}

func (e *Engine) center() (float64, float64) {
	w, h := e.Size()
	return float64(w) / 2, float64(h) / 2
}

// Transform returns the current user-to-device transform.
func (e *Engine) Transform() geom.Matrix { return e.m }

// Filter returns the active filter.
func (e *Engine) Filter() Filter { return e.filter }

// SetFilter replaces the filter used for the base image.
func (e *Engine) SetFilter(f Filter) { e.filter = f }

// Pending reports whether a redraw was requested before a source existed.
func (e *Engine) Pending() bool { return e.pending }

// Redraws counts completed redraws.
func (e *Engine) Redraws() int { return e.redraws }

// ResetTransform sets the transform back to identity.
func (e *Engine) ResetTransform() { e.m = geom.Identity() }

// Translate composes a user-space translation.
func (e *Engine) Translate(dx, dy float64) {
	if e.canvas == nil {
		return
	}
	e.m = e.m.Translate(dx, dy)
}

// Rotate composes a rotation of deg degrees about the canvas center.
func (e *Engine) Rotate(deg float64) {
	if e.canvas == nil || deg == 0 {
		return
	}
	cx, cy := e.center()
	e.m = geom.ComposeRotate(e.m, deg, cx, cy)
}

// Flip mirrors along axis as seen by the user given the current rotation.
func (e *Engine) Flip(axis geom.Axis, rotation float64) {
	if e.canvas == nil {
		return
	}
	w, h := e.Size()
	e.m = geom.ComposeFlipUnrotated(e.m, axis, float64(w), float64(h), rotation)
}

// Zoom composes a relative scale about the user-space pivot p.
func (e *Engine) Zoom(factor float64, p geom.Point) {
	if e.canvas == nil || factor == 1 || factor <= 0 {
		return
	}
	e.m = geom.ComposeZoom(e.m, factor, p.X, p.Y)
}

// ZoomCenter composes a relative scale about the canvas center.
func (e *Engine) ZoomCenter(factor float64) {
	cx, cy := e.center()
	e.Zoom(factor, geom.Pt(cx, cy))
}

// RequestRedraw redraws now when a source is present and otherwise
// remembers that a redraw is owed. Repeated requests collapse into one.
func (e *Engine) RequestRedraw() {
	if !e.Redraw() {
		e.pending = true
	}
}

// Redraw clears the canvas, draws the filtered source under the transform
// and replays every stroke unfiltered under the same transform. It reports
// false when there is nothing to draw on.
func (e *Engine) Redraw() bool {
	if !e.Loaded() {
		return false
	}
	draw.Draw(e.canvas, e.canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)

	sb := e.src.Bounds()
	s2d := e.m.Translate(-float64(sb.Min.X), -float64(sb.Min.Y))
	e.interp.Transform(e.canvas, s2d.Aff3(), e.src, sb, xdraw.Over, nil)
	e.filter.Apply(e.canvas)

	e.strokes.Each(func(p stroke.Path) {
		FillPath(e.z, e.canvas, e.m, p)
	})
	e.redraws++
	return true
}

// StrokeSegment draws one segment of an in-progress stroke on top of the
// canvas without a full redraw.
func (e *Engine) StrokeSegment(a, b geom.Point, c color.RGBA, width float64) {
	if e.canvas == nil {
		return
	}
	FillSegment(e.z, e.canvas, e.m, a, b, c, width)
}
