package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/stroke"
)

// outline accumulates the fill outline of a round-capped, round-joined
// polyline. Every sub-polygon is emitted with the same winding so that
// overlapping pieces add up instead of cancelling.
type outline struct {
	z *vector.Rasterizer
	m geom.Matrix
	// circle segment count for the current width under m
	segs int
}

func newOutline(z *vector.Rasterizer, m geom.Matrix, width float64) *outline {
	scale := math.Sqrt(math.Abs(m.Determinant()))
	r := width / 2 * scale
	segs := int(math.Ceil(r * math.Pi / 2))
	if segs < 12 {
		segs = 12
	}
	if segs > 96 {
		segs = 96
	}
	return &outline{z: z, m: m, segs: segs}
}

func (o *outline) polygon(pts ...geom.Point) {
	first := o.m.TransformPoint(pts[0])
	o.z.MoveTo(float32(first.X), float32(first.Y))
	for _, p := range pts[1:] {
		d := o.m.TransformPoint(p)
		o.z.LineTo(float32(d.X), float32(d.Y))
	}
	o.z.ClosePath()
}

func (o *outline) disc(c geom.Point, r float64) {
	pts := make([]geom.Point, o.segs)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(o.segs)
		pts[i] = geom.Pt(c.X+r*math.Cos(a), c.Y+r*math.Sin(a))
	}
	o.polygon(pts...)
}

func (o *outline) segment(a, b geom.Point, r float64) {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return
	}
	n := geom.Pt(-d.Y/l*r, d.X/l*r)
	// same turning direction as disc
	o.polygon(a.Sub(n), b.Sub(n), b.Add(n), a.Add(n))
}

func (o *outline) polyline(pts []geom.Point, width float64) {
	r := width / 2
	for i, p := range pts {
		o.disc(p, r)
		if i > 0 {
			o.segment(pts[i-1], p, r)
		}
	}
}

// paint fills whatever was accumulated in z onto dst with c.
func paint(z *vector.Rasterizer, dst *image.RGBA, c color.RGBA) {
	z.DrawOp = draw.Over
	z.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
}

// FillPath rasterizes p onto dst under m.
func FillPath(z *vector.Rasterizer, dst *image.RGBA, m geom.Matrix, p stroke.Path) {
	if len(p.Points) == 0 {
		return
	}
	b := dst.Bounds()
	z.Reset(b.Dx(), b.Dy())
	newOutline(z, m, p.Width).polyline(p.Points, p.Width)
	paint(z, dst, p.Color)
}

// FillSegment rasterizes the single segment a-b with round caps onto dst.
func FillSegment(z *vector.Rasterizer, dst *image.RGBA, m geom.Matrix, a, b geom.Point, c color.RGBA, width float64) {
	bounds := dst.Bounds()
	z.Reset(bounds.Dx(), bounds.Dy())
	newOutline(z, m, width).polyline([]geom.Point{a, b}, width)
	paint(z, dst, c)
}
