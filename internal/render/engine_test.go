package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	xdraw "golang.org/x/image/draw"

	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/stroke"
)

var (
	white = color.RGBA{255, 255, 255, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 40), uint8(y * 40), 7, 255})
		}
	}
	return img
}

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func newTestEngine(log *stroke.Log) *Engine {
	return NewEngine(log, WithInterpolator(xdraw.NearestNeighbor))
}

func TestLoadSizesCanvasAndDrawsSource(t *testing.T) {
	src := gradient(4, 3)
	e := newTestEngine(nil)
	e.Load(src)
	if w, h := e.Size(); w != 4 || h != 3 {
		t.Fatalf("canvas %dx%d, want 4x3", w, h)
	}
	if !bytes.Equal(e.Canvas().Pix, src.Pix) {
		t.Fatalf("identity redraw differs from source")
	}
}

func TestRedrawIsIdempotent(t *testing.T) {
	var log stroke.Log
	log.Begin(red, 3, geom.Pt(1, 1))
	log.Append(geom.Pt(6, 5))
	log.End()
	e := NewEngine(&log)
	e.Load(gradient(8, 8))
	e.Rotate(30)
	e.ZoomCenter(1.5)
	e.SetFilter(Filter{Brightness: 130, Contrast: 90, Grayscale: 20, Saturate: 150})

	e.Redraw()
	first := e.Snapshot()
	e.Redraw()
	if !bytes.Equal(first.Pix, e.Canvas().Pix) {
		t.Fatalf("second redraw changed pixels")
	}
}

func TestRedrawBeforeLoadIsCoalesced(t *testing.T) {
	e := newTestEngine(nil)
	if e.Redraw() {
		t.Fatalf("redraw without a source should report false")
	}
	e.RequestRedraw()
	e.RequestRedraw()
	if !e.Pending() {
		t.Fatalf("expected a pending redraw")
	}
	e.Load(solid(2, 2, white))
	if e.Pending() {
		t.Fatalf("load should service the pending redraw")
	}
	if e.Redraws() != 1 {
		t.Fatalf("expected one redraw, got %d", e.Redraws())
	}
}

func TestMutatorsWithoutCanvasAreNoops(t *testing.T) {
	e := newTestEngine(nil)
	e.Translate(5, 5)
	e.Rotate(90)
	e.Flip(geom.Horizontal, 0)
	e.Zoom(2, geom.Pt(0, 0))
	e.StrokeSegment(geom.Pt(0, 0), geom.Pt(1, 1), red, 2)
	if !e.Transform().IsIdentity() {
		t.Fatalf("transform changed without a canvas: %v", e.Transform())
	}
}

func TestFlipMirrorsCanvas(t *testing.T) {
	src := gradient(4, 2)
	e := newTestEngine(nil)
	e.Load(src)
	e.Flip(geom.Horizontal, 0)
	e.Redraw()
	for x := 0; x < 4; x++ {
		if got, want := e.Canvas().RGBAAt(x, 1), src.RGBAAt(3-x, 1); got != want {
			t.Fatalf("pixel %d = %v, want %v", x, got, want)
		}
	}
}

func TestStrokesAreNotFiltered(t *testing.T) {
	var log stroke.Log
	log.Begin(red, 4, geom.Pt(2, 10))
	log.Append(geom.Pt(18, 10))
	log.End()
	e := newTestEngine(&log)
	e.Load(solid(20, 20, white))
	e.SetFilter(Filter{Brightness: 0, Contrast: 100, Saturate: 100})
	e.Redraw()
	if got := e.Canvas().RGBAAt(10, 10); got != red {
		t.Fatalf("stroke pixel = %v, want %v", got, red)
	}
	if got := e.Canvas().RGBAAt(10, 2); got != (color.RGBA{0, 0, 0, 255}) {
		t.Fatalf("filtered base pixel = %v, want black", got)
	}
}

func TestStrokesStayPinnedUnderPan(t *testing.T) {
	var log stroke.Log
	log.Begin(red, 4, geom.Pt(5, 5))
	log.End()
	e := newTestEngine(&log)
	e.Load(solid(20, 20, white))
	if got := e.Canvas().RGBAAt(5, 5); got != red {
		t.Fatalf("dot before pan = %v", got)
	}
	e.Translate(6, 0)
	e.Redraw()
	if got := e.Canvas().RGBAAt(11, 5); got != red {
		t.Fatalf("dot after pan = %v, want it to follow the image", got)
	}
	if got := e.Canvas().RGBAAt(5, 5); got == red {
		t.Fatalf("dot left behind at its old device position")
	}
}

func TestStrokeSegmentMatchesReplay(t *testing.T) {
	var log stroke.Log
	e := newTestEngine(&log)
	e.Load(solid(20, 20, white))
	a, b := geom.Pt(3, 3), geom.Pt(15, 12)
	log.Begin(red, 5, a)
	log.Append(b)
	e.StrokeSegment(a, b, red, 5)
	live := e.Snapshot()
	log.End()
	e.Redraw()
	if !bytes.Equal(live.Pix, e.Canvas().Pix) {
		t.Fatalf("incremental stroke differs from replayed stroke")
	}
}

func TestLoadNilDropsCanvas(t *testing.T) {
	e := newTestEngine(nil)
	e.Load(solid(2, 2, white))
	e.Load(nil)
	if e.Canvas() != nil || e.Loaded() {
		t.Fatalf("canvas still present after clearing the source")
	}
}
