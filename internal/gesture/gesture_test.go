package gesture

import (
	"math"
	"testing"

	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/geom"
)

type zoomCall struct {
	delta float64
	pivot geom.Point
}

type fakeTarget struct {
	view    geom.Viewport
	m       geom.Matrix
	mode    editstate.Mode
	pans    []geom.Point
	zooms   []zoomCall
	strokes [][]geom.Point
	ended   int
}

func newFake(mode editstate.Mode) *fakeTarget {
	return &fakeTarget{
		view: geom.Viewport{Rect: geom.Rect{Width: 100, Height: 100}, CanvasWidth: 100, CanvasHeight: 100},
		m:    geom.Identity(),
		mode: mode,
	}
}

func (f *fakeTarget) Viewport() geom.Viewport  { return f.view }
func (f *fakeTarget) Transform() geom.Matrix   { return f.m }
func (f *fakeTarget) Mode() editstate.Mode     { return f.mode }
func (f *fakeTarget) Pan(d geom.Point)         { f.pans = append(f.pans, d); f.m = f.m.Translate(d.X, d.Y) }
func (f *fakeTarget) BeginStroke(p geom.Point) { f.strokes = append(f.strokes, []geom.Point{p}) }
func (f *fakeTarget) EndStroke()               { f.ended++ }

func (f *fakeTarget) ZoomBy(delta float64, p geom.Point) {
	f.zooms = append(f.zooms, zoomCall{delta, p})
}

func (f *fakeTarget) ExtendStroke(p geom.Point) {
	last := len(f.strokes) - 1
	f.strokes[last] = append(f.strokes[last], p)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func nearPt(a, b geom.Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestPanEmitsIncrementalDeltas(t *testing.T) {
	f := newFake(editstate.ModePan)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 10, 10)
	if c.State() != Panning {
		t.Fatalf("state = %v, want panning", c.State())
	}
	c.PointerMove(1, 15, 10)
	c.PointerMove(1, 15, 12)
	c.PointerMove(2, 50, 50) // unknown pointer
	c.PointerUp(1)
	if c.State() != Idle {
		t.Fatalf("state after up = %v", c.State())
	}
	want := []geom.Point{geom.Pt(5, 0), geom.Pt(0, 2)}
	if len(f.pans) != len(want) {
		t.Fatalf("pans = %v, want %v", f.pans, want)
	}
	for i := range want {
		if !nearPt(f.pans[i], want[i]) {
			t.Fatalf("pan %d = %v, want %v", i, f.pans[i], want[i])
		}
	}
}

func TestPanIsMirroredUnderFlip(t *testing.T) {
	f := newFake(editstate.ModePan)
	f.m = geom.ComposeFlip(geom.Identity(), geom.Horizontal, 100, 100)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 10, 10)
	c.PointerMove(1, 15, 10)
	if len(f.pans) != 1 || !nearPt(f.pans[0], geom.Pt(-5, 0)) {
		t.Fatalf("pans = %v, want [(-5,0)]", f.pans)
	}
}

func TestPanIsScaledByZoomAndDisplayRatio(t *testing.T) {
	f := newFake(editstate.ModePan)
	f.view.Rect = geom.Rect{Width: 50, Height: 50} // shown at half size
	f.m = geom.Scale(4, 4)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 0, 0)
	c.PointerMove(1, 8, 0)
	if len(f.pans) != 1 || !nearPt(f.pans[0], geom.Pt(4, 0)) {
		t.Fatalf("pans = %v, want [(4,0)]", f.pans)
	}
}

func TestDrawRecordsCanvasPoints(t *testing.T) {
	f := newFake(editstate.ModeDraw)
	f.m = geom.Scale(2, 2)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 10, 10)
	if c.State() != Drawing {
		t.Fatalf("state = %v, want drawing", c.State())
	}
	c.PointerMove(1, 20, 30)
	c.PointerUp(1)
	if len(f.strokes) != 1 || len(f.strokes[0]) != 2 {
		t.Fatalf("strokes = %v", f.strokes)
	}
	if !nearPt(f.strokes[0][0], geom.Pt(5, 5)) || !nearPt(f.strokes[0][1], geom.Pt(10, 15)) {
		t.Fatalf("stroke points = %v", f.strokes[0])
	}
	if f.ended != 1 {
		t.Fatalf("EndStroke called %d times", f.ended)
	}
}

func TestDrawIgnoredWhenUnmounted(t *testing.T) {
	f := newFake(editstate.ModeDraw)
	f.view = geom.Viewport{}
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 10, 10)
	c.PointerMove(1, 20, 20)
	c.PointerUp(1)
	if c.State() != Idle || len(f.strokes) != 0 || f.ended != 0 {
		t.Fatalf("unmounted canvas produced a stroke: state=%v strokes=%v ended=%d", c.State(), f.strokes, f.ended)
	}
}

func TestPinchSeedsBaselineOnFirstMove(t *testing.T) {
	f := newFake(editstate.ModeDraw)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 0, 0)
	c.PointerDown(2, 10, 0)
	if c.State() != Pinching {
		t.Fatalf("state = %v, want pinching", c.State())
	}
	if f.ended != 1 {
		t.Fatalf("second pointer should abandon the stroke")
	}

	c.PointerMove(2, 20, 0)
	if len(f.zooms) != 0 {
		t.Fatalf("first two-pointer move should only seed, got %v", f.zooms)
	}
	c.PointerMove(2, 30, 4)
	if len(f.zooms) != 1 {
		t.Fatalf("zooms = %v", f.zooms)
	}
	if z := f.zooms[0]; !near(z.delta, 0.1) || !nearPt(z.pivot, geom.Pt(15, 2)) {
		t.Fatalf("zoom = %+v, want delta 0.1 about (15,2)", z)
	}

	c.PointerUp(2)
	if c.State() != Idle {
		t.Fatalf("state after release = %v", c.State())
	}
	c.PointerDown(2, 40, 0)
	c.PointerMove(2, 60, 0)
	if len(f.zooms) != 1 {
		t.Fatalf("new pinch did not reseed its baseline: %v", f.zooms)
	}
}

func TestPinchUsesLargerAxisDistance(t *testing.T) {
	f := newFake(editstate.ModePan)
	c := NewController(f, DefaultConfig())
	c.PointerDown(1, 0, 0)
	c.PointerDown(2, 10, 40)
	c.PointerMove(1, 0, 0)
	c.PointerMove(2, 30, 20)
	// distance goes from max(10,40)=40 to max(30,20)=30
	if len(f.zooms) != 1 || !near(f.zooms[0].delta, -0.1) {
		t.Fatalf("zooms = %v, want one delta of -0.1", f.zooms)
	}
}

func TestWheel(t *testing.T) {
	f := newFake(editstate.ModePan)
	c := NewController(f, DefaultConfig())
	c.Wheel(-100, 30, 40)
	c.Wheel(50, 30, 40)
	c.Wheel(0, 30, 40)
	if len(f.zooms) != 2 {
		t.Fatalf("zooms = %v", f.zooms)
	}
	if !near(f.zooms[0].delta, 1) || !near(f.zooms[1].delta, -0.5) {
		t.Fatalf("wheel deltas = %v", f.zooms)
	}
	if !nearPt(f.zooms[0].pivot, geom.Pt(30, 40)) {
		t.Fatalf("wheel pivot = %v", f.zooms[0].pivot)
	}
}

func TestCancelBehavesLikeUp(t *testing.T) {
	f := newFake(editstate.ModeDraw)
	c := NewController(f, DefaultConfig())
	c.PointerDown(7, 1, 1)
	c.PointerCancel(7)
	if c.State() != Idle || c.Active() != 0 || f.ended != 1 {
		t.Fatalf("cancel left state=%v active=%d ended=%d", c.State(), c.Active(), f.ended)
	}
}
