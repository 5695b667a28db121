package stroke

import (
	"errors"
	"image/color"
	"testing"

	"github.com/example/photoedit/internal/geom"
)

var red = color.RGBA{255, 0, 0, 255}

func TestLogRecordsAttributesPerPath(t *testing.T) {
	var l Log
	l.Begin(red, 4, geom.Pt(1, 1))
	if err := l.Append(geom.Pt(2, 2)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	l.End()
	l.Begin(color.RGBA{A: 255}, 10, geom.Pt(5, 5))
	l.End()

	paths := l.Paths()
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
	if paths[0].Color != red || paths[0].Width != 4 || len(paths[0].Points) != 2 {
		t.Fatalf("first path = %+v", paths[0])
	}
	if paths[1].Width != 10 || len(paths[1].Points) != 1 {
		t.Fatalf("second path = %+v", paths[1])
	}
}

func TestAppendWithoutStroke(t *testing.T) {
	var l Log
	if err := l.Append(geom.Pt(0, 0)); !errors.Is(err, ErrNoActiveStroke) {
		t.Fatalf("expected ErrNoActiveStroke, got %v", err)
	}
	l.Begin(red, 2, geom.Pt(0, 0))
	l.End()
	if err := l.Append(geom.Pt(1, 1)); !errors.Is(err, ErrNoActiveStroke) {
		t.Fatalf("closed path accepted a point: %v", err)
	}
	if got := len(l.Paths()[0].Points); got != 1 {
		t.Fatalf("closed path has %d points", got)
	}
}

func TestPathsIsACopy(t *testing.T) {
	var l Log
	l.Begin(red, 2, geom.Pt(0, 0))
	l.End()
	p := l.Paths()
	p[0].Points[0] = geom.Pt(9, 9)
	if l.Paths()[0].Points[0] != geom.Pt(0, 0) {
		t.Fatalf("Paths leaked internal storage")
	}
}

func TestReset(t *testing.T) {
	var l Log
	l.Begin(red, 2, geom.Pt(0, 0))
	l.Reset()
	if l.Len() != 0 || l.Active() {
		t.Fatalf("reset left len=%d active=%v", l.Len(), l.Active())
	}
	if l.End() {
		t.Fatalf("End after Reset reported an open path")
	}
}
