// Package stroke records freehand paths drawn on the canvas.
package stroke

import (
	"errors"
	"image/color"

	"github.com/example/photoedit/internal/geom"
)

// ErrNoActiveStroke is returned when points are appended outside a stroke.
var ErrNoActiveStroke = errors.New("no active stroke")

// Path is one freehand stroke. Points are in canvas space and Color and
// Width are the values that were active when the stroke began.
type Path struct {
	Points []geom.Point
	Color  color.RGBA
	Width  float64
}

// Last returns the final point of the path.
func (p Path) Last() (geom.Point, bool) {
	if len(p.Points) == 0 {
		return geom.Point{}, false
	}
	return p.Points[len(p.Points)-1], true
}

func (p Path) clone() Path {
	p.Points = append([]geom.Point(nil), p.Points...)
	return p
}

// Log is an append-only list of paths. Only the newest path may grow, and
// only while it is open.
type Log struct {
	paths []Path
	open  bool
}

// Begin starts a new path at pt.
func (l *Log) Begin(c color.RGBA, width float64, pt geom.Point) {
	l.paths = append(l.paths, Path{Points: []geom.Point{pt}, Color: c, Width: width})
	l.open = true
}

// Append extends the open path.
func (l *Log) Append(pt geom.Point) error {
	if !l.open {
		return ErrNoActiveStroke
	}
	cur := &l.paths[len(l.paths)-1]
	cur.Points = append(cur.Points, pt)
	return nil
}

// End closes the open path. It reports whether a path was open.
func (l *Log) End() bool {
	was := l.open
	l.open = false
	return was
}

// Active reports whether a path is open.
func (l *Log) Active() bool { return l.open }

// Current returns a copy of the open path.
func (l *Log) Current() (Path, bool) {
	if !l.open {
		return Path{}, false
	}
	return l.paths[len(l.paths)-1].clone(), true
}

// Style returns the color and width of the open path.
func (l *Log) Style() (c color.RGBA, width float64, ok bool) {
	if !l.open {
		return color.RGBA{}, 0, false
	}
	cur := l.paths[len(l.paths)-1]
	return cur.Color, cur.Width, true
}

// Len is the number of recorded paths, including an open one.
func (l *Log) Len() int { return len(l.paths) }

// Paths returns a deep copy of every path in insertion order.
func (l *Log) Paths() []Path {
	out := make([]Path, len(l.paths))
	for i, p := range l.paths {
		out[i] = p.clone()
	}
	return out
}

// Each calls fn for each path in insertion order without copying. fn must
// not retain or modify the path.
func (l *Log) Each(fn func(Path)) {
	for _, p := range l.paths {
		fn(p)
	}
}

// Reset drops every path.
func (l *Log) Reset() {
	l.paths = nil
	l.open = false
}
