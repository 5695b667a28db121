// Package editstate holds the user-adjustable edit parameters of a session
// and validates every change before it is applied.
package editstate

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Mode selects what a primary pointer drag does.
type Mode int

const (
	ModePan Mode = iota
	ModeDraw
)

func (m Mode) String() string {
	switch m {
	case ModePan:
		return "pan"
	case ModeDraw:
		return "draw"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts "pan" or "draw" in any case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pan", "move":
		return ModePan, nil
	case "draw":
		return ModeDraw, nil
	}
	return ModePan, fmt.Errorf("unknown mode %q", s)
}

// Range is an inclusive numeric bound.
type Range struct {
	Min, Max float64
}

// Contains reports whether v is a finite number within r.
func (r Range) Contains(v float64) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// MinZoom is the smallest zoom factor the canvas can reach.
const MinZoom = 0.1

var (
	FilterRange    = Range{0, 200}
	GrayscaleRange = Range{0, 100}
	RotationRange  = Range{-180, 180}
	LineWidthRange = Range{2, 100}
	ZoomRange      = Range{MinZoom, math.MaxFloat64}
)

// State is the full set of edit parameters. The zero value is not useful;
// start from Defaults.
type State struct {
	Brightness     float64
	Contrast       float64
	Saturate       float64
	Grayscale      float64
	Rotation       float64
	FlipHorizontal bool
	FlipVertical   bool
	Zoom           float64
	Mode           Mode
	LineColor      color.RGBA
	LineWidth      float64
}

// Defaults returns the neutral edit state.
func Defaults() State {
	return State{
		Brightness: 100,
		Contrast:   100,
		Saturate:   100,
		Grayscale:  0,
		Zoom:       1,
		Mode:       ModePan,
		LineColor:  color.RGBA{A: 0xff},
		LineWidth:  2,
	}
}

// Validate reports the first field that is out of range.
func (s State) Validate() error {
	checks := []struct {
		name string
		v    float64
		r    Range
	}{
		{FieldBrightness, s.Brightness, FilterRange},
		{FieldContrast, s.Contrast, FilterRange},
		{FieldSaturate, s.Saturate, FilterRange},
		{FieldGrayscale, s.Grayscale, GrayscaleRange},
		{FieldRotation, s.Rotation, RotationRange},
		{FieldZoom, s.Zoom, ZoomRange},
		{FieldLineWidth, s.LineWidth, LineWidthRange},
	}
	for _, c := range checks {
		if !c.r.Contains(c.v) {
			return fmt.Errorf("%s %v out of range [%v, %v]", c.name, c.v, c.r.Min, c.r.Max)
		}
	}
	if s.Mode != ModePan && s.Mode != ModeDraw {
		return fmt.Errorf("invalid mode %v", s.Mode)
	}
	return nil
}

func set(dst *float64, v float64, r Range) bool {
	if !r.Contains(v) {
		return false
	}
	*dst = v
	return true
}

// SetBrightness applies v when it lies in [0,200].
func (s *State) SetBrightness(v float64) bool { return set(&s.Brightness, v, FilterRange) }

// SetContrast applies v when it lies in [0,200].
func (s *State) SetContrast(v float64) bool { return set(&s.Contrast, v, FilterRange) }

// SetSaturate applies v when it lies in [0,200].
func (s *State) SetSaturate(v float64) bool { return set(&s.Saturate, v, FilterRange) }

// SetGrayscale applies v when it lies in [0,100].
func (s *State) SetGrayscale(v float64) bool { return set(&s.Grayscale, v, GrayscaleRange) }

// SetRotation applies v when it lies in [-180,180].
func (s *State) SetRotation(v float64) bool { return set(&s.Rotation, v, RotationRange) }

// SetLineWidth applies v when it lies in [2,100].
func (s *State) SetLineWidth(v float64) bool { return set(&s.LineWidth, v, LineWidthRange) }

// SetZoom applies an absolute zoom of at least MinZoom.
func (s *State) SetZoom(v float64) bool { return set(&s.Zoom, v, ZoomRange) }

// AddZoom adds delta to the zoom, clamping the result to MinZoom. It returns
// the zoom before and after the change. Non-finite deltas leave the zoom
// untouched.
func (s *State) AddZoom(delta float64) (prev, next float64) {
	prev = s.Zoom
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return prev, prev
	}
	next = math.Max(prev+delta, MinZoom)
	s.Zoom = next
	return prev, next
}

// SetMode switches between pan and draw.
func (s *State) SetMode(m Mode) bool {
	if m != ModePan && m != ModeDraw {
		return false
	}
	s.Mode = m
	return true
}

// ToggleFlipHorizontal inverts the horizontal mirror flag.
func (s *State) ToggleFlipHorizontal() { s.FlipHorizontal = !s.FlipHorizontal }

// ToggleFlipVertical inverts the vertical mirror flag.
func (s *State) ToggleFlipVertical() { s.FlipVertical = !s.FlipVertical }
