package editstate

import (
	"errors"
	"image/color"
	"math"
	"testing"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	if s.Brightness != 100 || s.Contrast != 100 || s.Saturate != 100 || s.Grayscale != 0 {
		t.Fatalf("unexpected filter defaults: %+v", s)
	}
	if s.Rotation != 0 || s.FlipHorizontal || s.FlipVertical || s.Zoom != 1 {
		t.Fatalf("unexpected transform defaults: %+v", s)
	}
	if s.Mode != ModePan || s.LineWidth != 2 || s.LineColor != (color.RGBA{A: 255}) {
		t.Fatalf("unexpected drawing defaults: %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestSettersRejectOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		set    func(*State, float64) bool
		get    func(State) float64
		good   float64
		bad    []float64
		before float64
	}{
		{"brightness", (*State).SetBrightness, func(s State) float64 { return s.Brightness }, 150, []float64{-1, 201, math.NaN()}, 100},
		{"contrast", (*State).SetContrast, func(s State) float64 { return s.Contrast }, 0, []float64{-0.5, 200.1, math.Inf(1)}, 100},
		{"saturate", (*State).SetSaturate, func(s State) float64 { return s.Saturate }, 200, []float64{250}, 100},
		{"grayscale", (*State).SetGrayscale, func(s State) float64 { return s.Grayscale }, 100, []float64{101, -1}, 0},
		{"rotation", (*State).SetRotation, func(s State) float64 { return s.Rotation }, -180, []float64{181, -181}, 0},
		{"line width", (*State).SetLineWidth, func(s State) float64 { return s.LineWidth }, 100, []float64{1, 101}, 2},
		{"zoom", (*State).SetZoom, func(s State) float64 { return s.Zoom }, 0.1, []float64{0.05, 0, -1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			for _, v := range tt.bad {
				if tt.set(&s, v) {
					t.Fatalf("value %v should be rejected", v)
				}
				if got := tt.get(s); got != tt.before {
					t.Fatalf("rejected value changed state: got %v want %v", got, tt.before)
				}
			}
			if !tt.set(&s, tt.good) {
				t.Fatalf("value %v should be accepted", tt.good)
			}
			if got := tt.get(s); got != tt.good {
				t.Fatalf("got %v want %v", got, tt.good)
			}
		})
	}
}

func TestAddZoomClampsAtFloor(t *testing.T) {
	s := Defaults()
	for i := 0; i < 50; i++ {
		s.AddZoom(-0.1)
	}
	if s.Zoom != MinZoom {
		t.Fatalf("zoom %v, want floor %v", s.Zoom, MinZoom)
	}
	prev, next := s.AddZoom(-3)
	if prev != MinZoom || next != MinZoom {
		t.Fatalf("clamped zoom moved: %v -> %v", prev, next)
	}
	prev, next = s.AddZoom(math.NaN())
	if prev != next {
		t.Fatalf("NaN delta changed zoom: %v -> %v", prev, next)
	}
}

func TestSetField(t *testing.T) {
	tests := []struct {
		field   string
		raw     string
		applied bool
		check   func(State) bool
	}{
		{FieldBrightness, "150", true, func(s State) bool { return s.Brightness == 150 }},
		{FieldBrightness, "150abc", true, func(s State) bool { return s.Brightness == 150 }},
		{FieldBrightness, "abc", false, func(s State) bool { return s.Brightness == 100 }},
		{FieldBrightness, "201", false, func(s State) bool { return s.Brightness == 100 }},
		{FieldContrast, " 12.9", true, func(s State) bool { return s.Contrast == 12 }},
		{FieldGrayscale, "101", false, func(s State) bool { return s.Grayscale == 0 }},
		{FieldRotation, "-90", true, func(s State) bool { return s.Rotation == -90 }},
		{FieldLineWidth, "1", false, func(s State) bool { return s.LineWidth == 2 }},
		{FieldLineColor, "#ff0000", true, func(s State) bool { return s.LineColor == color.RGBA{255, 0, 0, 255} }},
		{FieldLineColor, "nope", false, func(s State) bool { return s.LineColor == color.RGBA{A: 255} }},
		{FieldMode, "draw", true, func(s State) bool { return s.Mode == ModeDraw }},
		{FieldZoom, "0.5", true, func(s State) bool { return s.Zoom == 0.5 }},
		{FieldZoom, "0.01", false, func(s State) bool { return s.Zoom == 1 }},
	}
	for _, tt := range tests {
		t.Run(tt.field+"="+tt.raw, func(t *testing.T) {
			s := Defaults()
			applied, err := s.SetField(tt.field, tt.raw)
			if err != nil {
				t.Fatalf("SetField: %v", err)
			}
			if applied != tt.applied {
				t.Fatalf("applied = %v, want %v", applied, tt.applied)
			}
			if !tt.check(s) {
				t.Fatalf("unexpected state %+v", s)
			}
		})
	}
}

func TestSetFieldUnknown(t *testing.T) {
	s := Defaults()
	_, err := s.SetField("sharpness", "10")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestParseLeadingInt(t *testing.T) {
	tests := map[string]struct {
		v  int
		ok bool
	}{
		"42":    {42, true},
		"  -7":  {-7, true},
		"+3x":   {3, true},
		"9.99":  {9, true},
		"":      {0, false},
		"-":     {0, false},
		"px12":  {0, false},
		"1e3":   {1, true},
	}
	for in, want := range tests {
		v, ok := ParseLeadingInt(in)
		if v != want.v || ok != want.ok {
			t.Errorf("ParseLeadingInt(%q) = %d,%v want %d,%v", in, v, ok, want.v, want.ok)
		}
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("DRAW"); err != nil || m != ModeDraw {
		t.Fatalf("ParseMode(DRAW) = %v, %v", m, err)
	}
	if _, err := ParseMode("erase"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
