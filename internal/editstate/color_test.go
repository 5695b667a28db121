package editstate

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{in: "black", want: color.RGBA{0, 0, 0, 255}},
		{in: " Red ", want: color.RGBA{255, 0, 0, 255}},
		{in: "#00ff00", want: color.RGBA{0, 255, 0, 255}},
		{in: "#0f0", want: color.RGBA{0, 255, 0, 255}},
		{in: "#11223380", want: color.RGBA{0x11, 0x22, 0x33, 0x80}},
		{in: "", wantErr: true},
		{in: "#12345", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "chartreuse-ish", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColor(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatColorRoundTrip(t *testing.T) {
	for _, c := range []color.RGBA{{1, 2, 3, 255}, {0xaa, 0xbb, 0xcc, 0x10}} {
		got, err := ParseColor(FormatColor(c))
		if err != nil {
			t.Fatalf("ParseColor(FormatColor(%v)): %v", c, err)
		}
		if got != c {
			t.Fatalf("round trip %v -> %v", c, got)
		}
	}
}
