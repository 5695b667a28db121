package render

import (
	"fmt"
	"image"
	"math"

	"github.com/example/photoedit/internal/editstate"
)

// Filter is the color adjustment chain applied to the base image. Values
// are percentages as in the CSS filter functions of the same names and are
// applied in the order brightness, contrast, grayscale, saturate.
type Filter struct {
	Brightness float64
	Contrast   float64
	Grayscale  float64
	Saturate   float64
}

// NeutralFilter leaves colors unchanged.
var NeutralFilter = Filter{Brightness: 100, Contrast: 100, Saturate: 100}

// FilterFrom extracts the filter chain from s.
func FilterFrom(s editstate.State) Filter {
	return Filter{
		Brightness: s.Brightness,
		Contrast:   s.Contrast,
		Grayscale:  s.Grayscale,
		Saturate:   s.Saturate,
	}
}

// String renders f in CSS filter syntax.
func (f Filter) String() string {
	return fmt.Sprintf("brightness(%g%%) contrast(%g%%) grayscale(%g%%) saturate(%g%%)",
		f.Brightness, f.Contrast, f.Grayscale, f.Saturate)
}

// Neutral reports whether applying f is a no-op.
func (f Filter) Neutral() bool { return f == NeutralFilter }

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// colorMatrix is a 3x3 matrix over unpremultiplied RGB.
type colorMatrix [9]float64

func (m colorMatrix) apply(r, g, b float64) (float64, float64, float64) {
	return clamp01(m[0]*r + m[1]*g + m[2]*b),
		clamp01(m[3]*r + m[4]*g + m[5]*b),
		clamp01(m[6]*r + m[7]*g + m[8]*b)
}

func grayscaleMatrix(amount float64) colorMatrix {
	a := 1 - clamp01(amount)
	return colorMatrix{
		0.2126 + 0.7874*a, 0.7152 - 0.7152*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 + 0.2848*a, 0.0722 - 0.0722*a,
		0.2126 - 0.2126*a, 0.7152 - 0.7152*a, 0.0722 + 0.9278*a,
	}
}

func saturateMatrix(s float64) colorMatrix {
	if s < 0 {
		s = 0
	}
	return colorMatrix{
		0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s,
		0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s,
	}
}

// program is a compiled Filter: a per-channel lookup table for the linear
// transfer functions followed by the two color matrices.
type program struct {
	lut       [256]float64
	grayscale colorMatrix
	saturate  colorMatrix
	useGray   bool
	useSat    bool
}

func (f Filter) compile() *program {
	p := &program{
		grayscale: grayscaleMatrix(f.Grayscale / 100),
		saturate:  saturateMatrix(f.Saturate / 100),
		useGray:   f.Grayscale != 0,
		useSat:    f.Saturate != 100,
	}
	b, c := f.Brightness/100, f.Contrast/100
	for i := range p.lut {
		v := clamp01(float64(i) / 255 * b)
		p.lut[i] = clamp01((v-0.5)*c + 0.5)
	}
	return p
}

func (p *program) color(r, g, b uint8) (uint8, uint8, uint8) {
	fr, fg, fb := p.lut[r], p.lut[g], p.lut[b]
	if p.useGray {
		fr, fg, fb = p.grayscale.apply(fr, fg, fb)
	}
	if p.useSat {
		fr, fg, fb = p.saturate.apply(fr, fg, fb)
	}
	return to8(fr), to8(fg), to8(fb)
}

func to8(v float64) uint8 { return uint8(math.Round(v * 255)) }

// ApplyRGB runs an opaque color through f.
func (f Filter) ApplyRGB(r, g, b uint8) (uint8, uint8, uint8) {
	return f.compile().color(r, g, b)
}

// Apply filters img in place. Colors are unpremultiplied before the chain
// runs and premultiplied again afterwards; alpha is preserved.
func (f Filter) Apply(img *image.RGBA) {
	if f.Neutral() {
		return
	}
	p := f.compile()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i+3 < len(row); i += 4 {
			a := row[i+3]
			switch a {
			case 0:
				continue
			case 0xff:
				row[i], row[i+1], row[i+2] = p.color(row[i], row[i+1], row[i+2])
			default:
				r, g, bl := p.color(unpremul(row[i], a), unpremul(row[i+1], a), unpremul(row[i+2], a))
				row[i], row[i+1], row[i+2] = premul(r, a), premul(g, a), premul(bl, a)
			}
		}
	}
}

func unpremul(c, a uint8) uint8 {
	v := (uint32(c)*0xff + uint32(a)/2) / uint32(a)
	if v > 0xff {
		v = 0xff
	}
	return uint8(v)
}

func premul(c, a uint8) uint8 {
	return uint8((uint32(c)*uint32(a) + 0x7f) / 0xff)
}
