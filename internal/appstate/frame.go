package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"golang.org/x/exp/shiny/screen"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/theme"
)

const (
	statusHeight = 20
	checkerSize  = 8
	maxWindowW   = 1280
	maxWindowH   = 880
)

// backdropCache holds the last checkerboard, keyed by size and colors.
var backdropCache struct {
	img         *image.RGBA
	light, dark color.RGBA
}

// windowSize picks an initial window for a canvas, shrinking large images
// to fit a typical screen.
func windowSize(canvasW, canvasH int) (int, int) {
	if canvasW <= 0 || canvasH <= 0 {
		return 640, 480 + statusHeight
	}
	r := fitRect(canvasW, canvasH, maxWindowW, maxWindowH-statusHeight)
	return r.Dx(), r.Dy() + statusHeight
}

// fitRect centers a canvas in a w by h area, scaled down to fit but never
// up.
func fitRect(canvasW, canvasH, w, h int) image.Rectangle {
	if canvasW <= 0 || canvasH <= 0 || w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	scale := 1.0
	if sx := float64(w) / float64(canvasW); sx < scale {
		scale = sx
	}
	if sy := float64(h) / float64(canvasH); sy < scale {
		scale = sy
	}
	dw := int(float64(canvasW) * scale)
	dh := int(float64(canvasH) * scale)
	x0 := (w - dw) / 2
	y0 := (h - dh) / 2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

// viewportFor converts a display rectangle into the client rectangle the
// editor maps pointer events through.
func viewportFor(r image.Rectangle) geom.Rect {
	return geom.Rect{
		Left:   float64(r.Min.X),
		Top:    float64(r.Min.Y),
		Width:  float64(r.Dx()),
		Height: float64(r.Dy()),
	}
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.Set(x, y, light)
			} else {
				dst.Set(x, y, dark)
			}
		}
	}
}

// drawBackdrop fills dst with a cached checkerboard pattern.
func drawBackdrop(dst *image.RGBA, t *theme.Theme) {
	b := dst.Bounds()
	c := &backdropCache
	if c.img == nil || c.img.Bounds() != b || c.light != t.CheckerLight || c.dark != t.CheckerDark {
		c.img = image.NewRGBA(b)
		c.light, c.dark = t.CheckerLight, t.CheckerDark
		drawCheckerboard(c.img, c.img.Bounds(), checkerSize, c.light, c.dark)
	}
	draw.Draw(dst, b, c.img, b.Min, draw.Src)
}

// statusLine summarises the edit state for the bottom bar.
func statusLine(st editstate.State, name, message string) string {
	s := fmt.Sprintf("%s  %s  zoom %.1f  rot %g  b%g c%g s%g g%g  line %s/%g",
		name, st.Mode, st.Zoom, st.Rotation,
		st.Brightness, st.Contrast, st.Saturate, st.Grayscale,
		editstate.FormatColor(st.LineColor), st.LineWidth)
	if st.FlipHorizontal {
		s += "  flipH"
	}
	if st.FlipVertical {
		s += "  flipV"
	}
	if message != "" {
		s += "  | " + message
	}
	return s
}

// paintState is what one frame needs, captured on the event loop.
type paintState struct {
	width, height int
	display       image.Rectangle
	status        string
	message       string
	theme         *theme.Theme
}

// composeFrame renders the backdrop, the scaled canvas and the status bar
// into dst. It stops early when ctx is cancelled by a newer frame.
func composeFrame(ctx context.Context, dst *image.RGBA, ed *editor.Editor, st paintState) {
	t := st.theme
	if t == nil {
		t = theme.Default()
	}
	drawBackdrop(dst, t)
	if ctx.Err() != nil {
		return
	}
	ed.WithCanvas(func(c *image.RGBA) {
		if c == nil || st.display.Empty() {
			return
		}
		if st.display.Size() == c.Bounds().Size() {
			draw.Draw(dst, st.display, c, c.Bounds().Min, draw.Over)
			return
		}
		xdraw.ApproxBiLinear.Scale(dst, st.display, c, c.Bounds(), draw.Over, nil)
	})
	if ctx.Err() != nil {
		return
	}
	bar := image.Rect(0, st.height-statusHeight, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{t.StatusBackground}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: &image.Uniform{t.StatusText}, Face: basicfont.Face7x13}
	d.Dot = fixed.P(4, st.height-5)
	d.DrawString(st.status)
	if st.message != "" {
		d.Src = &image.Uniform{t.MessageText}
		d.DrawString("  | " + st.message)
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, ed *editor.Editor, st paintState, log *slog.Logger) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		log.Error("new buffer", "err", err)
		return
	}
	defer b.Release()

	composeFrame(ctx, b.RGBA(), ed, st)
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
