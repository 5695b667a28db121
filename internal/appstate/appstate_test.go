package appstate

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/mobile/event/key"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/source"
	"github.com/example/photoedit/internal/theme"
)

func loadedEditor(t *testing.T, name string, w, h int) *editor.Editor {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	ed := editor.New()
	if err := <-ed.SetFile(source.File{Name: name, Data: buf.Bytes()}); err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	return ed
}

func TestActionFor(t *testing.T) {
	tests := []struct {
		name string
		ev   key.Event
		want Action
	}{
		{"pan", key.Event{Rune: 'p', Direction: key.DirPress}, ActionPan},
		{"draw", key.Event{Rune: 'd', Direction: key.DirPress}, ActionDraw},
		{"rotate back", key.Event{Rune: 'R', Direction: key.DirPress}, ActionRotateCCW},
		{"zoom equals", key.Event{Rune: '=', Direction: key.DirPress}, ActionZoomIn},
		{"release ignored", key.Event{Rune: 'p', Direction: key.DirRelease}, ActionNone},
		{"unbound", key.Event{Rune: 'z', Direction: key.DirPress}, ActionNone},
		{"escape", key.Event{Code: key.CodeEscape, Direction: key.DirPress}, ActionQuit},
		{"ctrl s", key.Event{Rune: 's', Modifiers: key.ModControl, Direction: key.DirPress}, ActionSave},
		{"ctrl C upper", key.Event{Rune: 'C', Modifiers: key.ModControl, Direction: key.DirPress}, ActionCopy},
		{"ctrl code only", key.Event{Rune: -1, Code: key.CodeS, Modifiers: key.ModControl, Direction: key.DirPress}, ActionSave},
		{"ctrl unbound", key.Event{Rune: 'x', Modifiers: key.ModControl, Direction: key.DirPress}, ActionNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActionFor(tt.ev); got != tt.want {
				t.Fatalf("ActionFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFitRect(t *testing.T) {
	if r := fitRect(100, 50, 200, 200); r != image.Rect(50, 75, 150, 125) {
		t.Fatalf("small canvas not centered unscaled: %v", r)
	}
	if r := fitRect(400, 200, 200, 200); r != image.Rect(0, 50, 200, 150) {
		t.Fatalf("large canvas not fitted: %v", r)
	}
	if r := fitRect(0, 0, 200, 200); !r.Empty() {
		t.Fatalf("empty canvas: %v", r)
	}
}

func TestWindowSize(t *testing.T) {
	w, h := windowSize(300, 200)
	if w != 300 || h != 200+statusHeight {
		t.Fatalf("windowSize = %dx%d", w, h)
	}
	w, h = windowSize(4000, 1000)
	if w > maxWindowW || h > maxWindowH {
		t.Fatalf("windowSize did not shrink: %dx%d", w, h)
	}
}

func TestApply(t *testing.T) {
	ed := loadedEditor(t, "a.png", 20, 20)

	if msg := apply(ed, ActionRotateCW); msg != "" {
		t.Fatalf("rotate: %q", msg)
	}
	if got := ed.State().Rotation; got != rotateStep {
		t.Fatalf("rotation = %v", got)
	}
	apply(ed, ActionBrightnessDn)
	apply(ed, ActionGrayscaleUp)
	apply(ed, ActionFlipV)
	apply(ed, ActionDraw)
	apply(ed, ActionCycleColor)
	st := ed.State()
	if st.Brightness != 90 || st.Grayscale != 10 || !st.FlipVertical || st.Mode != editstate.ModeDraw {
		t.Fatalf("state after actions: %+v", st)
	}
	if got := editstate.FormatColor(st.LineColor); got != "#ffffff" {
		t.Fatalf("line color = %s", got)
	}

	if msg := apply(ed, ActionReset); msg != "reset" {
		t.Fatalf("reset message %q", msg)
	}
	if st := ed.State(); st != editstate.Defaults() {
		t.Fatalf("reset state %+v", st)
	}
}

func TestApplyReportsRejected(t *testing.T) {
	ed := loadedEditor(t, "a.png", 20, 20)
	ed.SetRotation(180)
	if msg := apply(ed, ActionRotateCW); !strings.Contains(msg, "not applied") {
		t.Fatalf("out of range rotation message %q", msg)
	}
	if got := ed.State().Rotation; got != 180 {
		t.Fatalf("rotation changed to %v", got)
	}
}

func TestStatusLine(t *testing.T) {
	st := editstate.Defaults()
	st.FlipHorizontal = true
	got := statusLine(st, "a.png", "saved")
	for _, want := range []string{"a.png", "pan", "zoom 1.0", "flipH", "| saved"} {
		if !strings.Contains(got, want) {
			t.Errorf("status %q missing %q", got, want)
		}
	}
}

func TestComposeFrame(t *testing.T) {
	ed := loadedEditor(t, "a.png", 20, 10)
	st := paintState{width: 40, height: 40, display: fitRect(20, 10, 40, 40-statusHeight), status: "x"}
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	composeFrame(context.Background(), dst, ed, st)

	if got := dst.RGBAAt(15, 10); got != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
		t.Fatalf("canvas pixel = %v", got)
	}
	def := theme.Default()
	if got := dst.RGBAAt(0, 0); got != def.CheckerLight {
		t.Fatalf("backdrop pixel = %v", got)
	}
	if got := dst.RGBAAt(0, st.height-1); got != def.StatusBackground {
		t.Fatalf("status pixel = %v", got)
	}
}

func TestComposeFrameUsesTheme(t *testing.T) {
	ed := loadedEditor(t, "a.png", 4, 4)
	dark := theme.Dark()
	st := paintState{width: 30, height: 40, display: fitRect(4, 4, 30, 40-statusHeight), status: "x", message: "saved", theme: dark}
	dst := image.NewRGBA(image.Rect(0, 0, st.width, st.height))
	composeFrame(context.Background(), dst, ed, st)

	if got := dst.RGBAAt(0, 0); got != dark.CheckerLight {
		t.Fatalf("backdrop pixel = %v", got)
	}
	if got := dst.RGBAAt(st.width-1, st.height-1); got != dark.StatusBackground {
		t.Fatalf("status pixel = %v", got)
	}
}

func TestSaveFileWritesSaveDir(t *testing.T) {
	ed := loadedEditor(t, "a.png", 8, 8)
	dir := t.TempDir()
	a := New(WithSaveDir(dir))
	a.ed = ed
	f, err := ed.GenerateEditedFile(context.Background())
	if err != nil || f == nil {
		t.Fatalf("GenerateEditedFile: %v %v", f, err)
	}
	a.SaveFile(f)
	data, err := os.ReadFile(filepath.Join(dir, "a.png"))
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	if !bytes.Equal(data, f.Data) {
		t.Fatalf("saved bytes differ")
	}
	if !strings.HasPrefix(a.currentMessage(), "saved ") {
		t.Fatalf("message %q", a.currentMessage())
	}
}

func TestSaveFileReencodesForOutput(t *testing.T) {
	ed := loadedEditor(t, "a.png", 8, 8)
	out := filepath.Join(t.TempDir(), "out.jpg")
	a := New(WithOutput(out))
	a.ed = ed
	f, err := ed.GenerateEditedFile(context.Background())
	if err != nil || f == nil {
		t.Fatalf("GenerateEditedFile: %v %v", f, err)
	}
	a.SaveFile(f)
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read saved: %v", err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		t.Fatalf("output is not jpeg: % x", data[:min(len(data), 4)])
	}
}

func TestNotifyChangedNeverBlocks(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		a.NotifyChanged()
	}
	if len(a.updateCh) != 1 {
		t.Fatalf("pending updates = %d", len(a.updateCh))
	}
}
