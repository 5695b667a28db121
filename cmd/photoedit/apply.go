package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/photoedit/internal/clipboard"
	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/geom"
)

// Test hook.
var writeClipboardFn = clipboard.WriteImage

// adjustFields are the numeric flags of apply, in the order they are applied.
var adjustFields = []string{
	editstate.FieldBrightness,
	editstate.FieldContrast,
	editstate.FieldSaturate,
	editstate.FieldGrayscale,
	editstate.FieldRotation,
	editstate.FieldZoom,
}

// applyCmd edits an image without a window.
type applyCmd struct {
	*root
	fs          *flag.FlagSet
	input       inputFlags
	output      string
	toClipboard bool
	adjust      map[string]*string
	flipH       bool
	flipV       bool
	colorSpec   string
	width       float64
	strokes     [][]geom.Point
}

func (a *applyCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

// parseStroke reads "x,y x,y ..." into points.
func parseStroke(s string) ([]geom.Point, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("stroke needs at least one point")
	}
	pts := make([]geom.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("invalid point %q: want x,y", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid point %q: %w", f, err)
		}
		pts = append(pts, geom.Pt(x, y))
	}
	return pts, nil
}

func parseApplyCmd(args []string, r *root) (*applyCmd, error) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	a := &applyCmd{root: r.subcommand("apply"), fs: fs, adjust: map[string]*string{}}
	fs.Usage = usageFunc(a)
	a.input.register(fs, true)
	fs.StringVar(&a.output, "output", "", "output file path (defaults to the input file)")
	fs.BoolVar(&a.toClipboard, "to-clipboard", false, "copy the result to the clipboard")
	fs.BoolVar(&a.toClipboard, "to-clip", false, "copy the result to the clipboard (alias)")
	for _, name := range adjustFields {
		a.adjust[name] = fs.String(name, "", name+" value")
	}
	fs.BoolVar(&a.flipH, "flip-h", false, "mirror left to right")
	fs.BoolVar(&a.flipV, "flip-v", false, "mirror top to bottom")
	fs.StringVar(&a.colorSpec, "color", "", "stroke color name or hex value")
	fs.Float64Var(&a.width, "width", 0, "stroke width in pixels, 2 to 100")
	fs.Func("stroke", "freehand stroke \"x,y x,y ...\" in output pixels (repeatable)", func(s string) error {
		pts, err := parseStroke(s)
		if err != nil {
			return err
		}
		a.strokes = append(a.strokes, pts)
		return nil
	})
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := a.input.validate(); err != nil {
		return nil, &UsageError{of: a}
	}
	if a.output == "" {
		a.output = a.input.file
	}
	if a.output == "" && !a.toClipboard {
		return nil, fmt.Errorf("-output is required unless the input is a file or -to-clipboard is set")
	}
	return a, nil
}

func (a *applyCmd) Run() error {
	ed := editor.New(append(a.config.EditorOptions(), editor.WithLogger(a.log))...)
	defer func() {
		if err := ed.Teardown(); err != nil {
			a.log.Warn("teardown", "err", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if err := a.input.load(ctx, a.root, ed); err != nil {
		return fmt.Errorf("load image: %w", err)
	}
	if err := a.edit(ed); err != nil {
		return err
	}

	if a.output != "" {
		if err := a.write(ctx, ed); err != nil {
			return err
		}
	}
	if a.toClipboard {
		if err := writeClipboardFn(ed.Snapshot()); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		a.notifyCopy(ctx, ed.SourceName())
	}
	return nil
}

// edit applies the flags to a loaded session: adjustments, then flips,
// then strokes in output pixel coordinates.
func (a *applyCmd) edit(ed *editor.Editor) error {
	w, h := ed.Size()
	ed.SetViewport(geom.Rect{Width: float64(w), Height: float64(h)})

	for _, name := range adjustFields {
		raw := *a.adjust[name]
		if raw == "" {
			continue
		}
		applied, err := ed.SetField(name, raw)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("-%s %q was not applied", name, raw)
		}
	}
	if a.flipH && !ed.SetFlipHorizontal(true) {
		return fmt.Errorf("-flip-h is not allowed")
	}
	if a.flipV && !ed.SetFlipVertical(true) {
		return fmt.Errorf("-flip-v is not allowed")
	}

	if a.colorSpec != "" {
		c, err := editstate.ParseColor(a.colorSpec)
		if err != nil {
			return err
		}
		ed.SetLineColor(c)
	}
	if a.width != 0 && !ed.SetLineWidth(a.width) {
		return fmt.Errorf("-width %v is outside [%v,%v]", a.width, editstate.LineWidthRange.Min, editstate.LineWidthRange.Max)
	}
	if len(a.strokes) == 0 {
		return nil
	}
	ed.SetMode(editstate.ModeDraw)
	for _, pts := range a.strokes {
		ed.PointerDown(0, pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			ed.PointerMove(0, p.X, p.Y)
		}
		ed.PointerUp(0)
	}
	return nil
}

// write encodes the session to the output path, in the type its extension
// names.
func (a *applyCmd) write(ctx context.Context, ed *editor.Editor) error {
	f, err := ed.GenerateEditedFile(ctx)
	if err != nil {
		return err
	}
	if f == nil {
		return fmt.Errorf("nothing to write")
	}
	if mime := export.MIMEType(a.output); mime != f.MIME {
		if f, err = export.BuildAs(filepath.Base(a.output), mime, ed.Snapshot(), a.config.ExportOptions()); err != nil {
			return err
		}
	}
	if err := os.WriteFile(a.output, f.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", a.output, err)
	}
	a.log.Info("saved", "path", a.output)
	a.notifySave(ctx, a.output)
	return nil
}
