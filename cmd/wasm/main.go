//go:build js && wasm

package main

import (
	"context"
	"image"
	"log/slog"
	"os"
	"sync"
	"syscall/js"
	"time"

	"github.com/example/photoedit/internal/config"
	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/gesture"
	"github.com/example/photoedit/internal/source"
)

const exportTimeout = 30 * time.Second

var (
	ed *editor.Editor

	// page callbacks registered with onChange, onLoad, onSave and onClose
	cbMu      sync.Mutex
	callbacks = map[string]js.Value{}
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	opts := append(config.New().EditorOptions(),
		editor.WithLogger(log),
		editor.WithRegistry(objectURLs{}),
		editor.WithDownloader(anchorDownloader{}),
		editor.WithOnChange(func() { callback("change") }),
		editor.WithOnSave(func(f *export.File) { callback("save", jsFile(f)) }),
		editor.WithOnClose(func() { callback("close") }),
	)
	ed = editor.New(opts...)

	// Create the editor API object
	photoEditor := js.Global().Get("Object").New()

	// --- Source ---
	photoEditor.Set("setFile", js.FuncOf(setFile))
	photoEditor.Set("setURL", js.FuncOf(setURL))

	// --- Adjustments ---
	photoEditor.Set("setBrightness", js.FuncOf(numberSetter(ed.SetBrightness)))
	photoEditor.Set("setContrast", js.FuncOf(numberSetter(ed.SetContrast)))
	photoEditor.Set("setSaturate", js.FuncOf(numberSetter(ed.SetSaturate)))
	photoEditor.Set("setGrayscale", js.FuncOf(numberSetter(ed.SetGrayscale)))
	photoEditor.Set("setRotation", js.FuncOf(numberSetter(ed.SetRotation)))
	photoEditor.Set("setZoom", js.FuncOf(numberSetter(ed.SetZoom)))
	photoEditor.Set("setLineWidth", js.FuncOf(numberSetter(ed.SetLineWidth)))
	photoEditor.Set("setFlipHorizontal", js.FuncOf(boolSetter(ed.SetFlipHorizontal)))
	photoEditor.Set("setFlipVertical", js.FuncOf(boolSetter(ed.SetFlipVertical)))
	photoEditor.Set("setLineColor", js.FuncOf(setLineColor))
	photoEditor.Set("setMode", js.FuncOf(setMode))
	photoEditor.Set("setField", js.FuncOf(setField))
	photoEditor.Set("zoomIn", js.FuncOf(func(js.Value, []js.Value) any { return ed.ZoomIn() }))
	photoEditor.Set("zoomOut", js.FuncOf(func(js.Value, []js.Value) any { return ed.ZoomOut() }))
	photoEditor.Set("reset", js.FuncOf(func(js.Value, []js.Value) any { ed.ResetFilters(); return nil }))
	photoEditor.Set("setOpen", js.FuncOf(setOpen))

	// --- Input ---
	photoEditor.Set("pointerDown", js.FuncOf(pointerDown))
	photoEditor.Set("pointerMove", js.FuncOf(pointerMove))
	photoEditor.Set("pointerUp", js.FuncOf(pointerUp))
	photoEditor.Set("pointerCancel", js.FuncOf(pointerCancel))
	photoEditor.Set("wheel", js.FuncOf(wheel))
	photoEditor.Set("setViewport", js.FuncOf(setViewport))

	// --- Output ---
	photoEditor.Set("render", js.FuncOf(render))
	photoEditor.Set("getState", js.FuncOf(getState))
	photoEditor.Set("download", js.FuncOf(func(js.Value, []js.Value) any { go ed.DownloadImage(); return nil }))
	photoEditor.Set("generateEditedFile", js.FuncOf(generateEditedFile))
	photoEditor.Set("save", js.FuncOf(save))
	photoEditor.Set("close", js.FuncOf(func(js.Value, []js.Value) any { ed.Close(); return nil }))

	// --- Callbacks ---
	photoEditor.Set("onChange", js.FuncOf(register("change")))
	photoEditor.Set("onLoad", js.FuncOf(register("load")))
	photoEditor.Set("onSave", js.FuncOf(register("save")))
	photoEditor.Set("onClose", js.FuncOf(register("close")))

	// Register on global scope
	js.Global().Set("photoEditor", photoEditor)

	// Signal that WASM is ready
	js.Global().Set("photoEditorReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func register(name string) func(js.Value, []js.Value) any {
	return func(_ js.Value, args []js.Value) any {
		cbMu.Lock()
		defer cbMu.Unlock()
		if len(args) < 1 || args[0].Type() != js.TypeFunction {
			delete(callbacks, name)
			return nil
		}
		callbacks[name] = args[0]
		return nil
	}
}

func callback(name string, args ...any) {
	cbMu.Lock()
	fn, ok := callbacks[name]
	cbMu.Unlock()
	if ok {
		fn.Invoke(args...)
	}
}

func result(applied bool, err error) any {
	out := map[string]any{"applied": applied}
	if err != nil {
		out["error"] = err.Error()
	}
	return js.ValueOf(out)
}

// --- Source handlers ---

// awaitLoad reports the outcome of a source assignment to onLoad.
func awaitLoad(done <-chan error) {
	go func() {
		if err := <-done; err != nil {
			callback("load", err.Error())
			return
		}
		callback("load", js.Null())
	}()
}

func setFile(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return js.ValueOf(map[string]any{"error": "setFile(bytes, name[, type]) requires bytes and a name"})
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])
	f := source.File{Name: args[1].String(), Data: data}
	if len(args) > 2 && args[2].Type() == js.TypeString {
		f.MIME = args[2].String()
	}
	awaitLoad(ed.SetFile(f))
	return nil
}

func setURL(this js.Value, args []js.Value) any {
	u := ""
	if len(args) > 0 && args[0].Type() == js.TypeString {
		u = args[0].String()
	}
	awaitLoad(ed.SetURL(u))
	return nil
}

// --- Adjustment handlers ---

func numberSetter(set func(float64) bool) func(js.Value, []js.Value) any {
	return func(_ js.Value, args []js.Value) any {
		if len(args) < 1 || args[0].Type() != js.TypeNumber {
			return false
		}
		return set(args[0].Float())
	}
}

func boolSetter(set func(bool) bool) func(js.Value, []js.Value) any {
	return func(_ js.Value, args []js.Value) any {
		if len(args) < 1 {
			return false
		}
		return set(args[0].Truthy())
	}
}

func setLineColor(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(false, nil)
	}
	c, err := editstate.ParseColor(args[0].String())
	if err != nil {
		return result(false, err)
	}
	return result(ed.SetLineColor(c), nil)
}

func setMode(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return result(false, nil)
	}
	m, err := editstate.ParseMode(args[0].String())
	if err != nil {
		return result(false, err)
	}
	return result(ed.SetMode(m), nil)
}

func setField(this js.Value, args []js.Value) any {
	if len(args) < 2 {
		return result(false, nil)
	}
	return result(ed.SetField(args[0].String(), args[1].String()))
}

func setOpen(this js.Value, args []js.Value) any {
	ed.SetOpen(len(args) > 0 && args[0].Truthy())
	return nil
}

// --- Input handlers ---

func pointerArgs(args []js.Value) (gesture.PointerID, float64, float64, bool) {
	if len(args) < 3 {
		return 0, 0, 0, false
	}
	return gesture.PointerID(args[0].Int()), args[1].Float(), args[2].Float(), true
}

func pointerDown(this js.Value, args []js.Value) any {
	if id, x, y, ok := pointerArgs(args); ok {
		ed.PointerDown(id, x, y)
	}
	return nil
}

func pointerMove(this js.Value, args []js.Value) any {
	if id, x, y, ok := pointerArgs(args); ok {
		ed.PointerMove(id, x, y)
	}
	return nil
}

func pointerUp(this js.Value, args []js.Value) any {
	if len(args) > 0 {
		ed.PointerUp(gesture.PointerID(args[0].Int()))
	}
	return nil
}

func pointerCancel(this js.Value, args []js.Value) any {
	if len(args) > 0 {
		ed.PointerCancel(gesture.PointerID(args[0].Int()))
	}
	return nil
}

func wheel(this js.Value, args []js.Value) any {
	if len(args) < 3 {
		return nil
	}
	ed.Wheel(args[0].Float(), args[1].Float(), args[2].Float())
	return nil
}

// setViewport takes the canvas element's bounding client rect.
func setViewport(this js.Value, args []js.Value) any {
	if len(args) < 4 {
		return nil
	}
	ed.SetViewport(geom.Rect{
		Left:   args[0].Float(),
		Top:    args[1].Float(),
		Width:  args[2].Float(),
		Height: args[3].Float(),
	})
	return nil
}

// --- Output handlers ---

func render(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return false
	}
	drawn := false
	ed.WithCanvas(func(c *image.RGBA) {
		if c == nil {
			return
		}
		putImage(args[0], c)
		drawn = true
	})
	return drawn
}

func getState(this js.Value, args []js.Value) any {
	st := ed.State()
	w, h := ed.Size()
	return js.ValueOf(map[string]any{
		"brightness":     st.Brightness,
		"contrast":       st.Contrast,
		"saturate":       st.Saturate,
		"grayscale":      st.Grayscale,
		"rotate":         st.Rotation,
		"zoom":           st.Zoom,
		"flipHorizontal": st.FlipHorizontal,
		"flipVertical":   st.FlipVertical,
		"mode":           st.Mode.String(),
		"lineColor":      editstate.FormatColor(st.LineColor),
		"lineWidth":      st.LineWidth,
		"width":          w,
		"height":         h,
		"name":           ed.SourceName(),
	})
}

// generateEditedFile returns a Promise for a File, or null when there is
// nothing to export.
func generateEditedFile(this js.Value, args []js.Value) any {
	executor := js.FuncOf(func(_ js.Value, p []js.Value) any {
		resolve, reject := p[0], p[1]
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
			defer cancel()
			f, err := ed.GenerateEditedFile(ctx)
			switch {
			case err != nil:
				reject.Invoke(js.Global().Get("Error").New(err.Error()))
			case f == nil:
				resolve.Invoke(js.Null())
			default:
				resolve.Invoke(jsFile(f))
			}
		}()
		return nil
	})
	defer executor.Release()
	return js.Global().Get("Promise").New(executor)
}

func save(this js.Value, args []js.Value) any {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		if err := ed.Save(ctx); err != nil {
			slog.Error("save", "err", err)
		}
	}()
	return nil
}
