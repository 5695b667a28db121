// Package appstate is the desktop shell around an editor session: a shiny
// window that shows the canvas, forwards mouse, touch and key input and
// saves or copies the result.
package appstate

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/photoedit/internal/clipboard"
	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/gesture"
	"github.com/example/photoedit/internal/notify"
	"github.com/example/photoedit/internal/theme"
)

const (
	mousePointer gesture.PointerID = 0
	// touch sequences are offset so they never collide with the mouse.
	touchBase gesture.PointerID = 1
	// wheelNotch is the deltaY reported for one wheel step.
	wheelNotch    = 10
	messageTime   = 3 * time.Second
	actionTimeout = 10 * time.Second
)

// AppState holds the shell configuration and the window it drives.
type AppState struct {
	output     string
	saveDir    string
	exportOpts export.Options
	notifier   *notify.Notifier
	theme      *theme.Theme
	log        *slog.Logger

	ed       *editor.Editor
	updateCh chan struct{}

	mu      sync.Mutex
	send    func(any)
	message string
	until   time.Time

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithOutput sets the file written on save. Without it the edited file is
// written under the save directory with the source's name.
func WithOutput(out string) Option { return func(a *AppState) { a.output = out } }

// WithSaveDir sets the directory used when no output path is set.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.saveDir = dir } }

// WithExportOptions tunes re-encoding when the output type differs from the
// source type.
func WithExportOptions(o export.Options) Option { return func(a *AppState) { a.exportOpts = o } }

// WithNotifier sets the desktop notifier for save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithTheme sets the window colors.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.theme = t } }

// WithLogger sets the shell logger.
func WithLogger(l *slog.Logger) Option { return func(a *AppState) { a.log = l } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		exportOpts: export.DefaultOptions(),
		theme:      theme.Default(),
		log:        slog.New(slog.DiscardHandler),
		updateCh:   make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// closeEvent ends the event loop.
type closeEvent struct{}

// NotifyChanged requests a repaint. It is meant for editor.WithOnChange and
// never blocks.
func (a *AppState) NotifyChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// SaveFile writes an edited file to the output path, re-encoding when the
// output extension asks for another type. It is meant for
// editor.WithOnSave.
func (a *AppState) SaveFile(f *export.File) {
	path, err := a.write(f)
	if err != nil {
		a.log.Error("save", "err", err)
		a.setMessage("save failed: " + err.Error())
		return
	}
	a.log.Info("saved", "path", path)
	a.setMessage("saved " + path)
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	a.notifier.Save(ctx, path)
}

func (a *AppState) write(f *export.File) (string, error) {
	if a.output == "" {
		dir := a.saveDir
		if dir == "" {
			dir = "."
		}
		if err := (export.DirDownloader{Dir: dir}).Download(f); err != nil {
			return "", err
		}
		return filepath.Join(dir, filepath.Base(f.Name)), nil
	}
	data := f.Data
	if mime := export.MIMEType(a.output); mime != f.MIME && a.ed != nil {
		snap := a.ed.Snapshot()
		if snap == nil {
			return "", fmt.Errorf("no canvas to save")
		}
		out, err := export.BuildAs(a.output, mime, snap, a.exportOpts)
		if err != nil {
			return "", err
		}
		data = out.Data
	}
	if err := os.WriteFile(a.output, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", a.output, err)
	}
	return a.output, nil
}

// RequestClose closes the window. It is meant for editor.WithOnClose.
func (a *AppState) RequestClose() {
	a.mu.Lock()
	send := a.send
	a.mu.Unlock()
	if send != nil {
		send(closeEvent{})
	}
}

func (a *AppState) setSender(fn func(any)) {
	a.mu.Lock()
	a.send = fn
	a.mu.Unlock()
}

func (a *AppState) setMessage(m string) {
	a.mu.Lock()
	a.message = m
	a.until = time.Now().Add(messageTime)
	a.mu.Unlock()
	a.NotifyChanged()
}

func (a *AppState) currentMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Now().After(a.until) {
		return ""
	}
	return a.message
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.setSender(nil)
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// copyImage publishes the canvas to the clipboard.
func (a *AppState) copyImage() {
	snap := a.ed.Snapshot()
	if snap == nil {
		a.setMessage("nothing to copy")
		return
	}
	if err := clipboard.WriteImage(snap); err != nil {
		a.log.Error("copy", "err", err)
		a.setMessage("copy failed: " + err.Error())
		return
	}
	a.setMessage("image copied to clipboard")
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	a.notifier.Copy(ctx, a.ed.SourceName())
}

func (a *AppState) save() {
	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	defer cancel()
	if err := a.ed.Save(ctx); err != nil {
		a.setMessage("save failed: " + err.Error())
	}
}

// Run executes the UI loop for ed using shiny's driver.
func (a *AppState) Run(ed *editor.Editor) {
	a.ed = ed
	driver.Main(a.Main)
}

// Main runs the window until it is closed. Run must have set the editor.
func (a *AppState) Main(s screen.Screen) {
	ed := a.ed
	width, height := windowSize(ed.Size())
	title := "photoedit"
	if name := ed.SourceName(); name != "" {
		title += " - " + name
	}
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: title})
	if err != nil {
		a.log.Error("new window", "err", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)
	a.setSender(func(ev any) { w.Send(ev) })

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, ed, st, a.log)
			paintMu.Lock()
			paintCancel = nil
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	var display image.Rectangle
	layout := func() {
		cw, ch := ed.Size()
		r := fitRect(cw, ch, width, height-statusHeight)
		if r != display {
			display = r
			ed.SetViewport(viewportFor(r))
		}
	}
	layout()
	pressed := false

	for {
		switch e := w.NextEvent().(type) {
		case closeEvent:
			return
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			layout()
			w.Send(paint.Event{})
		case paint.Event:
			layout()
			st := paintState{
				width:   width,
				height:  height,
				display: display,
				status:  statusLine(ed.State(), ed.SourceName(), ""),
				message: a.currentMessage(),
				theme:   a.theme,
			}
			paintMu.Lock()
			if paintCancel != nil {
				paintCancel()
			}
			paintMu.Unlock()
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}
		case key.Event:
			switch act := ActionFor(e); act {
			case ActionNone:
			case ActionQuit:
				ed.Close()
				return
			case ActionSave:
				a.save()
			case ActionCopy:
				a.copyImage()
			default:
				if msg := apply(ed, act); msg != "" {
					a.setMessage(msg)
				} else {
					a.NotifyChanged()
				}
			}
		case mouse.Event:
			x, y := float64(e.X), float64(e.Y)
			switch {
			case e.Button.IsWheel() && e.Direction == mouse.DirStep:
				switch e.Button {
				case mouse.ButtonWheelUp:
					ed.Wheel(-wheelNotch, x, y)
				case mouse.ButtonWheelDown:
					ed.Wheel(wheelNotch, x, y)
				}
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
				pressed = true
				ed.PointerDown(mousePointer, x, y)
			case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
				if pressed {
					pressed = false
					ed.PointerUp(mousePointer)
				}
			case e.Direction == mouse.DirNone && pressed:
				ed.PointerMove(mousePointer, x, y)
			}
		case touch.Event:
			id := touchBase + gesture.PointerID(e.Sequence)
			x, y := float64(e.X), float64(e.Y)
			switch e.Type {
			case touch.TypeBegin:
				ed.PointerDown(id, x, y)
			case touch.TypeMove:
				ed.PointerMove(id, x, y)
			case touch.TypeEnd:
				ed.PointerUp(id)
			}
		case error:
			a.log.Error("window", "err", e)
		}
	}
}
