// Package editor is one photo editing session. It wires the source manager,
// edit state, render engine, gesture controller and stroke log together
// behind a single lock so hosts can drive it from an event loop while
// decodes complete in the background.
package editor

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/geom"
	"github.com/example/photoedit/internal/gesture"
	"github.com/example/photoedit/internal/render"
	"github.com/example/photoedit/internal/source"
	"github.com/example/photoedit/internal/stroke"
)

// Permissions gate the adjustments a host exposes.
type Permissions struct {
	ColorEditing bool
	Rotate       bool
	Flip         bool
	Zoom         bool
}

// AllowAll enables every adjustment.
func AllowAll() Permissions {
	return Permissions{ColorEditing: true, Rotate: true, Flip: true, Zoom: true}
}

// Editor is a single editing session. All methods are safe for concurrent
// use; callbacks run without the session lock held.
type Editor struct {
	mu sync.Mutex

	defaults editstate.State
	state    editstate.State
	perms    Permissions
	open     bool

	strokes  stroke.Log
	strokeAt geom.Point
	engine   *render.Engine
	gestures *gesture.Controller
	rect     geom.Rect

	src     *source.Manager
	srcOpts []source.Option
	name    string
	mime    string

	downloadOnSave bool
	exportOpts     export.Options
	downloader     export.Downloader
	gestureCfg     gesture.Config
	renderOpts     []render.Option

	onSave   func(*export.File)
	onClose  func()
	onChange func()
	log      *slog.Logger

	dirty bool
}

// Option configures an Editor.
type Option func(*Editor)

// WithDefaults sets the state the session starts from and resets to.
func WithDefaults(s editstate.State) Option { return func(e *Editor) { e.defaults = s } }

// WithPermissions restricts the available adjustments.
func WithPermissions(p Permissions) Option { return func(e *Editor) { e.perms = p } }

// WithDownloadOnSave makes Save download the image before handing it over.
func WithDownloadOnSave(v bool) Option { return func(e *Editor) { e.downloadOnSave = v } }

// WithOnSave registers the callback that receives the edited file on Save.
func WithOnSave(fn func(*export.File)) Option { return func(e *Editor) { e.onSave = fn } }

// WithOnClose registers the callback run by Save and Close.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// WithOnChange registers a callback run whenever the canvas changes.
func WithOnChange(fn func()) Option { return func(e *Editor) { e.onChange = fn } }

// WithRegistry sets the handle registry used for assigned files.
func WithRegistry(r source.Registry) Option {
	return func(e *Editor) { e.srcOpts = append(e.srcOpts, source.WithRegistry(r)) }
}

// WithFetcher sets how source URLs are fetched.
func WithFetcher(f source.Fetcher) Option {
	return func(e *Editor) { e.srcOpts = append(e.srcOpts, source.WithFetcher(f)) }
}

// WithDownloader sets where DownloadImage delivers files.
func WithDownloader(d export.Downloader) Option { return func(e *Editor) { e.downloader = d } }

// WithExportOptions tunes the encoders.
func WithExportOptions(o export.Options) Option { return func(e *Editor) { e.exportOpts = o } }

// WithGestureConfig sets the pinch and wheel sensitivities.
func WithGestureConfig(c gesture.Config) Option { return func(e *Editor) { e.gestureCfg = c } }

// WithRenderOptions passes options through to the render engine.
func WithRenderOptions(opts ...render.Option) Option {
	return func(e *Editor) { e.renderOpts = append(e.renderOpts, opts...) }
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option { return func(e *Editor) { e.log = l } }

// New creates an open session with no source.
func New(opts ...Option) *Editor {
	e := &Editor{
		defaults:   editstate.Defaults(),
		perms:      AllowAll(),
		open:       true,
		exportOpts: export.DefaultOptions(),
		gestureCfg: gesture.DefaultConfig(),
		log:        slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(e)
	}
	if err := e.defaults.Validate(); err != nil {
		e.log.Warn("invalid defaults, using stock values", "err", err)
		e.defaults = editstate.Defaults()
	}
	e.state = e.defaults
	e.engine = render.NewEngine(&e.strokes, append([]render.Option{render.WithLogger(e.log)}, e.renderOpts...)...)
	e.engine.SetFilter(render.FilterFrom(e.state))
	e.gestures = gesture.NewController(target{e}, e.gestureCfg)
	e.src = source.NewManager(append([]source.Option{
		source.WithLogger(e.log),
		source.WithOnLoad(e.sourceLoaded),
	}, e.srcOpts...)...)
	return e
}

// update runs fn under the lock and reports a change to the host when fn,
// or anything it called, touched the canvas.
func (e *Editor) update(fn func() bool) bool {
	e.mu.Lock()
	e.dirty = false
	ok := fn()
	changed := e.dirty
	cb := e.onChange
	e.mu.Unlock()
	if changed && cb != nil {
		cb()
	}
	return ok
}

func (e *Editor) redraw() {
	e.engine.RequestRedraw()
	e.dirty = true
}

// rebuildTransform derives the transform from the state alone: mirror,
// then rotate about the center, then zoom about the center.
func (e *Editor) rebuildTransform() {
	e.engine.ResetTransform()
	if e.state.FlipHorizontal {
		e.engine.Flip(geom.Horizontal, 0)
	}
	if e.state.FlipVertical {
		e.engine.Flip(geom.Vertical, 0)
	}
	e.engine.Rotate(e.state.Rotation)
	e.engine.ZoomCenter(e.state.Zoom)
}

func (e *Editor) sourceLoaded(s *source.Source) {
	e.update(func() bool {
		e.gestures.Reset()
		if s == nil {
			e.engine.Load(nil)
			e.name, e.mime = "", ""
			e.dirty = true
			return true
		}
		e.name, e.mime = s.Name, s.MIME
		e.engine.Load(s.Image)
		e.rebuildTransform()
		e.redraw()
		return true
	})
}

// SetFile assigns the image to edit. Decoding happens in the background;
// the returned channel reports its outcome.
func (e *Editor) SetFile(f source.File) <-chan error { return e.src.SetFile(f) }

// SetURL assigns the image at rawURL.
func (e *Editor) SetURL(rawURL string) <-chan error { return e.src.SetURL(rawURL) }

// Teardown releases the source handle. The session is unusable afterwards.
func (e *Editor) Teardown() error {
	err := e.src.Close()
	e.update(func() bool {
		e.engine.Load(nil)
		e.name, e.mime = "", ""
		e.dirty = true
		return true
	})
	return err
}

// State returns a copy of the edit state.
func (e *Editor) State() editstate.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Permissions returns the enabled adjustments.
func (e *Editor) Permissions() Permissions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.perms
}

// Transform returns the current canvas transform.
func (e *Editor) Transform() geom.Matrix {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Transform()
}

// Loaded reports whether a source is on the canvas.
func (e *Editor) Loaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Loaded()
}

// Size returns the canvas size, zero without a source.
func (e *Editor) Size() (w, h int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Size()
}

// SourceName returns the file name of the current source.
func (e *Editor) SourceName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

// Snapshot copies the canvas, or returns nil without a source.
func (e *Editor) Snapshot() *image.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.engine.Snapshot()
}

// WithCanvas calls fn with the live canvas under the session lock. fn must
// not retain the image or call back into the Editor.
func (e *Editor) WithCanvas(fn func(*image.RGBA)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.engine.Canvas())
}

// Redraw forces a full redraw.
func (e *Editor) Redraw() {
	e.update(func() bool {
		e.redraw()
		return true
	})
}

// SetViewport records where the canvas is displayed, in the same client
// coordinates as pointer events.
func (e *Editor) SetViewport(r geom.Rect) {
	e.mu.Lock()
	e.rect = r
	e.mu.Unlock()
}

func (e *Editor) viewport() geom.Viewport {
	w, h := e.engine.Size()
	return geom.Viewport{Rect: e.rect, CanvasWidth: w, CanvasHeight: h}
}

// SetOpen shows or hides the editor. Every change of visibility resets the
// session to its defaults.
func (e *Editor) SetOpen(open bool) {
	e.update(func() bool {
		if e.open == open {
			return false
		}
		e.open = open
		e.reset()
		return true
	})
}

// Open reports the visibility flag.
func (e *Editor) Open() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Close resets the session and runs the close callback.
func (e *Editor) Close() {
	e.ResetFilters()
	if e.onClose != nil {
		e.onClose()
	}
}

// Save optionally downloads the image, hands the edited file to the save
// callback and closes the editor.
func (e *Editor) Save(ctx context.Context) error {
	if e.downloadOnSave {
		e.DownloadImage()
	}
	f, err := e.GenerateEditedFile(ctx)
	if err != nil {
		return err
	}
	if f != nil && e.onSave != nil {
		e.onSave(f)
	}
	if e.onClose != nil {
		e.onClose()
	}
	return nil
}

// GenerateEditedFile encodes the canvas under the source's file name. It
// returns nil without an error when there is no canvas or source or when
// encoding fails; the error is only set if ctx ends first.
func (e *Editor) GenerateEditedFile(ctx context.Context) (*export.File, error) {
	e.mu.Lock()
	snap := e.engine.Snapshot()
	name := e.name
	opts := e.exportOpts
	e.mu.Unlock()
	if snap == nil || name == "" {
		return nil, nil
	}

	type result struct {
		f   *export.File
		err error
	}
	ch := make(chan result, 1)
	go func() {
		f, err := export.Build(name, snap, opts)
		ch <- result{f, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			e.log.Error("export failed", "name", name, "err", r.err)
			return nil, nil
		}
		return r.f, nil
	}
}

// DownloadImage delivers the canvas through the downloader under the
// source's name and type. It does nothing without a canvas, source or
// downloader, and failures are only logged.
func (e *Editor) DownloadImage() {
	e.mu.Lock()
	snap := e.engine.Snapshot()
	name, mime := e.name, e.mime
	opts, d := e.exportOpts, e.downloader
	e.mu.Unlock()
	if snap == nil || name == "" || d == nil {
		return
	}
	if mime != export.MIMEJPEG && mime != export.MIMEPNG {
		mime = export.MIMEType(name)
	}
	f, err := export.BuildAs(name, mime, snap, opts)
	if err != nil {
		e.log.Warn("download encode failed", "name", name, "err", err)
		return
	}
	if err := d.Download(f); err != nil {
		e.log.Warn("download failed", "name", name, "err", err)
	}
}
