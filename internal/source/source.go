// Package source owns the image being edited: it decodes assigned files or
// URLs off the caller's goroutine, keeps exactly one host handle alive and
// makes sure only the most recent assignment reaches the canvas.
package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"sync"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrSuperseded is delivered to a load whose result was replaced by a
	// later assignment.
	ErrSuperseded = errors.New("source superseded")
	// ErrClosed is delivered to loads started after Close.
	ErrClosed = errors.New("source manager closed")
)

// File is an image file supplied by the user.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Empty reports whether f carries no data.
func (f File) Empty() bool { return len(f.Data) == 0 }

// Source is a decoded image ready to draw.
type Source struct {
	Image  image.Image
	Width  int
	Height int
	Name   string
	MIME   string
	Format string
	Handle Handle
}

// Decode decodes data with every registered image format.
func Decode(data []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// Manager tracks the current source. A nil *Source passed to the load
// callback means the source was cleared.
type Manager struct {
	mu      sync.Mutex
	reg     Registry
	fetch   Fetcher
	log     *slog.Logger
	onLoad  func(*Source)
	gen     uint64
	handle  Handle
	current *Source
	cancel  context.CancelFunc
	closed  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRegistry sets the handle registry. The default is a MemoryRegistry.
func WithRegistry(r Registry) Option { return func(m *Manager) { m.reg = r } }

// WithFetcher sets how URLs are resolved. The default is DefaultFetcher.
func WithFetcher(f Fetcher) Option { return func(m *Manager) { m.fetch = f } }

// WithLogger sets the logger used for decode failures.
func WithLogger(l *slog.Logger) Option { return func(m *Manager) { m.log = l } }

// WithOnLoad registers fn to run once for each source that becomes current,
// and with nil when the source is cleared. fn runs with the manager locked
// and must not call back into the Manager.
func WithOnLoad(fn func(*Source)) Option { return func(m *Manager) { m.onLoad = fn } }

// NewManager returns a Manager with no source.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		reg:   NewMemoryRegistry(),
		fetch: DefaultFetcher{},
		log:   slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

func done(err error) <-chan error {
	ch := make(chan error, 1)
	ch <- err
	close(ch)
	return ch
}

// begin supersedes whatever was loading or loaded. The caller holds m.mu.
func (m *Manager) begin() (uint64, context.Context) {
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.handle != "" {
		m.reg.Revoke(m.handle)
		m.handle = ""
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	return m.gen, ctx
}

func (m *Manager) clear() {
	m.current = nil
	if m.onLoad != nil {
		m.onLoad(nil)
	}
}

// SetFile makes f the source. The previous handle is revoked, a new handle
// is created and f is decoded in the background. An empty f clears the
// source. The returned channel yields the outcome once.
func (m *Manager) SetFile(f File) <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return done(ErrClosed)
	}
	gen, _ := m.begin()
	if f.Empty() {
		m.clear()
		return done(nil)
	}
	h, err := m.reg.Create(f)
	if err != nil {
		m.clear()
		return done(fmt.Errorf("create handle for %s: %w", f.Name, err))
	}
	m.handle = h
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		ch <- m.decode(gen, f, h)
	}()
	return ch
}

// SetURL makes the image at rawURL the source. The previous handle is
// revoked; URLs are already addressable so no new handle is created. An
// empty rawURL clears the source.
func (m *Manager) SetURL(rawURL string) <-chan error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return done(ErrClosed)
	}
	gen, ctx := m.begin()
	if rawURL == "" {
		m.clear()
		return done(nil)
	}
	ch := make(chan error, 1)
	go func() {
		defer close(ch)
		f, err := m.fetch.Fetch(ctx, rawURL)
		if err != nil {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.closed || gen != m.gen {
				ch <- ErrSuperseded
				return
			}
			m.log.Warn("fetch source failed", "url", rawURL, "err", err)
			m.clear()
			ch <- err
			return
		}
		ch <- m.decode(gen, f, "")
	}()
	return ch
}

func (m *Manager) decode(gen uint64, f File, h Handle) error {
	img, format, err := Decode(f.Data)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || gen != m.gen {
		return ErrSuperseded
	}
	if err != nil {
		m.log.Warn("decode source failed", "name", f.Name, "err", err)
		m.clear()
		return fmt.Errorf("%s: %w", f.Name, err)
	}
	b := img.Bounds()
	m.current = &Source{
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
		Name:   f.Name,
		MIME:   f.MIME,
		Format: format,
		Handle: h,
	}
	m.log.Debug("source loaded", "name", f.Name, "format", format, "width", b.Dx(), "height", b.Dy())
	if m.onLoad != nil {
		m.onLoad(m.current)
	}
	return nil
}

// Current returns the loaded source or nil.
func (m *Manager) Current() *Source {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Close revokes the live handle and drops any pending load. Later
// assignments fail with ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.begin()
	m.cancel()
	m.cancel = nil
	m.closed = true
	m.current = nil
	return nil
}
