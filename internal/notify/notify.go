// Package notify raises desktop notifications when an edited image is
// saved, copied or imported from a screen capture.
package notify

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventCapture fires when a screen capture becomes the source.
	EventCapture Event = "capture"
	// EventSave fires when an edited image is written to disk.
	EventSave Event = "save"
	// EventCopy fires when an edited image is copied to the clipboard.
	EventCopy Event = "copy"
)

// Timeout bounds a single dispatch.
const Timeout = 3 * time.Second

// Preferences holds the notification title and per-event body templates.
// Each template takes one %s for the detail.
type Preferences struct {
	Title     string `envconfig:"NOTIFY_TITLE"`
	Capture   string `envconfig:"NOTIFY_CAPTURE_TEXT"`
	Save      string `envconfig:"NOTIFY_SAVE_TEXT"`
	Copy      string `envconfig:"NOTIFY_COPY_TEXT"`
	IconFiles bool   `envconfig:"NOTIFY_ICON_FILES" default:"true"`
}

// DefaultPreferences returns the stock notification text.
func DefaultPreferences() Preferences {
	return Preferences{
		Title:     "Photo editor",
		Capture:   "Editing capture %s",
		Save:      "Saved %s",
		Copy:      "Copied %s to clipboard",
		IconFiles: true,
	}
}

// LoadPreferences overlays PHOTOEDIT_NOTIFY_* variables on the defaults.
func LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()
	var env Preferences
	if err := envconfig.Process("photoedit", &env); err != nil {
		return prefs, fmt.Errorf("notify environment: %w", err)
	}
	for _, f := range []struct{ dst, v *string }{
		{&prefs.Title, &env.Title},
		{&prefs.Capture, &env.Capture},
		{&prefs.Save, &env.Save},
		{&prefs.Copy, &env.Copy},
	} {
		if v := strings.TrimSpace(*f.v); v != "" {
			*f.dst = v
		}
	}
	prefs.IconFiles = env.IconFiles
	return prefs, nil
}

// Sender delivers a formatted notification.
type Sender func(ctx context.Context, title, body string, opts platform.Options) error

// Notifier sends OS-level notifications for enabled events.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	send    Sender
	log     *slog.Logger
}

// New creates a Notifier with every event disabled.
func New(prefs Preferences, log *slog.Logger) *Notifier {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Notifier{prefs: prefs, enabled: make(map[Event]bool), send: platform.Notify, log: log}
}

// SetSender replaces the platform dispatcher.
func (n *Notifier) SetSender(s Sender) {
	if n != nil && s != nil {
		n.send = s
	}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Capture announces a capture that became the editing source, with the
// captured image as the icon when possible.
func (n *Notifier) Capture(ctx context.Context, detail string, img image.Image) {
	if !n.enabledFor(EventCapture) {
		return
	}
	opts := platform.Options{}
	if img != nil && n.prefs.IconFiles {
		if path, cleanup, err := writeIcon(img); err != nil {
			n.log.Warn("notification icon", "err", err)
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(ctx, EventCapture, detail, opts)
}

// Save announces a written file; the file itself is used as the icon.
func (n *Notifier) Save(ctx context.Context, path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	opts := platform.Options{}
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
		if _, err := os.Stat(abs); err == nil && n.prefs.IconFiles {
			opts.IconPath = abs
		}
	}
	n.dispatch(ctx, EventSave, detail, opts)
}

// Copy announces a clipboard copy of the named file.
func (n *Notifier) Copy(ctx context.Context, name string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(name) == "" {
		name = "image"
	}
	n.dispatch(ctx, EventCopy, name, platform.Options{})
}

func (n *Notifier) enabledFor(event Event) bool {
	return n != nil && n.enabled[event]
}

func (n *Notifier) template(event Event) string {
	switch event {
	case EventCapture:
		return n.prefs.Capture
	case EventSave:
		return n.prefs.Save
	case EventCopy:
		return n.prefs.Copy
	}
	return ""
}

func (n *Notifier) dispatch(ctx context.Context, event Event, detail string, opts platform.Options) {
	tmpl := strings.TrimSpace(n.template(event))
	if tmpl == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(tmpl, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()
	if err := n.send(ctx, n.prefs.Title, body, opts); err != nil {
		n.log.Warn("notification failed", "event", event, "err", err)
	}
}

func writeIcon(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "photoedit-icon-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := export.Encode(f, img, export.MIMEPNG, export.DefaultOptions()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
