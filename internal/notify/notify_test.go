package notify

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/photoedit/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
}

func recorder(out *[]sent, err error) Sender {
	return func(ctx context.Context, title, body string, opts platform.Options) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("dispatch without deadline")
		}
		if opts.IconPath != "" {
			if _, statErr := os.Stat(opts.IconPath); statErr != nil {
				return statErr
			}
		}
		*out = append(*out, sent{title, body, opts})
		return err
	}
}

func TestDisabledEventsAreSilent(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), nil)
	n.SetSender(recorder(&got, nil))

	n.Copy(context.Background(), "cat.png")
	n.Save(context.Background(), "cat.png")
	if len(got) != 0 {
		t.Fatalf("expected no notifications, got %+v", got)
	}

	var nilNotifier *Notifier
	nilNotifier.Copy(context.Background(), "cat.png")
}

func TestCopyFormatsTemplate(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), nil)
	n.SetSender(recorder(&got, nil))
	n.Enable(EventCopy, true)

	n.Copy(context.Background(), " cat.png ")
	n.Copy(context.Background(), "")
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}
	if got[0].title != "Photo editor" || got[0].body != "Copied cat.png to clipboard" {
		t.Errorf("unexpected notification %+v", got[0])
	}
	if got[1].body != "Copied image to clipboard" {
		t.Errorf("unexpected fallback body %q", got[1].body)
	}
}

func TestSaveUsesFileAsIcon(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got []sent
	n := New(DefaultPreferences(), nil)
	n.SetSender(recorder(&got, errors.New("daemon missing")))
	n.Enable(EventSave, true)

	n.Save(context.Background(), path)
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	if got[0].opts.IconPath != path || got[0].body != "Saved "+path {
		t.Errorf("unexpected notification %+v", got[0])
	}
}

func TestCaptureWritesTemporaryIcon(t *testing.T) {
	var got []sent
	n := New(DefaultPreferences(), nil)
	n.SetSender(recorder(&got, nil))
	n.Enable(EventCapture, true)

	n.Capture(context.Background(), "screen", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if len(got) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(got))
	}
	icon := got[0].opts.IconPath
	if icon == "" {
		t.Fatal("expected an icon path")
	}
	if _, err := os.Stat(icon); !os.IsNotExist(err) {
		t.Errorf("icon %s should be removed after dispatch, stat err %v", icon, err)
	}
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("PHOTOEDIT_NOTIFY_TITLE", "Editor")
	t.Setenv("PHOTOEDIT_NOTIFY_SAVE_TEXT", "Wrote %s")
	t.Setenv("PHOTOEDIT_NOTIFY_ICON_FILES", "false")

	prefs, err := LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.Title != "Editor" || prefs.Save != "Wrote %s" || prefs.IconFiles {
		t.Errorf("unexpected prefs %+v", prefs)
	}
	if prefs.Copy != DefaultPreferences().Copy {
		t.Errorf("unset template should keep default, got %q", prefs.Copy)
	}
}
