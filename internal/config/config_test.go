package config

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/photoedit/internal/editstate"
)

func TestParse(t *testing.T) {
	input := `
save_dir = /tmp/edits
listen: "0.0.0.0:9000"

[defaults]
brightness = 120
contrast = 80
rotate = -90
zoom = 1.5
flip_horizontal = true
mode = draw
line_color = red
line_width = 6

[export]
jpeg_quality = 75
download_on_save = true

[gesture]
pinch_sensitivity = 0.02

[notify]
save = true
copy = false

[allow]
rotate = false
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.SaveDir != "/tmp/edits" {
		t.Errorf("Expected save_dir '/tmp/edits', got '%s'", cfg.SaveDir)
	}
	if cfg.Listen != "0.0.0.0:9000" {
		t.Errorf("Expected listen '0.0.0.0:9000', got '%s'", cfg.Listen)
	}

	d := cfg.Defaults
	if d.Brightness != 120 || d.Contrast != 80 || d.Saturate != 100 {
		t.Errorf("Unexpected filter defaults: %+v", d)
	}
	if d.Rotation != -90 || d.Zoom != 1.5 || !d.FlipHorizontal || d.FlipVertical {
		t.Errorf("Unexpected transform defaults: %+v", d)
	}
	if d.Mode != editstate.ModeDraw {
		t.Errorf("Expected draw mode, got %v", d.Mode)
	}
	if d.LineColor != (color.RGBA{R: 0xff, A: 0xff}) || d.LineWidth != 6 {
		t.Errorf("Unexpected line defaults: %v %v", d.LineColor, d.LineWidth)
	}

	if cfg.Export.JPEGQuality != 75 || !cfg.Export.DownloadOnSave {
		t.Errorf("Unexpected export section: %+v", cfg.Export)
	}
	if cfg.Gesture.PinchSensitivity != 0.02 || cfg.Gesture.WheelSensitivity != 0.01 {
		t.Errorf("Unexpected gesture section: %+v", cfg.Gesture)
	}
	if !cfg.Notify.Save || cfg.Notify.Copy {
		t.Errorf("Unexpected notify section: %+v", cfg.Notify)
	}

	p := cfg.Permissions()
	if p.Rotate || !p.ColorEditing || !p.Flip || !p.Zoom {
		t.Errorf("Unexpected permissions: %+v", p)
	}
}

func TestParseRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"out of range", "[defaults]\nbrightness = 250\n"},
		{"bad color", "[defaults]\nline_color = notacolor\n"},
		{"unknown default", "[defaults]\nsharpness = 3\n"},
		{"bad quality", "[export]\njpeg_quality = 0\n"},
		{"bad bool", "[allow]\nzoom = maybe\n"},
		{"negative sensitivity", "[gesture]\nwheel_sensitivity = -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.input)); err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
		})
	}
}

func TestCircular(t *testing.T) {
	input := `save_dir = /home/user/edits
listen = :8181
theme = dark

[defaults]
saturate = 150
grayscale = 40
rotate = 45
zoom = 0.5
flip_vertical = true
line_color = #00ff0080
line_width = 12

[export]
jpeg_quality = 60

[notify]
capture = true
save = true
copy = false

[allow]
color = false
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	// 4. Compare
	if cfg.SaveDir != cfg2.SaveDir || cfg.Listen != cfg2.Listen || cfg.Theme != cfg2.Theme {
		t.Errorf("Root mismatch: %q/%q/%q vs %q/%q/%q", cfg.SaveDir, cfg.Listen, cfg.Theme, cfg2.SaveDir, cfg2.Listen, cfg2.Theme)
	}
	if cfg.Defaults != cfg2.Defaults {
		t.Errorf("Defaults mismatch: %+v vs %+v", cfg.Defaults, cfg2.Defaults)
	}
	if cfg.Export != cfg2.Export || cfg.Gesture != cfg2.Gesture {
		t.Errorf("Export/gesture mismatch: %+v %+v vs %+v %+v", cfg.Export, cfg.Gesture, cfg2.Export, cfg2.Gesture)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.Allow != cfg2.Allow {
		t.Errorf("Allow mismatch: %+v vs %+v", cfg.Allow, cfg2.Allow)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("PHOTOEDIT_SAVE_DIR", "/srv/out")
	t.Setenv("PHOTOEDIT_JPEG_QUALITY", "50")
	t.Setenv("PHOTOEDIT_NOTIFY_COPY", "true")
	t.Setenv("PHOTOEDIT_THEME", "dark")

	cfg, err := Parse(strings.NewReader("save_dir = /tmp/file\nlisten = :1\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.SaveDir != "/srv/out" {
		t.Errorf("env should override save_dir, got %q", cfg.SaveDir)
	}
	if cfg.Listen != ":1" {
		t.Errorf("unset env should keep listen, got %q", cfg.Listen)
	}
	if cfg.Theme != "dark" {
		t.Errorf("env should set theme, got %q", cfg.Theme)
	}
	if cfg.Export.JPEGQuality != 50 || !cfg.Notify.Copy {
		t.Errorf("Unexpected overrides: %+v %+v", cfg.Export, cfg.Notify)
	}
}

func TestApplyEnvRejectsQuality(t *testing.T) {
	t.Setenv("PHOTOEDIT_JPEG_QUALITY", "101")
	if err := ApplyEnv(New()); err == nil {
		t.Fatal("expected error for out of range quality")
	}
}

func TestLoaderOverridePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.rc")
	cfg := New()
	cfg.SaveDir = dir
	cfg.Defaults.Brightness = 90
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	l := NewLoader("1.0.0", path)
	if got := l.GetConfigPath(); got != path {
		t.Fatalf("GetConfigPath = %q, want %q", got, path)
	}
	loaded, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.SaveDir != dir || loaded.Defaults.Brightness != 90 {
		t.Errorf("Unexpected loaded config: %+v", loaded)
	}
}

func TestLoaderDevLocalFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	if err := os.WriteFile(filepath.Join(dir, ".photoeditrc"), []byte("listen = :7000\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := NewLoader("1.0.0", "").GetConfigPath(); got != "" {
		t.Errorf("release build should ignore the local rc, got %q", got)
	}
	cfg, err := NewLoader("dev", "").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":7000" {
		t.Errorf("Expected listen from local rc, got %q", cfg.Listen)
	}
}
