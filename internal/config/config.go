// Package config loads the photoedit RC file and environment overrides.
package config

import (
	"fmt"
	"strings"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/gesture"
)

// DefaultListen is the address the session server binds when none is set.
const DefaultListen = "127.0.0.1:8080"

// Notify holds notification settings.
type Notify struct {
	Capture bool
	Save    bool
	Copy    bool
}

// Export holds encoder and save behaviour.
type Export struct {
	JPEGQuality    int
	DownloadOnSave bool
}

// Gesture holds the zoom sensitivities.
type Gesture struct {
	PinchSensitivity float64
	WheelSensitivity float64
}

// Allow gates the adjustments offered by every front-end.
type Allow struct {
	Color  bool
	Rotate bool
	Flip   bool
	Zoom   bool
}

// Config holds the application configuration.
type Config struct {
	SaveDir  string
	Listen   string
	Theme    string
	Defaults editstate.State
	Export   Export
	Gesture  Gesture
	Notify   Notify
	Allow    Allow
}

// New creates a new Config with defaults.
func New() *Config {
	g := gesture.DefaultConfig()
	return &Config{
		Listen:   DefaultListen,
		Defaults: editstate.Defaults(),
		Export:   Export{JPEGQuality: export.DefaultJPEGQuality},
		Gesture: Gesture{
			PinchSensitivity: g.PinchSensitivity,
			WheelSensitivity: g.WheelSensitivity,
		},
		Allow: Allow{Color: true, Rotate: true, Flip: true, Zoom: true},
	}
}

// Permissions converts the [allow] section.
func (c *Config) Permissions() editor.Permissions {
	return editor.Permissions{
		ColorEditing: c.Allow.Color,
		Rotate:       c.Allow.Rotate,
		Flip:         c.Allow.Flip,
		Zoom:         c.Allow.Zoom,
	}
}

// GestureConfig converts the [gesture] section.
func (c *Config) GestureConfig() gesture.Config {
	return gesture.Config{
		PinchSensitivity: c.Gesture.PinchSensitivity,
		WheelSensitivity: c.Gesture.WheelSensitivity,
	}
}

// ExportOptions converts the [export] section.
func (c *Config) ExportOptions() export.Options {
	return export.Options{JPEGQuality: c.Export.JPEGQuality}
}

// EditorOptions returns the session options every front-end starts from.
func (c *Config) EditorOptions() []editor.Option {
	return []editor.Option{
		editor.WithDefaults(c.Defaults),
		editor.WithPermissions(c.Permissions()),
		editor.WithGestureConfig(c.GestureConfig()),
		editor.WithExportOptions(c.ExportOptions()),
		editor.WithDownloadOnSave(c.Export.DownloadOnSave),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	if c.Listen != "" {
		fmt.Fprintf(&sb, "listen = %s\n", c.Listen)
	}
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	sb.WriteString("\n")

	d := c.Defaults
	sb.WriteString("[defaults]\n")
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldBrightness, d.Brightness)
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldContrast, d.Contrast)
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldSaturate, d.Saturate)
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldGrayscale, d.Grayscale)
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldRotation, d.Rotation)
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldZoom, d.Zoom)
	fmt.Fprintf(&sb, "flip_horizontal = %v\n", d.FlipHorizontal)
	fmt.Fprintf(&sb, "flip_vertical = %v\n", d.FlipVertical)
	fmt.Fprintf(&sb, "%s = %s\n", editstate.FieldMode, d.Mode)
	fmt.Fprintf(&sb, "%s = %s\n", editstate.FieldLineColor, editstate.FormatColor(d.LineColor))
	fmt.Fprintf(&sb, "%s = %g\n", editstate.FieldLineWidth, d.LineWidth)
	sb.WriteString("\n")

	sb.WriteString("[export]\n")
	fmt.Fprintf(&sb, "jpeg_quality = %d\n", c.Export.JPEGQuality)
	fmt.Fprintf(&sb, "download_on_save = %v\n", c.Export.DownloadOnSave)
	sb.WriteString("\n")

	sb.WriteString("[gesture]\n")
	fmt.Fprintf(&sb, "pinch_sensitivity = %g\n", c.Gesture.PinchSensitivity)
	fmt.Fprintf(&sb, "wheel_sensitivity = %g\n", c.Gesture.WheelSensitivity)
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "capture = %v\n", c.Notify.Capture)
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	sb.WriteString("\n")

	sb.WriteString("[allow]\n")
	fmt.Fprintf(&sb, "color = %v\n", c.Allow.Color)
	fmt.Fprintf(&sb, "rotate = %v\n", c.Allow.Rotate)
	fmt.Fprintf(&sb, "flip = %v\n", c.Allow.Flip)
	fmt.Fprintf(&sb, "zoom = %v\n", c.Allow.Zoom)

	return sb.String()
}
