package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the environment overrides, e.g. PHOTOEDIT_SAVE_DIR.
const EnvPrefix = "photoedit"

// env lists the overridable settings. Unset variables leave the pointer nil
// so the file value survives.
type env struct {
	SaveDir          *string  `envconfig:"SAVE_DIR"`
	Listen           *string  `envconfig:"LISTEN"`
	Theme            *string  `envconfig:"THEME"`
	JPEGQuality      *int     `envconfig:"JPEG_QUALITY"`
	DownloadOnSave   *bool    `envconfig:"DOWNLOAD_ON_SAVE"`
	PinchSensitivity *float64 `envconfig:"PINCH_SENSITIVITY"`
	WheelSensitivity *float64 `envconfig:"WHEEL_SENSITIVITY"`
	NotifySave       *bool    `envconfig:"NOTIFY_SAVE"`
	NotifyCopy       *bool    `envconfig:"NOTIFY_COPY"`
	NotifyCapture    *bool    `envconfig:"NOTIFY_CAPTURE"`
}

// ApplyEnv overlays PHOTOEDIT_* variables onto cfg.
func ApplyEnv(cfg *Config) error {
	var e env
	if err := envconfig.Process(EnvPrefix, &e); err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	if e.SaveDir != nil {
		cfg.SaveDir = *e.SaveDir
	}
	if e.Listen != nil {
		cfg.Listen = *e.Listen
	}
	if e.Theme != nil {
		cfg.Theme = *e.Theme
	}
	if e.JPEGQuality != nil {
		if q := *e.JPEGQuality; q < 1 || q > 100 {
			return fmt.Errorf("environment: PHOTOEDIT_JPEG_QUALITY must be 1-100, got %d", q)
		}
		cfg.Export.JPEGQuality = *e.JPEGQuality
	}
	if e.DownloadOnSave != nil {
		cfg.Export.DownloadOnSave = *e.DownloadOnSave
	}
	if e.PinchSensitivity != nil && *e.PinchSensitivity > 0 {
		cfg.Gesture.PinchSensitivity = *e.PinchSensitivity
	}
	if e.WheelSensitivity != nil && *e.WheelSensitivity > 0 {
		cfg.Gesture.WheelSensitivity = *e.WheelSensitivity
	}
	if e.NotifySave != nil {
		cfg.Notify.Save = *e.NotifySave
	}
	if e.NotifyCopy != nil {
		cfg.Notify.Copy = *e.NotifyCopy
	}
	if e.NotifyCapture != nil {
		cfg.Notify.Capture = *e.NotifyCapture
	}
	return nil
}
