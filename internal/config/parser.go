package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads configuration from an io.Reader.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	scanner := bufio.NewScanner(r)

	var section string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(line, "["), "]"))
			continue
		}

		// Key = Value or Key: Value
		var parts []string
		if strings.Contains(line, "=") {
			parts = strings.SplitN(line, "=", 2)
		} else if strings.Contains(line, ":") {
			parts = strings.SplitN(line, ":", 2)
		} else {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(parts[0]))
		value := strings.TrimSpace(parts[1])
		if strings.HasPrefix(value, "\"") && strings.HasSuffix(value, "\"") && len(value) >= 2 {
			value = value[1 : len(value)-1]
		}

		var err error
		switch section {
		case "":
			err = setRootField(cfg, key, value)
		case "defaults":
			err = setDefaultsField(cfg, key, value)
		case "export":
			err = setExportField(&cfg.Export, key, value)
		case "gesture":
			err = setGestureField(&cfg.Gesture, key, value)
		case "notify":
			err = setNotifyField(&cfg.Notify, key, value)
		case "allow":
			err = setAllowField(&cfg.Allow, key, value)
		}
		if err != nil {
			if section == "" {
				return nil, fmt.Errorf("error in root section: %w", err)
			}
			return nil, fmt.Errorf("error in section [%s]: %w", section, err)
		}
	}

	return cfg, scanner.Err()
}

func setRootField(cfg *Config, key, value string) error {
	switch key {
	case "save_dir":
		cfg.SaveDir = value
	case "listen":
		cfg.Listen = value
	case "theme":
		cfg.Theme = value
	}
	return nil
}

func setDefaultsField(cfg *Config, key, value string) error {
	switch key {
	case "flip_horizontal", "flip_vertical":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		if key == "flip_horizontal" {
			cfg.Defaults.FlipHorizontal = b
		} else {
			cfg.Defaults.FlipVertical = b
		}
		return nil
	}
	ok, err := cfg.Defaults.SetField(key, value)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("invalid value %q for key %s", value, key)
	}
	return nil
}

func setExportField(e *Export, key, value string) error {
	switch key {
	case "jpeg_quality":
		q, err := strconv.Atoi(value)
		if err != nil || q < 1 || q > 100 {
			return fmt.Errorf("jpeg_quality must be 1-100, got %q", value)
		}
		e.JPEGQuality = q
	case "download_on_save":
		b, err := parseBool(key, value)
		if err != nil {
			return err
		}
		e.DownloadOnSave = b
	}
	return nil
}

func setGestureField(g *Gesture, key, value string) error {
	var dst *float64
	switch key {
	case "pinch_sensitivity":
		dst = &g.PinchSensitivity
	case "wheel_sensitivity":
		dst = &g.WheelSensitivity
	default:
		return nil
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid number for key %s: %w", key, err)
	}
	if v <= 0 {
		return fmt.Errorf("%s must be positive", key)
	}
	*dst = v
	return nil
}

func setNotifyField(n *Notify, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "capture":
		n.Capture = b
	case "save":
		n.Save = b
	case "copy":
		n.Copy = b
	}
	return nil
}

func setAllowField(a *Allow, key, value string) error {
	b, err := parseBool(key, value)
	if err != nil {
		return err
	}
	switch key {
	case "color":
		a.Color = b
	case "rotate":
		a.Rotate = b
	case "flip":
		a.Flip = b
	case "zoom":
		a.Zoom = b
	}
	return nil
}

var errNotBool = errors.New("invalid boolean")

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w for key %s: %q", errNotBool, key, value)
	}
	return b, nil
}
