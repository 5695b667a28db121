// Package capture grabs the desktop so a screenshot can be edited directly.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"strconv"
	"strings"
	"time"

	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/source"
)

// Options tunes a capture.
type Options struct {
	// Interactive lets the user pick a region through the portal dialog.
	// It never falls back to a direct grab.
	Interactive bool
	// IncludeCursor embeds the pointer in the image.
	IncludeCursor bool
	// Monitor crops to the matching monitor: "primary", an index, or part
	// of the output name. Empty keeps the whole desktop.
	Monitor string
}

// MonitorInfo describes an individual monitor in the display layout.
type MonitorInfo struct {
	Index   int
	Name    string
	Rect    image.Rectangle
	Primary bool
}

var errNoMonitors = errors.New("no monitors available")

// Swapped by tests.
var (
	portalScreenshotFn = portalScreenshot
	rootScreenshotFn   = rootScreenshot
	listMonitorsFn     = listMonitors
	now                = time.Now
)

// Screenshot captures the desktop. The screenshot portal is tried first;
// when it is missing or disconnected a non-interactive capture on an X11
// session grabs the root window instead.
func Screenshot(ctx context.Context, opts Options) (*image.RGBA, error) {
	img, err := portalScreenshotFn(ctx, opts)
	if err != nil {
		if opts.Interactive || runningOnWayland() || !isPortalUnsupportedError(err) {
			return nil, err
		}
		var rootErr error
		img, rootErr = rootScreenshotFn()
		if rootErr != nil {
			return nil, fmt.Errorf("%w; x11 fallback: %v", err, rootErr)
		}
	}
	if opts.Monitor == "" {
		return img, nil
	}
	monitors, err := listMonitorsFn()
	if err != nil {
		return nil, err
	}
	mon, err := FindMonitor(monitors, opts.Monitor)
	if err != nil {
		return nil, err
	}
	return cropToRect(img, mon.Rect)
}

// File captures the desktop and encodes it as a PNG source file named after
// the capture time.
func File(ctx context.Context, opts Options) (source.File, *image.RGBA, error) {
	img, err := Screenshot(ctx, opts)
	if err != nil {
		return source.File{}, nil, err
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, img, export.MIMEPNG, export.DefaultOptions()); err != nil {
		return source.File{}, nil, err
	}
	name := "capture-" + now().Format("20060102-150405") + ".png"
	return source.File{Name: name, MIME: export.MIMEPNG, Data: buf.Bytes()}, img, nil
}

// ListMonitors retrieves the monitor layout.
func ListMonitors() ([]MonitorInfo, error) {
	return listMonitorsFn()
}

// FindMonitor resolves a monitor selector against the provided list.
func FindMonitor(monitors []MonitorInfo, selector string) (MonitorInfo, error) {
	if len(monitors) == 0 {
		return MonitorInfo{}, errNoMonitors
	}
	lower := strings.ToLower(strings.TrimSpace(selector))
	if lower == "" {
		return monitors[0], nil
	}
	if lower == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	if idx, err := strconv.Atoi(strings.TrimPrefix(lower, "#")); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return MonitorInfo{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), lower) {
			return mon, nil
		}
	}
	return MonitorInfo{}, fmt.Errorf("monitor %q not found", selector)
}

func cropToRect(src *image.RGBA, rect image.Rectangle) (*image.RGBA, error) {
	rect = rect.Intersect(src.Bounds())
	if rect.Empty() {
		return nil, fmt.Errorf("requested region outside captured image")
	}
	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(dst, dst.Bounds(), src, rect.Min, draw.Src)
	return dst, nil
}
