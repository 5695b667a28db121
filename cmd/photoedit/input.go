package main

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/example/photoedit/internal/capture"
	"github.com/example/photoedit/internal/clipboard"
	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/source"
)

// Test hooks.
var (
	readFileFn      = source.ReadFile
	readClipboardFn = clipboard.ReadFile
	captureFileFn   = capture.File
)

var errNoInput = errors.New("exactly one of -file, -url, -from-clipboard or -capture is required")

// inputFlags selects where the image to edit comes from.
type inputFlags struct {
	file          string
	url           string
	fromClipboard bool
	capture       bool
	captureOpts   capture.Options
}

func (in *inputFlags) register(fs *flag.FlagSet, withCapture bool) {
	fs.StringVar(&in.file, "file", "", "image file to edit")
	fs.StringVar(&in.url, "url", "", "http(s) or file URL of the image to edit")
	fs.BoolVar(&in.fromClipboard, "from-clipboard", false, "edit the image on the clipboard")
	fs.BoolVar(&in.fromClipboard, "from-clip", false, "edit the image on the clipboard (alias)")
	if !withCapture {
		return
	}
	fs.BoolVar(&in.capture, "capture", false, "edit a new screenshot")
	fs.BoolVar(&in.captureOpts.Interactive, "interactive", false, "let the desktop choose the capture area")
	fs.BoolVar(&in.captureOpts.IncludeCursor, "include-cursor", false, "embed the cursor in captures when supported")
	fs.StringVar(&in.captureOpts.Monitor, "monitor", "", "monitor to capture: index, #index, name or \"primary\"")
}

func (in *inputFlags) validate() error {
	n := 0
	for _, set := range []bool{in.file != "", in.url != "", in.fromClipboard, in.capture} {
		if set {
			n++
		}
	}
	if n != 1 {
		return errNoInput
	}
	return nil
}

// load assigns the selected image to ed and waits for it to decode.
func (in *inputFlags) load(ctx context.Context, r *root, ed *editor.Editor) error {
	var done <-chan error
	switch {
	case in.url != "":
		done = ed.SetURL(in.url)
	case in.file != "":
		f, err := readFileFn(in.file)
		if err != nil {
			return err
		}
		done = ed.SetFile(f)
	case in.fromClipboard:
		f, err := readClipboardFn()
		if err != nil {
			return fmt.Errorf("read clipboard: %w", err)
		}
		done = ed.SetFile(f)
	case in.capture:
		f, img, err := captureFileFn(ctx, in.captureOpts)
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		r.notifyCapture(ctx, f.Name, img)
		done = ed.SetFile(f)
	default:
		return errNoInput
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
