// Package export encodes the composited canvas into an image file.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
)

// DefaultJPEGQuality matches the browser default for canvas.toBlob.
const DefaultJPEGQuality = 92

// Options tunes the encoders.
type Options struct {
	JPEGQuality int
}

// DefaultOptions returns the stock encoder settings.
func DefaultOptions() Options {
	return Options{JPEGQuality: DefaultJPEGQuality}
}

// MIMEType infers the output type from a file name: jpg and jpeg in any
// case select JPEG and everything else PNG.
func MIMEType(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg":
		return MIMEJPEG
	}
	return MIMEPNG
}

// Encode writes img to w in the given MIME type.
func Encode(w io.Writer, img image.Image, mime string, opts Options) error {
	switch mime {
	case MIMEJPEG:
		q := opts.JPEGQuality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: q}); err != nil {
			return fmt.Errorf("encode jpeg: %w", err)
		}
	case MIMEPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
	default:
		return fmt.Errorf("unsupported export type %q", mime)
	}
	return nil
}

// File is an encoded image ready to hand to the caller.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Build encodes img under name, choosing the type from the name.
func Build(name string, img image.Image, opts Options) (*File, error) {
	return BuildAs(name, MIMEType(name), img, opts)
}

// BuildAs encodes img under name as the given type.
func BuildAs(name, mime string, img image.Image, opts Options) (*File, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, mime, opts); err != nil {
		return nil, err
	}
	return &File{Name: name, MIME: mime, Data: buf.Bytes()}, nil
}

// Downloader delivers a file to the user, such as by triggering a browser
// download or writing it to disk.
type Downloader interface {
	Download(f *File) error
}

// DirDownloader writes files into Dir.
type DirDownloader struct {
	Dir string
}

func (d DirDownloader) Download(f *File) error {
	if f == nil {
		return fmt.Errorf("nothing to download")
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	p := filepath.Join(dir, filepath.Base(f.Name))
	if err := os.WriteFile(p, f.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}
	return nil
}

// DownloaderFunc adapts a function to Downloader.
type DownloaderFunc func(f *File) error

func (fn DownloaderFunc) Download(f *File) error { return fn(f) }
