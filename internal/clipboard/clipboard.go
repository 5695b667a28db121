// Package clipboard copies edited images to, and pastes source images from,
// the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"

	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/source"
)

// PasteName is the file name given to images pasted from the clipboard.
const PasteName = "clipboard.png"

// ErrNoImage is returned when the clipboard holds no image.
var ErrNoImage = errors.New("clipboard does not contain image data")

// WriteImage publishes img to the clipboard as PNG.
func WriteImage(img image.Image) error {
	if img == nil {
		return errors.New("nothing to copy")
	}
	var buf bytes.Buffer
	if err := export.Encode(&buf, img, export.MIMEPNG, export.DefaultOptions()); err != nil {
		return err
	}
	return writePNG(buf.Bytes())
}

// ReadFile returns the clipboard image as a source file ready for the
// editor.
func ReadFile() (source.File, error) {
	data, err := readPNG()
	if err != nil {
		return source.File{}, err
	}
	if len(data) == 0 {
		return source.File{}, ErrNoImage
	}
	return source.File{Name: PasteName, MIME: export.MIMEPNG, Data: data}, nil
}
