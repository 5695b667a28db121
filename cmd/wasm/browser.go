//go:build js && wasm

package main

import (
	"fmt"
	"image"
	"image/draw"
	"syscall/js"

	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/source"
)

// uint8Array copies data into a new JS Uint8Array.
func uint8Array(data []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(data))
	js.CopyBytesToJS(arr, data)
	return arr
}

func newBlob(data []byte, mime string) js.Value {
	parts := js.Global().Get("Array").New(uint8Array(data))
	opts := js.Global().Get("Object").New()
	if mime != "" {
		opts.Set("type", mime)
	}
	return js.Global().Get("Blob").New(parts, opts)
}

// jsFile wraps an encoded image as a DOM File.
func jsFile(f *export.File) js.Value {
	parts := js.Global().Get("Array").New(uint8Array(f.Data))
	opts := js.Global().Get("Object").New()
	opts.Set("type", f.MIME)
	return js.Global().Get("File").New(parts, f.Name, opts)
}

// objectURLs hands out blob: URLs for source files so the page can show
// the original while it is being edited.
type objectURLs struct{}

func (objectURLs) Create(f source.File) (source.Handle, error) {
	u := js.Global().Get("URL").Call("createObjectURL", newBlob(f.Data, f.MIME))
	if u.Type() != js.TypeString {
		return "", fmt.Errorf("createObjectURL returned %s", u.Type())
	}
	return source.Handle(u.String()), nil
}

func (objectURLs) Revoke(h source.Handle) {
	js.Global().Get("URL").Call("revokeObjectURL", string(h))
}

// anchorDownloader triggers a browser download through a temporary anchor.
type anchorDownloader struct{}

func (anchorDownloader) Download(f *export.File) error {
	if f == nil {
		return fmt.Errorf("nothing to download")
	}
	doc := js.Global().Get("document")
	url := js.Global().Get("URL").Call("createObjectURL", newBlob(f.Data, f.MIME))
	defer js.Global().Get("URL").Call("revokeObjectURL", url)
	a := doc.Call("createElement", "a")
	a.Set("href", url)
	a.Set("download", f.Name)
	doc.Get("body").Call("appendChild", a)
	a.Call("click")
	a.Call("remove")
	return nil
}

// putImage blits img into a 2D canvas element, resizing the element to
// the image. ImageData is not premultiplied so the pixels are converted.
func putImage(canvas js.Value, img *image.RGBA) {
	b := img.Bounds()
	if canvas.Get("width").Int() != b.Dx() {
		canvas.Set("width", b.Dx())
	}
	if canvas.Get("height").Int() != b.Dy() {
		canvas.Set("height", b.Dy())
	}
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)

	buf := uint8Array(n.Pix)
	clamped := js.Global().Get("Uint8ClampedArray").New(buf.Get("buffer"))
	data := js.Global().Get("ImageData").New(clamped, b.Dx(), b.Dy())
	canvas.Call("getContext", "2d").Call("putImageData", data, 0, 0)
}
