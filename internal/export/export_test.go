package export

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":    MIMEJPEG,
		"photo.jpeg":   MIMEJPEG,
		"a.b.JpEg":     MIMEJPEG,
		"photo.png":    MIMEPNG,
		"anim.gif":     MIMEPNG,
		"noext":        MIMEPNG,
		"jpg":          MIMEPNG,
		"dir.jpg/file": MIMEPNG,
		"scan.webp":    MIMEPNG,
	}
	for name, want := range tests {
		if got := MIMEType(name); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", name, got, want)
		}
	}
}

func testImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	img.SetRGBA(1, 1, color.RGBA{200, 10, 10, 255})
	return img
}

func TestBuildPNG(t *testing.T) {
	f, err := Build("test.png", testImage(), DefaultOptions())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.Name != "test.png" || f.MIME != MIMEPNG {
		t.Fatalf("file = %s %s", f.Name, f.MIME)
	}
	img, err := png.Decode(bytes.NewReader(f.Data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := color.RGBAModel.Convert(img.At(1, 1)).(color.RGBA); got != (color.RGBA{200, 10, 10, 255}) {
		t.Fatalf("pixel = %v", got)
	}
}

func TestBuildJPEG(t *testing.T) {
	f, err := Build("photo.JPG", testImage(), Options{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.MIME != MIMEJPEG {
		t.Fatalf("mime = %s", f.MIME)
	}
	if _, err := jpeg.Decode(bytes.NewReader(f.Data)); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestEncodeUnsupported(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, testImage(), "image/gif", DefaultOptions()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDirDownloader(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	d := DirDownloader{Dir: dir}
	if err := d.Download(&File{Name: "x.png", Data: []byte("abc")}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "x.png"))
	if err != nil || string(b) != "abc" {
		t.Fatalf("read back %q, %v", b, err)
	}
	if err := d.Download(nil); err == nil {
		t.Fatalf("expected error for nil file")
	}
}
