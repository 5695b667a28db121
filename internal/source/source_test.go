package source

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type loadRecorder struct {
	mu    sync.Mutex
	loads []*Source
}

func (r *loadRecorder) record(s *Source) {
	r.mu.Lock()
	r.loads = append(r.loads, s)
	r.mu.Unlock()
}

func (r *loadRecorder) all() []*Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Source(nil), r.loads...)
}

func TestSetFileLoads(t *testing.T) {
	var rec loadRecorder
	m := NewManager(WithOnLoad(rec.record))
	if err := <-m.SetFile(File{Name: "a.png", MIME: "image/png", Data: pngBytes(t, 4, 3)}); err != nil {
		t.Fatalf("SetFile: %v", err)
	}
	cur := m.Current()
	if cur == nil || cur.Width != 4 || cur.Height != 3 || cur.Name != "a.png" || cur.Format != "png" {
		t.Fatalf("unexpected source %+v", cur)
	}
	if loads := rec.all(); len(loads) != 1 || loads[0] != cur {
		t.Fatalf("expected one load callback, got %d", len(loads))
	}
}

func TestHandlesRevokedExactlyOnce(t *testing.T) {
	reg := NewMemoryRegistry()
	m := NewManager(WithRegistry(reg))
	data := pngBytes(t, 2, 2)
	const n = 5
	for i := 0; i < n; i++ {
		if err := <-m.SetFile(File{Name: "x.png", Data: data}); err != nil {
			t.Fatalf("SetFile %d: %v", i, err)
		}
	}
	created, revoked, live := reg.Stats()
	if created != n || revoked != n-1 || live != 1 {
		t.Fatalf("after %d assignments: created=%d revoked=%d live=%d", n, created, revoked, live)
	}
	if _, ok := reg.Lookup(m.Current().Handle); !ok {
		t.Fatalf("current handle is not live")
	}
	m.Close()
	m.Close()
	created, revoked, live = reg.Stats()
	if created != n || revoked != n || live != 0 {
		t.Fatalf("after close: created=%d revoked=%d live=%d", created, revoked, live)
	}
}

type gatedFetcher struct {
	gates map[string]chan struct{}
	data  []byte
}

func (g gatedFetcher) Fetch(ctx context.Context, u string) (File, error) {
	if gate, ok := g.gates[u]; ok {
		<-gate
	}
	return File{Name: u, MIME: "image/png", Data: g.data}, nil
}

func TestLatestAssignmentWins(t *testing.T) {
	gate := make(chan struct{})
	var rec loadRecorder
	m := NewManager(
		WithFetcher(gatedFetcher{gates: map[string]chan struct{}{"slow": gate}, data: pngBytes(t, 3, 3)}),
		WithOnLoad(rec.record),
	)
	slow := m.SetURL("slow")
	if err := <-m.SetURL("fast"); err != nil {
		t.Fatalf("fast load: %v", err)
	}
	close(gate)
	if err := <-slow; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("slow load should be superseded, got %v", err)
	}
	if cur := m.Current(); cur == nil || cur.Name != "fast" {
		t.Fatalf("current source = %+v, want fast", cur)
	}
	if loads := rec.all(); len(loads) != 1 {
		t.Fatalf("superseded load reached the callback: %d loads", len(loads))
	}
}

func TestEmptyAssignmentClears(t *testing.T) {
	var rec loadRecorder
	reg := NewMemoryRegistry()
	m := NewManager(WithRegistry(reg), WithOnLoad(rec.record))
	<-m.SetFile(File{Name: "a.png", Data: pngBytes(t, 1, 1)})
	if err := <-m.SetFile(File{}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if m.Current() != nil {
		t.Fatalf("source not cleared")
	}
	loads := rec.all()
	if len(loads) != 2 || loads[1] != nil {
		t.Fatalf("expected load then clear, got %v", loads)
	}
	if _, _, live := reg.Stats(); live != 0 {
		t.Fatalf("%d handles still live", live)
	}
}

func TestDecodeFailure(t *testing.T) {
	m := NewManager()
	err := <-m.SetFile(File{Name: "bad.png", Data: []byte("not an image")})
	if err == nil || errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected decode error, got %v", err)
	}
	if m.Current() != nil {
		t.Fatalf("failed decode left a source")
	}
}

func TestClosedManager(t *testing.T) {
	m := NewManager()
	m.Close()
	if err := <-m.SetFile(File{Name: "a.png", Data: pngBytes(t, 1, 1)}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestDefaultFetcherHTTP(t *testing.T) {
	data := pngBytes(t, 6, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/img/photo.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer srv.Close()

	m := NewManager()
	if err := <-m.SetURL(srv.URL + "/img/photo.png"); err != nil {
		t.Fatalf("SetURL: %v", err)
	}
	cur := m.Current()
	if cur.Name != "photo.png" || cur.MIME != "image/png" || cur.Width != 6 {
		t.Fatalf("unexpected source %+v", cur)
	}
	if err := <-m.SetURL(srv.URL + "/missing.png"); err == nil {
		t.Fatalf("expected error for 404")
	}
}

func TestDecode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if _, format, err := Decode(buf.Bytes()); err != nil || format != "png" {
		t.Fatalf("Decode = %q, %v", format, err)
	}
	if _, _, err := Decode(nil); err == nil {
		t.Fatalf("expected error for empty data")
	}
}
