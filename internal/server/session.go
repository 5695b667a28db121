package server

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/editstate"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/geom"
)

// Session is one uploaded image and its editor.
type Session struct {
	ID      string
	Created time.Time

	ed       *editor.Editor
	changed  chan struct{}
	attached atomic.Bool

	saveMu sync.Mutex
	saved  *export.File
}

func newSession(id string, opts []editor.Option) *Session {
	s := &Session{
		ID:      id,
		Created: time.Now().UTC(),
		changed: make(chan struct{}, 1),
	}
	all := append([]editor.Option(nil), opts...)
	all = append(all,
		editor.WithOnChange(s.markChanged),
		editor.WithOnSave(func(f *export.File) { s.saved = f }),
	)
	s.ed = editor.New(all...)
	return s
}

// Editor exposes the session's editor.
func (s *Session) Editor() *editor.Editor { return s.ed }

// markChanged queues a frame. Bursts of changes collapse into one frame.
func (s *Session) markChanged() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Session) canvasRect() geom.Rect {
	w, h := s.ed.Size()
	return geom.Rect{Width: float64(w), Height: float64(h)}
}

func (s *Session) save(ctx context.Context) (*export.File, error) {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()
	s.saved = nil
	if err := s.ed.Save(ctx); err != nil {
		return nil, err
	}
	f := s.saved
	s.saved = nil
	return f, nil
}

func (s *Session) teardown() error {
	return s.ed.Teardown()
}

// wireState is the JSON form of the edit state sent to clients.
type wireState struct {
	Brightness     float64 `json:"brightness"`
	Contrast       float64 `json:"contrast"`
	Saturate       float64 `json:"saturate"`
	Grayscale      float64 `json:"grayscale"`
	Rotate         float64 `json:"rotate"`
	FlipHorizontal bool    `json:"flipHorizontal"`
	FlipVertical   bool    `json:"flipVertical"`
	Zoom           float64 `json:"zoom"`
	Mode           string  `json:"mode"`
	LineColor      string  `json:"lineColor"`
	LineWidth      float64 `json:"lineWidth"`
}

func toWire(st editstate.State) wireState {
	return wireState{
		Brightness:     st.Brightness,
		Contrast:       st.Contrast,
		Saturate:       st.Saturate,
		Grayscale:      st.Grayscale,
		Rotate:         st.Rotation,
		FlipHorizontal: st.FlipHorizontal,
		FlipVertical:   st.FlipVertical,
		Zoom:           st.Zoom,
		Mode:           st.Mode.String(),
		LineColor:      editstate.FormatColor(st.LineColor),
		LineWidth:      st.LineWidth,
	}
}
