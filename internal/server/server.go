// Package server hosts editing sessions over HTTP. A client uploads an
// image, streams pointer and field events over a WebSocket and receives
// rendered PNG frames back.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/export"
	"github.com/example/photoedit/internal/source"
)

// DefaultMaxUpload caps uploaded source images.
const DefaultMaxUpload = 32 << 20

// Server owns the live sessions.
type Server struct {
	mu       sync.Mutex
	sessions map[string]*Session

	editorOpts []editor.Option
	saveDir    string
	maxUpload  int64
	origins    []string
	log        *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithEditorOptions sets the options every session editor is created with.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(s *Server) { s.editorOpts = append(s.editorOpts, opts...) }
}

// WithSaveDir sets where saved images are written.
func WithSaveDir(dir string) Option { return func(s *Server) { s.saveDir = dir } }

// WithMaxUpload caps the upload size in bytes.
func WithMaxUpload(n int64) Option { return func(s *Server) { s.maxUpload = n } }

// WithOriginPatterns allows cross-origin WebSocket clients from hosts
// matching the patterns.
func WithOriginPatterns(p ...string) Option {
	return func(s *Server) { s.origins = append(s.origins, p...) }
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.log = l } }

// New creates a Server with no sessions.
func New(opts ...Option) *Server {
	s := &Server{
		sessions:  make(map[string]*Session),
		saveDir:   ".",
		maxUpload: DefaultMaxUpload,
		log:       slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(recovery(s.log))
	r.Use(logger(s.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Len()})
	}).Methods("GET")

	r.HandleFunc("/sessions", s.createSession).Methods("POST")
	r.HandleFunc("/sessions/{id}", s.getSession).Methods("GET")
	r.HandleFunc("/sessions/{id}", s.deleteSession).Methods("DELETE")
	r.HandleFunc("/sessions/{id}/export", s.exportSession).Methods("GET")
	r.HandleFunc("/sessions/{id}/save", s.saveSession).Methods("POST")
	r.HandleFunc("/sessions/{id}/ws", s.handleWebSocket)
	return r
}

// Session returns a live session.
func (s *Server) Session(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// Len is the number of live sessions.
func (s *Server) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Close tears down every session.
func (s *Server) Close() error {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Session)
	s.mu.Unlock()

	var errs []error
	for _, sess := range sessions {
		errs = append(errs, sess.teardown())
	}
	return errors.Join(errs...)
}

// SessionResponse describes a session to clients.
type SessionResponse struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	State   wireState `json:"state"`
	Created time.Time `json:"created"`
}

// SaveResponse is returned by the save endpoint.
type SaveResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	MIME string `json:"mime"`
	Size int    `json:"size"`
}

func (s *Server) describe(sess *Session) SessionResponse {
	w, h := sess.ed.Size()
	return SessionResponse{
		ID:      sess.ID,
		Name:    sess.ed.SourceName(),
		Width:   w,
		Height:  h,
		State:   toWire(sess.ed.State()),
		Created: sess.Created,
	}
}

// createSession handles POST /sessions (multipart form with "file" field).
func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload")
		return
	}

	sess := newSession(uuid.NewString(), s.editorOpts)
	errc := sess.ed.SetFile(source.File{
		Name: filepath.Base(header.Filename),
		MIME: header.Header.Get("Content-Type"),
		Data: data,
	})
	select {
	case err := <-errc:
		if err != nil {
			sess.teardown()
			writeError(w, http.StatusBadRequest, "invalid image: "+err.Error())
			return
		}
	case <-r.Context().Done():
		sess.teardown()
		return
	}
	sess.ed.SetViewport(sess.canvasRect())

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	s.log.Info("session created", "id", sess.ID, "name", header.Filename)
	writeJSON(w, http.StatusCreated, s.describe(sess))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, ok := s.Session(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
	}
	return sess, ok
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.describe(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := sess.teardown(); err != nil {
		s.log.Warn("session teardown", "id", id, "err", err)
	}
	s.log.Info("session deleted", "id", id)
	w.WriteHeader(http.StatusNoContent)
}

// exportSession streams the edited image under its original name.
func (s *Server) exportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	f, err := sess.ed.GenerateEditedFile(r.Context())
	if err != nil {
		return
	}
	if f == nil {
		writeError(w, http.StatusConflict, "nothing to export")
		return
	}
	w.Header().Set("Content-Type", f.MIME)
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Name+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(f.Data)
}

// saveSession runs the editor's save flow and stores the result under a
// fresh id in the save directory.
func (s *Server) saveSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	f, err := sess.save(r.Context())
	if err != nil {
		if r.Context().Err() == nil {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	if f == nil {
		writeError(w, http.StatusConflict, "nothing to save")
		return
	}

	id := uuid.NewString()
	stored := &export.File{Name: id + filepath.Ext(f.Name), MIME: f.MIME, Data: f.Data}
	if err := (export.DirDownloader{Dir: s.saveDir}).Download(stored); err != nil {
		s.log.Error("store edited file", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	path := filepath.Join(s.saveDir, stored.Name)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	s.log.Info("session saved", "session", sess.ID, "id", id, "path", path)
	writeJSON(w, http.StatusCreated, SaveResponse{ID: id, Name: f.Name, Path: path, MIME: f.MIME, Size: len(f.Data)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
