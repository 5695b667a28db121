package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/photoedit/internal/editor"
	"github.com/example/photoedit/internal/server"
)

// serveCmd runs the session server until interrupted.
type serveCmd struct {
	*root
	fs        *flag.FlagSet
	listen    string
	saveDir   string
	origins   string
	maxUpload int64
}

func (s *serveCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	s := &serveCmd{root: r.subcommand("serve"), fs: fs}
	fs.Usage = usageFunc(s)
	fs.StringVar(&s.listen, "listen", r.config.Listen, "address to listen on")
	fs.StringVar(&s.saveDir, "save-dir", r.config.SaveDir, "directory for saved images")
	fs.StringVar(&s.origins, "origins", "", "comma separated WebSocket origin patterns")
	fs.Int64Var(&s.maxUpload, "max-upload", 32<<20, "largest accepted upload in bytes")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: s}
	}
	return s, nil
}

func (s *serveCmd) options() []server.Option {
	opts := []server.Option{
		server.WithEditorOptions(append(s.config.EditorOptions(), editor.WithLogger(s.log))...),
		server.WithMaxUpload(s.maxUpload),
		server.WithLogger(s.log),
	}
	if s.saveDir != "" {
		opts = append(opts, server.WithSaveDir(s.saveDir))
	}
	if s.origins != "" {
		var patterns []string
		for _, p := range strings.Split(s.origins, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		opts = append(opts, server.WithOriginPatterns(patterns...))
	}
	return opts
}

func (s *serveCmd) Run() error {
	srv := server.New(s.options()...)
	hs := &http.Server{
		Addr:         s.listen,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			s.log.Error("shutdown", "err", err)
		}
	}()

	s.log.Info("server starting", "addr", s.listen)
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := srv.Close(); err != nil {
		s.log.Warn("close sessions", "err", err)
	}
	s.log.Info("server stopped")
	return nil
}
