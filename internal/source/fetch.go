package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// MaxFetchSize caps the number of bytes read for a single source.
const MaxFetchSize = 64 << 20

// Fetcher resolves a URL into file bytes.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (File, error)
}

// DefaultFetcher reads http and https URLs with Client and treats anything
// without a scheme, or with the file scheme, as a local path.
type DefaultFetcher struct {
	Client *http.Client
}

func (f DefaultFetcher) Fetch(ctx context.Context, rawURL string) (File, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return File{}, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		return f.fetchHTTP(ctx, u)
	case "", "file":
		p := u.Path
		if u.Scheme == "" {
			p = rawURL
		}
		return ReadFile(p)
	}
	return File{}, fmt.Errorf("unsupported url scheme %q", u.Scheme)
}

func (f DefaultFetcher) fetchHTTP(ctx context.Context, u *url.URL) (File, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return File{}, fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return File{}, fmt.Errorf("fetch %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return File{}, fmt.Errorf("fetch %s: %s", u.Redacted(), resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFetchSize+1))
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", u.Redacted(), err)
	}
	if len(data) > MaxFetchSize {
		return File{}, fmt.Errorf("fetch %s: body exceeds %d bytes", u.Redacted(), MaxFetchSize)
	}
	mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = "image"
	}
	return File{Name: name, MIME: mt, Data: data}, nil
}

// ReadFile loads a local file as a File.
func ReadFile(p string) (File, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", p, err)
	}
	return File{
		Name: filepath.Base(p),
		MIME: mime.TypeByExtension(strings.ToLower(filepath.Ext(p))),
		Data: data,
	}, nil
}
