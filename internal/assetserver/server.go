// Package assetserver hosts the per-render loopback origin the page is
// served from. It replaces the original helper's custom wry:// protocol: a
// real origin lets the page fetch local bundles with a deliberate CORS grant
// instead of file:// quirks.
package assetserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
	"github.com/go-chi/chi/v5"
)

// ErrResourceNotLocal is returned for asset requests when the active
// resource does not serve from a local folder.
var ErrResourceNotLocal = errors.New("resource is not local")

// Server serves the built render page at "/" and, when the resource is a
// local folder, BokehJS bundles under the virtual resource directory. One
// Server exists per render; the resource is captured by value at
// construction and never mutated.
type Server struct {
	res  bokeh.Resource
	page string

	srv *http.Server
	ln  net.Listener
}

// New builds a Server for one render. The page document is assembled once,
// up front, so every request for "/" sees identical bytes.
func New(res bokeh.Resource) *Server {
	s := &Server{
		res:  res.Normalize(),
		page: bokeh.BuildPage(res),
	}
	s.srv = &http.Server{Handler: s.handler()}
	return s
}

func (s *Server) handler() http.Handler {
	router := chi.NewMux()
	router.Get("/", s.servePage)
	router.Get(bokeh.ResourceDir+"/{file}", s.serveAsset)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.fail(w, r, fmt.Errorf("invalid path %s", r.URL.Path))
	})
	return router
}

// Handler exposes the route table for in-process tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(s.page))
}

func (s *Server) serveAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")

	if !s.res.IsLocalFolder() {
		s.fail(w, r, ErrResourceNotLocal)
		return
	}
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		s.fail(w, r, fmt.Errorf("invalid path %s", r.URL.Path))
		return
	}

	data, err := os.ReadFile(filepath.Join(s.res.Path, name))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	mimetype := mime.TypeByExtension(filepath.Ext(name))
	if mimetype == "" {
		mimetype = "text/plain"
	}

	w.Header().Set("Content-Type", mimetype)
	// Scope the cross-origin grant to this render's own origin only.
	w.Header().Set("Access-Control-Allow-Origin", "http://"+r.Host)
	_, _ = w.Write(data)
}

// fail reports any in-page fetch problem as a 500 whose body is the error
// text, matching what the page sees from a broken virtual protocol.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	slog.Debug("asset server request failed", "path", r.URL.Path, "error", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// Start listens on an ephemeral loopback port and serves in the background.
// It returns the origin (e.g. "http://127.0.0.1:49321") the render host
// should navigate to.
func (s *Server) Start() (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("asset server: listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("asset server failed", "error", err)
		}
	}()

	origin := "http://" + ln.Addr().String()
	slog.Debug("asset server listening", "origin", origin, "resource_kind", s.res.Kind)
	return origin, nil
}

// Shutdown stops the server once the render completes.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
