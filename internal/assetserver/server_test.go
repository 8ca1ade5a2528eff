package assetserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
)

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestRootServesRenderPage(t *testing.T) {
	s := New(bokeh.Resource{})
	resp, body := get(t, s.Handler(), "/")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status = %d; want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/html" {
		t.Fatalf("GET / content-type = %q; want text/html", ct)
	}
	if !strings.Contains(body, "function renderBokeh") {
		t.Fatalf("GET / body does not contain the renderer script")
	}
}

func TestAssetRejectedWhenResourceNotLocal(t *testing.T) {
	s := New(bokeh.Resource{Kind: bokeh.ResourceCDN, Version: "3.5.2"})
	resp, body := get(t, s.Handler(), bokeh.ResourceDir+"/bokeh.min.js")

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("asset status = %d; want 500", resp.StatusCode)
	}
	if !strings.Contains(body, "resource is not local") {
		t.Fatalf("asset body = %q; want resource-is-not-local error", body)
	}
}

func TestAssetServedFromLocalFolder(t *testing.T) {
	dir := t.TempDir()
	content := []byte("window.Bokeh = window.Bokeh || {};\n")
	if err := os.WriteFile(filepath.Join(dir, "bokeh.min.js"), content, 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}

	s := New(bokeh.Resource{Kind: bokeh.ResourceLocalFolder, Path: dir})
	resp, body := get(t, s.Handler(), bokeh.ResourceDir+"/bokeh.min.js")

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("asset status = %d; want 200", resp.StatusCode)
	}
	if body != string(content) {
		t.Fatalf("asset bytes differ from file content")
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "javascript") {
		t.Fatalf("asset content-type = %q; want a javascript MIME type", ct)
	}
	if cors := resp.Header.Get("Access-Control-Allow-Origin"); !strings.HasPrefix(cors, "http://") {
		t.Fatalf("asset CORS header = %q; want the render origin", cors)
	}
}

func TestAssetMissingFileIsServerError(t *testing.T) {
	s := New(bokeh.Resource{Kind: bokeh.ResourceLocalFolder, Path: t.TempDir()})
	resp, _ := get(t, s.Handler(), bokeh.ResourceDir+"/missing.js")

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("missing asset status = %d; want 500", resp.StatusCode)
	}
}

func TestUnknownPathIsServerError(t *testing.T) {
	s := New(bokeh.Resource{})
	resp, body := get(t, s.Handler(), "/favicon.ico")

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("unknown path status = %d; want 500", resp.StatusCode)
	}
	if !strings.Contains(body, "invalid path") {
		t.Fatalf("unknown path body = %q; want invalid-path error", body)
	}
}

func TestStartAndShutdown(t *testing.T) {
	s := New(bokeh.Resource{})
	origin, err := s.Start()
	if err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Shutdown(t.Context()) })

	resp, err := http.Get(origin + "/")
	if err != nil {
		t.Fatalf("GET %s failed: %v", origin, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / over TCP status = %d; want 200", resp.StatusCode)
	}
}
