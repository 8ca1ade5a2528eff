//go:build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var env *Env

// Env holds shared state for all integration tests. The tests expect a
// running render service; start one with cmd/renderd before running them.
type Env struct {
	BaseURL   string
	Client    *http.Client
	ChartJSON json.RawMessage // loaded from BOKEHRENDER_TEST_CHART, may be nil
}

func TestMain(m *testing.M) {
	baseURL := os.Getenv("BOKEHRENDER_URL")
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8199"
	}

	env = &Env{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}

	resp, err := env.Client.Get(baseURL + "/health")
	if err != nil {
		fmt.Fprintf(os.Stderr, "render service not reachable at %s: %v\n", baseURL, err)
		os.Exit(1)
	}
	resp.Body.Close()

	// A real chart document, produced by bokeh.embed.json_item in Python.
	if path := os.Getenv("BOKEHRENDER_TEST_CHART"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read test chart %s: %v\n", path, err)
			os.Exit(1)
		}
		env.ChartJSON = data
	}

	os.Exit(m.Run())
}

// requireChart skips tests that need a real Bokeh document when none was provided.
func (e *Env) requireChart(t *testing.T) json.RawMessage {
	t.Helper()
	if e.ChartJSON == nil {
		t.Skip("set BOKEHRENDER_TEST_CHART to a bokeh.embed.json_item file to run this test")
	}
	return e.ChartJSON
}

// --- HTTP helpers ---

func (e *Env) GET(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.Client.Get(e.BaseURL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

func (e *Env) POST(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	return e.do(t, http.MethodPost, path, body)
}

func (e *Env) DELETE(t *testing.T, path string) *http.Response {
	t.Helper()
	return e.do(t, http.MethodDelete, path, nil)
}

func (e *Env) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("%s %s: marshal body: %v", method, path, err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, e.BaseURL+path, r)
	if err != nil {
		t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// --- Assertion helpers ---

func requireStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d; body: %s", resp.StatusCode, want, body)
	}
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}
