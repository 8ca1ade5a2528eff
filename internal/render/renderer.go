// Package render drives one-shot Bokeh chart renders through a headless
// browser page. Each render owns a fresh page target, a dedicated loopback
// asset origin, and a single-slot completion channel fed by the page's ipc
// binding.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/dgnsrekt/bokeh_render/internal/assetserver"
	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
	"github.com/dgnsrekt/bokeh_render/internal/dataurl"
)

// Renderer renders chart specs on a shared browser reachable over CDP.
// Renders are independent: each call opens and tears down its own tab, so
// concurrent calls are safe.
type Renderer struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	timeout     time.Duration
}

// NewRenderer attaches to the browser behind cdpURL (e.g.
// "http://127.0.0.1:9222"). timeout bounds every render; a stuck page fails
// with a RENDER_TIMEOUT error instead of hanging the caller.
func NewRenderer(cdpURL string, timeout time.Duration) *Renderer {
	allocCtx, allocCancel := chromedp.NewRemoteAllocator(context.Background(), cdpURL)
	return &Renderer{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		timeout:     timeout,
	}
}

// Close releases the allocator. In-flight renders are aborted.
func (r *Renderer) Close() {
	r.allocCancel()
}

// Ping verifies the browser is reachable by opening and discarding a tab.
// The tab context must chain from the allocator, so the caller's deadline
// and cancellation are mirrored onto it rather than passed through.
func (r *Renderer) Ping(ctx context.Context) error {
	tabCtx, cancel := chromedp.NewContext(r.allocCtx)
	defer cancel()

	timeout := 10 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	pingCtx, pingCancel := context.WithTimeout(tabCtx, timeout)
	defer pingCancel()
	stop := context.AfterFunc(ctx, pingCancel)
	defer stop()

	if err := chromedp.Run(pingCtx); err != nil {
		return newError(CodeBrowserUnavailable, "connect to browser failed", err)
	}
	return nil
}

// Render loads the chart spec into a hidden page, triggers the in-page
// renderer, and waits for exactly one result envelope.
func (r *Renderer) Render(ctx context.Context, req Request) (Result, error) {
	if emptyChart(req.ChartJSON) {
		return Result{}, newError(CodeValidation, "chart_json is required", nil)
	}
	if req.DPI < 0 {
		return Result{}, newError(CodeValidation, fmt.Sprintf("dpi must be positive, got %d", req.DPI), nil)
	}
	dpi := req.DPI
	if dpi == 0 {
		dpi = DefaultDPI
	}
	res := req.Resource.Normalize()

	pageURL, cleanup, err := r.preparePage(res)
	if err != nil {
		return Result{}, err
	}
	defer cleanup()

	tabCtx, tabCancel := chromedp.NewContext(r.allocCtx)
	defer tabCancel()

	// Single-slot completion channel. The listener runs on chromedp's event
	// goroutine; the non-blocking send enforces the at-most-one-value
	// invariant even if the page misbehaves and posts twice.
	msgCh := make(chan string, 1)
	chromedp.ListenTarget(tabCtx, func(ev any) {
		if e, ok := ev.(*runtime.EventBindingCalled); ok && e.Name == bokeh.BindingName {
			select {
			case msgCh <- e.Payload:
			default:
			}
		}
	})

	runCtx, runCancel := context.WithTimeout(tabCtx, r.timeout)
	defer runCancel()

	slog.Debug("render start",
		"page_url", pageURL,
		"resource_kind", res.Kind,
		"dpi", dpi,
		"payload_bytes", len(req.ChartJSON),
	)

	start := time.Now()
	err = chromedp.Run(runCtx,
		runtime.AddBinding(bokeh.BindingName),
		chromedp.Navigate(pageURL),
		chromedp.Evaluate(jsInvokeRender(req.ChartJSON, dpi), nil),
	)
	if err != nil {
		return Result{}, classifyRunError(runCtx, err)
	}

	payload, err := r.waitForEnvelope(ctx, runCtx, msgCh)
	if err != nil {
		return Result{}, err
	}

	result, err := resultFromEnvelope(payload)
	if err != nil {
		return Result{}, err
	}
	result.RootID = rootID(req.ChartJSON)
	result.DPI = dpi

	slog.Info("render complete",
		"root_id", result.RootID,
		"width", result.Width,
		"height", result.Height,
		"dpi", result.DPI,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result, nil
}

// preparePage decides how the page reaches the browser. Local single-file
// resources skip the asset server entirely: the page goes to disk and the
// bundle is loaded by direct file URI. Everything else is served from a
// per-render loopback origin.
func (r *Renderer) preparePage(res bokeh.Resource) (string, func(), error) {
	if res.Kind == bokeh.ResourceLocalFile {
		f, err := os.CreateTemp("", "bokeh-render-*.html")
		if err != nil {
			return "", nil, newError(CodeRenderFailure, "write render page", err)
		}
		if _, err := f.WriteString(bokeh.BuildPage(res)); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", nil, newError(CodeRenderFailure, "write render page", err)
		}
		f.Close()
		name := f.Name()
		return "file://" + name, func() { _ = os.Remove(name) }, nil
	}

	srv := assetserver.New(res)
	origin, err := srv.Start()
	if err != nil {
		return "", nil, newError(CodeRenderFailure, "start asset server", err)
	}
	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return origin, cleanup, nil
}

// waitForEnvelope blocks until the page posts its one envelope, the render
// deadline passes, the tab dies, or the caller cancels.
func (r *Renderer) waitForEnvelope(callerCtx, runCtx context.Context, msgCh <-chan string) (string, error) {
	select {
	case payload := <-msgCh:
		return payload, nil
	case <-runCtx.Done():
		if runCtx.Err() == context.DeadlineExceeded {
			return "", newError(CodeRenderTimeout, fmt.Sprintf("no render result within %s", r.timeout), runCtx.Err())
		}
		return "", newError(CodeBrowserUnavailable, "render target closed before completing", runCtx.Err())
	case <-callerCtx.Done():
		return "", newError(CodeRenderFailure, "render canceled by caller", callerCtx.Err())
	}
}

// resultFromEnvelope converts the page's posted envelope into a Result or a
// typed error.
func resultFromEnvelope(payload string) (Result, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return Result{}, newError(CodeRenderFailure, "invalid render envelope", err)
	}
	if !env.OK {
		code := env.ErrorCode
		if code == "" {
			code = CodeRenderFailure
		}
		return Result{}, newError(code, env.ErrorMessage, nil)
	}
	if !strings.HasPrefix(env.DataURL, dataurl.PNGPrefix) {
		return Result{}, newError(CodeRenderFailure, "render envelope does not carry a PNG data URL", nil)
	}

	_, width, height, err := dataurl.DecodePNG(env.DataURL)
	if err != nil {
		return Result{}, newError(CodeRenderFailure, "decode rendered PNG", err)
	}
	return Result{DataURL: env.DataURL, Width: width, Height: height}, nil
}

// classifyRunError maps setup/navigation/evaluation failures onto the coded
// taxonomy. Setup faults are reported, never fatal to the process.
func classifyRunError(runCtx context.Context, err error) error {
	if runCtx.Err() == context.DeadlineExceeded {
		return newError(CodeRenderTimeout, "page did not load in time", err)
	}
	var exc *runtime.ExceptionDetails
	if errors.As(err, &exc) {
		return newError(CodePageError, "render script raised: "+exc.Error(), nil)
	}
	return newError(CodeBrowserUnavailable, "browser session failed", err)
}

// emptyChart catches payloads that carry no chart at all. API clients post
// the chart as a JSON value, so an empty document arrives as the encoded
// literal `""` or `null` rather than a blank string.
func emptyChart(chartJSON string) bool {
	switch strings.TrimSpace(chartJSON) {
	case "", `""`, "null":
		return true
	}
	return false
}

func jsString(v string) string {
	b, _ := json.Marshal(v)
	return string(b)
}

// jsInvokeRender builds the call that hands the payload to the page. The
// payload goes through json.Marshal, so arbitrary chart specs (quotes,
// backticks, newlines) cannot break out of the script literal.
func jsInvokeRender(chartJSON string, dpi int) string {
	return fmt.Sprintf("renderBokeh(%s, %d)", jsString(chartJSON), dpi)
}
