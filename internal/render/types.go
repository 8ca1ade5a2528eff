package render

import (
	"encoding/json"

	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
)

// DefaultDPI is the canvas-native resolution; rendering at it performs no
// rescale.
const DefaultDPI = 96

// Request describes one chart render. The chart spec is a Bokeh JSON item
// and is passed through opaque; only the browser's JSON parser reads it.
type Request struct {
	// ChartJSON is the serialized Bokeh JSON item (must carry a root_id).
	ChartJSON string
	// DPI is the target resolution; 0 means DefaultDPI.
	DPI int
	// Resource selects where BokehJS bundles come from. Zero value falls
	// back to the default CDN release.
	Resource bokeh.Resource
}

// Result is the captured chart image.
type Result struct {
	// DataURL is the rendered PNG as a data:image/png;base64 URL.
	DataURL string `json:"data_url"`
	// RootID is the chart root identifier, when present in the spec.
	RootID string `json:"root_id,omitempty"`
	// Width and Height are the pixel dimensions of the decoded PNG.
	Width  int `json:"width"`
	Height int `json:"height"`
	// DPI is the resolution the chart was rendered at.
	DPI int `json:"dpi"`
}

// envelope is the single message the page posts back through the ipc
// binding. Shape mirrors the in-page renderer's postEnvelope calls.
type envelope struct {
	OK           bool   `json:"ok"`
	DataURL      string `json:"data_url,omitempty"`
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// rootID pulls root_id out of a chart spec for result metadata. The spec
// stays otherwise unparsed.
func rootID(chartJSON string) string {
	var probe struct {
		RootID string `json:"root_id"`
	}
	if err := json.Unmarshal([]byte(chartJSON), &probe); err != nil {
		return ""
	}
	return probe.RootID
}
