package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/bokeh_render/internal/bokeh"
	"github.com/dgnsrekt/bokeh_render/internal/render"
	"github.com/dgnsrekt/bokeh_render/internal/store"
)

// renderInput carries one chart render request. The chart field is the
// Bokeh item JSON produced by bokeh.embed.json_item.
type renderInput struct {
	Body struct {
		Chart    json.RawMessage `json:"chart" doc:"Bokeh chart JSON (output of bokeh.embed.json_item)"`
		DPI      int             `json:"dpi,omitempty" doc:"Target DPI; 0 selects the 96 DPI default"`
		Resource *struct {
			Kind    string `json:"kind,omitempty" doc:"BokehJS source: cdn, local_folder or local_file" enum:"cdn,local_folder,local_file"`
			Version string `json:"version,omitempty" doc:"BokehJS version for CDN resources"`
			Path    string `json:"path,omitempty" doc:"Directory or file path for local resources"`
		} `json:"resource,omitempty"`
		Notes string `json:"notes,omitempty" doc:"Free-form note stored with persisted renders"`
	}
}

func (in *renderInput) request() render.Request {
	req := render.Request{
		ChartJSON: string(in.Body.Chart),
		DPI:       in.Body.DPI,
	}
	if r := in.Body.Resource; r != nil {
		req.Resource = bokeh.Resource{
			Kind:    bokeh.ResourceKind(r.Kind),
			Version: r.Version,
			Path:    r.Path,
		}
	}
	return req
}

func registerRenderHandlers(api huma.API, svc Service) {
	type renderOutput struct {
		Body render.Result
	}
	huma.Register(api, huma.Operation{OperationID: "render-chart", Method: http.MethodPost, Path: "/api/v1/render", Summary: "Render a chart to a PNG data URL", Tags: []string{"Render"}},
		func(ctx context.Context, input *renderInput) (*renderOutput, error) {
			result, err := svc.Render(ctx, input.request())
			if err != nil {
				return nil, mapErr(err)
			}
			out := &renderOutput{}
			out.Body = result
			return out, nil
		})

	type renderPNGOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "render-chart-png",
		Method:      http.MethodPost,
		Path:        "/api/v1/render/png",
		Summary:     "Render a chart and return the raw PNG bytes",
		Tags:        []string{"Render"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Rendered chart image",
				Content: map[string]*huma.MediaType{
					"image/png": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *renderInput) (*renderPNGOutput, error) {
		data, _, err := svc.RenderPNG(ctx, input.request())
		if err != nil {
			return nil, mapErr(err)
		}
		return &renderPNGOutput{ContentType: "image/png", Body: data}, nil
	})

	type renderStoreOutput struct {
		Body struct {
			Render store.RenderMeta `json:"render"`
			Result render.Result    `json:"result"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "render-and-store-chart", Method: http.MethodPost, Path: "/api/v1/render/store", Summary: "Render a chart and persist the PNG", Tags: []string{"Render"}},
		func(ctx context.Context, input *renderInput) (*renderStoreOutput, error) {
			meta, result, err := svc.RenderAndStore(ctx, input.request(), input.Body.Notes)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &renderStoreOutput{}
			out.Body.Render = meta
			out.Body.Result = result
			return out, nil
		})
}
