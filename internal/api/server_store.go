package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/bokeh_render/internal/store"
)

func registerStoreHandlers(api huma.API, svc Service) {
	type listRendersOutput struct {
		Body struct {
			Renders []store.RenderMeta `json:"renders"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-renders", Method: http.MethodGet, Path: "/api/v1/renders", Summary: "List persisted renders", Tags: []string{"Renders"}},
		func(ctx context.Context, input *struct{}) (*listRendersOutput, error) {
			metas, err := svc.ListRenders(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listRendersOutput{}
			out.Body.Renders = metas
			if out.Body.Renders == nil {
				out.Body.Renders = []store.RenderMeta{}
			}
			return out, nil
		})

	type renderIDInput struct {
		RenderID string `path:"render_id"`
	}
	type getRenderOutput struct {
		Body store.RenderMeta
	}
	huma.Register(api, huma.Operation{OperationID: "get-render-metadata", Method: http.MethodGet, Path: "/api/v1/renders/{render_id}/metadata", Summary: "Get render metadata", Tags: []string{"Renders"}},
		func(ctx context.Context, input *renderIDInput) (*getRenderOutput, error) {
			meta, err := svc.GetRender(ctx, input.RenderID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &getRenderOutput{}
			out.Body = meta
			return out, nil
		})

	type renderImageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{
		OperationID: "get-render-image",
		Method:      http.MethodGet,
		Path:        "/api/v1/renders/{render_id}/image",
		Summary:     "Get render image",
		Tags:        []string{"Renders"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "Persisted render image",
				Content: map[string]*huma.MediaType{
					"image/png": {
						Schema: &huma.Schema{Type: "string", Format: "binary"},
					},
				},
			},
		},
	}, func(ctx context.Context, input *renderIDInput) (*renderImageOutput, error) {
		data, format, err := svc.ReadRenderImage(ctx, input.RenderID)
		if err != nil {
			return nil, mapErr(err)
		}
		ct := "image/png"
		if format == "jpeg" {
			ct = "image/jpeg"
		}
		return &renderImageOutput{ContentType: ct, Body: data}, nil
	})

	type deleteRenderOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "delete-render", Method: http.MethodDelete, Path: "/api/v1/renders/{render_id}", Summary: "Delete a persisted render", Tags: []string{"Renders"}},
		func(ctx context.Context, input *renderIDInput) (*deleteRenderOutput, error) {
			if err := svc.DeleteRender(ctx, input.RenderID); err != nil {
				return nil, mapErr(err)
			}
			out := &deleteRenderOutput{}
			out.Body.Status = "deleted"
			return out, nil
		})
}
