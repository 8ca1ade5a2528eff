// Package service wraps render operations behind the HTTP API surface.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/dgnsrekt/bokeh_render/internal/cdputil"
	"github.com/dgnsrekt/bokeh_render/internal/dataurl"
	"github.com/dgnsrekt/bokeh_render/internal/render"
	"github.com/dgnsrekt/bokeh_render/internal/store"
	"github.com/google/uuid"
)

// DeepHealthResult reports browser-level liveness details.
type DeepHealthResult struct {
	Status          string `json:"status"`
	BrowserProduct  string `json:"browser_product,omitempty"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
	UserAgent       string `json:"user_agent,omitempty"`
	OpenPages       int    `json:"open_pages"`
}

// Service wraps chart rendering and render persistence.
type Service struct {
	renderer *render.Renderer
	renders  *store.Store
	cdpURL   string
}

func NewService(renderer *render.Renderer, renders *store.Store, cdpURL string) *Service {
	return &Service{renderer: renderer, renders: renders, cdpURL: cdpURL}
}

// Render performs one chart render and returns the captured result.
func (s *Service) Render(ctx context.Context, req render.Request) (render.Result, error) {
	return s.renderer.Render(ctx, req)
}

// RenderPNG renders and decodes the result to raw PNG bytes.
func (s *Service) RenderPNG(ctx context.Context, req render.Request) ([]byte, render.Result, error) {
	result, err := s.renderer.Render(ctx, req)
	if err != nil {
		return nil, render.Result{}, err
	}
	data, _, _, err := dataurl.DecodePNG(result.DataURL)
	if err != nil {
		return nil, render.Result{}, &render.CodedError{Code: render.CodeRenderFailure, Message: "decode rendered PNG", Cause: err}
	}
	return data, result, nil
}

// RenderAndStore renders, persists the PNG with metadata, and returns both.
func (s *Service) RenderAndStore(ctx context.Context, req render.Request, notes string) (store.RenderMeta, render.Result, error) {
	data, result, err := s.RenderPNG(ctx, req)
	if err != nil {
		return store.RenderMeta{}, render.Result{}, err
	}

	meta := store.RenderMeta{
		ID:           uuid.NewString(),
		RootID:       result.RootID,
		Format:       "png",
		Width:        result.Width,
		Height:       result.Height,
		DPI:          result.DPI,
		ResourceKind: string(req.Resource.Normalize().Kind),
		SizeBytes:    len(data),
		CreatedAt:    time.Now().UTC(),
		Notes:        notes,
	}
	if err := s.renders.Save(meta, data); err != nil {
		return store.RenderMeta{}, render.Result{}, &render.CodedError{Code: render.CodeRenderFailure, Message: "persist render", Cause: err}
	}
	return meta, result, nil
}

func (s *Service) ListRenders(ctx context.Context) ([]store.RenderMeta, error) {
	metas, err := s.renders.List()
	if err != nil {
		return nil, &render.CodedError{Code: render.CodeRenderFailure, Message: "list renders", Cause: err}
	}
	return metas, nil
}

func (s *Service) GetRender(ctx context.Context, id string) (store.RenderMeta, error) {
	meta, err := s.renders.Get(id)
	if err != nil {
		return store.RenderMeta{}, storeErr(err)
	}
	return meta, nil
}

func (s *Service) ReadRenderImage(ctx context.Context, id string) ([]byte, string, error) {
	data, format, err := s.renders.ReadImage(id)
	if err != nil {
		return nil, "", storeErr(err)
	}
	return data, format, nil
}

func (s *Service) DeleteRender(ctx context.Context, id string) error {
	if err := s.renders.Delete(id); err != nil {
		return storeErr(err)
	}
	return nil
}

// DeepHealthCheck probes the browser over a raw CDP connection.
func (s *Service) DeepHealthCheck(ctx context.Context) (DeepHealthResult, error) {
	probe := cdputil.NewRawClient(s.cdpURL)
	if err := probe.Connect(ctx); err != nil {
		return DeepHealthResult{}, &render.CodedError{Code: render.CodeBrowserUnavailable, Message: "connect to browser failed", Cause: err}
	}
	defer probe.Close()

	version, err := probe.Version(ctx)
	if err != nil {
		return DeepHealthResult{}, &render.CodedError{Code: render.CodeBrowserUnavailable, Message: "browser version probe failed", Cause: err}
	}

	pages := 0
	targets, err := probe.ListTargets(ctx)
	if err == nil {
		for _, t := range targets {
			if t.Type == "page" {
				pages++
			}
		}
	}

	return DeepHealthResult{
		Status:          "ok",
		BrowserProduct:  version.Product,
		ProtocolVersion: version.ProtocolVersion,
		UserAgent:       version.UserAgent,
		OpenPages:       pages,
	}, nil
}

// storeErr maps store failures onto the coded taxonomy so the API returns
// stable statuses.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "not found") {
		return &render.CodedError{Code: render.CodeRenderNotFound, Message: msg}
	}
	if strings.Contains(msg, "invalid render id") {
		return &render.CodedError{Code: render.CodeValidation, Message: msg}
	}
	return &render.CodedError{Code: render.CodeRenderFailure, Message: msg}
}
