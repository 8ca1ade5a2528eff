// Package api exposes the render service over HTTP with an OpenAPI surface.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/bokeh_render/internal/render"
	"github.com/dgnsrekt/bokeh_render/internal/service"
	"github.com/dgnsrekt/bokeh_render/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Service is the operation surface the API exposes.
type Service interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
	RenderPNG(ctx context.Context, req render.Request) ([]byte, render.Result, error)
	RenderAndStore(ctx context.Context, req render.Request, notes string) (store.RenderMeta, render.Result, error)
	ListRenders(ctx context.Context) ([]store.RenderMeta, error)
	GetRender(ctx context.Context, id string) (store.RenderMeta, error)
	ReadRenderImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteRender(ctx context.Context, id string) error
	DeepHealthCheck(ctx context.Context) (service.DeepHealthResult, error)
}

// NewServer builds the HTTP handler for the render API.
func NewServer(svc Service) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Bokeh Render API", "1.0.0")
	cfg.DocsPath = ""
	humaAPI := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})

	registerHealthHandlers(humaAPI, svc)
	registerRenderHandlers(humaAPI, svc)
	registerStoreHandlers(humaAPI, svc)

	return router
}

// mapErr translates coded render errors into stable HTTP statuses.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *render.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case render.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case render.CodeRenderNotFound:
			return huma.Error404NotFound(coded.Message)
		case render.CodeRenderTimeout:
			return huma.Error504GatewayTimeout(coded.Message)
		case render.CodeBrowserUnavailable:
			return huma.Error502BadGateway(coded.Message)
		case render.CodePageError:
			return huma.Error422UnprocessableEntity(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
