package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/hiroki-koketsu/go-otel-todo/internal/view"
	"go.opentelemetry.io/otel/trace"
)

// HomeHandler serves the landing, privacy, error and not-found pages.
type HomeHandler struct {
	views  *view.Renderer
	logger *slog.Logger
}

// NewHomeHandler creates a new HomeHandler.
func NewHomeHandler(views *view.Renderer, logger *slog.Logger) *HomeHandler {
	return &HomeHandler{views: views, logger: logger}
}

// Index renders the landing page.
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	renderPage(r.Context(), h.views, h.logger, w, http.StatusOK, view.Home, nil)
}

// Privacy renders the privacy page.
func (h *HomeHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	renderPage(r.Context(), h.views, h.logger, w, http.StatusOK, view.Privacy, nil)
}

// Error renders the error page with the id of the current request.
func (h *HomeHandler) Error(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	renderPage(ctx, h.views, h.logger, w, http.StatusOK, view.Error, view.ErrorPage{RequestID: requestID(ctx)})
}

// NotFound renders the not-found page for unknown routes.
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPage(r.Context(), h.views, h.logger, w, http.StatusNotFound, view.NotFound, nil)
}

// requestID prefers the trace id of the active span and falls back to the
// id assigned by the RequestID middleware.
func requestID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return middleware.GetReqID(ctx)
}
