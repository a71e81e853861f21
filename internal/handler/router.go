package handler

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hiroki-koketsu/go-otel-todo/internal/telemetry"
	"github.com/hiroki-koketsu/go-otel-todo/internal/view"
)

// NewRouter wires every handler onto a chi router with the standard
// middleware stack.
func NewRouter(store TaskStore, views *view.Renderer, logger *slog.Logger, metrics *telemetry.Metrics) chi.Router {
	home := NewHomeHandler(views, logger)
	todo := NewTodoHandler(store, views, logger, metrics)
	api := NewAPIHandler(store, logger, metrics)

	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)
	r.Use(middleware.Timeout(60 * time.Second))

	r.NotFound(home.NotFound)

	// Health check endpoint (excluded from tracing)
	r.Get("/health", Health)

	r.Get("/", home.Index)
	r.Get("/privacy", home.Privacy)
	r.Get("/error", home.Error)

	r.Mount("/todo", todo.Routes())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/tasks", api.Routes())
	})

	return r
}
