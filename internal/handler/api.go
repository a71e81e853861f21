package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
	"github.com/hiroki-koketsu/go-otel-todo/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// APIHandler serves the JSON task API.
type APIHandler struct {
	store   TaskStore
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(store TaskStore, logger *slog.Logger, metrics *telemetry.Metrics) *APIHandler {
	return &APIHandler{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with task routes.
func (h *APIHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.GetByID)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/toggle", h.Toggle)

	return r
}

// List returns all tasks.
func (h *APIHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "APIHandler.List")
	defer span.End()

	tasks := h.store.List(ctx)

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)))

	respondJSON(w, http.StatusOK, tasks)
	h.metrics.Record(ctx, "GET", "/api/v1/tasks", http.StatusOK, start)
}

// Create adds a new task.
func (h *APIHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "APIHandler.Create")
	defer span.End()

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.metrics.Record(ctx, "POST", "/api/v1/tasks", http.StatusBadRequest, start)
		return
	}

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		h.respondInvalid(w, err)
		h.metrics.Record(ctx, "POST", "/api/v1/tasks", http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "creating task", slog.String("title", req.Title))

	task := h.store.Create(ctx, req)

	span.SetAttributes(attribute.Int("task.id", task.ID))
	h.logger.InfoContext(ctx, "task created", slog.Int("id", task.ID))

	respondJSON(w, http.StatusCreated, task)
	h.metrics.Record(ctx, "POST", "/api/v1/tasks", http.StatusCreated, start)
}

// GetByID returns a task by ID.
func (h *APIHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	rawID := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "APIHandler.GetByID",
		trace.WithAttributes(attribute.String("task.id", rawID)),
	)
	defer span.End()

	id, ok := pathID(r)
	var task model.Task
	if ok {
		task, ok = h.store.GetByID(ctx, id)
	}
	if !ok {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", rawID))
		respondError(w, http.StatusNotFound, "task not found")
		h.metrics.Record(ctx, "GET", "/api/v1/tasks/{id}", http.StatusNotFound, start)
		return
	}

	h.logger.InfoContext(ctx, "task retrieved", slog.Int("id", id))

	respondJSON(w, http.StatusOK, task)
	h.metrics.Record(ctx, "GET", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// Update replaces the editable fields of an existing task. The id in the
// path wins over any id in the body.
func (h *APIHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	rawID := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "APIHandler.Update",
		trace.WithAttributes(attribute.String("task.id", rawID)),
	)
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", rawID))
		respondError(w, http.StatusNotFound, "task not found")
		h.metrics.Record(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusNotFound, start)
		return
	}

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid request body", slog.Any("error", err))
		respondError(w, http.StatusBadRequest, "invalid request body")
		h.metrics.Record(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusBadRequest, start)
		return
	}
	req.ID = id

	if err := req.Validate(); err != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("error", err))
		h.respondInvalid(w, err)
		h.metrics.Record(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusBadRequest, start)
		return
	}

	h.logger.InfoContext(ctx, "updating task", slog.Int("id", id))

	if !h.store.Update(ctx, req) {
		h.logger.WarnContext(ctx, "task not found", slog.Int("id", id))
		respondError(w, http.StatusNotFound, "task not found")
		h.metrics.Record(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusNotFound, start)
		return
	}

	task, _ := h.store.GetByID(ctx, id)
	h.logger.InfoContext(ctx, "task updated", slog.Int("id", id))

	respondJSON(w, http.StatusOK, task)
	h.metrics.Record(ctx, "PUT", "/api/v1/tasks/{id}", http.StatusOK, start)
}

// Delete removes a task.
func (h *APIHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	rawID := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "APIHandler.Delete",
		trace.WithAttributes(attribute.String("task.id", rawID)),
	)
	defer span.End()

	h.logger.InfoContext(ctx, "deleting task", slog.String("id", rawID))

	id, ok := pathID(r)
	if !ok || !h.store.Delete(ctx, id) {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", rawID))
		respondError(w, http.StatusNotFound, "task not found")
		h.metrics.Record(ctx, "DELETE", "/api/v1/tasks/{id}", http.StatusNotFound, start)
		return
	}

	h.logger.InfoContext(ctx, "task deleted", slog.Int("id", id))

	w.WriteHeader(http.StatusNoContent)
	h.metrics.Record(ctx, "DELETE", "/api/v1/tasks/{id}", http.StatusNoContent, start)
}

// Toggle flips the completion flag of a task and returns the result.
func (h *APIHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	rawID := chi.URLParam(r, "id")

	ctx, span := tracer.Start(ctx, "APIHandler.Toggle",
		trace.WithAttributes(attribute.String("task.id", rawID)),
	)
	defer span.End()

	id, ok := pathID(r)
	if !ok || !h.store.ToggleComplete(ctx, id) {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", rawID))
		respondError(w, http.StatusNotFound, "task not found")
		h.metrics.Record(ctx, "POST", "/api/v1/tasks/{id}/toggle", http.StatusNotFound, start)
		return
	}

	task, _ := h.store.GetByID(ctx, id)
	h.logger.InfoContext(ctx, "task toggled", slog.Int("id", id), slog.Bool("completed", task.IsCompleted))

	respondJSON(w, http.StatusOK, task)
	h.metrics.Record(ctx, "POST", "/api/v1/tasks/{id}/toggle", http.StatusOK, start)
}

func (h *APIHandler) respondInvalid(w http.ResponseWriter, err error) {
	var ve model.ValidationError
	if errors.As(err, &ve) {
		respondValidation(w, ve)
		return
	}
	respondError(w, http.StatusBadRequest, err.Error())
}
