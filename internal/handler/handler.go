// Package handler implements the HTTP handlers of the todo application: the
// server-rendered task pages, the JSON API and the home pages.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/go-otel-todo/internal/handler")

// TaskStore is the task storage used by the handlers.
type TaskStore interface {
	List(ctx context.Context) []model.Task
	GetByID(ctx context.Context, id int) (model.Task, bool)
	Create(ctx context.Context, t model.Task) model.Task
	Update(ctx context.Context, t model.Task) bool
	Delete(ctx context.Context, id int) bool
	ToggleComplete(ctx context.Context, id int) bool
}

// pathID parses the {id} URL parameter. Anything other than a positive
// integer is reported as not ok, which callers treat like an unknown task.
func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Health returns a health check response.
func Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidation(w http.ResponseWriter, ve model.ValidationError) {
	respondJSON(w, http.StatusBadRequest, map[string]any{
		"error":  ve.Error(),
		"fields": ve.Fields,
	})
}
