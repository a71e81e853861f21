package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
	"github.com/hiroki-koketsu/go-otel-todo/internal/telemetry"
	"github.com/hiroki-koketsu/go-otel-todo/internal/view"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const listPath = "/todo"

// TodoHandler serves the server-rendered task pages.
type TodoHandler struct {
	store   TaskStore
	views   *view.Renderer
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(store TaskStore, views *view.Renderer, logger *slog.Logger, metrics *telemetry.Metrics) *TodoHandler {
	return &TodoHandler{
		store:   store,
		views:   views,
		logger:  logger,
		metrics: metrics,
	}
}

// Routes returns the chi router with the task pages, to be mounted at /todo.
func (h *TodoHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Index)
	r.Get("/details/{id}", h.Details)
	r.Get("/create", h.CreateForm)
	r.Post("/create", h.Create)
	r.Get("/edit/{id}", h.EditForm)
	r.Post("/edit/{id}", h.Edit)
	r.Get("/delete/{id}", h.DeleteForm)
	r.Post("/delete/{id}", h.DeleteConfirmed)
	r.Post("/togglecomplete/{id}", h.ToggleComplete)

	return r
}

// Index lists every task.
func (h *TodoHandler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TodoHandler.Index")
	defer span.End()

	tasks := h.store.List(ctx)
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	h.logger.InfoContext(ctx, "tasks listed", slog.Int("count", len(tasks)))

	status := h.render(ctx, w, http.StatusOK, view.Index, view.ListPage{Tasks: tasks})
	h.metrics.Record(ctx, r.Method, "/todo", status, start)
}

// Details shows a single task.
func (h *TodoHandler) Details(w http.ResponseWriter, r *http.Request) {
	h.showTask(w, r, "TodoHandler.Details", "/todo/details/{id}", view.Details)
}

// EditForm shows the edit form for a task.
func (h *TodoHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	h.showTask(w, r, "TodoHandler.EditForm", "/todo/edit/{id}", view.Edit)
}

// DeleteForm asks for confirmation before deleting a task.
func (h *TodoHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	h.showTask(w, r, "TodoHandler.DeleteForm", "/todo/delete/{id}", view.Delete)
}

func (h *TodoHandler) showTask(w http.ResponseWriter, r *http.Request, spanName, route, page string) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, spanName,
		trace.WithAttributes(attribute.String("task.id", chi.URLParam(r, "id"))),
	)
	defer span.End()

	id, ok := pathID(r)
	var task model.Task
	if ok {
		task, ok = h.store.GetByID(ctx, id)
	}
	if !ok {
		h.logger.WarnContext(ctx, "task not found", slog.String("id", chi.URLParam(r, "id")))
		status := h.notFound(ctx, w)
		h.metrics.Record(ctx, r.Method, route, status, start)
		return
	}

	var data any = view.TaskPage{Task: task}
	if page == view.Edit {
		data = view.FormPage{Task: task}
	}

	status := h.render(ctx, w, http.StatusOK, page, data)
	h.metrics.Record(ctx, r.Method, route, status, start)
}

// CreateForm shows an empty task form.
func (h *TodoHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	status := h.render(ctx, w, http.StatusOK, view.Create, view.FormPage{})
	h.metrics.Record(ctx, r.Method, "/todo/create", status, start)
}

// Create stores a submitted task and redirects to the list. An invalid
// submission is shown again with its validation messages.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TodoHandler.Create")
	defer span.End()

	task, err := taskFromForm(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid form body", slog.Any("error", err))
		http.Error(w, "invalid form body", http.StatusBadRequest)
		h.metrics.Record(ctx, r.Method, "/todo/create", http.StatusBadRequest, start)
		return
	}

	if errs := validationMessages(task); errs != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Any("fields", errs))
		status := h.render(ctx, w, http.StatusOK, view.Create, view.FormPage{Task: task, Errors: errs})
		h.metrics.Record(ctx, r.Method, "/todo/create", status, start)
		return
	}

	created := h.store.Create(ctx, task)
	span.SetAttributes(attribute.Int("task.id", created.ID))
	h.logger.InfoContext(ctx, "task created", slog.Int("id", created.ID))

	h.redirectToList(w, r)
	h.metrics.Record(ctx, r.Method, "/todo/create", http.StatusFound, start)
}

// Edit applies a submitted edit. The id in the path must match the id in
// the form, otherwise nothing is touched and the task is reported missing.
func (h *TodoHandler) Edit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TodoHandler.Edit",
		trace.WithAttributes(attribute.String("task.id", chi.URLParam(r, "id"))),
	)
	defer span.End()

	task, err := taskFromForm(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid form body", slog.Any("error", err))
		http.Error(w, "invalid form body", http.StatusBadRequest)
		h.metrics.Record(ctx, r.Method, "/todo/edit/{id}", http.StatusBadRequest, start)
		return
	}

	id, ok := pathID(r)
	if !ok || id != task.ID {
		h.logger.WarnContext(ctx, "task id mismatch",
			slog.String("path_id", chi.URLParam(r, "id")),
			slog.Int("form_id", task.ID),
		)
		status := h.notFound(ctx, w)
		h.metrics.Record(ctx, r.Method, "/todo/edit/{id}", status, start)
		return
	}

	if errs := validationMessages(task); errs != nil {
		h.logger.WarnContext(ctx, "validation failed", slog.Int("id", id), slog.Any("fields", errs))
		status := h.render(ctx, w, http.StatusOK, view.Edit, view.FormPage{Task: task, Errors: errs})
		h.metrics.Record(ctx, r.Method, "/todo/edit/{id}", status, start)
		return
	}

	if !h.store.Update(ctx, task) {
		h.logger.WarnContext(ctx, "task not found", slog.Int("id", id))
		status := h.notFound(ctx, w)
		h.metrics.Record(ctx, r.Method, "/todo/edit/{id}", status, start)
		return
	}

	h.logger.InfoContext(ctx, "task updated", slog.Int("id", id))
	h.redirectToList(w, r)
	h.metrics.Record(ctx, r.Method, "/todo/edit/{id}", http.StatusFound, start)
}

// DeleteConfirmed deletes a task. It redirects to the list whether or not
// the task existed.
func (h *TodoHandler) DeleteConfirmed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TodoHandler.DeleteConfirmed",
		trace.WithAttributes(attribute.String("task.id", chi.URLParam(r, "id"))),
	)
	defer span.End()

	if id, ok := pathID(r); ok {
		deleted := h.store.Delete(ctx, id)
		span.SetAttributes(attribute.Bool("task.found", deleted))
		h.logger.InfoContext(ctx, "task delete requested", slog.Int("id", id), slog.Bool("deleted", deleted))
	}

	h.redirectToList(w, r)
	h.metrics.Record(ctx, r.Method, "/todo/delete/{id}", http.StatusFound, start)
}

// ToggleComplete flips the completion flag of a task. It redirects to the
// list whether or not the task existed.
func (h *TodoHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ctx, span := tracer.Start(ctx, "TodoHandler.ToggleComplete",
		trace.WithAttributes(attribute.String("task.id", chi.URLParam(r, "id"))),
	)
	defer span.End()

	if id, ok := pathID(r); ok {
		toggled := h.store.ToggleComplete(ctx, id)
		span.SetAttributes(attribute.Bool("task.found", toggled))
		h.logger.InfoContext(ctx, "task toggle requested", slog.Int("id", id), slog.Bool("toggled", toggled))
	}

	h.redirectToList(w, r)
	h.metrics.Record(ctx, r.Method, "/todo/togglecomplete/{id}", http.StatusFound, start)
}

func (h *TodoHandler) redirectToList(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, listPath, http.StatusFound)
}

func (h *TodoHandler) notFound(ctx context.Context, w http.ResponseWriter) int {
	return h.render(ctx, w, http.StatusNotFound, view.NotFound, nil)
}

// render writes the page and returns the status actually sent.
func (h *TodoHandler) render(ctx context.Context, w http.ResponseWriter, status int, page string, data any) int {
	return renderPage(ctx, h.views, h.logger, w, status, page, data)
}

func renderPage(ctx context.Context, views *view.Renderer, logger *slog.Logger, w http.ResponseWriter, status int, page string, data any) int {
	if err := views.Render(w, status, page, data); err != nil {
		logger.ErrorContext(ctx, "failed to render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return http.StatusInternalServerError
	}
	return status
}

// taskFromForm reads a task from a submitted form. A missing or malformed
// id reads as zero.
func taskFromForm(r *http.Request) (model.Task, error) {
	if err := r.ParseForm(); err != nil {
		return model.Task{}, err
	}

	id, _ := strconv.Atoi(r.PostForm.Get("id"))

	completed := false
	for _, v := range r.PostForm["isCompleted"] {
		if v == "on" {
			completed = true
			break
		}
		if b, err := strconv.ParseBool(v); err == nil && b {
			completed = true
			break
		}
	}

	return model.Task{
		ID:          id,
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		IsCompleted: completed,
	}, nil
}

// validationMessages returns the field messages for an invalid task, or nil.
func validationMessages(t model.Task) map[string]string {
	err := t.Validate()
	if err == nil {
		return nil
	}
	var ve model.ValidationError
	if errors.As(err, &ve) {
		return ve.Fields
	}
	return map[string]string{"title": err.Error()}
}
