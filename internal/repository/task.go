package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/hiroki-koketsu/go-otel-todo/internal/repository")

// Clock returns the current time.
type Clock func() time.Time

// Option configures a TaskRepository.
type Option func(*TaskRepository)

// WithClock sets the clock used to stamp CreatedAt on new tasks.
func WithClock(c Clock) Option {
	return func(r *TaskRepository) {
		r.now = c
	}
}

// WithSeed preloads tasks. Their IDs are kept as given and the ID counter
// continues above the highest one.
func WithSeed(tasks ...model.Task) Option {
	return func(r *TaskRepository) {
		for _, t := range tasks {
			r.tasks = append(r.tasks, t)
			if t.ID >= r.nextID {
				r.nextID = t.ID + 1
			}
		}
	}
}

// TaskRepository provides an in-memory storage for tasks.
type TaskRepository struct {
	mu     sync.RWMutex
	tasks  []model.Task // insertion order
	nextID int
	now    Clock
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(opts ...Option) *TaskRepository {
	r := &TaskRepository{
		nextID: 1,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create stores a new task. The ID and CreatedAt of t are ignored and
// assigned by the repository.
func (r *TaskRepository) Create(ctx context.Context, t model.Task) model.Task {
	_, span := tracer.Start(ctx, "TaskRepository.Create",
		trace.WithAttributes(attribute.String("task.title", t.Title)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	t.ID = r.nextID
	r.nextID++
	t.CreatedAt = r.now()

	r.tasks = append(r.tasks, t)

	span.SetAttributes(attribute.Int("task.id", t.ID))
	return t
}

// GetByID retrieves a task by its ID.
func (r *TaskRepository) GetByID(ctx context.Context, id int) (model.Task, bool) {
	_, span := tracer.Start(ctx, "TaskRepository.GetByID",
		trace.WithAttributes(attribute.Int("task.id", id)),
	)
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	span.SetAttributes(attribute.Bool("task.found", i >= 0))
	if i < 0 {
		return model.Task{}, false
	}
	return r.tasks[i], true
}

// List returns all tasks, most recently created first.
func (r *TaskRepository) List(ctx context.Context) []model.Task {
	_, span := tracer.Start(ctx, "TaskRepository.List")
	defer span.End()

	r.mu.RLock()
	tasks := slices.Clone(r.tasks)
	r.mu.RUnlock()

	slices.SortStableFunc(tasks, func(a, b model.Task) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks
}

// Update overwrites the title, description and completion flag of the task
// with t.ID. It reports false if no such task exists.
func (r *TaskRepository) Update(ctx context.Context, t model.Task) bool {
	_, span := tracer.Start(ctx, "TaskRepository.Update",
		trace.WithAttributes(attribute.Int("task.id", t.ID)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(t.ID)
	span.SetAttributes(attribute.Bool("task.found", i >= 0))
	if i < 0 {
		return false
	}

	existing := &r.tasks[i]
	existing.Title = t.Title
	existing.Description = t.Description
	existing.IsCompleted = t.IsCompleted
	return true
}

// Delete removes a task from the repository.
func (r *TaskRepository) Delete(ctx context.Context, id int) bool {
	_, span := tracer.Start(ctx, "TaskRepository.Delete",
		trace.WithAttributes(attribute.Int("task.id", id)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	span.SetAttributes(attribute.Bool("task.found", i >= 0))
	if i < 0 {
		return false
	}

	r.tasks = slices.Delete(r.tasks, i, i+1)
	return true
}

// ToggleComplete flips the completion flag of a task.
func (r *TaskRepository) ToggleComplete(ctx context.Context, id int) bool {
	_, span := tracer.Start(ctx, "TaskRepository.ToggleComplete",
		trace.WithAttributes(attribute.Int("task.id", id)),
	)
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	span.SetAttributes(attribute.Bool("task.found", i >= 0))
	if i < 0 {
		return false
	}

	r.tasks[i].IsCompleted = !r.tasks[i].IsCompleted
	return true
}

// Count returns the current number of tasks.
func (r *TaskRepository) Count() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.tasks))
}

// indexOf must be called with r.mu held.
func (r *TaskRepository) indexOf(id int) int {
	return slices.IndexFunc(r.tasks, func(t model.Task) bool {
		return t.ID == id
	})
}
