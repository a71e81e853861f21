package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoIndex(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/todo")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	newest := strings.Index(body, "Write Documentation")
	oldest := strings.Index(body, "Learn Go")
	require.NotEqual(t, -1, newest)
	require.NotEqual(t, -1, oldest)
	assert.Less(t, newest, oldest, "most recent task should be listed first")
}

func TestTodoShowPages(t *testing.T) {
	env := newTestEnv(t)

	for _, prefix := range []string{"/todo/details/", "/todo/edit/", "/todo/delete/"} {
		t.Run(prefix, func(t *testing.T) {
			rec := env.get(prefix + "2")
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), "Build TODO App")

			assert.Equal(t, http.StatusNotFound, env.get(prefix+"99").Code)
			assert.Equal(t, http.StatusNotFound, env.get(prefix+"abc").Code)
		})
	}
}

func TestTodoCreateForm(t *testing.T) {
	env := newTestEnv(t)

	rec := env.get("/todo/create")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/todo/create"`)
}

func TestTodoCreate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/todo/create", url.Values{
		"title":       {"X"},
		"description": {"from the form"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todo", rec.Header().Get("Location"))
	assert.Equal(t, int64(4), env.repo.Count())

	created, ok := env.repo.GetByID(context.Background(), 4)
	require.True(t, ok)
	assert.Equal(t, "X", created.Title)
	assert.Equal(t, "from the form", created.Description)
	assert.False(t, created.IsCompleted)
}

func TestTodoCreate_Checkbox(t *testing.T) {
	for _, value := range []string{"true", "on"} {
		env := newTestEnv(t)

		rec := env.postForm("/todo/create", url.Values{"title": {"X"}, "isCompleted": {value}})
		require.Equal(t, http.StatusFound, rec.Code)

		created, ok := env.repo.GetByID(context.Background(), 4)
		require.True(t, ok)
		assert.True(t, created.IsCompleted, value)
	}
}

func TestTodoCreate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		form    url.Values
		message string
	}{
		{"empty title", url.Values{"title": {""}}, "Title is required"},
		{"title too long", url.Values{"title": {strings.Repeat("a", 101)}}, "Title cannot exceed 100 characters"},
		{"description too long", url.Values{"title": {"ok"}, "description": {strings.Repeat("d", 501)}}, "Description cannot exceed 500 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)

			rec := env.postForm("/todo/create", tt.form)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
			assert.Equal(t, 0, env.store.creates)
			assert.Equal(t, int64(3), env.repo.Count())
		})
	}
}

func TestTodoCreate_BoundaryLengths(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/todo/create", url.Values{
		"title":       {strings.Repeat("a", 100)},
		"description": {strings.Repeat("d", 500)},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, int64(4), env.repo.Count())
}

func TestTodoEdit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before, _ := env.repo.GetByID(ctx, 1)

	rec := env.postForm("/todo/edit/1", url.Values{
		"id":          {"1"},
		"title":       {"Y"},
		"description": {"Z"},
		"isCompleted": {"true"},
	})

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todo", rec.Header().Get("Location"))

	after, ok := env.repo.GetByID(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Y", after.Title)
	assert.Equal(t, "Z", after.Description)
	assert.True(t, after.IsCompleted)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
}

func TestTodoEdit_IDMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := env.repo.List(ctx)

	rec := env.postForm("/todo/edit/1", url.Values{"id": {"2"}, "title": {"Y"}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, env.store.updates)
	assert.Equal(t, before, env.repo.List(ctx))
}

func TestTodoEdit_Invalid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := env.repo.List(ctx)

	rec := env.postForm("/todo/edit/1", url.Values{"id": {"1"}, "title": {""}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Title is required")
	assert.Equal(t, 0, env.store.updates)
	assert.Equal(t, before, env.repo.List(ctx))
}

func TestTodoEdit_UnknownTask(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/todo/edit/99", url.Values{"id": {"99"}, "title": {"Y"}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 1, env.store.updates)
}

func TestTodoDeleteConfirmed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/todo/delete/1", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todo", rec.Header().Get("Location"))
	_, ok := env.repo.GetByID(context.Background(), 1)
	assert.False(t, ok)
	assert.Equal(t, int64(2), env.repo.Count())
}

func TestTodoDeleteConfirmed_UnknownTaskStillRedirects(t *testing.T) {
	env := newTestEnv(t)

	rec := env.postForm("/todo/delete/99", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, 1, env.store.deletes)
	assert.Equal(t, int64(3), env.repo.Count())
}

func TestTodoToggleComplete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.postForm("/todo/togglecomplete/1", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	task, _ := env.repo.GetByID(ctx, 1)
	assert.True(t, task.IsCompleted)

	env.postForm("/todo/togglecomplete/1", nil)
	task, _ = env.repo.GetByID(ctx, 1)
	assert.False(t, task.IsCompleted)
}

func TestTodoToggleComplete_UnknownTaskStillRedirects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	before := env.repo.List(ctx)

	rec := env.postForm("/todo/togglecomplete/99", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/todo", rec.Header().Get("Location"))
	assert.Equal(t, before, env.repo.List(ctx))
}
