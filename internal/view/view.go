// Package view renders the server-side HTML pages of the application.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/hiroki-koketsu/go-otel-todo/internal/model"
)

//go:embed templates/*.html
var files embed.FS

const layoutFile = "templates/layout.html"

// Page names.
const (
	Index    = "index"
	Details  = "details"
	Create   = "create"
	Edit     = "edit"
	Delete   = "delete"
	Home     = "home"
	Privacy  = "privacy"
	Error    = "error"
	NotFound = "notfound"
)

// ListPage is the data for the Index page.
type ListPage struct {
	Tasks []model.Task
}

// TaskPage is the data for the Details and Delete pages.
type TaskPage struct {
	Task model.Task
}

// FormPage is the data for the Create and Edit pages. Errors maps a field
// name to its validation message.
type FormPage struct {
	Task   model.Task
	Errors map[string]string
}

// ErrorPage is the data for the Error page.
type ErrorPage struct {
	RequestID string
}

// ShowRequestID reports whether a request id is available to display.
func (p ErrorPage) ShowRequestID() bool {
	return p.RequestID != ""
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template together with the shared layout.
func NewRenderer() (*Renderer, error) {
	layout, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(files, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	names, err := fs.Glob(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone layout: %w", err)
		}
		if _, err := t.ParseFS(files, name); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.pages[strings.TrimSuffix(path.Base(name), ".html")] = t
	}

	return r, nil
}

// Render writes the named page with the given status. Nothing is written if
// the template fails to execute.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, path.Base(layoutFile), data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
