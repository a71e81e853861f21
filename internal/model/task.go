package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// MaxTitleLength is the maximum number of characters in a title.
	MaxTitleLength = 100
	// MaxDescriptionLength is the maximum number of characters in a description.
	MaxDescriptionLength = 500
)

// Task represents a todo item in the system.
type Task struct {
	ID          int       `json:"id"`
	Title       string    `json:"title" validate:"notblank,max=100"`
	Description string    `json:"description,omitempty" validate:"max=500"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their json name so messages line up with form fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// notblank rejects whitespace-only strings as well as empty ones.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Validate checks the user-editable fields of the task. It returns a
// ValidationError listing one message per offending field, or nil.
func (t *Task) Validate() error {
	err := validate.Struct(t)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	ve := ValidationError{Fields: make(map[string]string, len(verrs)), cause: verrs}
	for _, fe := range verrs {
		if _, seen := ve.Fields[fe.Field()]; seen {
			continue
		}
		ve.Fields[fe.Field()] = message(fe)
	}
	return ve
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "title":
		if fe.Tag() == "max" {
			return fmt.Sprintf("Title cannot exceed %d characters", MaxTitleLength)
		}
		return "Title is required"
	case "description":
		return fmt.Sprintf("Description cannot exceed %d characters", MaxDescriptionLength)
	}
	return fmt.Sprintf("%s is invalid", fe.Field())
}

// ValidationError reports field-level validation failures keyed by field name.
type ValidationError struct {
	Fields map[string]string
	cause  error
}

func (e ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range []string{"title", "description"} {
		if m, ok := e.Fields[f]; ok {
			msgs = append(msgs, m)
		}
	}
	return strings.Join(msgs, "; ")
}

func (e ValidationError) Unwrap() error {
	return e.cause
}

// SeedTasks returns the records a fresh application starts with, timed
// relative to now.
func SeedTasks(now time.Time) []Task {
	return []Task{
		{
			ID:          1,
			Title:       "Learn Go",
			Description: "Explore the standard library and the toolchain",
			IsCompleted: false,
			CreatedAt:   now.AddDate(0, 0, -2),
		},
		{
			ID:          2,
			Title:       "Build TODO App",
			Description: "Create a sample server-rendered TODO application",
			IsCompleted: true,
			CreatedAt:   now.AddDate(0, 0, -1),
		},
		{
			ID:          3,
			Title:       "Write Documentation",
			Description: "Document the TODO application features",
			IsCompleted: false,
			CreatedAt:   now,
		},
	}
}
