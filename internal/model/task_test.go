package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name   string
		task   Task
		fields map[string]string
	}{
		{
			name: "title only",
			task: Task{Title: "Buy milk"},
		},
		{
			name: "title at limit",
			task: Task{Title: strings.Repeat("a", 100)},
		},
		{
			name: "description at limit",
			task: Task{Title: "t", Description: strings.Repeat("d", 500)},
		},
		{
			name: "multibyte title at limit",
			task: Task{Title: strings.Repeat("é", 100)},
		},
		{
			name:   "empty title",
			task:   Task{},
			fields: map[string]string{"title": "Title is required"},
		},
		{
			name:   "blank title",
			task:   Task{Title: "   "},
			fields: map[string]string{"title": "Title is required"},
		},
		{
			name:   "title too long",
			task:   Task{Title: strings.Repeat("a", 101)},
			fields: map[string]string{"title": "Title cannot exceed 100 characters"},
		},
		{
			name:   "description too long",
			task:   Task{Title: "t", Description: strings.Repeat("d", 501)},
			fields: map[string]string{"description": "Description cannot exceed 500 characters"},
		},
		{
			name: "both invalid",
			task: Task{Description: strings.Repeat("d", 501)},
			fields: map[string]string{
				"title":       "Title is required",
				"description": "Description cannot exceed 500 characters",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	task := Task{Description: strings.Repeat("d", 501)}
	err := task.Validate()
	require.Error(t, err)

	assert.Equal(t, "Title is required; Description cannot exceed 500 characters", err.Error())

	var verrs validator.ValidationErrors
	assert.True(t, errors.As(err, &verrs))
}

func TestSeedTasks(t *testing.T) {
	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seeds := SeedTasks(now)

	require.Len(t, seeds, 3)
	for i, s := range seeds {
		assert.Equal(t, i+1, s.ID)
		assert.NoError(t, s.Validate())
	}
	assert.Equal(t, now.AddDate(0, 0, -2), seeds[0].CreatedAt)
	assert.True(t, seeds[1].IsCompleted)
	assert.Equal(t, now, seeds[2].CreatedAt)
}
