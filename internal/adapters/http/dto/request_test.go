package dto

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlundqvist/agenda/internal/domain"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	return verr.Fields
}

func TestCreateTaskRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		req := &CreateTaskRequest{Title: "plan sprint"}
		assert.NoError(t, req.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		t.Parallel()
		fields := validationFields(t, (&CreateTaskRequest{Title: "  "}).Validate())
		assert.Contains(t, fields, "title")
	})

	t.Run("invalid status", func(t *testing.T) {
		t.Parallel()
		fields := validationFields(t, (&CreateTaskRequest{Title: "x", Status: "done"}).Validate())
		assert.Contains(t, fields, "status")
	})

	t.Run("empty status is allowed", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, (&CreateTaskRequest{Title: "x"}).Validate())
	})
}

func TestUpdateTaskRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("all nil is valid", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, (&UpdateTaskRequest{}).Validate())
	})

	t.Run("blank title rejected", func(t *testing.T) {
		t.Parallel()
		title := " "
		fields := validationFields(t, (&UpdateTaskRequest{Title: &title}).Validate())
		assert.Contains(t, fields, "title")
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		t.Parallel()
		status := "archived"
		fields := validationFields(t, (&UpdateTaskRequest{Status: &status}).Validate())
		assert.Contains(t, fields, "status")
	})
}

func TestBulkUpdateTasksRequest_Validate(t *testing.T) {
	t.Parallel()

	t.Run("empty updates rejected", func(t *testing.T) {
		t.Parallel()
		fields := validationFields(t, (&BulkUpdateTasksRequest{}).Validate())
		assert.Contains(t, fields, "updates")
	})

	t.Run("item errors carry their index", func(t *testing.T) {
		t.Parallel()

		blank := " "
		req := &BulkUpdateTasksRequest{Updates: []BulkUpdateItem{
			{ID: 1},
			{ID: 0},
			{ID: 3, UpdateTaskRequest: UpdateTaskRequest{Title: &blank}},
		}}

		fields := validationFields(t, req.Validate())
		assert.Contains(t, fields, "updates[1].id")
		assert.Contains(t, fields, "updates[2].title")
		assert.NotContains(t, fields, "updates[0].id")
	})

	t.Run("valid batch", func(t *testing.T) {
		t.Parallel()

		title := "renamed"
		req := &BulkUpdateTasksRequest{Updates: []BulkUpdateItem{
			{ID: 1, UpdateTaskRequest: UpdateTaskRequest{Title: &title}},
		}}
		assert.NoError(t, req.Validate())
	})
}

func TestCreateEventRequest_Validate(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		req := &CreateEventRequest{Title: "standup", StartTime: start, EndTime: end}
		assert.NoError(t, req.Validate())
	})

	t.Run("missing times", func(t *testing.T) {
		t.Parallel()
		fields := validationFields(t, (&CreateEventRequest{Title: "standup"}).Validate())
		assert.Contains(t, fields, "start_time")
		assert.Contains(t, fields, "end_time")
	})

	t.Run("inverted interval passes DTO validation", func(t *testing.T) {
		t.Parallel()
		// Ordering is the domain entity's rule, not the transport's.
		req := &CreateEventRequest{Title: "standup", StartTime: end, EndTime: start}
		assert.NoError(t, req.Validate())
	})
}

func TestUpdateEventRequest_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, (&UpdateEventRequest{}).Validate())

	blank := ""
	err := (&UpdateEventRequest{Title: &blank}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}
