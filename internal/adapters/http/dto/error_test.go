package dto

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
)

func TestNewErrorResponse_Classification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "validation error",
			err:        &domain.ValidationError{Fields: map[string]string{"title": "is required"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   CodeValidation,
		},
		{
			name:       "task not found",
			err:        &domain.NotFoundError{Kind: domain.KindTask, ID: 7},
			wantStatus: http.StatusNotFound,
			wantCode:   CodeTaskNotFound,
		},
		{
			name:       "event not found",
			err:        &domain.NotFoundError{Kind: domain.KindEvent, ID: 7},
			wantStatus: http.StatusNotFound,
			wantCode:   CodeEventNotFound,
		},
		{
			name:       "time conflict",
			err:        &event.ConflictError{Conflicts: []event.Event{{ID: 1, Title: "busy"}}},
			wantStatus: http.StatusConflict,
			wantCode:   CodeTimeConflict,
		},
		{
			name:       "already completed",
			err:        &task.TransitionError{TaskID: 3, Current: task.StatusCompleted},
			wantStatus: http.StatusConflict,
			wantCode:   CodeTaskAlreadyCompleted,
		},
		{
			name:       "already pending",
			err:        &task.TransitionError{TaskID: 3, Current: task.StatusPending},
			wantStatus: http.StatusConflict,
			wantCode:   CodeTaskAlreadyPending,
		},
		{
			name:       "unknown error",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/7", nil)
			resp := NewErrorResponse(r, tt.err)

			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantCode, resp.Code)
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Title)
			assert.Equal(t, "/api/v1/tasks/7", resp.Instance)
		})
	}
}

func TestNewErrorResponse_InternalDetailMasked(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	resp := NewErrorResponse(r, errors.New("pq: connection refused on 10.0.0.3"))

	assert.Equal(t, "an unexpected error occurred", resp.Detail)
	assert.NotContains(t, resp.Detail, "10.0.0.3")
}

func TestNewErrorResponse_ValidationDetails(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/api/v1/tasks", nil)
	resp := NewErrorResponse(r, &domain.ValidationError{Fields: map[string]string{
		"title":  "is required",
		"status": `invalid: "done"`,
	}})

	require.Len(t, resp.Errors, 2)
	// Sorted by location for a stable payload.
	assert.Equal(t, "body.status", resp.Errors[0].Location)
	assert.Equal(t, "body.title", resp.Errors[1].Location)
	assert.Equal(t, "is required", resp.Errors[1].Message)
}

func TestNewErrorResponse_ConflictPayload(t *testing.T) {
	t.Parallel()

	conflicting := event.Event{
		ID:        42,
		Title:     "standup",
		StartTime: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC),
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/events", nil)
	resp := NewErrorResponse(r, &event.ConflictError{Conflicts: []event.Event{conflicting}})

	require.Len(t, resp.Conflicts, 1)
	assert.Equal(t, int64(42), resp.Conflicts[0].ID)
	assert.Equal(t, "standup", resp.Conflicts[0].Title)
}

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/v1/tasks/9", nil)

	WriteErrorResponse(w, r, &domain.NotFoundError{Kind: domain.KindTask, ID: 9})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, CodeTaskNotFound, body.Code)
	assert.Equal(t, "about:blank", body.Type)
}
