package dto

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/task"
)

// Machine-readable error codes carried alongside the RFC 9457 fields.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeTaskNotFound         = "TASK_NOT_FOUND"
	CodeEventNotFound        = "EVENT_NOT_FOUND"
	CodeTimeConflict         = "TIME_CONFLICT"
	CodeTaskAlreadyCompleted = "TASK_ALREADY_COMPLETED"
	CodeTaskAlreadyPending   = "TASK_ALREADY_PENDING"
	CodeInternal             = "INTERNAL_ERROR"
)

// ErrorResponse represents an RFC 9457 Problem Details response, extended
// with a stable machine-readable code and, for time conflicts, the list of
// conflicting events.
type ErrorResponse struct {
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Status    int             `json:"status"`
	Code      string          `json:"code"`
	Detail    string          `json:"detail,omitempty"`
	Instance  string          `json:"instance,omitempty"`
	Errors    []ErrorDetail   `json:"errors,omitempty"`
	Conflicts []EventResponse `json:"conflicts,omitempty"`
}

// ErrorDetail represents a single field-level validation error within
// an ErrorResponse.
type ErrorDetail struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// NewErrorResponse creates an ErrorResponse from a domain error. The request
// is used to populate the instance field with the request URI.
func NewErrorResponse(r *http.Request, err error) ErrorResponse {
	status, code := classify(err)

	resp := ErrorResponse{
		Type:     "about:blank",
		Title:    http.StatusText(status),
		Status:   status,
		Code:     code,
		Detail:   err.Error(),
		Instance: r.RequestURI,
	}
	if code == CodeInternal {
		// Do not leak internals to clients.
		resp.Detail = "an unexpected error occurred"
	}

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Errors = validationFieldsToDetails(verr.Fields)
	}

	var cerr *event.ConflictError
	if errors.As(err, &cerr) {
		resp.Conflicts = make([]EventResponse, len(cerr.Conflicts))
		for i := range cerr.Conflicts {
			resp.Conflicts[i] = ToEventResponse(&cerr.Conflicts[i])
		}
	}

	return resp
}

// WriteErrorResponse writes an RFC 9457 error response for the given domain
// error. It sets the Content-Type to application/problem+json, writes the
// appropriate HTTP status code, and marshals the error body as JSON.
func WriteErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	resp := NewErrorResponse(r, err)

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(resp.Status)

	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		slog.ErrorContext(r.Context(), "failed to encode error response",
			slog.Any("error", encErr),
		)
	}
}

// classify maps a domain error to its HTTP status and machine-readable code.
func classify(err error) (int, string) {
	var nferr *domain.NotFoundError
	if errors.As(err, &nferr) {
		if nferr.Kind == domain.KindEvent {
			return http.StatusNotFound, CodeEventNotFound
		}
		return http.StatusNotFound, CodeTaskNotFound
	}

	var terr *task.TransitionError
	if errors.As(err, &terr) {
		if terr.Current == task.StatusCompleted {
			return http.StatusConflict, CodeTaskAlreadyCompleted
		}
		return http.StatusConflict, CodeTaskAlreadyPending
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeTaskNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CodeTimeConflict
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// validationFieldsToDetails converts domain validation fields to sorted
// ErrorDetail entries.
func validationFieldsToDetails(fields map[string]string) []ErrorDetail {
	details := make([]ErrorDetail, 0, len(fields))
	for field, msg := range fields {
		details = append(details, ErrorDetail{
			Location: "body." + field,
			Message:  msg,
		})
	}
	sort.Slice(details, func(i, j int) bool {
		return details[i].Location < details[j].Location
	})
	return details
}
