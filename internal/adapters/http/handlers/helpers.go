package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jlundqvist/agenda/internal/adapters/http/dto"
	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/page"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/ports"
)

// parseID extracts an int64 path parameter from the chi URL params.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{
			Fields: map[string]string{param: "must be a valid integer"},
		}
	}
	return id, nil
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// maxJSONBodyBytes is the maximum allowed size for a JSON request body (1 MB).
const maxJSONBodyBytes = 1 << 20

// decodeJSONBody decodes the request body as JSON into dst. The body is
// limited to maxJSONBodyBytes to prevent resource exhaustion. On failure,
// it writes a 400 error response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "invalid JSON"},
		})
		return false
	}
	return true
}

// validatable is implemented by request DTOs that support validation.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the JSON request body into dst and validates it.
// On decode or validation failure it writes an error response and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}

// mapCreateTaskRequest converts a CreateTaskRequest DTO to a domain Task entity.
func mapCreateTaskRequest(req *dto.CreateTaskRequest) *task.Task {
	t := &task.Task{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      task.StatusPending,
	}
	if req.Status != "" {
		t.Status = task.Status(req.Status)
	}
	return t
}

// mapUpdateTaskRequest converts an UpdateTaskRequest DTO to a domain task patch.
func mapUpdateTaskRequest(req *dto.UpdateTaskRequest) task.Patch {
	p := task.Patch{
		Title:        req.Title,
		Description:  req.Description,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	}
	if req.Status != nil {
		s := task.Status(*req.Status)
		p.Status = &s
	}
	return p
}

// mapCreateEventRequest converts a CreateEventRequest DTO to a domain Event entity.
func mapCreateEventRequest(req *dto.CreateEventRequest) *event.Event {
	return &event.Event{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
}

// mapUpdateEventRequest converts an UpdateEventRequest DTO to a domain event patch.
func mapUpdateEventRequest(req *dto.UpdateEventRequest) event.Patch {
	return event.Patch{
		Title:       req.Title,
		Description: req.Description,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
}

// parsePageRequest reads the page and page_size query parameters. Missing or
// malformed values fall back to zero; normalization happens in the service.
func parsePageRequest(r *http.Request) page.Request {
	q := r.URL.Query()
	pg, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	return page.Request{Page: pg, Size: size}
}

// parseTaskFilter reads the task list filter from the query string. Unknown
// parameters are ignored.
func parseTaskFilter(r *http.Request) (task.Filter, error) {
	q := r.URL.Query()
	fields := make(map[string]string)

	var f task.Filter
	if raw := q.Get("status"); raw != "" {
		if !task.Status(raw).IsValid() {
			fields["status"] = "invalid: " + strconv.Quote(raw)
		}
		f.Status = task.Status(raw)
	}
	f.DueAfter = parseTimeParam(q.Get("due_after"), "due_after", fields)
	f.DueBefore = parseTimeParam(q.Get("due_before"), "due_before", fields)
	f.Search = q.Get("search")

	if len(fields) > 0 {
		return task.Filter{}, &domain.ValidationError{Fields: fields}
	}
	return f, nil
}

// parseEventFilter reads the event list filter from the query string. Unknown
// parameters are ignored.
func parseEventFilter(r *http.Request) (event.Filter, error) {
	q := r.URL.Query()
	fields := make(map[string]string)

	var f event.Filter
	f.StartAfter = parseTimeParam(q.Get("start_after"), "start_after", fields)
	f.StartBefore = parseTimeParam(q.Get("start_before"), "start_before", fields)
	f.EndAfter = parseTimeParam(q.Get("end_after"), "end_after", fields)
	f.EndBefore = parseTimeParam(q.Get("end_before"), "end_before", fields)
	f.Search = q.Get("search")

	if raw := q.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1 || year > 9999 {
			fields["year"] = "must be an integer in 1-9999"
		}
		f.Year = year
	}
	if raw := q.Get("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			fields["month"] = "must be an integer in 1-12"
		}
		f.Month = time.Month(month)
	}
	if raw := q.Get("day"); raw != "" {
		day, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			fields["day"] = "must be a date in YYYY-MM-DD format"
		} else {
			f.Day = &day
		}
	}

	if len(fields) > 0 {
		return event.Filter{}, &domain.ValidationError{Fields: fields}
	}
	return f, nil
}

// parseTimeParam parses an RFC 3339 query value, recording a field error for
// malformed input. An empty value yields nil.
func parseTimeParam(raw, name string, fields map[string]string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		fields[name] = "must be an RFC 3339 timestamp"
		return nil
	}
	return &t
}

// parseIntParam reads an integer query parameter, falling back to def when the
// parameter is absent. Malformed values record a field error.
func parseIntParam(r *http.Request, name string, def int, fields map[string]string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		fields[name] = "must be an integer"
		return def
	}
	return v
}

// mapBulkUpdateRequest converts a bulk update request body into service input.
func mapBulkUpdateRequest(req *dto.BulkUpdateTasksRequest) []ports.TaskPatch {
	updates := make([]ports.TaskPatch, len(req.Updates))
	for i, item := range req.Updates {
		updates[i] = ports.TaskPatch{
			TaskID: item.ID,
			Patch:  mapUpdateTaskRequest(&item.UpdateTaskRequest),
		}
	}
	return updates
}
