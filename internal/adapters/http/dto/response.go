// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/jlundqvist/agenda/internal/domain/event"
	"github.com/jlundqvist/agenda/internal/domain/page"
	"github.com/jlundqvist/agenda/internal/domain/task"
	"github.com/jlundqvist/agenda/internal/ports"
)

// TaskResponse represents a single task in HTTP responses.
type TaskResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ToTaskResponse converts a domain Task entity to an HTTP response DTO.
func ToTaskResponse(t *task.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.Format(time.RFC3339)
		resp.DueDate = &due
	}
	return resp
}

// EventResponse represents a single event in HTTP responses.
type EventResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// ToEventResponse converts a domain Event entity to an HTTP response DTO.
func ToEventResponse(e *event.Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartTime:   e.StartTime.Format(time.RFC3339),
		EndTime:     e.EndTime.Format(time.RFC3339),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}

// PaginatedResponse represents one page of results plus pagination metadata.
type PaginatedResponse[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ToTaskPageResponse converts a task page to an HTTP response DTO.
func ToTaskPageResponse(res page.Result[task.Task]) PaginatedResponse[TaskResponse] {
	data := make([]TaskResponse, len(res.Data))
	for i := range res.Data {
		data[i] = ToTaskResponse(&res.Data[i])
	}
	return PaginatedResponse[TaskResponse]{
		Data:       data,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
}

// ToEventPageResponse converts an event page to an HTTP response DTO.
func ToEventPageResponse(res page.Result[event.Event]) PaginatedResponse[EventResponse] {
	data := make([]EventResponse, len(res.Data))
	for i := range res.Data {
		data[i] = ToEventResponse(&res.Data[i])
	}
	return PaginatedResponse[EventResponse]{
		Data:       data,
		Total:      res.Total,
		Page:       res.Page,
		PageSize:   res.PageSize,
		TotalPages: res.TotalPages,
	}
}

// BulkUpdateTasksResponse represents the result of a bulk update operation.
// It includes both successful updates and per-item errors.
type BulkUpdateTasksResponse struct {
	Updated   []TaskResponse        `json:"updated"`
	Errors    []BulkUpdateErrorItem `json:"errors"`
	Total     int                   `json:"total"`
	Succeeded int                   `json:"succeeded"`
	Failed    int                   `json:"failed"`
}

// BulkUpdateErrorItem represents a single failed update within a bulk operation.
type BulkUpdateErrorItem struct {
	TaskID  int64  `json:"task_id"`
	Message string `json:"message"`
}

// ToBulkUpdateResponse converts a ports.BulkUpdateResult to an HTTP response DTO.
func ToBulkUpdateResponse(result *ports.BulkUpdateResult) BulkUpdateTasksResponse {
	updated := make([]TaskResponse, len(result.Updated))
	for i := range result.Updated {
		updated[i] = ToTaskResponse(&result.Updated[i])
	}

	errs := make([]BulkUpdateErrorItem, len(result.Errors))
	for i, e := range result.Errors {
		errs[i] = BulkUpdateErrorItem{
			TaskID:  e.TaskID,
			Message: e.Err.Error(),
		}
	}

	return BulkUpdateTasksResponse{
		Updated:   updated,
		Errors:    errs,
		Total:     len(result.Updated) + len(result.Errors),
		Succeeded: len(result.Updated),
		Failed:    len(result.Errors),
	}
}

// StatsResponse represents the dashboard aggregate counts.
type StatsResponse struct {
	TotalTasks     int64 `json:"total_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	PendingTasks   int64 `json:"pending_tasks"`
	TotalEvents    int64 `json:"total_events"`
	UpcomingEvents int64 `json:"upcoming_events"`
	OverdueTasks   int64 `json:"overdue_tasks"`
}

// ToStatsResponse converts dashboard stats to an HTTP response DTO.
func ToStatsResponse(s *ports.Stats) StatsResponse {
	return StatsResponse{
		TotalTasks:     s.TotalTasks,
		CompletedTasks: s.CompletedTasks,
		PendingTasks:   s.PendingTasks,
		TotalEvents:    s.TotalEvents,
		UpcomingEvents: s.UpcomingEvents,
		OverdueTasks:   s.OverdueTasks,
	}
}

// UpcomingResponse represents the tasks due and events starting inside the
// requested look-ahead window.
type UpcomingResponse struct {
	Tasks  []TaskResponse  `json:"tasks"`
	Events []EventResponse `json:"events"`
}

// ToUpcomingResponse converts upcoming items to an HTTP response DTO.
func ToUpcomingResponse(items *ports.UpcomingItems) UpcomingResponse {
	return UpcomingResponse{
		Tasks:  toTaskResponses(items.Tasks),
		Events: toEventResponses(items.Events),
	}
}

// CalendarDayResponse is one day cell of the month grid. Tasks and events are
// always present, possibly empty.
type CalendarDayResponse struct {
	Date   string          `json:"date"`
	Tasks  []TaskResponse  `json:"tasks"`
	Events []EventResponse `json:"events"`
}

// CalendarMonthResponse represents the dense grid for one calendar month.
type CalendarMonthResponse struct {
	Year  int                   `json:"year"`
	Month int                   `json:"month"`
	Days  []CalendarDayResponse `json:"days"`
}

// ToCalendarResponse converts a calendar month to an HTTP response DTO.
// Dates are rendered as YYYY-MM-DD.
func ToCalendarResponse(m *ports.CalendarMonth) CalendarMonthResponse {
	days := make([]CalendarDayResponse, len(m.Days))
	for i := range m.Days {
		days[i] = CalendarDayResponse{
			Date:   m.Days[i].Date.Format(time.DateOnly),
			Tasks:  toTaskResponses(m.Days[i].Tasks),
			Events: toEventResponses(m.Days[i].Events),
		}
	}
	return CalendarMonthResponse{
		Year:  m.Year,
		Month: int(m.Month),
		Days:  days,
	}
}

// RangeResponse represents the tasks and events inside a date range.
type RangeResponse struct {
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Tasks     []TaskResponse  `json:"tasks"`
	Events    []EventResponse `json:"events"`
}

// ToRangeResponse converts range items to an HTTP response DTO.
func ToRangeResponse(items *ports.RangeItems) RangeResponse {
	return RangeResponse{
		StartDate: items.Start.Format(time.RFC3339),
		EndDate:   items.End.Format(time.RFC3339),
		Tasks:     toTaskResponses(items.Tasks),
		Events:    toEventResponses(items.Events),
	}
}

func toTaskResponses(tasks []task.Task) []TaskResponse {
	out := make([]TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = ToTaskResponse(&tasks[i])
	}
	return out
}

func toEventResponses(events []event.Event) []EventResponse {
	out := make([]EventResponse, len(events))
	for i := range events {
		out[i] = ToEventResponse(&events[i])
	}
	return out
}
