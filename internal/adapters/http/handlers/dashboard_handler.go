package handlers

import (
	"net/http"
	"time"

	"github.com/jlundqvist/agenda/internal/adapters/http/dto"
	"github.com/jlundqvist/agenda/internal/domain"
	"github.com/jlundqvist/agenda/internal/ports"
)

// Defaults for the upcoming view when the query omits them.
const (
	defaultUpcomingDays  = 7
	defaultUpcomingLimit = 5
)

const msgQueryRequired = "is required"

// DashboardHandler handles HTTP requests for the aggregated read-only views.
type DashboardHandler struct {
	svc ports.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler with the given service port.
func NewDashboardHandler(svc ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToStatsResponse(stats))
}

// Upcoming handles GET /api/v1/dashboard/upcoming?days=7&limit=5.
func (h *DashboardHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	fields := make(map[string]string)
	days := parseIntParam(r, "days", defaultUpcomingDays, fields)
	limit := parseIntParam(r, "limit", defaultUpcomingLimit, fields)
	if len(fields) > 0 {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: fields})
		return
	}

	items, err := h.svc.Upcoming(r.Context(), days, limit)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUpcomingResponse(items))
}

// Calendar handles GET /api/v1/dashboard/calendar?year=2024&month=1.
func (h *DashboardHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	fields := make(map[string]string)
	year := parseIntParam(r, "year", 0, fields)
	month := parseIntParam(r, "month", 0, fields)
	if r.URL.Query().Get("year") == "" {
		fields["year"] = msgQueryRequired
	}
	if r.URL.Query().Get("month") == "" {
		fields["month"] = msgQueryRequired
	}
	if len(fields) > 0 {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: fields})
		return
	}

	grid, err := h.svc.Calendar(r.Context(), year, time.Month(month))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToCalendarResponse(grid))
}

// DateRange handles GET /api/v1/dashboard/range?start_date=...&end_date=...
// with RFC 3339 bounds.
func (h *DashboardHandler) DateRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fields := make(map[string]string)

	start := parseTimeParam(q.Get("start_date"), "start_date", fields)
	end := parseTimeParam(q.Get("end_date"), "end_date", fields)
	if q.Get("start_date") == "" {
		fields["start_date"] = msgQueryRequired
	}
	if q.Get("end_date") == "" {
		fields["end_date"] = msgQueryRequired
	}
	if len(fields) > 0 {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{Fields: fields})
		return
	}

	items, err := h.svc.Range(r.Context(), *start, *end)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToRangeResponse(items))
}
