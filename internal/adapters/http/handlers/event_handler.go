package handlers

import (
	"net/http"

	"github.com/jlundqvist/agenda/internal/adapters/http/dto"
	"github.com/jlundqvist/agenda/internal/ports"
)

// EventHandler handles HTTP requests for event CRUD operations.
type EventHandler struct {
	svc ports.EventService
}

// NewEventHandler creates a new EventHandler with the given service port.
func NewEventHandler(svc ports.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

// ListEvents handles GET /api/v1/events.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	result, err := h.svc.List(r.Context(), filter, parsePageRequest(r))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEventPageResponse(result))
}

// CreateEvent handles POST /api/v1/events. Overlapping intervals are rejected
// with 409 and the conflicting events in the error body.
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	created, err := h.svc.Create(r.Context(), mapCreateEventRequest(&req))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToEventResponse(created))
}

// GetEvent handles GET /api/v1/events/{id}.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEventResponse(e))
}

// UpdateEvent handles PATCH /api/v1/events/{id}.
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	var req dto.UpdateEventRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	updated, err := h.svc.Update(r.Context(), id, mapUpdateEventRequest(&req))
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToEventResponse(updated))
}

// DeleteEvent handles DELETE /api/v1/events/{id}.
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
