package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gatherly/server/internal/api/middleware"
	"github.com/gatherly/server/internal/api/problem"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/domain/users"
	"github.com/gatherly/server/internal/metrics"
)

type EventsHandler struct {
	Service *events.Service
	Env     string
}

func NewEventsHandler(service *events.Service, env string) *EventsHandler {
	return &EventsHandler{Service: service, Env: env}
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	loc, err := displayLocation(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	items, err := h.Service.List(r.Context())
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	payload := make([]eventPayload, 0, len(items))
	for _, event := range items {
		payload = append(payload, eventView(event, loc))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *EventsHandler) Create(w http.ResponseWriter, r *http.Request) {
	loc, err := displayLocation(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	var input events.EventInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	event, err := h.Service.Create(r.Context(), middleware.UserID(r.Context()), input)
	if err != nil {
		var verr events.ValidationError
		if errors.As(err, &verr) {
			problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	metrics.EventsCreatedTotal.Inc()
	writeJSON(w, http.StatusCreated, eventView(*event, loc))
}

func (h *EventsHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := pathParam(r, "id")

	attendee, err := h.Service.RegisterAttendee(r.Context(), eventID, middleware.UserID(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, events.ErrNotFound):
			metrics.AttendeeRegistrationsTotal.WithLabelValues("not_found").Inc()
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
		case events.IsRegistrationRejection(err):
			metrics.AttendeeRegistrationsTotal.WithLabelValues(rejectionOutcome(err)).Inc()
			problem.Write(w, r, http.StatusBadRequest, problem.TypeRegistrationDenied, "Registration denied", err, h.Env)
		default:
			problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		}
		return
	}

	metrics.AttendeeRegistrationsTotal.WithLabelValues("admitted").Inc()
	writeJSON(w, http.StatusCreated, attendee)
}

func rejectionOutcome(err error) string {
	switch {
	case errors.Is(err, events.ErrCreatorRegistration):
		return "creator"
	case errors.Is(err, events.ErrAlreadyRegistered):
		return "duplicate"
	default:
		return "full"
	}
}

type attendeesResponse struct {
	Event     eventPayload    `json:"event"`
	Attendees []users.Summary `json:"attendees"`
}

func (h *EventsHandler) Attendees(w http.ResponseWriter, r *http.Request) {
	loc, err := displayLocation(r)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidationError, "Invalid request", err, h.Env)
		return
	}

	event, attendees, err := h.Service.Attendees(r.Context(), pathParam(r, "id"))
	if err != nil {
		if errors.Is(err, events.ErrNotFound) {
			problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Not found", err, h.Env)
			return
		}
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}

	writeJSON(w, http.StatusOK, attendeesResponse{
		Event:     eventView(*event, loc),
		Attendees: attendees,
	})
}
