package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

type createEventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	Type        string    `json:"type" validate:"omitempty,oneof=task event"`
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.uc.ListEvents(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if events == nil {
		events = event.Events{}
	}
	respondJSON(w, r, http.StatusOK, events)
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.uc.CreateEvent(r.Context(), &event.Event{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Type:        types.EventType(req.Type),
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id := types.EventID(chi.URLParam(r, "eventID"))
	if err := s.uc.DeleteEvent(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
