package http

import (
	"net/http"

	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
)

type createFeedbackRequest struct {
	Rating   int    `json:"rating" validate:"required,min=1,max=5"`
	Category string `json:"category" validate:"required"`
	Feedback string `json:"feedback" validate:"required"`
}

func (s *Server) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req createFeedbackRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	created, err := s.uc.CreateFeedback(r.Context(), &feedback.Feedback{
		Rating:   req.Rating,
		Category: req.Category,
		Feedback: req.Feedback,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) listFeedback(w http.ResponseWriter, r *http.Request) {
	list, err := s.uc.ListFeedback(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if list == nil {
		list = []*feedback.Feedback{}
	}
	respondJSON(w, r, http.StatusOK, list)
}
