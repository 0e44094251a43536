package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

type createNoticeRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Category string `json:"category" validate:"required"`
	Priority string `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
	Date     string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Author   string `json:"author" validate:"required,email"`
}

func (s *Server) listNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := s.uc.ListNotices(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if notices == nil {
		notices = notice.Notices{}
	}
	respondJSON(w, r, http.StatusOK, notices)
}

func (s *Server) createNotice(w http.ResponseWriter, r *http.Request) {
	var req createNoticeRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	priority := types.Priority(req.Priority)
	if priority == "" {
		priority = types.PriorityMedium
	}

	created, err := s.uc.CreateNotice(r.Context(), &notice.Notice{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Priority: priority,
		ImageURL: req.ImageURL,
		Date:     req.Date,
		Author:   req.Author,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) deleteNotice(w http.ResponseWriter, r *http.Request) {
	id := types.NoticeID(chi.URLParam(r, "noticeID"))
	if err := s.uc.DeleteNotice(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
