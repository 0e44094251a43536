package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/campus-lab/campusboard/pkg/domain/model/push"
)

type pollResponse struct {
	Cursor uint64           `json:"cursor"`
	Events []*push.Envelope `json:"events"`
}

// pollPush serves the HTTP fallback transport. Clients pass the cursor from
// their previous poll; cursor 0 yields the current position with no replay.
func (s *Server) pollPush(w http.ResponseWriter, r *http.Request) {
	var cursor uint64
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			handleError(w, r, invalidRequest("invalid cursor", err))
			return
		}
		cursor = parsed
	}

	next, events := s.hub.Backlog(cursor)
	if events == nil {
		events = []*push.Envelope{}
	}
	respondJSON(w, r, http.StatusOK, pollResponse{Cursor: next, Events: events})
}

// emitPush accepts an envelope from a polling client and broadcasts it to
// the board, mirroring what a websocket client publishes over its connection.
func (s *Server) emitPush(w http.ResponseWriter, r *http.Request) {
	var env push.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		handleError(w, r, invalidRequest("invalid push envelope", err))
		return
	}
	if !env.IsValidEvent() {
		handleError(w, r, invalidRequest("unknown push event: "+env.Event, nil))
		return
	}

	s.hub.Broadcast(r.Context(), &env)
	w.WriteHeader(http.StatusAccepted)
}
