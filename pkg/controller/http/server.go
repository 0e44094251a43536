package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	websocket_controller "github.com/campus-lab/campusboard/pkg/controller/websocket"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/usecase"
)

type Server struct {
	router   *chi.Mux
	uc       *usecase.UseCases
	hub      *websocket_controller.Hub
	validate *validator.Validate
}

type Options func(*Server)

// WithPushHub wires the websocket hub into the server, enabling /ws/board
// and the polling endpoints under /api/push.
func WithPushHub(hub *websocket_controller.Hub) Options {
	return func(s *Server) {
		s.hub = hub
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		uc:       uc,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(loggingMiddleware)
	r.Use(panicRecoveryMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			handleError(w, r, err)
		}
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/notices", func(r chi.Router) {
			r.Get("/", s.listNotices)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createNotice)
				r.Delete("/{noticeID}", s.deleteNotice)
			})
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.listEvents)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.createEvent)
				r.Delete("/{eventID}", s.deleteEvent)
			})
		})

		r.Route("/feedback", func(r chi.Router) {
			r.Post("/", s.createFeedback)
			r.Get("/", s.listFeedback)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/google", s.googleLogin)
		})

		if s.hub != nil {
			r.Route("/push", func(r chi.Router) {
				r.Get("/poll", s.pollPush)
				r.Post("/", s.emitPush)
			})
		}
	})

	if s.hub != nil {
		wsHandler := websocket_controller.NewHandler(s.hub)
		r.Get("/ws/board", wsHandler.HandleBoard)
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already written, just record it
		errs.Handle(r.Context(), err)
	}
}

// decodeAndValidate parses the request body into dst and runs struct
// validation. Validation failures come back as the error to hand to
// handleError.
func (s *Server) decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidRequest("invalid request body", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return invalidRequest(err.Error(), err)
	}
	return nil
}
