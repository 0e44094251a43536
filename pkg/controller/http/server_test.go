package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	server "github.com/campus-lab/campusboard/pkg/controller/http"
	websocket_controller "github.com/campus-lab/campusboard/pkg/controller/websocket"
	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/repository/memory"
	"github.com/campus-lab/campusboard/pkg/usecase"
)

func newTestServer(t *testing.T, opts ...server.Options) (*server.Server, *usecase.UseCases) {
	t.Helper()
	uc := usecase.New(memory.New(), usecase.WithTokenSecret("test-secret"))
	return server.New(uc, opts...), uc
}

func doJSON(t *testing.T, srv http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// registerAccount signs up a user through the API and returns its token.
func registerAccount(t *testing.T, srv *server.Server, email string) string {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Tester",
		"email":    email,
		"password": "hunter22",
	})
	gt.Equal(t, rec.Code, http.StatusOK)

	var cred auth.Credential
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&cred)).Required()
	gt.True(t, cred.Success)
	return cred.Token
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("OK")
}

func TestNoticeEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAccount(t, srv, "mallory@example.edu")

	t.Run("EmptyListIsArray", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/notices/", "", nil)
		gt.Equal(t, rec.Code, http.StatusOK)
		gt.S(t, rec.Body.String()).Contains("[]")
	})

	t.Run("CreateWithoutTokenRejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/notices/", "", map[string]string{
			"title": "x", "content": "y", "category": "Clubs", "author": "mallory@example.edu",
		})
		gt.Equal(t, rec.Code, http.StatusUnauthorized)
	})

	var created notice.Notice
	t.Run("Create", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/notices/", token, map[string]string{
			"title":    "Library hours",
			"content":  "Open until midnight during finals",
			"category": "Academics",
			"author":   "mallory@example.edu",
		})
		gt.Equal(t, rec.Code, http.StatusCreated)
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&created)).Required()
		gt.False(t, created.ID.IsLocal())
		// Priority defaults when the request omits it
		gt.Equal(t, string(created.Priority), "Medium")
	})

	t.Run("ListReturnsCreated", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet, "/api/notices/", "", nil)
		gt.Equal(t, rec.Code, http.StatusOK)

		var notices notice.Notices
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&notices)).Required()
		gt.A(t, notices).Length(1)
		gt.V(t, notices[0].Title).Equal("Library hours")
	})

	t.Run("Delete", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodDelete, "/api/notices/"+string(created.ID), token, nil)
		gt.Equal(t, rec.Code, http.StatusNoContent)

		rec = doJSON(t, srv, http.MethodDelete, "/api/notices/"+string(created.ID), token, nil)
		gt.Equal(t, rec.Code, http.StatusNotFound)
	})
}

func TestCreateNoticeValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAccount(t, srv, "nora@example.edu")

	cases := map[string]map[string]string{
		"MissingTitle": {
			"content": "c", "category": "Clubs", "author": "nora@example.edu",
		},
		"BadAuthorEmail": {
			"title": "t", "content": "c", "category": "Clubs", "author": "not-an-email",
		},
		"BadPriority": {
			"title": "t", "content": "c", "category": "Clubs",
			"author": "nora@example.edu", "priority": "Urgent",
		},
		"BadDate": {
			"title": "t", "content": "c", "category": "Clubs",
			"author": "nora@example.edu", "date": "yesterday",
		},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/notices/", token, body)
			gt.Equal(t, rec.Code, http.StatusBadRequest)
			gt.S(t, rec.Body.String()).Contains("message")
		})
	}

	t.Run("UnknownAuthor", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/notices/", token, map[string]string{
			"title": "t", "content": "c", "category": "Clubs", "author": "ghost@example.edu",
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
		gt.S(t, rec.Body.String()).Contains("User not found")
	})
}

func TestEventEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAccount(t, srv, "omar@example.edu")

	rec := doJSON(t, srv, http.MethodPost, "/api/events/", token, map[string]any{
		"title": "Career fair",
		"date":  "2026-11-05T10:00:00Z",
		"type":  "event",
	})
	gt.Equal(t, rec.Code, http.StatusCreated)

	rec = doJSON(t, srv, http.MethodPost, "/api/events/", token, map[string]any{
		"title": "Missing date",
	})
	gt.Equal(t, rec.Code, http.StatusBadRequest)

	rec = doJSON(t, srv, http.MethodGet, "/api/events/", "", nil)
	gt.Equal(t, rec.Code, http.StatusOK)
	gt.S(t, rec.Body.String()).Contains("Career fair")
}

func TestFeedbackEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/feedback/", "", map[string]any{
		"rating":   5,
		"category": "General",
		"feedback": "Board works great",
	})
	gt.Equal(t, rec.Code, http.StatusCreated)

	t.Run("RatingOutOfRange", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/feedback/", "", map[string]any{
			"rating":   6,
			"category": "General",
			"feedback": "too enthusiastic",
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	rec = doJSON(t, srv, http.MethodGet, "/api/feedback/", "", nil)
	gt.Equal(t, rec.Code, http.StatusOK)

	var list []*feedback.Feedback
	gt.NoError(t, json.NewDecoder(rec.Body).Decode(&list)).Required()
	gt.A(t, list).Length(1)
	gt.Equal(t, list[0].Rating, 5)
}

func TestAuthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	registerAccount(t, srv, "pat@example.edu")

	t.Run("DuplicateRegister", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Pat", "email": "pat@example.edu", "password": "hunter22",
		})
		gt.Equal(t, rec.Code, http.StatusOK)

		var cred auth.Credential
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&cred)).Required()
		gt.False(t, cred.Success)
	})

	t.Run("ShortPassword", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
			"name": "Quinn", "email": "quinn@example.edu", "password": "abc",
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
			"email": "pat@example.edu", "password": "wrong-password",
		})
		gt.Equal(t, rec.Code, http.StatusOK)

		var cred auth.Credential
		gt.NoError(t, json.NewDecoder(rec.Body).Decode(&cred)).Required()
		gt.False(t, cred.Success)
	})

	t.Run("GarbageBearerToken", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/notices/", "garbage", map[string]string{
			"title": "t", "content": "c", "category": "Clubs", "author": "pat@example.edu",
		})
		gt.Equal(t, rec.Code, http.StatusUnauthorized)
	})
}

func TestPushEndpoints(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := websocket_controller.NewHub(ctx)
	go hub.Run()
	defer hub.Close()

	srv, _ := newTestServer(t, server.WithPushHub(hub))

	type pollResult struct {
		Cursor uint64           `json:"cursor"`
		Events []*push.Envelope `json:"events"`
	}
	pollOnce := func(cursor string) (int, pollResult) {
		path := "/api/push/poll"
		if cursor != "" {
			path += "?cursor=" + cursor
		}
		rec := doJSON(t, srv, http.MethodGet, path, "", nil)
		var out pollResult
		if rec.Code == http.StatusOK {
			gt.NoError(t, json.NewDecoder(rec.Body).Decode(&out)).Required()
		}
		return rec.Code, out
	}
	emit := func(event, id string) {
		env, err := push.New(event, push.DeletePayload{ID: id})
		gt.NoError(t, err).Required()
		rec := doJSON(t, srv, http.MethodPost, "/api/push/", "", env)
		gt.Equal(t, rec.Code, http.StatusAccepted)
	}
	waitCursor := func(from string, above uint64) pollResult {
		var out pollResult
		for i := 0; i < 100; i++ {
			_, out = pollOnce(from)
			if out.Cursor > above {
				return out
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("cursor never advanced past %d", above)
		return out
	}

	t.Run("FreshCursorHasNoReplay", func(t *testing.T) {
		code, out := pollOnce("")
		gt.Equal(t, code, http.StatusOK)
		gt.A(t, out.Events).Length(0)
		gt.Equal(t, out.Cursor, uint64(0))
	})

	t.Run("BadCursorRejected", func(t *testing.T) {
		code, _ := pollOnce("not-a-number")
		gt.Equal(t, code, http.StatusBadRequest)
	})

	t.Run("EmitThenPoll", func(t *testing.T) {
		// A fresh client gets the current position without replay
		emit(push.NoticeDelete, "n-gone")
		first := waitCursor("0", 0)
		gt.A(t, first.Events).Length(0)

		// From then on each poll returns what happened since its cursor
		emit(push.EventDelete, "e-gone")
		second := waitCursor("1", first.Cursor)
		gt.A(t, second.Events).Length(1)
		gt.Equal(t, second.Events[0].Event, push.EventDelete)
		gt.N(t, second.Events[0].Seq).Greater(first.Cursor)
	})

	t.Run("UnknownEventNameRejected", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost, "/api/push/", "", map[string]any{
			"event":   "notice:explode",
			"payload": map[string]string{"id": "x"},
		})
		gt.Equal(t, rec.Code, http.StatusBadRequest)
	})
}
