package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/client/store"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

func TestFeedbackQueueSubmit(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/feedback", func(w http.ResponseWriter, r *http.Request) {
		var f feedback.Feedback
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&f))
		f.ID = types.NewFeedbackID()
		f.CreatedAt = time.Now()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		gt.NoError(t, json.NewEncoder(w).Encode(&f))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "cache.json")
	c, err := cache.Open(ctx, path)
	gt.NoError(t, err).Required()

	q := store.NewFeedbackQueue(ctx, c, api.New(ts.URL))
	created, err := q.Submit(ctx, api.SubmitFeedbackInput{
		Rating:   4,
		Category: "usability",
		Feedback: "pin ordering is great",
	})
	gt.NoError(t, err).Required()
	gt.Equal(t, created.Rating, 4)
	gt.A(t, q.History()).Length(1)

	// History survives a new session.
	c2, err := cache.Open(ctx, path)
	gt.NoError(t, err).Required()
	q2 := store.NewFeedbackQueue(ctx, c2, api.New(ts.URL))
	gt.A(t, q2.History()).Length(1)
	gt.Equal(t, q2.History()[0].Feedback, "pin ordering is great")
}

func TestFeedbackQueueFailureNotRecorded(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		gt.NoError(t, json.NewEncoder(w).Encode(map[string]string{"message": "rating out of range"}))
	}))
	defer ts.Close()

	c, err := cache.Open(ctx, filepath.Join(t.TempDir(), "cache.json"))
	gt.NoError(t, err).Required()

	q := store.NewFeedbackQueue(ctx, c, api.New(ts.URL))
	_, err = q.Submit(ctx, api.SubmitFeedbackInput{Rating: 9, Category: "x", Feedback: "y"})
	gt.Error(t, err)
	gt.A(t, q.History()).Length(0)
}
