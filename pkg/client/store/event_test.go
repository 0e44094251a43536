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
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

func newEventStore(t *testing.T, baseURL string) *store.EventStore {
	t.Helper()
	c, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.json"))
	gt.NoError(t, err).Required()
	s := store.NewEventStore(c, api.New(baseURL))
	t.Cleanup(s.Close)
	return s
}

func testEvent(title string, day time.Time) *event.Event {
	return &event.Event{
		ID:    types.NewEventID(),
		Title: title,
		Date:  day,
		Type:  types.EventTypeEvent,
	}
}

func TestEventStoreAddReconciles(t *testing.T) {
	ctx := context.Background()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/events", func(w http.ResponseWriter, r *http.Request) {
		var e event.Event
		gt.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		e.ID = types.NewEventID()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		gt.NoError(t, json.NewEncoder(w).Encode(&e))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	s := newEventStore(t, ts.URL)

	confirmed, err := s.Add(ctx, &event.Event{
		Title: "Midterm",
		Date:  time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
		Type:  types.EventTypeTask,
	})
	gt.NoError(t, err).Required()
	gt.False(t, confirmed.ID.IsLocal())

	final := s.Events()
	gt.A(t, final).Length(1)
	gt.Equal(t, final[0].ID, confirmed.ID)
}

func TestEventStorePushIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "http://localhost:0")

	e := testEvent("Open day", time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC))
	env, err := push.New(push.EventAdd, e)
	gt.NoError(t, err).Required()

	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.A(t, s.Events()).Length(1)

	del, err := push.New(push.EventDelete, &push.DeletePayload{ID: e.ID.String()})
	gt.NoError(t, err).Required()
	gt.NoError(t, s.ApplyPushEvent(ctx, del))
	gt.NoError(t, s.ApplyPushEvent(ctx, del))
	gt.A(t, s.Events()).Length(0)
}

func TestEventStoreEventsForDate(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "http://localhost:0")

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	s.ApplyRemoteSnapshot(ctx, event.Events{
		testEvent("Morning lecture", day.Add(9*time.Hour)),
		testEvent("Evening social", day.Add(19*time.Hour)),
		testEvent("Other day", day.AddDate(0, 0, 1)),
	})

	onDay := s.EventsForDate(day)
	gt.A(t, onDay).Length(2)
}

func TestEventStoreRejectsNoticeEvents(t *testing.T) {
	ctx := context.Background()
	s := newEventStore(t, "http://localhost:0")

	env, err := push.New(push.NoticeAdd, testNotice("wrong store"))
	gt.NoError(t, err).Required()
	gt.Error(t, s.ApplyPushEvent(ctx, env))
}
