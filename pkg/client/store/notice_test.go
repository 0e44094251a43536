package store_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/client/store"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

// boardServer is a minimal stand-in for the notice endpoints. It assigns
// server IDs on create and records deletes.
type boardServer struct {
	mu       sync.Mutex
	created  notice.Notices
	deleted  []string
	rejectAs string // when set, POST fails with 400 and this message
}

func (x *boardServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/notices", func(w http.ResponseWriter, r *http.Request) {
		x.mu.Lock()
		defer x.mu.Unlock()

		if x.rejectAs != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": x.rejectAs})
			return
		}

		var n notice.Notice
		if err := json.NewDecoder(r.Body).Decode(&n); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		n.ID = types.NewNoticeID()
		if n.Date == "" {
			n.Date = "2026-08-29"
		}
		x.created = append(x.created, &n)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(&n)
	})
	mux.HandleFunc("DELETE /api/notices/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/notices/")
		x.mu.Lock()
		x.deleted = append(x.deleted, id)
		x.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func newNoticeStore(t *testing.T, baseURL string) (*store.NoticeStore, *cache.Cache) {
	t.Helper()
	c, err := cache.Open(context.Background(), filepath.Join(t.TempDir(), "cache.json"))
	gt.NoError(t, err).Required()
	s := store.NewNoticeStore(c, api.New(baseURL))
	t.Cleanup(s.Close)
	return s, c
}

func testNotice(title string) *notice.Notice {
	return &notice.Notice{
		ID:       types.NewNoticeID(),
		Title:    title,
		Content:  "content of " + title,
		Category: "Clubs",
		Priority: types.PriorityMedium,
		Date:     "2026-08-29",
		Author:   "alice@example.edu",
	}
}

func TestNoticeStoreOptimisticAdd(t *testing.T) {
	ctx := context.Background()
	srv := &boardServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	s, _ := newNoticeStore(t, ts.URL)

	var snapshots []notice.Notices
	unsub := s.Subscribe(func() {
		snapshots = append(snapshots, s.Notices())
	})
	defer unsub()

	confirmed, err := s.Add(ctx, &notice.Notice{
		Title:    "Chess night",
		Content:  "Friday 7pm",
		Category: "Clubs",
		Priority: types.PriorityLow,
		Author:   "alice@example.edu",
	})
	gt.NoError(t, err).Required()
	gt.False(t, confirmed.ID.IsLocal())

	// First notification carries the placeholder, the second the confirmed
	// record swapped in under the server ID.
	gt.N(t, len(snapshots)).GreaterOrEqual(2)
	gt.A(t, snapshots[0]).Length(1)
	gt.True(t, snapshots[0][0].ID.IsLocal())

	final := s.Notices()
	gt.A(t, final).Length(1)
	gt.Equal(t, final[0].ID, confirmed.ID)
	gt.Equal(t, final[0].Title, "Chess night")
}

func TestNoticeStoreAddKeepsOptimisticOnFailure(t *testing.T) {
	ctx := context.Background()
	srv := &boardServer{rejectAs: "User not found"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	s, _ := newNoticeStore(t, ts.URL)

	optimistic, err := s.Add(ctx, &notice.Notice{
		Title:    "Ghost post",
		Content:  "no author on record",
		Category: "Clubs",
		Priority: types.PriorityMedium,
		Author:   "nobody@example.edu",
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagValidation))
	gt.S(t, err.Error()).Contains("User not found")

	// No rollback: the entry stays with its placeholder ID.
	final := s.Notices()
	gt.A(t, final).Length(1)
	gt.Equal(t, final[0].ID, optimistic.ID)
	gt.True(t, final[0].ID.IsLocal())
}

func TestNoticeStoreRemoveCascades(t *testing.T) {
	ctx := context.Background()
	srv := &boardServer{}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	s, c := newNoticeStore(t, ts.URL)

	n := testNotice("Trip signup")
	s.ApplyRemoteSnapshot(ctx, notice.Notices{n})
	s.TogglePin(ctx, n.ID)
	gt.NoError(t, s.AddComment(ctx, n.ID, "count me in", "bob@example.edu"))

	gt.NoError(t, s.Remove(ctx, n.ID))

	gt.A(t, s.Notices()).Length(0)
	gt.A(t, s.Pinned()).Length(0)
	gt.A(t, s.Comments(n.ID)).Length(0)

	var cached []notice.Comment
	gt.Error(t, c.Get(cache.CommentsKey(n.ID), &cached))

	srv.mu.Lock()
	defer srv.mu.Unlock()
	gt.A(t, srv.deleted).Length(1)
	gt.Equal(t, srv.deleted[0], n.ID.String())
}

func TestNoticeStorePushUpsertIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newNoticeStore(t, "http://localhost:0")

	n := testNotice("Library hours")
	env, err := push.New(push.NoticeAdd, n)
	gt.NoError(t, err).Required()

	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.A(t, s.Notices()).Length(1)

	updated := *n
	updated.Title = "Library hours (updated)"
	envUpd, err := push.New(push.NoticeUpdate, &updated)
	gt.NoError(t, err).Required()
	gt.NoError(t, s.ApplyPushEvent(ctx, envUpd))

	final := s.Notices()
	gt.A(t, final).Length(1)
	gt.Equal(t, final[0].Title, "Library hours (updated)")
}

func TestNoticeStorePushDeleteAbsent(t *testing.T) {
	ctx := context.Background()
	s, _ := newNoticeStore(t, "http://localhost:0")

	env, err := push.New(push.NoticeDelete, &push.DeletePayload{ID: types.NewNoticeID().String()})
	gt.NoError(t, err).Required()

	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.A(t, s.Notices()).Length(0)
}

func TestNoticeStoreOwnPushAbsorbsPlaceholder(t *testing.T) {
	ctx := context.Background()
	srv := &boardServer{rejectAs: "service unavailable"}
	ts := httptest.NewServer(srv.handler())
	defer ts.Close()

	s, _ := newNoticeStore(t, ts.URL)

	// The create request failed, so the placeholder is still in place when
	// the push confirmation of the same submission arrives.
	optimistic, err := s.Add(ctx, &notice.Notice{
		Title:    "Exam schedule",
		Content:  "posted outside",
		Category: "Examinations",
		Priority: types.PriorityHigh,
		Author:   "carol@example.edu",
	})
	gt.Error(t, err)
	gt.True(t, optimistic.ID.IsLocal())

	gt.NoError(t, s.AddComment(ctx, optimistic.ID, "finally", "carol@example.edu"))

	confirmed := *optimistic
	confirmed.ID = types.NewNoticeID()
	env, err := push.New(push.NoticeAdd, &confirmed)
	gt.NoError(t, err).Required()
	gt.NoError(t, s.ApplyPushEvent(ctx, env))

	final := s.Notices()
	gt.A(t, final).Length(1)
	gt.Equal(t, final[0].ID, confirmed.ID)

	// Comments followed the placeholder to the confirmed ID.
	gt.A(t, s.Comments(confirmed.ID)).Length(1)
	gt.A(t, s.Comments(optimistic.ID)).Length(0)
}

func TestNoticeStoreCacheRestoresSession(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.json")

	c1, err := cache.Open(ctx, path)
	gt.NoError(t, err).Required()
	s1 := store.NewNoticeStore(c1, api.New("http://localhost:0"))

	a := testNotice("First")
	b := testNotice("Second")
	s1.ApplyRemoteSnapshot(ctx, notice.Notices{a, b})
	s1.TogglePin(ctx, b.ID)
	gt.NoError(t, s1.AddComment(ctx, a.ID, "nice", "dave@example.edu"))
	s1.Close()

	c2, err := cache.Open(ctx, path)
	gt.NoError(t, err).Required()
	s2 := store.NewNoticeStore(c2, api.New("http://localhost:0"))
	s2.Load(ctx)

	gt.A(t, s2.Notices()).Length(2)
	gt.A(t, s2.Pinned()).Length(1)
	gt.Equal(t, s2.Pinned()[0], b.ID)
	gt.A(t, s2.Comments(a.ID)).Length(1)
	gt.Equal(t, s2.Comments(a.ID)[0].Text, "nice")
}

func TestNoticeStoreSnapshotPrunesDanglingState(t *testing.T) {
	ctx := context.Background()
	s, _ := newNoticeStore(t, "http://localhost:0")

	kept := testNotice("Kept")
	dropped := testNotice("Dropped")
	s.ApplyRemoteSnapshot(ctx, notice.Notices{kept, dropped})
	s.TogglePin(ctx, dropped.ID)
	gt.NoError(t, s.AddComment(ctx, dropped.ID, "bye", "eve@example.edu"))

	s.ApplyRemoteSnapshot(ctx, notice.Notices{kept})

	gt.A(t, s.Notices()).Length(1)
	gt.A(t, s.Pinned()).Length(0)
	gt.A(t, s.Comments(dropped.ID)).Length(0)
}

func TestNoticeStoreTogglePinUnknownID(t *testing.T) {
	ctx := context.Background()
	s, _ := newNoticeStore(t, "http://localhost:0")

	s.TogglePin(ctx, types.NewNoticeID())
	gt.A(t, s.Pinned()).Length(0)
}

func TestNoticeStoreClosed(t *testing.T) {
	ctx := context.Background()
	s, _ := newNoticeStore(t, "http://localhost:0")

	n := testNotice("Before close")
	s.ApplyRemoteSnapshot(ctx, notice.Notices{n})
	s.Close()

	_, err := s.Add(ctx, testNotice("After close"))
	gt.Error(t, err)

	// Push events after teardown are discarded.
	env, err := push.New(push.NoticeAdd, testNotice("Pushed"))
	gt.NoError(t, err).Required()
	gt.NoError(t, s.ApplyPushEvent(ctx, env))
	gt.A(t, s.Notices()).Length(1)
}
