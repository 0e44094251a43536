package store

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"

	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// NoticeStore is the authoritative in-memory notice collection for one client
// session. It applies every mutation optimistically, mirrors its state into
// the local cache, and reconciles against the remote service and push events.
// All mutations are atomic: subscribers and readers only ever observe a
// complete state.
type NoticeStore struct {
	mu       sync.Mutex
	cache    *cache.Cache
	api      *api.Client
	notices  notice.Notices
	pinned   []types.NoticeID
	comments map[types.NoticeID][]notice.Comment
	closed   bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

func NewNoticeStore(c *cache.Cache, apiClient *api.Client) *NoticeStore {
	return &NoticeStore{
		cache:    c,
		api:      apiClient,
		comments: make(map[types.NoticeID][]notice.Comment),
		subs:     make(map[int]func()),
	}
}

// Subscribe registers a callback invoked after every observable state change.
// The returned function deregisters it; views call it on teardown.
func (s *NoticeStore) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *NoticeStore) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Close marks the store as torn down. Results of requests that resolve after
// Close are discarded instead of being applied to a dead store.
func (s *NoticeStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Load restores the previous session's snapshot from the local cache. A
// missing or malformed snapshot yields an empty collection; startup never
// fails on cache damage.
func (s *NoticeStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var notices notice.Notices
	if err := s.cache.Get(cache.KeyNotices, &notices); err == nil {
		s.notices = notices
	} else {
		errs.HandleRecovered(ctx, err)
	}

	var pinned []types.NoticeID
	if err := s.cache.Get(cache.KeyPinned, &pinned); err == nil {
		s.pinned = pinned
	} else {
		errs.HandleRecovered(ctx, err)
	}

	for _, n := range s.notices {
		var comments []notice.Comment
		if err := s.cache.Get(cache.CommentsKey(n.ID), &comments); err == nil {
			s.comments[n.ID] = comments
		}
	}
	s.prunePinsLocked()
}

// Add inserts the notice optimistically (new-first), persists it, then issues
// the create request. On success the placeholder entry is swapped for the
// server-confirmed record, matched by submission identity since the ID
// changes. On failure the optimistic entry stays in place and the error is
// returned for the caller to surface; there is no automatic rollback.
func (s *NoticeStore) Add(ctx context.Context, n *notice.Notice) (*notice.Notice, error) {
	if n.ID == types.EmptyNoticeID {
		n.ID = types.NewLocalNoticeID()
	}
	if n.Date == "" {
		n.Date = time.Now().Format(notice.DateLayout)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, goerr.New("notice store is closed")
	}
	optimistic := *n
	s.notices = append(notice.Notices{&optimistic}, s.notices...)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	confirmed, err := s.api.CreateNotice(ctx, api.CreateNoticeInput{
		Title:    n.Title,
		Content:  n.Content,
		Category: n.Category,
		Priority: n.Priority,
		ImageURL: n.ImageURL,
		Author:   n.Author,
	})
	if err != nil {
		return &optimistic, goerr.Wrap(err, "failed to create notice on server",
			goerr.V("notice_id", optimistic.ID))
	}

	s.mu.Lock()
	if s.closed {
		// Store was torn down while the request was in flight.
		s.mu.Unlock()
		return confirmed, nil
	}
	s.reconcileLocked(confirmed)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	return confirmed, nil
}

// reconcileLocked replaces the optimistic placeholder matching the confirmed
// record's submission identity. If the push channel already delivered the
// confirmed record, the upsert there has done the work and this is a no-op.
func (s *NoticeStore) reconcileLocked(confirmed *notice.Notice) {
	for i, n := range s.notices {
		if n.ID == confirmed.ID {
			cp := *confirmed
			s.notices[i] = &cp
			return
		}
	}
	for i, n := range s.notices {
		if n.ID.IsLocal() && n.SameSubmission(confirmed) {
			cp := *confirmed
			s.notices[i] = &cp
			s.moveCommentsLocked(n.ID, confirmed.ID)
			return
		}
	}
	cp := *confirmed
	s.notices = append(notice.Notices{&cp}, s.notices...)
}

func (s *NoticeStore) moveCommentsLocked(from, to types.NoticeID) {
	if comments, ok := s.comments[from]; ok {
		delete(s.comments, from)
		s.comments[to] = comments
		if err := s.cache.Delete(cache.CommentsKey(from)); err != nil {
			logging.Default().Warn("failed to drop cached comments", "error", err)
		}
		if err := s.cache.Set(cache.CommentsKey(to), comments); err != nil {
			logging.Default().Warn("failed to persist comments", "error", err)
		}
	}
	for i, id := range s.pinned {
		if id == from {
			s.pinned[i] = to
		}
	}
}

// Remove drops the notice, its pins, and its comments as one atomic step,
// persists, then issues the delete request. A 404 from the server means the
// notice was already gone and counts as success. On a transport failure the
// item is not restored; the error is surfaced to the caller (known
// limitation, documented in DESIGN.md).
func (s *NoticeStore) Remove(ctx context.Context, id types.NoticeID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return goerr.New("notice store is closed")
	}
	removed := s.removeLocked(ctx, id)
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if removed {
		s.notify()
	}

	if err := s.api.DeleteNotice(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete notice on server", goerr.V("notice_id", id))
	}
	return nil
}

func (s *NoticeStore) removeLocked(ctx context.Context, id types.NoticeID) bool {
	idx := slices.IndexFunc(s.notices, func(n *notice.Notice) bool { return n.ID == id })
	if idx < 0 {
		return false
	}
	s.notices = slices.Delete(s.notices, idx, idx+1)
	s.pinned = slices.DeleteFunc(s.pinned, func(p types.NoticeID) bool { return p == id })
	delete(s.comments, id)
	if err := s.cache.Delete(cache.CommentsKey(id)); err != nil {
		logging.From(ctx).Warn("failed to drop cached comments", "error", err, "notice_id", id)
	}
	return true
}

// ApplyRemoteSnapshot replaces the whole collection with a freshly fetched
// authoritative list. Pins and comments referencing notices absent from the
// snapshot are pruned. Applying the same snapshot twice is a no-op.
func (s *NoticeStore) ApplyRemoteSnapshot(ctx context.Context, list notice.Notices) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.notices = make(notice.Notices, 0, len(list))
	for _, n := range list {
		cp := *n
		s.notices = append(s.notices, &cp)
	}
	s.prunePinsLocked()
	s.pruneCommentsLocked(ctx)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// ApplyPushEvent merges a broadcast entity change into the store. Add and
// update events upsert by ID, so duplicate delivery (including re-receipt of
// this client's own events) leaves the store unchanged. Delete of an absent
// ID is a no-op, not an error.
func (s *NoticeStore) ApplyPushEvent(ctx context.Context, ev *push.Envelope) error {
	switch ev.Event {
	case push.NoticeAdd, push.NoticeUpdate:
		var n notice.Notice
		if err := json.Unmarshal(ev.Payload, &n); err != nil {
			return goerr.Wrap(err, "malformed notice push payload", goerr.V("event", ev.Event))
		}
		if err := n.ID.Validate(); err != nil {
			return goerr.Wrap(err, "notice push payload without ID")
		}
		s.upsert(ctx, &n)
		return nil

	case push.NoticeDelete:
		var p push.DeletePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return goerr.Wrap(err, "malformed delete push payload")
		}
		s.deleteByID(ctx, types.NoticeID(p.ID))
		return nil

	default:
		return goerr.New("unexpected push event for notice store", goerr.V("event", ev.Event))
	}
}

func (s *NoticeStore) upsert(ctx context.Context, n *notice.Notice) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for i, cur := range s.notices {
		if cur.ID == n.ID {
			cp := *n
			s.notices[i] = &cp
			s.persistLocked(ctx)
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	// The client's own optimistic add may race its push confirmation; the
	// confirmed record then carries a server ID while the collection still
	// holds the local placeholder. Treat it as the reconciliation.
	for i, cur := range s.notices {
		if cur.ID.IsLocal() && cur.SameSubmission(n) {
			cp := *n
			s.notices[i] = &cp
			s.moveCommentsLocked(cur.ID, n.ID)
			s.persistLocked(ctx)
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	cp := *n
	s.notices = append(notice.Notices{&cp}, s.notices...)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

func (s *NoticeStore) deleteByID(ctx context.Context, id types.NoticeID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	removed := s.removeLocked(ctx, id)
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if removed {
		s.notify()
	}
}

// TogglePin flips pin membership. Only notices currently in the store can be
// pinned, which keeps the pin set free of dangling references.
func (s *NoticeStore) TogglePin(ctx context.Context, id types.NoticeID) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if slices.Contains(s.pinned, id) {
		s.pinned = slices.DeleteFunc(s.pinned, func(p types.NoticeID) bool { return p == id })
	} else {
		if !slices.ContainsFunc(s.notices, func(n *notice.Notice) bool { return n.ID == id }) {
			s.mu.Unlock()
			return
		}
		s.pinned = append(s.pinned, id)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// AddComment appends a comment to a notice present in the store.
func (s *NoticeStore) AddComment(ctx context.Context, id types.NoticeID, text, author string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return goerr.New("notice store is closed")
	}
	if !slices.ContainsFunc(s.notices, func(n *notice.Notice) bool { return n.ID == id }) {
		return goerr.New("notice not found", goerr.T(errs.TagNotFound), goerr.V("notice_id", id))
	}
	s.comments[id] = append(s.comments[id], notice.NewComment(text, author))
	if err := s.cache.Set(cache.CommentsKey(id), s.comments[id]); err != nil {
		logging.From(ctx).Warn("failed to persist comments", "error", err, "notice_id", id)
	}
	return nil
}

// Notices returns a copy of the ordered collection.
func (s *NoticeStore) Notices() notice.Notices {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(notice.Notices, 0, len(s.notices))
	for _, n := range s.notices {
		cp := *n
		out = append(out, &cp)
	}
	return out
}

// Get returns the notice with the given ID, or nil.
func (s *NoticeStore) Get(id types.NoticeID) *notice.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notices {
		if n.ID == id {
			cp := *n
			return &cp
		}
	}
	return nil
}

// Pinned returns the pinned IDs in pin order.
func (s *NoticeStore) Pinned() []types.NoticeID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.pinned)
}

// Comments returns the comments of a notice.
func (s *NoticeStore) Comments(id types.NoticeID) []notice.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.comments[id])
}

func (s *NoticeStore) prunePinsLocked() {
	present := make(map[types.NoticeID]struct{}, len(s.notices))
	for _, n := range s.notices {
		present[n.ID] = struct{}{}
	}
	s.pinned = slices.DeleteFunc(s.pinned, func(id types.NoticeID) bool {
		_, ok := present[id]
		return !ok
	})
}

func (s *NoticeStore) pruneCommentsLocked(ctx context.Context) {
	present := make(map[types.NoticeID]struct{}, len(s.notices))
	for _, n := range s.notices {
		present[n.ID] = struct{}{}
	}
	for id := range s.comments {
		if _, ok := present[id]; !ok {
			delete(s.comments, id)
			if err := s.cache.Delete(cache.CommentsKey(id)); err != nil {
				logging.From(ctx).Warn("failed to drop cached comments", "error", err, "notice_id", id)
			}
		}
	}
}

// persistLocked mirrors the in-memory state into the local cache. The store
// is the authority; cache write failures are logged, never surfaced.
func (s *NoticeStore) persistLocked(ctx context.Context) {
	if err := s.cache.Set(cache.KeyNotices, s.notices); err != nil {
		logging.From(ctx).Warn("failed to persist notices", "error", err)
	}
	if err := s.cache.Set(cache.KeyPinned, s.pinned); err != nil {
		logging.From(ctx).Warn("failed to persist pinned notices", "error", err)
	}
}
