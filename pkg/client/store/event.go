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
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// EventStore mirrors NoticeStore for calendar events. Events and notices are
// independent: no ordering is guaranteed between the two stores.
type EventStore struct {
	mu     sync.Mutex
	cache  *cache.Cache
	api    *api.Client
	events event.Events
	closed bool

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

func NewEventStore(c *cache.Cache, apiClient *api.Client) *EventStore {
	return &EventStore{
		cache: c,
		api:   apiClient,
		subs:  make(map[int]func()),
	}
}

func (s *EventStore) Subscribe(fn func()) func() {
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

func (s *EventStore) notify() {
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

func (s *EventStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Load restores the cached event snapshot; malformed data yields an empty
// collection.
func (s *EventStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events event.Events
	if err := s.cache.Get(cache.KeyEvents, &events); err == nil {
		s.events = events
	} else {
		errs.HandleRecovered(ctx, err)
	}
}

// Add inserts the event optimistically, persists, then creates it on the
// server and reconciles the placeholder with the confirmed record.
func (s *EventStore) Add(ctx context.Context, e *event.Event) (*event.Event, error) {
	if e.ID == types.EmptyEventID {
		e.ID = types.NewLocalEventID()
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, goerr.New("event store is closed")
	}
	optimistic := *e
	s.events = append(event.Events{&optimistic}, s.events...)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	confirmed, err := s.api.CreateEvent(ctx, api.CreateEventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Type:        e.Type,
	})
	if err != nil {
		return &optimistic, goerr.Wrap(err, "failed to create event on server",
			goerr.V("event_id", optimistic.ID))
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return confirmed, nil
	}
	s.reconcileLocked(confirmed)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()

	return confirmed, nil
}

func (s *EventStore) reconcileLocked(confirmed *event.Event) {
	for i, e := range s.events {
		if e.ID == confirmed.ID {
			cp := *confirmed
			s.events[i] = &cp
			return
		}
	}
	for i, e := range s.events {
		if e.ID.IsLocal() && e.Title == confirmed.Title && e.Type == confirmed.Type &&
			e.Description == confirmed.Description {
			cp := *confirmed
			s.events[i] = &cp
			return
		}
	}
	cp := *confirmed
	s.events = append(event.Events{&cp}, s.events...)
}

// Remove drops the event optimistically, persists, then deletes it remotely.
// A 404 counts as success; transport failures are surfaced without restoring
// the entry.
func (s *EventStore) Remove(ctx context.Context, id types.EventID) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return goerr.New("event store is closed")
	}
	removed := s.removeLocked(id)
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if removed {
		s.notify()
	}

	if err := s.api.DeleteEvent(ctx, id); err != nil {
		return goerr.Wrap(err, "failed to delete event on server", goerr.V("event_id", id))
	}
	return nil
}

func (s *EventStore) removeLocked(id types.EventID) bool {
	idx := slices.IndexFunc(s.events, func(e *event.Event) bool { return e.ID == id })
	if idx < 0 {
		return false
	}
	s.events = slices.Delete(s.events, idx, idx+1)
	return true
}

// ApplyRemoteSnapshot replaces the collection with the authoritative list.
func (s *EventStore) ApplyRemoteSnapshot(ctx context.Context, list event.Events) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.events = make(event.Events, 0, len(list))
	for _, e := range list {
		cp := *e
		s.events = append(s.events, &cp)
	}
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// ApplyPushEvent merges an event:add or event:delete broadcast, idempotently.
func (s *EventStore) ApplyPushEvent(ctx context.Context, ev *push.Envelope) error {
	switch ev.Event {
	case push.EventAdd:
		var e event.Event
		if err := json.Unmarshal(ev.Payload, &e); err != nil {
			return goerr.Wrap(err, "malformed event push payload")
		}
		if err := e.ID.Validate(); err != nil {
			return goerr.Wrap(err, "event push payload without ID")
		}
		s.upsert(ctx, &e)
		return nil

	case push.EventDelete:
		var p push.DeletePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return goerr.Wrap(err, "malformed delete push payload")
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return nil
		}
		removed := s.removeLocked(types.EventID(p.ID))
		if removed {
			s.persistLocked(ctx)
		}
		s.mu.Unlock()
		if removed {
			s.notify()
		}
		return nil

	default:
		return goerr.New("unexpected push event for event store", goerr.V("event", ev.Event))
	}
}

func (s *EventStore) upsert(ctx context.Context, e *event.Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	for i, cur := range s.events {
		if cur.ID == e.ID {
			cp := *e
			s.events[i] = &cp
			s.persistLocked(ctx)
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	cp := *e
	s.events = append(event.Events{&cp}, s.events...)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Events returns a copy of the collection.
func (s *EventStore) Events() event.Events {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(event.Events, 0, len(s.events))
	for _, e := range s.events {
		cp := *e
		out = append(out, &cp)
	}
	return out
}

// EventsForDate returns events on the same calendar day as t, comparing
// year/month/day of each side's own representation.
func (s *EventStore) EventsForDate(t time.Time) event.Events {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out event.Events
	for _, e := range s.events {
		if e.OnDay(t) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

func (s *EventStore) persistLocked(ctx context.Context) {
	if err := s.cache.Set(cache.KeyEvents, s.events); err != nil {
		logging.From(ctx).Warn("failed to persist events", "error", err)
	}
}
