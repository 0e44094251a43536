package memory

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func (r *Memory) CreateEvent(ctx context.Context, e *event.Event) error {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()

	if e.ID == types.EmptyEventID {
		return r.eb.New("event ID is empty")
	}
	if _, exists := r.events[e.ID]; exists {
		return r.eb.New("event already exists",
			goerr.T(errs.TagConflict), goerr.V("event_id", e.ID))
	}

	eventCopy := *e
	r.events[e.ID] = &eventCopy
	r.eventOrder = append(r.eventOrder, e.ID)

	return nil
}

// ListEvents returns events newest created first.
func (r *Memory) ListEvents(ctx context.Context) (event.Events, error) {
	r.eventMu.RLock()
	defer r.eventMu.RUnlock()

	out := make(event.Events, 0, len(r.eventOrder))
	for i := len(r.eventOrder) - 1; i >= 0; i-- {
		if e, ok := r.events[r.eventOrder[i]]; ok {
			eventCopy := *e
			out = append(out, &eventCopy)
		}
	}
	return out, nil
}

func (r *Memory) DeleteEvent(ctx context.Context, id types.EventID) error {
	r.eventMu.Lock()
	defer r.eventMu.Unlock()

	if _, exists := r.events[id]; !exists {
		return r.eb.New("event not found",
			goerr.T(errs.TagNotFound), goerr.V("event_id", id))
	}

	delete(r.events, id)
	for i, ordered := range r.eventOrder {
		if ordered == id {
			r.eventOrder = append(r.eventOrder[:i], r.eventOrder[i+1:]...)
			break
		}
	}
	return nil
}
