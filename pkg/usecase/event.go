package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// CreateEvent stores a calendar event and broadcasts it to connected clients.
func (uc *UseCases) CreateEvent(ctx context.Context, e *event.Event) (*event.Event, error) {
	created := *e
	created.ID = types.NewEventID()
	if created.Type == "" {
		created.Type = types.EventTypeEvent
	}
	if err := created.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repository.CreateEvent(ctx, &created); err != nil {
		return nil, err
	}

	uc.broadcast(ctx, push.EventAdd, &created)

	logging.From(ctx).Info("event created", "event_id", created.ID, "type", created.Type)
	return &created, nil
}

func (uc *UseCases) ListEvents(ctx context.Context) (event.Events, error) {
	return uc.repository.ListEvents(ctx)
}

func (uc *UseCases) DeleteEvent(ctx context.Context, id types.EventID) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid event ID", goerr.T(errs.TagValidation))
	}
	if err := uc.repository.DeleteEvent(ctx, id); err != nil {
		return err
	}

	uc.broadcast(ctx, push.EventDelete, &push.DeletePayload{ID: id.String()})

	logging.From(ctx).Info("event deleted", "event_id", id)
	return nil
}
