package sqldb

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func (r *DB) CreateEvent(ctx context.Context, e *event.Event) error {
	query := `
		INSERT INTO events (id, title, description, date, type)
		VALUES (:id, :title, :description, :date, :type)
	`
	if _, err := r.db.NamedExecContext(ctx, query, e); err != nil {
		return r.eb.Wrap(err, "failed to insert event",
			goerr.T(errs.TagDatabase), goerr.V("event_id", e.ID))
	}
	return nil
}

func (r *DB) ListEvents(ctx context.Context) (event.Events, error) {
	var out event.Events
	query := "SELECT id, title, description, date, type FROM events ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, r.eb.Wrap(err, "failed to list events", goerr.T(errs.TagDatabase))
	}
	return out, nil
}

func (r *DB) DeleteEvent(ctx context.Context, id types.EventID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return r.eb.Wrap(err, "failed to delete event",
			goerr.T(errs.TagDatabase), goerr.V("event_id", id))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return r.eb.Wrap(err, "failed to read affected rows", goerr.T(errs.TagDatabase))
	}
	if affected == 0 {
		return r.eb.New("event not found",
			goerr.T(errs.TagNotFound), goerr.V("event_id", id))
	}
	return nil
}
