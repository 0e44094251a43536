package sqldb

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/m-mizutani/goerr/v2"
)

func (r *DB) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	query := `
		INSERT INTO feedback (id, rating, category, feedback, created_at)
		VALUES (:id, :rating, :category, :feedback, :created_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, f); err != nil {
		return r.eb.Wrap(err, "failed to insert feedback",
			goerr.T(errs.TagDatabase), goerr.V("feedback_id", f.ID))
	}
	return nil
}

func (r *DB) ListFeedback(ctx context.Context) ([]*feedback.Feedback, error) {
	var out []*feedback.Feedback
	query := "SELECT id, rating, category, feedback, created_at FROM feedback ORDER BY created_at DESC"
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, r.eb.Wrap(err, "failed to list feedback", goerr.T(errs.TagDatabase))
	}
	return out, nil
}
