package usecase

import (
	"context"
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// CreateFeedback validates and stores a feedback submission. Feedback is not
// broadcast; it only accumulates server-side.
func (uc *UseCases) CreateFeedback(ctx context.Context, f *feedback.Feedback) (*feedback.Feedback, error) {
	created := *f
	created.ID = types.NewFeedbackID()
	created.CreatedAt = time.Now()
	if err := created.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repository.CreateFeedback(ctx, &created); err != nil {
		return nil, err
	}

	logging.From(ctx).Info("feedback received",
		"feedback_id", created.ID, "rating", created.Rating)
	return &created, nil
}

func (uc *UseCases) ListFeedback(ctx context.Context) ([]*feedback.Feedback, error) {
	return uc.repository.ListFeedback(ctx)
}
