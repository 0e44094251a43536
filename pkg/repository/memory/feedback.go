package memory

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
)

func (r *Memory) CreateFeedback(ctx context.Context, f *feedback.Feedback) error {
	r.feedbackMu.Lock()
	defer r.feedbackMu.Unlock()

	if f.ID == "" {
		return r.eb.New("feedback ID is empty")
	}

	feedbackCopy := *f
	r.feedbacks = append(r.feedbacks, &feedbackCopy)
	return nil
}

// ListFeedback returns feedback newest created first.
func (r *Memory) ListFeedback(ctx context.Context) ([]*feedback.Feedback, error) {
	r.feedbackMu.RLock()
	defer r.feedbackMu.RUnlock()

	out := make([]*feedback.Feedback, 0, len(r.feedbacks))
	for i := len(r.feedbacks) - 1; i >= 0; i-- {
		feedbackCopy := *r.feedbacks[i]
		out = append(out, &feedbackCopy)
	}
	return out, nil
}
