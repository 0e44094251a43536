package store

import (
	"context"
	"slices"
	"sync"

	"github.com/campus-lab/campusboard/pkg/client/api"
	"github.com/campus-lab/campusboard/pkg/client/cache"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// FeedbackQueue submits feedback fire-and-forget. Only confirmed submissions
// are appended to the cached history, so an unsent entry is never recorded as
// sent. The queue never retries on its own; the caller decides, and must not
// re-submit an entry that already succeeded.
type FeedbackQueue struct {
	mu      sync.Mutex
	cache   *cache.Cache
	api     *api.Client
	history []*feedback.Feedback
}

func NewFeedbackQueue(ctx context.Context, c *cache.Cache, apiClient *api.Client) *FeedbackQueue {
	q := &FeedbackQueue{
		cache: c,
		api:   apiClient,
	}
	if err := c.Get(cache.KeyFeedbackHistory, &q.history); err != nil {
		errs.HandleRecovered(ctx, err)
	}
	return q
}

// Submit posts the entry to the remote service. On success it is appended to
// the local history; on failure the error is surfaced and nothing is cached.
func (q *FeedbackQueue) Submit(ctx context.Context, input api.SubmitFeedbackInput) (*feedback.Feedback, error) {
	created, err := q.api.SubmitFeedback(ctx, input)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to submit feedback")
	}

	q.mu.Lock()
	q.history = append(q.history, created)
	if err := q.cache.Set(cache.KeyFeedbackHistory, q.history); err != nil {
		logging.From(ctx).Warn("failed to persist feedback history", "error", err)
	}
	q.mu.Unlock()

	return created, nil
}

// History returns the locally cached list of confirmed submissions.
func (q *FeedbackQueue) History() []*feedback.Feedback {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.history)
}
