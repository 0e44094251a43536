package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/model/push"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/utils/logging"
)

// CreateNotice stores a new notice and broadcasts it to connected clients.
// The author must be a registered user's email; the submitted value is kept
// verbatim so optimistic clients can match their placeholder entry.
func (uc *UseCases) CreateNotice(ctx context.Context, n *notice.Notice) (*notice.Notice, error) {
	if _, err := uc.repository.GetUserByEmail(ctx, n.Author); err != nil {
		if goerr.HasTag(err, errs.TagNotFound) {
			return nil, goerr.New("User not found",
				goerr.T(errs.TagValidation), goerr.V("author", n.Author))
		}
		return nil, goerr.Wrap(err, "failed to look up author", goerr.V("author", n.Author))
	}

	created := *n
	created.ID = types.NewNoticeID()
	if created.Date == "" {
		created.Date = time.Now().Format(notice.DateLayout)
	}
	if err := created.Validate(); err != nil {
		return nil, err
	}

	if err := uc.repository.CreateNotice(ctx, &created); err != nil {
		return nil, err
	}

	uc.broadcast(ctx, push.NoticeAdd, &created)

	logging.From(ctx).Info("notice created",
		"notice_id", created.ID, "category", created.Category)
	return &created, nil
}

func (uc *UseCases) ListNotices(ctx context.Context) (notice.Notices, error) {
	return uc.repository.ListNotices(ctx)
}

// DeleteNotice removes a notice and broadcasts the deletion. Any
// authenticated user may delete any notice.
func (uc *UseCases) DeleteNotice(ctx context.Context, id types.NoticeID) error {
	if err := id.Validate(); err != nil {
		return goerr.Wrap(err, "invalid notice ID", goerr.T(errs.TagValidation))
	}
	if err := uc.repository.DeleteNotice(ctx, id); err != nil {
		return err
	}

	uc.broadcast(ctx, push.NoticeDelete, &push.DeletePayload{ID: id.String()})

	logging.From(ctx).Info("notice deleted", "notice_id", id)
	return nil
}

func (uc *UseCases) broadcast(ctx context.Context, event string, payload any) {
	env, err := push.New(event, payload)
	if err != nil {
		errs.Handle(ctx, err)
		return
	}
	uc.notifier.Broadcast(ctx, env)
}
