package memory

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func (r *Memory) CreateNotice(ctx context.Context, n *notice.Notice) error {
	r.noticeMu.Lock()
	defer r.noticeMu.Unlock()

	if n.ID == types.EmptyNoticeID {
		return r.eb.New("notice ID is empty")
	}
	if _, exists := r.notices[n.ID]; exists {
		return r.eb.New("notice already exists",
			goerr.T(errs.TagConflict), goerr.V("notice_id", n.ID))
	}

	// Store a copy to prevent external modification
	noticeCopy := *n
	r.notices[n.ID] = &noticeCopy
	r.noticeOrder = append(r.noticeOrder, n.ID)

	return nil
}

func (r *Memory) GetNotice(ctx context.Context, id types.NoticeID) (*notice.Notice, error) {
	r.noticeMu.RLock()
	defer r.noticeMu.RUnlock()

	n, exists := r.notices[id]
	if !exists {
		return nil, r.eb.New("notice not found",
			goerr.T(errs.TagNotFound), goerr.V("notice_id", id))
	}

	noticeCopy := *n
	return &noticeCopy, nil
}

// ListNotices returns notices newest created first.
func (r *Memory) ListNotices(ctx context.Context) (notice.Notices, error) {
	r.noticeMu.RLock()
	defer r.noticeMu.RUnlock()

	out := make(notice.Notices, 0, len(r.noticeOrder))
	for i := len(r.noticeOrder) - 1; i >= 0; i-- {
		if n, ok := r.notices[r.noticeOrder[i]]; ok {
			noticeCopy := *n
			out = append(out, &noticeCopy)
		}
	}
	return out, nil
}

func (r *Memory) DeleteNotice(ctx context.Context, id types.NoticeID) error {
	r.noticeMu.Lock()
	defer r.noticeMu.Unlock()

	if _, exists := r.notices[id]; !exists {
		return r.eb.New("notice not found",
			goerr.T(errs.TagNotFound), goerr.V("notice_id", id))
	}

	delete(r.notices, id)
	for i, ordered := range r.noticeOrder {
		if ordered == id {
			r.noticeOrder = append(r.noticeOrder[:i], r.noticeOrder[i+1:]...)
			break
		}
	}
	return nil
}
