package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

func (r *DB) CreateNotice(ctx context.Context, n *notice.Notice) error {
	query := `
		INSERT INTO notices (id, title, content, category, priority, image_url, date, author)
		VALUES (:id, :title, :content, :category, :priority, :image_url, :date, :author)
	`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return r.eb.Wrap(err, "failed to insert notice",
			goerr.T(errs.TagDatabase), goerr.V("notice_id", n.ID))
	}
	return nil
}

func (r *DB) GetNotice(ctx context.Context, id types.NoticeID) (*notice.Notice, error) {
	var n notice.Notice
	query := "SELECT id, title, content, category, priority, image_url, date, author FROM notices WHERE id = ?"
	if err := r.db.GetContext(ctx, &n, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.eb.New("notice not found",
				goerr.T(errs.TagNotFound), goerr.V("notice_id", id))
		}
		return nil, r.eb.Wrap(err, "failed to query notice",
			goerr.T(errs.TagDatabase), goerr.V("notice_id", id))
	}
	return &n, nil
}

func (r *DB) ListNotices(ctx context.Context) (notice.Notices, error) {
	var out notice.Notices
	query := `
		SELECT id, title, content, category, priority, image_url, date, author
		FROM notices
		ORDER BY created_at DESC
	`
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, r.eb.Wrap(err, "failed to list notices", goerr.T(errs.TagDatabase))
	}
	return out, nil
}

func (r *DB) DeleteNotice(ctx context.Context, id types.NoticeID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notices WHERE id = ?", id)
	if err != nil {
		return r.eb.Wrap(err, "failed to delete notice",
			goerr.T(errs.TagDatabase), goerr.V("notice_id", id))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return r.eb.Wrap(err, "failed to read affected rows", goerr.T(errs.TagDatabase))
	}
	if affected == 0 {
		return r.eb.New("notice not found",
			goerr.T(errs.TagNotFound), goerr.V("notice_id", id))
	}
	return nil
}
