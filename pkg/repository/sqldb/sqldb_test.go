package sqldb_test

import (
	"context"
	"os"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/campus-lab/campusboard/pkg/repository/sqldb"
)

func newDB(t *testing.T) *sqldb.DB {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN is not set")
	}
	db, err := sqldb.New(context.Background(), dsn)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, db.Close())
	})
	return db
}

func TestNoticeLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	n := &notice.Notice{
		ID:       types.NewNoticeID(),
		Title:    "DB notice",
		Content:  "stored in mysql",
		Category: "Academics",
		Priority: types.PriorityMedium,
		Date:     "2026-09-01",
		Author:   "grace@example.edu",
	}
	gt.NoError(t, db.CreateNotice(ctx, n)).Required()

	got, err := db.GetNotice(ctx, n.ID)
	gt.NoError(t, err).Required()
	gt.V(t, got.Title).Equal("DB notice")

	list, err := db.ListNotices(ctx)
	gt.NoError(t, err).Required()
	gt.N(t, len(list)).GreaterOrEqual(1)

	gt.NoError(t, db.DeleteNotice(ctx, n.ID))
	err = db.DeleteNotice(ctx, n.ID)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagNotFound))
}

func TestUserUniqueEmail(t *testing.T) {
	ctx := context.Background()
	db := newDB(t)

	email := types.NewUserID().String() + "@example.edu"
	u := &auth.User{ID: types.NewUserID(), Email: email, Name: "Heidi"}
	gt.NoError(t, db.CreateUser(ctx, u)).Required()

	dup := &auth.User{ID: types.NewUserID(), Email: email, Name: "Heidi II"}
	err := db.CreateUser(ctx, dup)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, errs.TagConflict))

	got, err := db.GetUserByEmail(ctx, email)
	gt.NoError(t, err).Required()
	gt.V(t, got.ID).Equal(u.ID)
}
