package interfaces

import (
	"context"

	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

// Repository is the server-side persistence contract. List methods return
// newest-created-first, which is the order clients rely on for snapshots.
type Repository interface {
	CreateNotice(ctx context.Context, n *notice.Notice) error
	GetNotice(ctx context.Context, id types.NoticeID) (*notice.Notice, error)
	ListNotices(ctx context.Context) (notice.Notices, error)
	DeleteNotice(ctx context.Context, id types.NoticeID) error

	CreateEvent(ctx context.Context, e *event.Event) error
	ListEvents(ctx context.Context) (event.Events, error)
	DeleteEvent(ctx context.Context, id types.EventID) error

	CreateFeedback(ctx context.Context, f *feedback.Feedback) error
	ListFeedback(ctx context.Context) ([]*feedback.Feedback, error)

	CreateUser(ctx context.Context, u *auth.User) error
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	GetUserByID(ctx context.Context, id types.UserID) (*auth.User, error)
}
