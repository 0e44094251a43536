package memory

import (
	"sync"

	"github.com/campus-lab/campusboard/pkg/domain/interfaces"
	"github.com/campus-lab/campusboard/pkg/domain/model/auth"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/feedback"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Memory is the in-process Repository used for development and tests.
type Memory struct {
	noticeMu   sync.RWMutex
	eventMu    sync.RWMutex
	feedbackMu sync.RWMutex
	userMu     sync.RWMutex

	notices     map[types.NoticeID]*notice.Notice
	noticeOrder []types.NoticeID

	events     map[types.EventID]*event.Event
	eventOrder []types.EventID

	feedbacks []*feedback.Feedback

	users map[types.UserID]*auth.User

	eb *goerr.Builder
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		notices: make(map[types.NoticeID]*notice.Notice),
		events:  make(map[types.EventID]*event.Event),
		users:   make(map[types.UserID]*auth.User),
		eb:      goerr.NewBuilder(goerr.V("repository", "memory")),
	}
}
