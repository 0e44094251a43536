package types

import (
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

type NoticeID string

func (x NoticeID) String() string {
	return string(x)
}

func NewNoticeID() NoticeID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return NoticeID(id.String())
}

// LocalIDPrefix marks placeholder IDs assigned by a client before the server
// has confirmed the record.
const LocalIDPrefix = "local-"

// NewLocalNoticeID returns a placeholder ID for an optimistically added
// notice. It is replaced by the server-assigned ID on reconciliation.
func NewLocalNoticeID() NoticeID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return NoticeID(LocalIDPrefix + id.String())
}

// IsLocal reports whether the ID is a client-side placeholder.
func (x NoticeID) IsLocal() bool {
	return strings.HasPrefix(string(x), LocalIDPrefix)
}

func (x NoticeID) Validate() error {
	if x == EmptyNoticeID {
		return goerr.New("empty notice ID")
	}
	return nil
}

const (
	EmptyNoticeID NoticeID = ""
)

type EventID string

func (x EventID) String() string {
	return string(x)
}

func NewEventID() EventID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return EventID(id.String())
}

func NewLocalEventID() EventID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return EventID(LocalIDPrefix + id.String())
}

func (x EventID) IsLocal() bool {
	return strings.HasPrefix(string(x), LocalIDPrefix)
}

func (x EventID) Validate() error {
	if x == EmptyEventID {
		return goerr.New("empty event ID")
	}
	return nil
}

const (
	EmptyEventID EventID = ""
)

type CommentID string

func (x CommentID) String() string {
	return string(x)
}

func NewCommentID() CommentID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return CommentID(id.String())
}

type FeedbackID string

func (x FeedbackID) String() string {
	return string(x)
}

func NewFeedbackID() FeedbackID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return FeedbackID(id.String())
}

type UserID string

func (x UserID) String() string {
	return string(x)
}

func NewUserID() UserID {
	id, err := uuid.NewV7()
	if err != nil {
		panic(err)
	}
	return UserID(id.String())
}

const (
	EmptyUserID UserID = ""
)
