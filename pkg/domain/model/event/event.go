package event

import (
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Event is a calendar entry. When the board filter is "Events" it is rendered
// as a synthetic notice-shaped item; that projection is computed, never stored.
type Event struct {
	ID          types.EventID   `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Date        time.Time       `json:"date" db:"date"`
	Type        types.EventType `json:"type" db:"type"`
}

// Events is a slice of Event pointers
type Events []*Event

func (x *Event) Validate() error {
	if x.Title == "" {
		return goerr.New("event title is required", goerr.T(errs.TagValidation))
	}
	if x.Date.IsZero() {
		return goerr.New("event date is required", goerr.T(errs.TagValidation))
	}
	if err := x.Type.Validate(); err != nil {
		return goerr.Wrap(err, "invalid event type", goerr.T(errs.TagValidation))
	}
	return nil
}

// OnDay reports whether the event falls on the same calendar day as t,
// ignoring time of day. Both sides are compared in their own calendar-day
// representation without timezone conversion.
func (x *Event) OnDay(t time.Time) bool {
	y1, m1, d1 := x.Date.Date()
	y2, m2, d2 := t.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ProjectedCategory is the category label events appear under on the board.
const ProjectedCategory = "Events"

// AsNotice projects the event into the notice shape the board renders when
// the Events filter is active.
func (x *Event) AsNotice() *notice.Notice {
	return &notice.Notice{
		ID:       types.NoticeID(x.ID),
		Title:    x.Title,
		Content:  x.Description,
		Category: ProjectedCategory,
		Priority: types.PriorityMedium,
		Date:     x.Date.Format(notice.DateLayout),
		Author:   "Calendar",
	}
}
