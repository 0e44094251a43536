package notice

import (
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// DateLayout is the calendar-day form used for notice dates, matching the
// value the board UI renders and sorts by.
const DateLayout = "2006-01-02"

// Notice is a board announcement. Date and insertion order may diverge; the
// view layer sorts by Date descending with ties kept in collection order.
type Notice struct {
	ID       types.NoticeID `json:"id" db:"id"`
	Title    string         `json:"title" db:"title"`
	Content  string         `json:"content" db:"content"`
	Category string         `json:"category" db:"category"`
	Priority types.Priority `json:"priority" db:"priority"`
	ImageURL string         `json:"imageUrl,omitempty" db:"image_url"`
	Date     string         `json:"date" db:"date"`
	Author   string         `json:"author" db:"author"`
}

// Notices is a slice of Notice pointers
type Notices []*Notice

func (x *Notice) Validate() error {
	if x.Title == "" {
		return goerr.New("notice title is required", goerr.T(errs.TagValidation))
	}
	if x.Content == "" {
		return goerr.New("notice content is required", goerr.T(errs.TagValidation))
	}
	if x.Category == "" {
		return goerr.New("notice category is required", goerr.T(errs.TagValidation))
	}
	if err := x.Priority.Validate(); err != nil {
		return goerr.Wrap(err, "invalid notice priority", goerr.T(errs.TagValidation))
	}
	return nil
}

// DateTime parses the Date field. Plain calendar days and RFC3339 timestamps
// are both accepted; unparseable dates sort last (zero time).
func (x *Notice) DateTime() time.Time {
	if t, err := time.Parse(DateLayout, x.Date); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, x.Date); err == nil {
		return t
	}
	return time.Time{}
}

// SameSubmission reports whether two notices carry the same user-entered
// fields. It matches an optimistic placeholder entry with its server-confirmed
// record, whose ID differs. Two identical in-flight submissions cannot be told
// apart by this comparison; the first placeholder wins.
func (x *Notice) SameSubmission(other *Notice) bool {
	return x.Title == other.Title &&
		x.Content == other.Content &&
		x.Category == other.Category &&
		x.Author == other.Author
}

// Comment belongs to exactly one notice and is removed with it.
type Comment struct {
	ID     types.CommentID `json:"id"`
	Text   string          `json:"text"`
	Author string          `json:"author"`
	Date   time.Time       `json:"date"`
}

func NewComment(text, author string) Comment {
	return Comment{
		ID:     types.NewCommentID(),
		Text:   text,
		Author: author,
		Date:   time.Now(),
	}
}
