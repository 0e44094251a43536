package feedback

import (
	"time"

	"github.com/campus-lab/campusboard/pkg/domain/model/errs"
	"github.com/campus-lab/campusboard/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Feedback is a user rating submission (1..5 stars plus free text).
type Feedback struct {
	ID        types.FeedbackID `json:"id" db:"id"`
	Rating    int              `json:"rating" db:"rating"`
	Category  string           `json:"category" db:"category"`
	Feedback  string           `json:"feedback" db:"feedback"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

func (x *Feedback) Validate() error {
	if x.Rating < 1 || x.Rating > 5 {
		return goerr.New("rating must be between 1 and 5",
			goerr.T(errs.TagValidation), goerr.V("rating", x.Rating))
	}
	if x.Category == "" {
		return goerr.New("feedback category is required", goerr.T(errs.TagValidation))
	}
	if x.Feedback == "" {
		return goerr.New("feedback text is required", goerr.T(errs.TagValidation))
	}
	return nil
}
