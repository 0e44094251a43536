package cache

import "github.com/campus-lab/campusboard/pkg/domain/types"

// Keys for the client state slices persisted between sessions.
const (
	KeyViewMode        = "view_mode"
	KeyActiveCategory  = "active_category"
	KeySidebarOpen     = "sidebar_open"
	KeyNotices         = "notices"
	KeyEvents          = "events"
	KeyPinned          = "pinned"
	KeyCategories      = "categories"
	KeyFeedbackHistory = "feedback_history"

	commentsPrefix = "comments:"
)

// CommentsKey is the per-notice comment list key.
func CommentsKey(id types.NoticeID) string {
	return commentsPrefix + id.String()
}
