package view

import (
	"sort"
	"strings"

	"github.com/campus-lab/campusboard/pkg/domain/model/category"
	"github.com/campus-lab/campusboard/pkg/domain/model/event"
	"github.com/campus-lab/campusboard/pkg/domain/model/notice"
	"github.com/campus-lab/campusboard/pkg/domain/types"
)

// CategoryAll shows every notice regardless of category.
const CategoryAll = "All"

// Item is one rendered board entry.
type Item struct {
	Notice *notice.Notice
	Pinned bool
}

// Build computes the ordered list the board renders. It is a pure function of
// its inputs and is recomputed on every relevant store change.
//
// With the Events filter active, every calendar event is projected into a
// notice-shaped item and both the search query and the notice collection are
// ignored. Otherwise notices are filtered by category and case-insensitive
// substring match on title or content, then ordered pinned-first and by date
// descending. The sort is stable: items with equal rank keep their input
// order across calls, so re-rendering never reorders visually equal rows.
func Build(notices notice.Notices, events event.Events, activeCategory, searchQuery string, pinnedIDs []types.NoticeID) []Item {
	if activeCategory == event.ProjectedCategory {
		items := make([]Item, 0, len(events))
		for _, e := range events {
			items = append(items, Item{Notice: e.AsNotice()})
		}
		return items
	}

	pinned := make(map[types.NoticeID]struct{}, len(pinnedIDs))
	for _, id := range pinnedIDs {
		pinned[id] = struct{}{}
	}

	query := strings.ToLower(searchQuery)
	var items []Item
	for _, n := range notices {
		if activeCategory != CategoryAll && n.Category != activeCategory {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(n.Title), query) &&
			!strings.Contains(strings.ToLower(n.Content), query) {
			continue
		}
		_, isPinned := pinned[n.ID]
		items = append(items, Item{Notice: n, Pinned: isPinned})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Pinned != items[j].Pinned {
			return items[i].Pinned
		}
		return items[i].Notice.DateTime().After(items[j].Notice.DateTime())
	})

	return items
}

// CountByCategory recomputes per-category notice counts. Counts are derived
// state and never stored.
func CountByCategory(notices notice.Notices) map[string]int {
	counts := make(map[string]int)
	for _, n := range notices {
		counts[n.Category]++
	}
	return counts
}

// Categories merges saved categories over the built-ins and fills in derived
// counts from the notice collection.
func Categories(saved []category.Category, notices notice.Notices) []category.Category {
	counts := CountByCategory(notices)
	merged := category.Merge(saved)
	for i := range merged {
		merged[i].Count = counts[merged[i].Label]
	}
	return merged
}
