package category

// IconID identifies a sidebar icon. Only the identifiers below are known;
// anything else resolves to IconFolder.
type IconID string

const (
	IconFolder        IconID = "folder"
	IconGraduationCap IconID = "graduation-cap"
	IconLibrary       IconID = "library"
	IconBookOpen      IconID = "book-open"
	IconHome          IconID = "home"
	IconCalendar      IconID = "calendar"
	IconCalendarCheck IconID = "calendar-check"
	IconMessageSquare IconID = "message-square"
)

var knownIcons = map[IconID]struct{}{
	IconFolder:        {},
	IconGraduationCap: {},
	IconLibrary:       {},
	IconBookOpen:      {},
	IconHome:          {},
	IconCalendar:      {},
	IconCalendarCheck: {},
	IconMessageSquare: {},
}

// Resolve maps an identifier to a known icon, defaulting unknown values to
// IconFolder rather than carrying arbitrary strings forward.
func Resolve(id IconID) IconID {
	if _, ok := knownIcons[id]; ok {
		return id
	}
	return IconFolder
}

// Category is a sidebar entry. Count is derived from the notice collection on
// every relevant change and never stored authoritatively.
type Category struct {
	Label string `json:"label"`
	Icon  IconID `json:"icon"`
	Count int    `json:"-"`
}

// Defaults returns the built-in categories that always exist.
func Defaults() []Category {
	return []Category{
		{Label: "Clubs", Icon: IconFolder},
		{Label: "Academics", Icon: IconGraduationCap},
		{Label: "Library", Icon: IconLibrary},
		{Label: "Examinations", Icon: IconBookOpen},
	}
}

// Merge appends user-added categories to the built-ins, keeping labels unique
// and normalizing icons. Built-ins are never removed.
func Merge(saved []Category) []Category {
	out := Defaults()
	seen := make(map[string]struct{}, len(out))
	for _, c := range out {
		seen[c.Label] = struct{}{}
	}
	for _, c := range saved {
		if _, ok := seen[c.Label]; ok {
			continue
		}
		seen[c.Label] = struct{}{}
		out = append(out, Category{Label: c.Label, Icon: Resolve(c.Icon)})
	}
	return out
}
