package planner

import (
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Group merges course sections sharing a normalized title into one
// exam sitting. Enrollment is the sum of section counts, not the size
// of the deduplicated student set: sections of the same subject are
// assumed to have disjoint rosters.
type Group struct {
	Title      string
	Sections   []Section
	Students   map[string]struct{}
	Enrollment int
	Blocked    map[int]struct{}
	Duration   time.Duration
}

// NormalizeTitle folds case and collapses whitespace so that
// "Algorithms" and "ALGORITHMS " land in the same group.
func NormalizeTitle(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// BuildGroups merges sections by normalized title, pooling enrollment,
// unioning student sets and unioning instructor blackout weekdays.
func BuildGroups(sections []Section, blackouts map[string][]int) []Group {
	byTitle := make(map[string]*Group)
	order := make([]string, 0)

	for _, section := range sections {
		title := NormalizeTitle(section.Title)
		group, ok := byTitle[title]
		if !ok {
			group = &Group{
				Title:    title,
				Students: make(map[string]struct{}),
				Blocked:  make(map[int]struct{}),
			}
			byTitle[title] = group
			order = append(order, title)
		}

		group.Sections = append(group.Sections, section)
		group.Enrollment += section.StudentCount
		for _, studentNo := range section.Students {
			group.Students[studentNo] = struct{}{}
		}
		if section.Duration > group.Duration {
			group.Duration = section.Duration
		}
		if section.InstructorID != "" {
			for _, weekday := range blackouts[section.InstructorID] {
				group.Blocked[weekday] = struct{}{}
			}
		}
	}

	return lo.Map(order, func(title string, _ int) Group {
		return *byTitle[title]
	})
}

// OrderGroups sorts groups by pooled enrollment descending so the
// hardest cohorts are placed while the grid is least constrained.
// Ties break on normalized title to keep runs reproducible.
func OrderGroups(groups []Group) []Group {
	ordered := make([]Group, len(groups))
	copy(ordered, groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Enrollment != ordered[j].Enrollment {
			return ordered[i].Enrollment > ordered[j].Enrollment
		}
		return ordered[i].Title < ordered[j].Title
	})
	return ordered
}
