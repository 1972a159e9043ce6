package search

import (
	"fmt"
	"sort"
	"strings"

	"deckhand/internal/task"
)

// SortOption selects the ordering applied by Sort.
type SortOption string

const (
	// SortNone leaves the collection in input order.
	SortNone SortOption = ""

	SortCreatedAsc   SortOption = "created-asc"
	SortCreatedDesc  SortOption = "created-desc"
	SortUpdatedAsc   SortOption = "updated-asc"
	SortUpdatedDesc  SortOption = "updated-desc"
	SortTitleAsc     SortOption = "title-asc"
	SortTitleDesc    SortOption = "title-desc"
	SortPriorityAsc  SortOption = "priority-asc"
	SortPriorityDesc SortOption = "priority-desc"
	SortDueDateAsc   SortOption = "due-asc"
	SortDueDateDesc  SortOption = "due-desc"
)

// SortOptions lists every selectable ordering, in display order.
func SortOptions() []SortOption {
	return []SortOption{
		SortCreatedAsc, SortCreatedDesc,
		SortUpdatedAsc, SortUpdatedDesc,
		SortTitleAsc, SortTitleDesc,
		SortPriorityAsc, SortPriorityDesc,
		SortDueDateAsc, SortDueDateDesc,
	}
}

// ParseSortOption converts a user-supplied string into a SortOption. The
// empty string parses to SortNone.
func ParseSortOption(s string) (SortOption, error) {
	opt := SortOption(strings.ToLower(strings.TrimSpace(s)))
	if opt == SortNone {
		return SortNone, nil
	}
	for _, known := range SortOptions() {
		if opt == known {
			return known, nil
		}
	}
	return SortNone, fmt.Errorf("unknown sort option %q (valid: %s)", s, joinSortOptions())
}

func joinSortOptions() string {
	opts := SortOptions()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = string(o)
	}
	return strings.Join(names, ", ")
}

// Sort returns the items ordered by the given option. The sort is stable,
// so equal elements keep their input order and repeated calls over the same
// input produce the same result. The input slice is never modified.
func (e *Engine) Sort(items []task.Task, by SortOption) []task.Task {
	out := make([]task.Task, len(items))
	copy(out, items)

	less := lessFunc(by)
	if less == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

// lessFunc maps a sort option to its comparison. Nil means no ordering.
func lessFunc(by SortOption) func(a, b task.Task) bool {
	switch by {
	case SortCreatedAsc:
		return func(a, b task.Task) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case SortCreatedDesc:
		return func(a, b task.Task) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortUpdatedAsc:
		return func(a, b task.Task) bool { return a.UpdatedAt.Before(b.UpdatedAt) }
	case SortUpdatedDesc:
		return func(a, b task.Task) bool { return a.UpdatedAt.After(b.UpdatedAt) }
	case SortTitleAsc:
		return func(a, b task.Task) bool {
			return strings.ToLower(a.Title) < strings.ToLower(b.Title)
		}
	case SortTitleDesc:
		return func(a, b task.Task) bool {
			return strings.ToLower(a.Title) > strings.ToLower(b.Title)
		}
	case SortPriorityAsc:
		return func(a, b task.Task) bool {
			return a.Priority.Ordinal() < b.Priority.Ordinal()
		}
	case SortPriorityDesc:
		return func(a, b task.Task) bool {
			return a.Priority.Ordinal() > b.Priority.Ordinal()
		}
	case SortDueDateAsc:
		return func(a, b task.Task) bool {
			// Tasks without a due date go last regardless of direction.
			if a.DueDate == nil {
				return false
			}
			if b.DueDate == nil {
				return true
			}
			return a.DueDate.Before(*b.DueDate)
		}
	case SortDueDateDesc:
		return func(a, b task.Task) bool {
			if a.DueDate == nil {
				return false
			}
			if b.DueDate == nil {
				return true
			}
			return a.DueDate.After(*b.DueDate)
		}
	default:
		return nil
	}
}
