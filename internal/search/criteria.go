package search

import (
	"strings"
	"time"

	"deckhand/internal/task"
)

// Criteria narrows a task collection. Nil pointer fields and empty slices
// are unset and match everything; set fields all have to hold for an item
// to pass.
type Criteria struct {
	// Status keeps only tasks in exactly this status.
	Status *task.Status

	// Priority keeps only tasks at exactly this priority.
	Priority *task.Priority

	// Tags keeps tasks carrying at least one of these tags. Comparison is
	// case insensitive.
	Tags []string

	// CreatedAfter keeps tasks created at or after this instant.
	CreatedAfter *time.Time

	// CreatedBefore keeps tasks created at or before this instant.
	CreatedBefore *time.Time
}

// IsEmpty reports whether no field is set, meaning Filter would pass every
// item through.
func (c Criteria) IsEmpty() bool {
	return c.Status == nil &&
		c.Priority == nil &&
		len(c.Tags) == 0 &&
		c.CreatedAfter == nil &&
		c.CreatedBefore == nil
}

// Matches reports whether item satisfies every set field of the criteria.
func (c Criteria) Matches(item task.Task) bool {
	if c.Status != nil && item.Status != *c.Status {
		return false
	}
	if c.Priority != nil && item.Priority != *c.Priority {
		return false
	}
	if len(c.Tags) > 0 && !hasAnyTag(item.Tags, c.Tags) {
		return false
	}
	if c.CreatedAfter != nil && item.CreatedAt.Before(*c.CreatedAfter) {
		return false
	}
	if c.CreatedBefore != nil && item.CreatedAt.After(*c.CreatedBefore) {
		return false
	}
	return true
}

// Filter returns the items matching the criteria, in input order. The input
// slice is never modified.
func (e *Engine) Filter(items []task.Task, criteria Criteria) []task.Task {
	if criteria.IsEmpty() {
		out := make([]task.Task, len(items))
		copy(out, items)
		return out
	}

	out := make([]task.Task, 0, len(items))
	for _, item := range items {
		if criteria.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

// hasAnyTag reports whether have and want intersect, ignoring case.
func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if strings.EqualFold(h, w) {
				return true
			}
		}
	}
	return false
}
