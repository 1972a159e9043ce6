package task

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusArchived   Status = "archived"
)

// ParseStatus validates and creates a Status. Hyphens are accepted in place
// of underscores so CLI input like "in-progress" works.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	switch status {
	case StatusPending, StatusInProgress, StatusCompleted, StatusArchived:
		return status, nil
	default:
		return "", fmt.Errorf("invalid task status %q", s)
	}
}

// Priority determines how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// ParsePriority validates and creates a Priority. An empty string defaults
// to medium.
func ParsePriority(s string) (Priority, error) {
	if strings.TrimSpace(s) == "" {
		return PriorityMedium, nil
	}
	priority := Priority(strings.ToLower(strings.TrimSpace(s)))
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return priority, nil
	default:
		return "", fmt.Errorf("invalid task priority %q", s)
	}
}

// Ordinal returns the numeric rank of the priority, low=0 through urgent=3.
// Unknown priorities rank lowest.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	default:
		return -1
	}
}

// Task is one work item. Instances are treated as values everywhere in
// deckhand; mutation happens upstream of the sync boundary.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	CreatedAt   time.Time  `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" yaml:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = make([]string, len(t.Tags))
		copy(out.Tags, t.Tags)
	}
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	return out
}

// CloneAll returns a deep copy of tasks.
func CloneAll(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
