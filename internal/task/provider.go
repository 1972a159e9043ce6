package task

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a task id does not exist.
var ErrNotFound = errors.New("task not found")

// Provider fetches tasks from wherever they live: the backend API in real
// environments, embedded fixtures in mock mode. Implementations must return
// tasks in a stable order so pagination is consistent across calls.
type Provider interface {
	// Count returns the total number of tasks available.
	Count(ctx context.Context) (int, error)

	// ListPage returns up to limit tasks starting at offset.
	ListPage(ctx context.Context, offset, limit int) ([]Task, error)
}

// FetchAll drains every page from p using the given page size.
func FetchAll(ctx context.Context, p Provider, pageSize int) ([]Task, error) {
	if pageSize <= 0 {
		pageSize = 50
	}

	total, err := p.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	tasks := make([]Task, 0, total)
	for offset := 0; offset < total; offset += pageSize {
		page, err := p.ListPage(ctx, offset, pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tasks at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		tasks = append(tasks, page...)
	}
	return tasks, nil
}
