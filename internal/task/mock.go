package task

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"deckhand/pkg/logging"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// MockProvider serves the embedded fixture tasks. It backs environments
// that run with mock services, so the whole client works without a backend.
type MockProvider struct {
	tasks []Task
}

// NewMockProvider loads the embedded fixtures.
func NewMockProvider() (*MockProvider, error) {
	tasks, err := parseFixtures(fixturesYAML)
	if err != nil {
		return nil, fmt.Errorf("failed to load task fixtures: %w", err)
	}
	logging.Debug("MockProvider", "Loaded %d fixture tasks", len(tasks))
	return &MockProvider{tasks: tasks}, nil
}

// NewStaticProvider creates a provider over a fixed task list. Handy for
// tests that need specific data.
func NewStaticProvider(tasks []Task) *MockProvider {
	return &MockProvider{tasks: CloneAll(tasks)}
}

// Count returns the total number of fixture tasks.
func (p *MockProvider) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(p.tasks), nil
}

// ListPage returns up to limit fixture tasks starting at offset.
func (p *MockProvider) ListPage(ctx context.Context, offset, limit int) ([]Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 || offset >= len(p.tasks) {
		return nil, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(p.tasks) {
		end = len(p.tasks)
	}
	return CloneAll(p.tasks[offset:end]), nil
}

// parseFixtures decodes fixture YAML into tasks, assigning an id to any
// entry that lacks one.
func parseFixtures(data []byte) ([]Task, error) {
	var tasks []Task
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
		if tasks[i].Status == "" {
			tasks[i].Status = StatusPending
		}
		if tasks[i].Priority == "" {
			tasks[i].Priority = PriorityMedium
		}
	}
	return tasks, nil
}
