package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"deckhand/internal/appstate"
	"deckhand/internal/flags"
	"deckhand/internal/task"
	"deckhand/pkg/logging"
)

const (
	defaultPageSize = 50
	defaultWorkers  = 4
)

// ErrSyncDisabled means the task-sync flag is off.
var ErrSyncDisabled = errors.New("task sync is disabled")

// Summary describes one completed synchronization.
type Summary struct {
	Total    int
	Pages    int
	Duration time.Duration
}

// Engine pulls the full task collection from the provider and replaces the
// local cache with it, reporting progress through the application state
// machine as pages arrive.
type Engine struct {
	provider task.Provider
	cache    *task.Cache
	state    *appstate.Manager
	flags    *flags.Manager
	pageSize int
	workers  int
}

// New creates a sync engine with default paging.
func New(provider task.Provider, cache *task.Cache, state *appstate.Manager, flagMgr *flags.Manager) *Engine {
	return &Engine{
		provider: provider,
		cache:    cache,
		state:    state,
		flags:    flagMgr,
		pageSize: defaultPageSize,
		workers:  defaultWorkers,
	}
}

// Run performs one synchronization. It refuses to start when the task-sync
// flag is off or the state machine is not in a state that can enter
// Syncing. On any fetch or cache failure the app lands in the error state
// and the previous cache contents stay untouched.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	if !e.flags.IsEnabled(flags.FlagTaskSync) {
		return Summary{}, ErrSyncDisabled
	}
	if !e.state.StartSync() {
		return Summary{}, fmt.Errorf("cannot sync while %s", e.state.CurrentKind())
	}

	start := time.Now()
	logging.Info("Syncer", "Task sync started")

	tasks, pages, err := e.fetchAll(ctx)
	if err != nil {
		e.state.SetError(appstate.NewErrorInfo(
			appstate.ErrorCodeSyncFailure, "task sync failed", true))
		return Summary{}, fmt.Errorf("syncing tasks: %w", err)
	}

	if err := e.cache.ReplaceAll(tasks); err != nil {
		e.state.SetError(appstate.NewErrorInfo(
			appstate.ErrorCodeDataCorruption, "could not write task cache", false))
		return Summary{}, fmt.Errorf("writing task cache: %w", err)
	}

	e.state.CompleteSync()
	summary := Summary{Total: len(tasks), Pages: pages, Duration: time.Since(start)}
	logging.Info("Syncer", "Task sync finished: %d tasks across %d pages in %s",
		summary.Total, summary.Pages, summary.Duration.Round(time.Millisecond))
	return summary, nil
}

// fetchAll pulls every page concurrently, reassembling them in page order
// so the result is deterministic regardless of completion order.
func (e *Engine) fetchAll(ctx context.Context) ([]task.Task, int, error) {
	total, err := e.provider.Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}
	if total == 0 {
		e.state.UpdateSyncProgress(1)
		return nil, 0, nil
	}

	pages := (total + e.pageSize - 1) / e.pageSize
	results := make([][]task.Task, pages)

	var (
		progressMu sync.Mutex
		maxDone    int
	)
	reportPage := func() {
		progressMu.Lock()
		defer progressMu.Unlock()
		maxDone++
		e.state.UpdateSyncProgress(float64(maxDone) / float64(pages))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for page := 0; page < pages; page++ {
		page := page
		g.Go(func() error {
			items, err := e.provider.ListPage(gctx, page*e.pageSize, e.pageSize)
			if err != nil {
				return fmt.Errorf("fetching page %d: %w", page, err)
			}
			results[page] = items
			reportPage()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	tasks := make([]task.Task, 0, total)
	for _, page := range results {
		tasks = append(tasks, page...)
	}
	return tasks, pages, nil
}
