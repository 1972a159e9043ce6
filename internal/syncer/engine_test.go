package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckhand/internal/appstate"
	"deckhand/internal/flags"
	"deckhand/internal/settings"
	"deckhand/internal/task"
)

type stubProvider struct {
	tasks    []task.Task
	failPage int // 0-based page index that errors, -1 for never
}

func (s *stubProvider) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.tasks), nil
}

func (s *stubProvider) ListPage(ctx context.Context, offset, limit int) ([]task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.failPage >= 0 && offset/limit == s.failPage {
		return nil, errors.New("backend unavailable")
	}
	if offset >= len(s.tasks) {
		return nil, nil
	}
	end := offset + limit
	if end > len(s.tasks) {
		end = len(s.tasks)
	}
	return task.CloneAll(s.tasks[offset:end]), nil
}

func stubTasks(n int) []task.Task {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	out := make([]task.Task, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, task.Task{
			ID:        fmt.Sprintf("stub-%03d", i),
			Title:     fmt.Sprintf("stub task %d", i),
			Status:    task.StatusPending,
			Priority:  task.PriorityMedium,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
			UpdatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func newTestEngine(t *testing.T, provider task.Provider) (*Engine, *task.Cache, *appstate.Manager, *flags.Manager) {
	t.Helper()

	cache, err := task.OpenCache(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	state := appstate.NewManager()
	state.Authenticate(appstate.User{ID: "u-1", Email: "kim@example.com"})

	flagMgr := flags.NewManager(settings.NewMemoryStore(), false)

	engine := New(provider, cache, state, flagMgr)
	engine.pageSize = 4
	return engine, cache, state, flagMgr
}

func TestRunReplacesCache(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(11), failPage: -1}
	engine, cache, state, _ := newTestEngine(t, provider)

	// Stale contents that a successful sync must replace.
	require.NoError(t, cache.Upsert(task.Task{
		ID: "stale", Title: "gone after sync",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}))

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, summary.Total)
	assert.Equal(t, 3, summary.Pages)
	assert.Equal(t, appstate.KindAuthenticated, state.CurrentKind())

	cached, err := cache.List()
	require.NoError(t, err)
	assert.Len(t, cached, 11)
	_, err = cache.Get("stale")
	assert.ErrorIs(t, err, task.ErrNotFound)
}

func TestRunReportsMonotonicProgress(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(20), failPage: -1}
	engine, _, state, _ := newTestEngine(t, provider)

	var progress []float64
	state.OnChange(func(c appstate.Change) {
		if syncing, ok := c.State.(appstate.Syncing); ok {
			progress = append(progress, syncing.Progress)
		}
	})

	_, err := engine.Run(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, progress)
	assert.Equal(t, float64(0), progress[0])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
	assert.Equal(t, float64(1), progress[len(progress)-1])
}

func TestRunWithEmptyCollection(t *testing.T) {
	provider := &stubProvider{tasks: nil, failPage: -1}
	engine, cache, state, _ := newTestEngine(t, provider)

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.Pages)
	assert.Equal(t, appstate.KindAuthenticated, state.CurrentKind())

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRunRefusesWhenFlagDisabled(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(5), failPage: -1}
	engine, _, state, flagMgr := newTestEngine(t, provider)

	require.True(t, flagMgr.SetEnabled(flags.FlagTaskSync, false))

	_, err := engine.Run(context.Background())
	assert.ErrorIs(t, err, ErrSyncDisabled)
	assert.Equal(t, appstate.KindAuthenticated, state.CurrentKind())
}

func TestRunRefusesFromWrongState(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(5), failPage: -1}
	engine, _, state, _ := newTestEngine(t, provider)
	state.Logout()

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot sync while unauthenticated")
}

func TestRunFetchFailureKeepsCacheAndEntersErrorState(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(11), failPage: 1}
	engine, cache, state, _ := newTestEngine(t, provider)

	keep := task.Task{
		ID: "keep", Title: "survives failed sync",
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, cache.Upsert(keep))

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend unavailable")

	errState, ok := state.Current().(appstate.ErrorState)
	require.True(t, ok)
	assert.Equal(t, appstate.ErrorCodeSyncFailure, errState.Info.Code)
	assert.True(t, errState.Info.CanRetry)

	got, err := cache.Get("keep")
	require.NoError(t, err)
	assert.Equal(t, "survives failed sync", got.Title)
}

func TestRunRecoverableAfterFailure(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(8), failPage: 0}
	engine, cache, state, _ := newTestEngine(t, provider)

	_, err := engine.Run(context.Background())
	require.Error(t, err)
	require.Equal(t, appstate.KindError, state.CurrentKind())

	// Recover, then retry with a healthy backend.
	require.True(t, state.RecoverFromError())
	require.Equal(t, appstate.KindAuthenticated, state.CurrentKind())
	provider.failPage = -1

	summary, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, appstate.KindAuthenticated, state.CurrentKind())

	count, err := cache.Count()
	require.NoError(t, err)
	assert.Equal(t, 8, count)
}

func TestRunHonorsContextCancellation(t *testing.T) {
	provider := &stubProvider{tasks: stubTasks(11), failPage: -1}
	engine, _, state, _ := newTestEngine(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, appstate.KindError, state.CurrentKind())
}
