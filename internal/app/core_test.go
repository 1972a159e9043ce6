package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deckhand/internal/appstate"
	"deckhand/internal/connectivity"
	"deckhand/internal/environment"
	"deckhand/internal/flags"
	"deckhand/internal/task"
	"deckhand/pkg/logging"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		ConfigDir:     dir,
		SettingsPath:  filepath.Join(dir, settingsFileName),
		CachePath:     filepath.Join(dir, cacheFileName),
		SessionDir:    filepath.Join(dir, sessionDirName),
		LogLevel:      logging.LevelError,
		Environment:   "mock",
		ProbeInterval: defaultProbeInterval,
		IdleLockAfter: defaultIdleLockAfter,
	}
}

func newTestCore(t *testing.T, cfg Config) *Core {
	t.Helper()
	core, err := NewCore(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = core.Close() })
	return core
}

func TestNewCoreMockEnvironment(t *testing.T) {
	core := newTestCore(t, testConfig(t))

	assert.Equal(t, appstate.KindLaunching, core.State.CurrentKind())
	assert.Equal(t, environment.EnvMock, core.Environments.CurrentID())
	assert.IsType(t, &connectivity.ManualMonitor{}, core.Monitor)
	assert.True(t, core.Monitor.Online())

	count, err := core.Provider.Count(context.Background())
	require.NoError(t, err)
	assert.Positive(t, count)

	cached, err := core.Cache.Count()
	require.NoError(t, err)
	assert.Zero(t, cached)
}

func TestNewCoreUnknownEnvironment(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment = "quality-assurance"

	_, err := NewCore(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quality-assurance")
}

func TestNewCoreWithoutEnvironmentOverride(t *testing.T) {
	cfg := testConfig(t)
	cfg.Environment = ""

	core := newTestCore(t, cfg)

	// Debug test builds default to the mock environment.
	assert.Equal(t, environment.EnvMock, core.Environments.CurrentID())
}

func TestSearchEngineHonorsFuzzyFlag(t *testing.T) {
	core := newTestCore(t, testConfig(t))

	// "rpt" never matches directly, only as an in-order subsequence.
	tasks := []task.Task{{ID: "t1", Title: "Review Q4 Reports"}}

	require.True(t, core.Flags.SetEnabled(flags.FlagFuzzySearch, true))
	assert.Len(t, core.SearchEngine().Search("rpt", tasks), 1)

	require.True(t, core.Flags.SetEnabled(flags.FlagFuzzySearch, false))
	assert.Empty(t, core.SearchEngine().Search("rpt", tasks))
}

func TestCoreCloseIsIdempotent(t *testing.T) {
	core, err := NewCore(testConfig(t))
	require.NoError(t, err)

	require.NoError(t, core.Close())
	require.NoError(t, core.Close())
}
