package app

import (
	"fmt"
	"net/http"
	"os"

	"deckhand/internal/appstate"
	"deckhand/internal/buildinfo"
	"deckhand/internal/connectivity"
	"deckhand/internal/environment"
	"deckhand/internal/flags"
	"deckhand/internal/search"
	"deckhand/internal/session"
	"deckhand/internal/settings"
	"deckhand/internal/syncer"
	"deckhand/internal/task"
	"deckhand/pkg/logging"
)

// Core wires every subsystem together. Commands reach their collaborators
// through it; nothing below this package knows about the others' wiring.
type Core struct {
	Config Config
	Debug  bool

	State        *appstate.Manager
	Settings     *settings.FileStore
	Flags        *flags.Manager
	Environments *environment.Manager
	Cache        *task.Cache
	Provider     task.Provider
	Sessions     *session.Manager
	Syncer       *syncer.Engine
	Monitor      connectivity.Monitor

	probeMonitor *connectivity.ProbeMonitor
	httpClient   *http.Client
}

// NewCore bootstraps the application: logging first, then persistence, the
// managers on top of it, and finally the environment-dependent backends.
func NewCore(cfg Config) (*Core, error) {
	logging.Init(cfg.LogLevel, os.Stderr)

	debug := buildinfo.IsDebug()
	logging.Debug("Bootstrap", "Starting deckhand %s (%s build)", buildinfo.Version(), buildinfo.Mode())

	store, err := settings.NewFileStore(cfg.SettingsPath)
	if err != nil {
		return nil, fmt.Errorf("opening settings store: %w", err)
	}

	flagMgr := flags.NewManager(store, debug)
	envMgr := environment.NewManager(store, flagMgr, debug)

	if cfg.Environment != "" {
		if !envMgr.SwitchTo(environment.ID(cfg.Environment)) {
			return nil, fmt.Errorf("environment %q is unknown or not available in this build", cfg.Environment)
		}
	}
	env := envMgr.Current()

	// The verbose-logging flag lowers the level past whatever the config
	// asked for.
	if flagMgr.IsEnabled(flags.FlagVerboseLogging) {
		logging.Init(logging.LevelDebug, os.Stderr)
	}

	cache, err := task.OpenCache(cfg.CachePath)
	if err != nil {
		return nil, fmt.Errorf("opening task cache: %w", err)
	}

	httpClient := &http.Client{Timeout: env.RequestTimeout}

	var provider task.Provider
	var authClient session.AuthClient
	var monitor connectivity.Monitor
	var probeMonitor *connectivity.ProbeMonitor

	if env.UseMockServices {
		mock, err := task.NewMockProvider()
		if err != nil {
			_ = cache.Close()
			return nil, fmt.Errorf("loading mock tasks: %w", err)
		}
		provider = mock
		authClient = session.NewMockAuthClient()
		monitor = connectivity.NewManualMonitor()
		logging.Info("Bootstrap", "Using mock services for environment %s", env.ID)
	} else {
		provider = task.NewHTTPProvider(env.BaseURL, httpClient)
		authClient = session.NewHTTPAuthClient(env.BaseURL, httpClient)
		probeMonitor = connectivity.NewProbeMonitor(
			connectivity.HTTPProbe(httpClient, env.BaseURL+"/v1/ping"), cfg.ProbeInterval)
		monitor = probeMonitor
	}

	state := appstate.NewManager()
	sessions := session.NewManager(session.NewFileStore(cfg.SessionDir), authClient, state)
	sync := syncer.New(provider, cache, state, flagMgr)

	return &Core{
		Config:       cfg,
		Debug:        debug,
		State:        state,
		Settings:     store,
		Flags:        flagMgr,
		Environments: envMgr,
		Cache:        cache,
		Provider:     provider,
		Sessions:     sessions,
		Syncer:       sync,
		Monitor:      monitor,
		probeMonitor: probeMonitor,
		httpClient:   httpClient,
	}, nil
}

// SearchEngine builds a search engine honoring the current fuzzy-search
// flag value. Engines are cheap, so each caller gets a fresh one and flag
// flips take effect immediately.
func (c *Core) SearchEngine() *search.Engine {
	opts := search.DefaultOptions()
	opts.Fuzzy = c.Flags.IsEnabled(flags.FlagFuzzySearch)
	return search.New(opts)
}

// Close releases everything NewCore opened.
func (c *Core) Close() error {
	if c.probeMonitor != nil {
		c.probeMonitor.Stop()
	}
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}
