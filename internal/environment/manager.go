package environment

import (
	"sort"
	"sync"

	"deckhand/internal/events"
	"deckhand/internal/flags"
	"deckhand/internal/settings"
	"deckhand/pkg/logging"
)

// storageKey is the settings store key holding the current selection.
const storageKey = "environment"

// Change is published after the current environment switches.
type Change struct {
	Previous ID
	New      ID
}

// Manager owns the current environment selection.
type Manager struct {
	mu         sync.RWMutex
	store      settings.Store
	flags      *flags.Manager
	debugBuild bool
	current    ID

	changes events.Emitter[Change]
}

// NewManager creates a Manager, restoring the persisted selection when it
// is valid for this build and falling back to the build default otherwise.
func NewManager(store settings.Store, flagMgr *flags.Manager, debugBuild bool) *Manager {
	m := &Manager{
		store:      store,
		flags:      flagMgr,
		debugBuild: debugBuild,
		current:    DefaultID(debugBuild),
	}

	if raw, ok := store.Get(storageKey); ok {
		id := ID(raw)
		env, found := Lookup(id)
		switch {
		case !found:
			logging.Warn("Environment", "Ignoring unknown persisted environment %q", raw)
		case env.DebugOnly && !debugBuild:
			logging.Warn("Environment", "Ignoring debug-only persisted environment %q in release build", raw)
		default:
			m.current = id
		}
	}

	logging.Debug("Environment", "Starting with environment %s", m.current)
	return m
}

// OnChange registers fn for environment change events. The returned
// function unsubscribes.
func (m *Manager) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.changes.Subscribe(fn)
}

// CurrentID returns the current selection.
func (m *Manager) CurrentID() ID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Current returns the current profile.
func (m *Manager) Current() Environment {
	m.mu.RLock()
	id := m.current
	m.mu.RUnlock()

	env, _ := Lookup(id)
	return env
}

// Available returns the profiles selectable in this build, in display
// order.
func (m *Manager) Available() []Environment {
	all := All()
	if m.debugBuild {
		return all
	}
	out := make([]Environment, 0, len(all))
	for _, env := range all {
		if !env.DebugOnly {
			out = append(out, env)
		}
	}
	return out
}

// SwitchTo selects id, persists the selection and emits a Change. It
// returns false and leaves the selection unchanged when id is unknown or
// debug-only in a release build. Selecting the current environment again is
// a no-op reporting true.
func (m *Manager) SwitchTo(id ID) bool {
	env, ok := Lookup(id)
	if !ok {
		logging.Warn("Environment", "SwitchTo unknown environment %q", id)
		return false
	}
	if env.DebugOnly && !m.debugBuild {
		logging.Debug("Environment", "Rejecting switch to debug-only environment %s in release build", id)
		return false
	}

	m.mu.Lock()
	previous := m.current
	if previous == id {
		m.mu.Unlock()
		return true
	}
	m.current = id
	if err := m.store.Set(storageKey, string(id)); err != nil {
		logging.Warn("Environment", "Failed to persist environment selection: %v", err)
	}
	m.mu.Unlock()

	logging.Info("Environment", "Switched environment %s -> %s", previous, id)
	m.changes.Publish(Change{Previous: previous, New: id})
	return true
}

// ApplyFeatureOverrides pushes the current profile's flag overrides into
// the flag manager, in deterministic flag order.
func (m *Manager) ApplyFeatureOverrides() {
	env := m.Current()
	overrides := EffectiveOverrides(env)

	ids := make([]flags.FlagID, 0, len(overrides))
	for id := range overrides {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		m.flags.SetEnabled(id, overrides[id])
	}
	logging.Debug("Environment", "Applied %d feature overrides for %s", len(ids), env.ID)
}

// ResetToDefault switches back to the build-appropriate default
// environment.
func (m *Manager) ResetToDefault() bool {
	return m.SwitchTo(DefaultID(m.debugBuild))
}

// Refresh re-reads the persisted selection, emitting a Change when an
// external edit moved it. Invalid persisted values are ignored.
func (m *Manager) Refresh() {
	raw, ok := m.store.Get(storageKey)
	if !ok {
		return
	}
	id := ID(raw)
	env, found := Lookup(id)
	if !found || (env.DebugOnly && !m.debugBuild) {
		logging.Warn("Environment", "Ignoring invalid persisted environment %q", raw)
		return
	}

	m.mu.Lock()
	previous := m.current
	if previous == id {
		m.mu.Unlock()
		return
	}
	m.current = id
	m.mu.Unlock()

	logging.Info("Environment", "Environment changed externally %s -> %s", previous, id)
	m.changes.Publish(Change{Previous: previous, New: id})
}
