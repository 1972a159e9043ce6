package flags

import (
	"strconv"
	"sync"

	"deckhand/internal/events"
	"deckhand/internal/settings"
	"deckhand/pkg/logging"
)

// storageKeyPrefix namespaces flag overrides inside the settings store.
const storageKeyPrefix = "flag."

// Change is published after a flag's effective value changes.
type Change struct {
	ID      FlagID
	Enabled bool
}

// ResetAllEvent is published once when all overrides are cleared in bulk.
type ResetAllEvent struct{}

// Resolved pairs a catalog entry with its effective value.
type Resolved struct {
	Flag
	Enabled    bool
	Overridden bool
}

// Manager resolves effective flag values. It keeps a write-through cache of
// persisted overrides so reads never touch the store.
type Manager struct {
	mu         sync.RWMutex
	store      settings.Store
	debugBuild bool
	overrides  map[FlagID]bool

	changes events.Emitter[Change]
	resets  events.Emitter[ResetAllEvent]
}

// NewManager creates a Manager over the given store. debugBuild selects
// whether debug-only flags may resolve and be mutated.
func NewManager(store settings.Store, debugBuild bool) *Manager {
	m := &Manager{
		store:      store,
		debugBuild: debugBuild,
		overrides:  make(map[FlagID]bool),
	}
	m.loadOverrides()
	return m
}

// loadOverrides seeds the cache from the settings store.
func (m *Manager) loadOverrides() {
	for _, f := range catalog {
		raw, ok := m.store.Get(storageKey(f.ID))
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			logging.Warn("Flags", "Ignoring unparsable override for %s: %q", f.ID, raw)
			continue
		}
		m.overrides[f.ID] = v
	}
}

// OnChange registers fn for flag change events. The returned function
// unsubscribes.
func (m *Manager) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.changes.Subscribe(fn)
}

// OnResetAll registers fn for bulk reset events. The returned function
// unsubscribes.
func (m *Manager) OnResetAll(fn func(ResetAllEvent)) (unsubscribe func()) {
	return m.resets.Subscribe(fn)
}

// IsEnabled returns the effective value of id. Debug-only flags always
// resolve to false in release builds; unknown flags resolve to false.
func (m *Manager) IsEnabled(id FlagID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.effectiveLocked(id)
}

// SetEnabled sets id to value, persisting the override. It returns false
// when the flag is unknown or the mutation is not permitted in this build.
// Setting a flag to its current effective value skips persistence and
// notification and reports true.
func (m *Manager) SetEnabled(id FlagID, value bool) bool {
	flag, ok := Lookup(id)
	if !ok {
		logging.Warn("Flags", "SetEnabled for unknown flag %s", id)
		return false
	}
	if flag.DebugOnly && !m.debugBuild {
		logging.Debug("Flags", "Ignoring SetEnabled for debug-only flag %s in release build", id)
		return false
	}

	m.mu.Lock()
	if m.effectiveLocked(id) == value {
		m.mu.Unlock()
		return true
	}
	m.overrides[id] = value
	m.persist(id, value)
	m.mu.Unlock()

	logging.Debug("Flags", "Flag %s set to %t", id, value)
	m.changes.Publish(Change{ID: id, Enabled: value})
	return true
}

// Reset clears the persisted override for id, reverting to the compiled
// default. It always emits a change notification.
func (m *Manager) Reset(id FlagID) bool {
	if _, ok := Lookup(id); !ok {
		logging.Warn("Flags", "Reset for unknown flag %s", id)
		return false
	}

	m.mu.Lock()
	delete(m.overrides, id)
	if err := m.store.Delete(storageKey(id)); err != nil {
		logging.Warn("Flags", "Failed to remove override for %s: %v", id, err)
	}
	effective := m.effectiveLocked(id)
	m.mu.Unlock()

	logging.Debug("Flags", "Flag %s reset to default", id)
	m.changes.Publish(Change{ID: id, Enabled: effective})
	return true
}

// ResetAll clears every persisted override and emits a single bulk reset
// notification.
func (m *Manager) ResetAll() {
	m.mu.Lock()
	for id := range m.overrides {
		if err := m.store.Delete(storageKey(id)); err != nil {
			logging.Warn("Flags", "Failed to remove override for %s: %v", id, err)
		}
	}
	m.overrides = make(map[FlagID]bool)
	m.mu.Unlock()

	logging.Debug("Flags", "All flags reset to defaults")
	m.resets.Publish(ResetAllEvent{})
}

// All returns every catalog entry with its effective value, in catalog
// order.
func (m *Manager) All() []Resolved {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Resolved, 0, len(catalog))
	for _, f := range catalog {
		_, overridden := m.overrides[f.ID]
		out = append(out, Resolved{
			Flag:       f,
			Enabled:    m.effectiveLocked(f.ID),
			Overridden: overridden,
		})
	}
	return out
}

// Refresh re-reads overrides from the settings store and emits a Change for
// every flag whose effective value moved. Long-running modes call this
// after the settings file was rewritten externally.
func (m *Manager) Refresh() {
	m.mu.Lock()
	before := make(map[FlagID]bool, len(catalog))
	for _, f := range catalog {
		before[f.ID] = m.effectiveLocked(f.ID)
	}

	m.overrides = make(map[FlagID]bool)
	m.loadOverrides()

	var diffs []Change
	for _, f := range catalog {
		if after := m.effectiveLocked(f.ID); after != before[f.ID] {
			diffs = append(diffs, Change{ID: f.ID, Enabled: after})
		}
	}
	m.mu.Unlock()

	for _, ch := range diffs {
		logging.Debug("Flags", "Flag %s changed externally to %t", ch.ID, ch.Enabled)
		m.changes.Publish(ch)
	}
}

// effectiveLocked resolves id. Callers hold m.mu.
func (m *Manager) effectiveLocked(id FlagID) bool {
	flag, ok := Lookup(id)
	if !ok {
		return false
	}
	if flag.DebugOnly && !m.debugBuild {
		return false
	}
	if v, ok := m.overrides[id]; ok {
		return v
	}
	return flag.Default
}

// persist writes one override through to the store. Persistence is best
// effort; the cache stays authoritative for this process.
func (m *Manager) persist(id FlagID, value bool) {
	if err := m.store.Set(storageKey(id), strconv.FormatBool(value)); err != nil {
		logging.Warn("Flags", "Failed to persist override for %s: %v", id, err)
	}
}

func storageKey(id FlagID) string {
	return storageKeyPrefix + string(id)
}
