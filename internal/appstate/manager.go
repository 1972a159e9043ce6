package appstate

import (
	"sync"
	"time"

	"deckhand/internal/events"
	"deckhand/pkg/logging"
)

// maxHistory bounds the advisory transition history.
const maxHistory = 50

// Transition is one applied state change kept in the history.
type Transition struct {
	From Kind
	To   Kind
	At   time.Time
}

// Change is published to subscribers after every applied transition.
type Change struct {
	From  Kind
	To    Kind
	State State
	At    time.Time
}

// Manager serializes all application lifecycle transitions through one
// authority. Illegal transitions are rejected with a false return and leave
// the current state untouched.
type Manager struct {
	mu      sync.RWMutex
	current State
	history []Transition

	// priorToError is the state that was active when the error state was
	// entered. RecoverFromError restores it; leaving the error state by any
	// other path discards it.
	priorToError State

	// syncUser is the user captured when syncing began, used by
	// CompleteSync to restore the authenticated session.
	syncUser *User

	changes events.Emitter[Change]
}

// NewManager creates a Manager in the Launching state.
func NewManager() *Manager {
	return &Manager{current: Launching{}}
}

// Current returns the active state.
func (m *Manager) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// CurrentKind returns the active state's kind.
func (m *Manager) CurrentKind() Kind {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Kind()
}

// History returns a copy of the applied transitions, oldest first. The
// history is advisory and holds at most the last 50 entries.
func (m *Manager) History() []Transition {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Transition, len(m.history))
	copy(out, m.history)
	return out
}

// OnChange registers fn for state change events. The returned function
// unsubscribes.
func (m *Manager) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.changes.Subscribe(fn)
}

// Transition attempts to move to the given state. It returns whether the
// transition was applied.
func (m *Manager) Transition(to State) bool {
	return m.transitionWith(func() (State, bool) {
		return to, true
	})
}

// Authenticate moves to Authenticated carrying user.
func (m *Manager) Authenticate(user User) bool {
	return m.transitionWith(func() (State, bool) {
		return Authenticated{User: user}, true
	})
}

// Logout moves to Unauthenticated.
func (m *Manager) Logout() bool {
	return m.transitionWith(func() (State, bool) {
		return Unauthenticated{}, true
	})
}

// Lock moves to Locked carrying the current user. Without a current user
// this is a no-op.
func (m *Manager) Lock() bool {
	return m.transitionWith(func() (State, bool) {
		user, ok := CurrentUser(m.current)
		if !ok {
			logging.Debug("AppState", "Lock requested with no current user")
			return nil, false
		}
		return Locked{User: user}, true
	})
}

// Unlock restores Authenticated for the locked user. Only valid from
// Locked.
func (m *Manager) Unlock() bool {
	return m.transitionWith(func() (State, bool) {
		locked, ok := m.current.(Locked)
		if !ok {
			logging.Debug("AppState", "Unlock requested while %s", m.current.Kind())
			return nil, false
		}
		return Authenticated{User: locked.User}, true
	})
}

// EnterOfflineMode captures a snapshot of the current state and moves to
// Offline carrying it.
func (m *Manager) EnterOfflineMode() bool {
	return m.transitionWith(func() (State, bool) {
		snapshot := Snapshot{
			WasAuthenticated: IsAuthenticated(m.current),
			TakenAt:          time.Now(),
		}
		if user, ok := CurrentUser(m.current); ok {
			snapshot.User = &user
		}
		return Offline{Snapshot: snapshot}, true
	})
}

// ExitOfflineMode leaves Offline, restoring Authenticated when the snapshot
// recorded an authenticated user and Unauthenticated otherwise. Only valid
// from Offline.
func (m *Manager) ExitOfflineMode() bool {
	return m.transitionWith(func() (State, bool) {
		offline, ok := m.current.(Offline)
		if !ok {
			logging.Debug("AppState", "ExitOfflineMode requested while %s", m.current.Kind())
			return nil, false
		}
		if offline.Snapshot.WasAuthenticated && offline.Snapshot.User != nil {
			return Authenticated{User: *offline.Snapshot.User}, true
		}
		return Unauthenticated{}, true
	})
}

// SetError moves to the error state described by info, remembering the
// prior state for recovery.
func (m *Manager) SetError(info ErrorInfo) bool {
	return m.transitionWith(func() (State, bool) {
		return ErrorState{Info: info}, true
	})
}

// RecoverFromError restores the state that was active when the error state
// was entered. Only valid from the error state with a remembered prior.
func (m *Manager) RecoverFromError() bool {
	return m.transitionWith(func() (State, bool) {
		if m.current.Kind() != KindError {
			logging.Debug("AppState", "RecoverFromError requested while %s", m.current.Kind())
			return nil, false
		}
		if m.priorToError == nil {
			logging.Debug("AppState", "RecoverFromError requested with no remembered prior state")
			return nil, false
		}
		return m.priorToError, true
	})
}

// StartSync begins a synchronization, capturing the current user so
// CompleteSync can restore the session.
func (m *Manager) StartSync() bool {
	return m.transitionWith(func() (State, bool) {
		return Syncing{Progress: 0}, true
	})
}

// UpdateSyncProgress records sync progress, clamped to [0,1]. It is a no-op
// unless the current state is Syncing.
func (m *Manager) UpdateSyncProgress(p float64) bool {
	return m.transitionWith(func() (State, bool) {
		if m.current.Kind() != KindSyncing {
			logging.Debug("AppState", "UpdateSyncProgress requested while %s", m.current.Kind())
			return nil, false
		}
		return Syncing{Progress: clampProgress(p)}, true
	})
}

// CompleteSync ends a synchronization, restoring Authenticated for the user
// captured at StartSync. It is a no-op unless the current state is Syncing.
func (m *Manager) CompleteSync() bool {
	return m.transitionWith(func() (State, bool) {
		if m.current.Kind() != KindSyncing {
			logging.Debug("AppState", "CompleteSync requested while %s", m.current.Kind())
			return nil, false
		}
		if m.syncUser != nil {
			return Authenticated{User: *m.syncUser}, true
		}
		return Unauthenticated{}, true
	})
}

// transitionWith runs build under the manager lock, applies the returned
// target state and publishes the resulting change after the lock is
// released. Returning false from build rejects without touching state.
func (m *Manager) transitionWith(build func() (State, bool)) bool {
	m.mu.Lock()
	target, ok := build()
	if !ok {
		m.mu.Unlock()
		return false
	}
	change, ok := m.applyLocked(target)
	m.mu.Unlock()

	if ok {
		m.changes.Publish(change)
	}
	return ok
}

// applyLocked validates and applies a transition. Callers hold m.mu.
func (m *Manager) applyLocked(to State) (Change, bool) {
	if to == nil {
		return Change{}, false
	}
	from := m.current

	// Progress is clamped no matter how the Syncing state was built.
	if syncing, ok := to.(Syncing); ok {
		syncing.Progress = clampProgress(syncing.Progress)
		to = syncing
	}

	if !CanTransition(from.Kind(), to.Kind()) {
		logging.Debug("AppState", "Rejected transition %s -> %s", from.Kind(), to.Kind())
		return Change{}, false
	}

	if to.Kind() == KindError {
		m.priorToError = m.errorRecoveryTargetLocked(from)
	}
	if from.Kind() == KindError && to.Kind() != KindError {
		m.priorToError = nil
	}
	if to.Kind() == KindSyncing && from.Kind() != KindSyncing {
		if user, ok := CurrentUser(from); ok {
			m.syncUser = &user
		} else {
			m.syncUser = nil
		}
	}
	if from.Kind() == KindSyncing && to.Kind() != KindSyncing {
		m.syncUser = nil
	}

	now := time.Now()
	m.current = to
	m.history = append(m.history, Transition{From: from.Kind(), To: to.Kind(), At: now})
	if len(m.history) > maxHistory {
		m.history = m.history[len(m.history)-maxHistory:]
	}

	logging.Debug("AppState", "Transition %s -> %s", from.Kind(), to.Kind())
	return Change{From: from.Kind(), To: to.Kind(), State: to, At: now}, true
}

// errorRecoveryTargetLocked picks what RecoverFromError restores when the
// error state is entered from "from". A failed sync recovers to where the
// completed sync would have gone, never back into Syncing itself. Callers
// hold m.mu.
func (m *Manager) errorRecoveryTargetLocked(from State) State {
	if from.Kind() != KindSyncing {
		return from
	}
	if m.syncUser != nil {
		return Authenticated{User: *m.syncUser}
	}
	return Unauthenticated{}
}

func clampProgress(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
