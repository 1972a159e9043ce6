package connectivity

import (
	"sync"
	"time"

	"deckhand/internal/events"
)

// Change is published whenever reachability flips.
type Change struct {
	Online bool
	At     time.Time
}

// Monitor reports whether the backend is currently reachable.
type Monitor interface {
	// Online returns the current reachability verdict.
	Online() bool

	// OnChange registers fn for reachability flips. The returned function
	// removes the subscription.
	OnChange(fn func(Change)) (unsubscribe func())
}

// ManualMonitor is a Monitor whose verdict is set by the caller. The mock
// environment and tests drive it directly.
type ManualMonitor struct {
	mu      sync.Mutex
	online  bool
	emitter *events.Emitter[Change]
}

// NewManualMonitor starts out online.
func NewManualMonitor() *ManualMonitor {
	return &ManualMonitor{
		online:  true,
		emitter: &events.Emitter[Change]{},
	}
}

// Online implements Monitor.
func (m *ManualMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline flips the verdict, notifying subscribers only on actual change.
func (m *ManualMonitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.mu.Unlock()

	m.emitter.Publish(Change{Online: online, At: time.Now()})
}

// OnChange implements Monitor.
func (m *ManualMonitor) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.emitter.Subscribe(fn)
}
