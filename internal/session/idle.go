package session

import (
	"sync"
	"time"
)

// IdleLocker fires a callback after a period with no activity. Every Touch
// pushes the deadline out again; the agent loop touches it on any observed
// activity and wires the callback to the auto-lock.
type IdleLocker struct {
	timeout time.Duration
	onIdle  func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewIdleLocker creates a locker that calls onIdle after timeout of
// inactivity. It is created disarmed; call Start to arm it.
func NewIdleLocker(timeout time.Duration, onIdle func()) *IdleLocker {
	return &IdleLocker{
		timeout: timeout,
		onIdle:  onIdle,
	}
}

// Start arms the idle timer. Starting an armed locker resets it.
func (l *IdleLocker) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.timeout, l.onIdle)
}

// Touch resets the idle countdown. Touching a stopped locker does nothing.
func (l *IdleLocker) Touch() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer = time.AfterFunc(l.timeout, l.onIdle)
}

// Stop disarms the idle timer.
func (l *IdleLocker) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.timer == nil {
		return
	}
	l.timer.Stop()
	l.timer = nil
}
