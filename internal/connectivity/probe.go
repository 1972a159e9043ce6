package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"deckhand/internal/events"
	"deckhand/pkg/logging"
)

// offlineAfterFailures is how many consecutive probe failures it takes to
// call the backend unreachable. A single dropped request must not bounce
// the app into offline mode; a single success brings it straight back.
const offlineAfterFailures = 2

// defaultProbeTimeout bounds one probe attempt.
const defaultProbeTimeout = 5 * time.Second

// ProbeFunc checks backend reachability once. A nil error means reachable.
type ProbeFunc func(ctx context.Context) error

// HTTPProbe returns a ProbeFunc that GETs url and treats any 2xx answer as
// reachable. A nil client uses http.DefaultClient.
func HTTPProbe(client *http.Client, url string) ProbeFunc {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("building probe request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return fmt.Errorf("probe returned status %d", resp.StatusCode)
		}
		return nil
	}
}

// ProbeMonitor polls a ProbeFunc on an interval and derives reachability
// with failure hysteresis. It starts out online; the first probe corrects
// that within one interval if the backend is actually down.
type ProbeMonitor struct {
	probe    ProbeFunc
	interval time.Duration
	timeout  time.Duration

	mu       sync.Mutex
	online   bool
	failures int
	cancel   context.CancelFunc
	done     chan struct{}

	emitter *events.Emitter[Change]
}

// NewProbeMonitor creates a monitor polling probe every interval.
func NewProbeMonitor(probe ProbeFunc, interval time.Duration) *ProbeMonitor {
	timeout := defaultProbeTimeout
	if interval < timeout {
		timeout = interval
	}
	return &ProbeMonitor{
		probe:    probe,
		interval: interval,
		timeout:  timeout,
		online:   true,
		emitter:  &events.Emitter[Change]{},
	}
}

// Online implements Monitor.
func (m *ProbeMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnChange implements Monitor.
func (m *ProbeMonitor) OnChange(fn func(Change)) (unsubscribe func()) {
	return m.emitter.Subscribe(fn)
}

// Start launches the polling loop. It probes once immediately, then on
// every interval tick until Stop is called or ctx ends.
func (m *ProbeMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.cancel != nil {
		m.mu.Unlock()
		return fmt.Errorf("connectivity monitor already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	done := make(chan struct{})
	m.done = done
	m.mu.Unlock()

	go m.run(ctx, done)
	return nil
}

// Stop halts the polling loop and waits for it to exit. It is safe to call
// more than once.
func (m *ProbeMonitor) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	done := m.done
	m.cancel = nil
	m.done = nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *ProbeMonitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probeOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeOnce(ctx)
		}
	}
}

// probeOnce runs a single probe attempt and feeds the result into the
// hysteresis state.
func (m *ProbeMonitor) probeOnce(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.probe(probeCtx)
	cancel()

	if ctx.Err() != nil {
		// Shutdown, not a verdict.
		return
	}
	if err != nil {
		logging.Debug("Connectivity", "Probe failed: %v", err)
	}
	m.record(err == nil)
}

// record applies the hysteresis rule: one success restores online, only
// offlineAfterFailures failures in a row take it away.
func (m *ProbeMonitor) record(ok bool) {
	m.mu.Lock()
	var (
		changed bool
		online  bool
	)
	if ok {
		m.failures = 0
		changed = !m.online
		m.online = true
	} else {
		m.failures++
		if m.failures >= offlineAfterFailures && m.online {
			m.online = false
			changed = true
		}
	}
	online = m.online
	m.mu.Unlock()

	if !changed {
		return
	}
	if online {
		logging.Info("Connectivity", "Backend reachable again")
	} else {
		logging.Info("Connectivity", "Backend unreachable after %d consecutive probe failures", offlineAfterFailures)
	}
	m.emitter.Publish(Change{Online: online, At: time.Now()})
}
