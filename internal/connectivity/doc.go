// Package connectivity watches backend reachability for offline detection.
//
// The ProbeMonitor polls a probe function on a fixed interval and applies
// failure hysteresis: it takes two consecutive failed probes to declare the
// backend unreachable, but a single success to declare it back. That keeps
// one flaky request from flapping the whole app into offline mode while
// still recovering immediately.
package connectivity
