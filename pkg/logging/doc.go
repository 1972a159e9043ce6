// Package logging provides structured logging for deckhand with unified
// log handling and level filtering.
//
// The package wraps Go's standard slog package so every subsystem logs
// through one configured handler with consistent output.
//
// # Log Levels
//
//   - **Debug**: Detailed information for debugging and development,
//     including state transition traces
//   - **Info**: General informational messages about application operation
//   - **Warn**: Warning messages that indicate potential issues
//   - **Error**: Error messages for failures and exceptional conditions
//
// # Usage
//
//	import "deckhand/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("Bootstrap", "Application starting up")
//	logging.Debug("AppState", "Transition %s -> %s", from, to)
//	logging.Warn("Settings", "Settings file missing, using defaults")
//	logging.Error("Session", err, "Failed to restore session")
//
// # Subsystem Organization
//
// Logs are organized by subsystem to enable filtering and categorization:
//
//   - **Bootstrap**: Application initialization and startup
//   - **AppState**: Application state machine transitions
//   - **Flags**: Feature flag resolution and changes
//   - **Environment**: Environment switching
//   - **Settings**: Persisted settings store and file watching
//   - **Session**: Authentication, lock and unlock flows
//   - **Sync**: Task synchronization
//   - **Connectivity**: Network reachability probing
//
// The logging system is safe for concurrent use from multiple goroutines.
package logging
