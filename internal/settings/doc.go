// Package settings provides the persisted key-value store backing deckhand's
// feature flag overrides, environment selection and other small durable
// values.
//
// # Stores
//
// Store is the boundary the managers depend on. Two implementations exist:
//
//   - FileStore: a single YAML file, loaded at construction and rewritten
//     atomically on every change. A missing file means an empty store; a
//     corrupt file is logged and treated as empty so the application still
//     starts.
//   - MemoryStore: map-backed, for tests and ephemeral runs.
//
// # External changes
//
// Watcher observes the settings file with fsnotify and publishes a debounced
// ReloadEvent when another process rewrites it. Long-running modes subscribe,
// call FileStore.Reload and then let the managers re-resolve their values.
package settings
