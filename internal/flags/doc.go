// Package flags resolves deckhand's feature flags from a fixed catalog,
// persisted overrides and build-mode constraints.
//
// Flags are statically enumerated in the catalog; nothing creates flags at
// runtime. The Manager layers three sources when resolving a flag:
//
//  1. Build mode: debug-only flags always resolve to false in release
//     builds, regardless of any stored override.
//  2. Persisted override: a value explicitly set earlier, held in a
//     write-through cache over the settings store.
//  3. Compiled default: the catalog's default value.
//
// Mutations that are not permitted (debug-only flags in a release build)
// are silent no-ops returning false; they are routine permission checks,
// not errors. Setting a flag to its current effective value skips
// persistence and notification entirely.
package flags
