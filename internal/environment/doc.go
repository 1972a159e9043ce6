// Package environment manages deckhand's deployment profile selection.
//
// The registry is a fixed set of profiles (mock, staging, production), each
// with static connection settings and a map of feature flag overrides. The
// Manager owns the single "current environment" selection, persists it, and
// restricts switching: profiles marked debug-only cannot be selected in
// release builds.
//
// Switching environments emits a Change carrying the previous and new
// identifiers. Applying the new profile's flag overrides is an explicit
// separate step (ApplyFeatureOverrides) driven by the caller, keeping the
// override mechanics auditable: EffectiveOverrides is a pure function from
// profile to override map.
package environment
