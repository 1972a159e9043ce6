// Package syncer replaces the local task cache with the provider's full
// collection, one bounded burst of page fetches at a time. Progress flows
// through the application state machine (StartSync, per-page progress
// updates, CompleteSync), and any failure parks the app in the error state
// while leaving the previous cache contents intact.
package syncer
