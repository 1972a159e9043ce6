// Package appstate implements deckhand's application-wide state machine
// covering launch, authentication, lock, offline, error and sync lifecycle.
//
// # Architecture
//
// The package is built around three pieces:
//
//   - State: a closed set of variants (Launching, Authenticated,
//     Unauthenticated, Locked, Offline, ErrorState, Syncing), each carrying
//     exactly the payload that variant needs. Exactly one variant is active
//     at a time.
//   - The transition table: the explicit enumeration of legal (from, to)
//     kind pairs. Any pair absent from the table is illegal.
//   - Manager: the single authority all lifecycle changes are serialized
//     through. Illegal transitions are rejected silently with a false
//     return, never an error; this is a routine occurrence driven by UI
//     races and timers, not a failure condition.
//
// # Transitions
//
// Every applied transition appends a {from, to, timestamp} entry to a
// bounded history (most recent 50, oldest evicted), publishes a Change event
// to subscribers and writes a debug trace. Rejected transitions do none of
// these.
//
// Convenience operations (Authenticate, Logout, Lock, Unlock,
// EnterOfflineMode, ExitOfflineMode, SetError, RecoverFromError, StartSync,
// UpdateSyncProgress, CompleteSync) construct the target state and delegate
// to the same transition path, so the table is the only gatekeeper.
//
// # Usage
//
//	mgr := appstate.NewManager()
//	unsub := mgr.OnChange(func(ch appstate.Change) {
//	    log.Printf("%s -> %s", ch.From, ch.To)
//	})
//	defer unsub()
//
//	mgr.Authenticate(user)
//	if mgr.Lock() {
//	    // now Locked(user)
//	}
//
// The Manager is constructed once by the application composition root and
// handed to the components that drive it (session flows, connectivity
// binding, sync engine). It is safe for concurrent use.
package appstate
