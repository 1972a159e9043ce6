package appstate

// allowedTransitions enumerates every legal (from, to) kind pair.
//
// Valid transitions:
//
//	launching       -> any other state
//	unauthenticated -> authenticated | error
//	authenticated   -> unauthenticated | locked | offline | error | syncing
//	locked          -> authenticated | unauthenticated
//	offline         -> authenticated | unauthenticated | error
//	error           -> any other state (recovery path)
//	syncing         -> authenticated | error | syncing (progress updates)
//
// Launching and error are universal escape hatches: startup and recovery
// must always be able to proceed. Everything else follows a strict
// lifecycle, so there is no path from locked straight to offline without
// re-authenticating first.
var allowedTransitions = map[Kind][]Kind{
	KindLaunching: {
		KindAuthenticated, KindUnauthenticated, KindLocked,
		KindOffline, KindError, KindSyncing,
	},
	KindUnauthenticated: {
		KindAuthenticated, KindError,
	},
	KindAuthenticated: {
		KindUnauthenticated, KindLocked, KindOffline, KindError, KindSyncing,
	},
	KindLocked: {
		KindAuthenticated, KindUnauthenticated,
	},
	KindOffline: {
		KindAuthenticated, KindUnauthenticated, KindError,
	},
	KindError: {
		KindLaunching, KindAuthenticated, KindUnauthenticated,
		KindLocked, KindOffline, KindSyncing,
	},
	KindSyncing: {
		KindAuthenticated, KindError, KindSyncing,
	},
}

// CanTransition reports whether the (from, to) pair is legal.
func CanTransition(from, to Kind) bool {
	for _, k := range allowedTransitions[from] {
		if k == to {
			return true
		}
	}
	return false
}
