package appstate

import "time"

// Kind identifies a state variant.
type Kind string

const (
	KindLaunching       Kind = "launching"
	KindAuthenticated   Kind = "authenticated"
	KindUnauthenticated Kind = "unauthenticated"
	KindLocked          Kind = "locked"
	KindOffline         Kind = "offline"
	KindError           Kind = "error"
	KindSyncing         Kind = "syncing"
)

// User is the account record carried by authenticated state variants.
type User struct {
	ID          string
	Email       string
	DisplayName string
}

// Snapshot captures what was known when offline mode was entered. It is
// taken once at entry and never mutated afterward.
type Snapshot struct {
	WasAuthenticated bool
	User             *User
	TakenAt          time.Time
}

// ErrorCode classifies an ErrorInfo payload.
type ErrorCode string

const (
	ErrorCodeNetworkFailure        ErrorCode = "networkFailure"
	ErrorCodeAuthenticationFailure ErrorCode = "authenticationFailure"
	ErrorCodeDataCorruption        ErrorCode = "dataCorruption"
	ErrorCodeSyncFailure           ErrorCode = "syncFailure"
	ErrorCodeUnknown               ErrorCode = "unknown"
)

// ErrorInfo is the payload of the error state. It is a data value describing
// a degraded-but-recoverable condition, not a Go error.
type ErrorInfo struct {
	Code       ErrorCode
	Message    string
	CanRetry   bool
	OccurredAt time.Time
}

// NewErrorInfo builds an ErrorInfo stamped with the current time.
func NewErrorInfo(code ErrorCode, message string, canRetry bool) ErrorInfo {
	return ErrorInfo{
		Code:       code,
		Message:    message,
		CanRetry:   canRetry,
		OccurredAt: time.Now(),
	}
}

// State is one variant of the application state machine. The set of
// implementations is closed; external packages switch on the concrete type
// or on Kind.
type State interface {
	Kind() Kind
	isState()
}

// Launching is the initial state before bootstrap decides where to go.
type Launching struct{}

// Authenticated means a user session is active.
type Authenticated struct {
	User User
}

// Unauthenticated means no session exists.
type Unauthenticated struct{}

// Locked means a session exists but the UI is passcode-locked.
type Locked struct {
	User User
}

// Offline means connectivity was lost; Snapshot records what was active at
// entry so exit can restore it.
type Offline struct {
	Snapshot Snapshot
}

// ErrorState represents a degraded condition described by Info.
type ErrorState struct {
	Info ErrorInfo
}

// Syncing means a task synchronization is in flight. Progress is always in
// [0,1].
type Syncing struct {
	Progress float64
}

func (Launching) Kind() Kind       { return KindLaunching }
func (Authenticated) Kind() Kind   { return KindAuthenticated }
func (Unauthenticated) Kind() Kind { return KindUnauthenticated }
func (Locked) Kind() Kind          { return KindLocked }
func (Offline) Kind() Kind         { return KindOffline }
func (ErrorState) Kind() Kind      { return KindError }
func (Syncing) Kind() Kind         { return KindSyncing }

func (Launching) isState()       {}
func (Authenticated) isState()   {}
func (Unauthenticated) isState() {}
func (Locked) isState()          {}
func (Offline) isState()         {}
func (ErrorState) isState()      {}
func (Syncing) isState()         {}

// IsAuthenticated reports whether s is the Authenticated variant.
func IsAuthenticated(s State) bool {
	return s.Kind() == KindAuthenticated
}

// IsUsable reports whether the application may show main content in s.
// Offline counts as usable only when the snapshot says a user was
// authenticated when connectivity was lost.
func IsUsable(s State) bool {
	switch v := s.(type) {
	case Authenticated, Syncing:
		return true
	case Offline:
		return v.Snapshot.WasAuthenticated
	default:
		return false
	}
}

// IsTransitional reports whether s is a mid-flight state.
func IsTransitional(s State) bool {
	k := s.Kind()
	return k == KindLaunching || k == KindSyncing
}

// CurrentUser extracts the user from whichever variant carries one.
func CurrentUser(s State) (User, bool) {
	switch v := s.(type) {
	case Authenticated:
		return v.User, true
	case Locked:
		return v.User, true
	case Offline:
		if v.Snapshot.User != nil {
			return *v.Snapshot.User, true
		}
	}
	return User{}, false
}
