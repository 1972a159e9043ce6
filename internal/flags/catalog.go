package flags

// FlagID is the stable string key of a feature flag.
type FlagID string

const (
	// FlagTaskSync gates the task synchronization engine.
	FlagTaskSync FlagID = "task-sync"
	// FlagSelfUpdate gates the self-update command.
	FlagSelfUpdate FlagID = "self-update"
	// FlagCrashReports gates crash report submission.
	FlagCrashReports FlagID = "crash-reports"
	// FlagAutoLock gates the idle auto-lock timer.
	FlagAutoLock FlagID = "auto-lock"
	// FlagOfflineDetection gates the connectivity monitor binding.
	FlagOfflineDetection FlagID = "offline-detection"
	// FlagFuzzySearch enables the fuzzy fallback in search scoring.
	FlagFuzzySearch FlagID = "fuzzy-search"
	// FlagDebugMenu exposes the developer menu. Debug builds only.
	FlagDebugMenu FlagID = "debug-menu"
	// FlagVerboseLogging lowers the log level to debug. Debug builds only.
	FlagVerboseLogging FlagID = "verbose-logging"
)

// Category groups flags for display.
type Category string

const (
	CategoryCore         Category = "core"
	CategorySecurity     Category = "security"
	CategoryDeveloper    Category = "developer"
	CategoryExperimental Category = "experimental"
)

// Flag describes one catalog entry.
type Flag struct {
	ID          FlagID
	DisplayName string
	Description string
	Category    Category
	Default     bool
	DebugOnly   bool
}

// catalog is the fixed set of flags, in display order.
var catalog = []Flag{
	{
		ID:          FlagTaskSync,
		DisplayName: "Task Sync",
		Description: "Synchronize tasks with the configured backend.",
		Category:    CategoryCore,
		Default:     true,
	},
	{
		ID:          FlagSelfUpdate,
		DisplayName: "Self Update",
		Description: "Allow the application to update itself in place.",
		Category:    CategoryCore,
		Default:     true,
	},
	{
		ID:          FlagCrashReports,
		DisplayName: "Crash Reports",
		Description: "Submit anonymized crash reports.",
		Category:    CategoryCore,
		Default:     false,
	},
	{
		ID:          FlagOfflineDetection,
		DisplayName: "Offline Detection",
		Description: "Probe connectivity and switch to offline mode automatically.",
		Category:    CategoryCore,
		Default:     true,
	},
	{
		ID:          FlagAutoLock,
		DisplayName: "Auto Lock",
		Description: "Lock the session after a period of inactivity.",
		Category:    CategorySecurity,
		Default:     true,
	},
	{
		ID:          FlagFuzzySearch,
		DisplayName: "Fuzzy Search",
		Description: "Fall back to subsequence matching when a query scores nothing.",
		Category:    CategoryExperimental,
		Default:     true,
	},
	{
		ID:          FlagDebugMenu,
		DisplayName: "Debug Menu",
		Description: "Show the developer menu.",
		Category:    CategoryDeveloper,
		Default:     false,
		DebugOnly:   true,
	},
	{
		ID:          FlagVerboseLogging,
		DisplayName: "Verbose Logging",
		Description: "Log state transitions and other chatter at debug level.",
		Category:    CategoryDeveloper,
		Default:     false,
		DebugOnly:   true,
	},
}

var catalogByID = func() map[FlagID]Flag {
	m := make(map[FlagID]Flag, len(catalog))
	for _, f := range catalog {
		m[f.ID] = f
	}
	return m
}()

// Catalog returns the flag catalog in display order.
func Catalog() []Flag {
	out := make([]Flag, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id FlagID) (Flag, bool) {
	f, ok := catalogByID[id]
	return f, ok
}
