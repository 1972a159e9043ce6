package environment

import (
	"time"

	"deckhand/internal/flags"
)

// ID identifies a deployment profile.
type ID string

const (
	EnvMock       ID = "mock"
	EnvStaging    ID = "staging"
	EnvProduction ID = "production"
)

// Environment is one deployment profile. All fields are static
// configuration; nothing here changes at runtime.
type Environment struct {
	ID              ID
	DisplayName     string
	BaseURL         string
	RequestTimeout  time.Duration
	UseMockServices bool
	LoggingEnabled  bool
	DebugOnly       bool

	// FeatureOverrides are the flag values this profile forces when its
	// overrides are applied.
	FeatureOverrides map[flags.FlagID]bool
}

// registry holds the fixed profiles in display order.
var registry = []Environment{
	{
		ID:              EnvMock,
		DisplayName:     "Mock",
		BaseURL:         "http://localhost:8700",
		RequestTimeout:  10 * time.Second,
		UseMockServices: true,
		LoggingEnabled:  true,
		DebugOnly:       true,
		FeatureOverrides: map[flags.FlagID]bool{
			flags.FlagDebugMenu:      true,
			flags.FlagVerboseLogging: true,
		},
	},
	{
		ID:              EnvStaging,
		DisplayName:     "Staging",
		BaseURL:         "https://staging.api.deckhand.dev",
		RequestTimeout:  30 * time.Second,
		UseMockServices: false,
		LoggingEnabled:  true,
		DebugOnly:       true,
		FeatureOverrides: map[flags.FlagID]bool{
			flags.FlagCrashReports: false,
		},
	},
	{
		ID:              EnvProduction,
		DisplayName:     "Production",
		BaseURL:         "https://api.deckhand.dev",
		RequestTimeout:  30 * time.Second,
		UseMockServices: false,
		LoggingEnabled:  false,
		DebugOnly:       false,
		FeatureOverrides: map[flags.FlagID]bool{
			flags.FlagDebugMenu:      false,
			flags.FlagVerboseLogging: false,
			flags.FlagCrashReports:   true,
		},
	},
}

// All returns every profile in display order.
func All() []Environment {
	out := make([]Environment, len(registry))
	for i, env := range registry {
		out[i] = cloneEnvironment(env)
	}
	return out
}

// Lookup returns the profile for id.
func Lookup(id ID) (Environment, bool) {
	for _, env := range registry {
		if env.ID == id {
			return cloneEnvironment(env), true
		}
	}
	return Environment{}, false
}

// DefaultID returns the startup default when nothing is persisted: mock for
// debug builds, production otherwise.
func DefaultID(debugBuild bool) ID {
	if debugBuild {
		return EnvMock
	}
	return EnvProduction
}

// EffectiveOverrides computes the flag overrides selecting env forces. It
// is a pure function of the profile.
func EffectiveOverrides(env Environment) map[flags.FlagID]bool {
	out := make(map[flags.FlagID]bool, len(env.FeatureOverrides))
	for id, v := range env.FeatureOverrides {
		out[id] = v
	}
	return out
}

// cloneEnvironment copies env including its override map, so callers can
// never mutate registry state.
func cloneEnvironment(env Environment) Environment {
	env.FeatureOverrides = EffectiveOverrides(env)
	return env
}
