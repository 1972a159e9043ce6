// Package buildinfo reports the build mode and version the binary was
// compiled for.
//
// Debug is the development default. Release builds are produced with
//
//	go build -ldflags "-X deckhand/internal/buildinfo.mode=release \
//	  -X deckhand/internal/buildinfo.version=v1.2.3"
//
// Managers that gate behavior on the build mode take the flag as a
// constructor argument so tests can exercise both modes; this package only
// supplies the ambient default at wiring time.
package buildinfo

// mode is overridden at link time for release builds.
var mode = "debug"

// version, commit and date are stamped at link time by the release build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	ModeDebug   = "debug"
	ModeRelease = "release"
)

// Version returns the stamped release version, "dev" for local builds.
func Version() string { return version }

// Commit returns the stamped VCS revision.
func Commit() string { return commit }

// Date returns the stamped build date.
func Date() string { return date }

// IsDebug reports whether this is a debug build. Any mode value other than
// "release" counts as debug.
func IsDebug() bool {
	return mode != ModeRelease
}

// Mode returns the normalized build mode name.
func Mode() string {
	if IsDebug() {
		return ModeDebug
	}
	return ModeRelease
}
