package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"deckhand/pkg/logging"
)

const (
	configFileName   = "config.toml"
	settingsFileName = "settings.yaml"
	cacheFileName    = "tasks.db"
	sessionDirName   = "session"

	defaultProbeInterval = 30 * time.Second
	defaultIdleLockAfter = 15 * time.Minute
)

// Config is everything the application needs at startup: where its files
// live and the handful of tunables read from config.toml.
type Config struct {
	// ConfigDir is the base directory, ~/.config/deckhand by default.
	ConfigDir string

	// SettingsPath is the YAML file backing flag and environment
	// persistence.
	SettingsPath string

	// CachePath is the SQLite task cache.
	CachePath string

	// SessionDir holds the session secrets.
	SessionDir string

	// LogLevel is the startup log level. The verbose-logging flag can
	// lower it to debug afterwards.
	LogLevel logging.LogLevel

	// Environment optionally overrides the persisted environment selection
	// for this run.
	Environment string

	// ProbeInterval is how often connectivity is probed in agent mode.
	ProbeInterval time.Duration

	// IdleLockAfter is the inactivity window before the auto-lock fires.
	IdleLockAfter time.Duration
}

// DefaultConfigDir returns the per-user configuration directory.
func DefaultConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving user config dir: %w", err)
	}
	return filepath.Join(base, "deckhand"), nil
}

// LoadConfig reads config.toml under dir, falling back to defaults for a
// missing file or any unset field. An empty dir selects the default
// configuration directory. Unparseable files are an error; a broken config
// should be fixed, not silently ignored.
func LoadConfig(dir string) (Config, error) {
	var err error
	if strings.TrimSpace(dir) == "" {
		dir, err = DefaultConfigDir()
		if err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		ConfigDir:     dir,
		SettingsPath:  filepath.Join(dir, settingsFileName),
		CachePath:     filepath.Join(dir, cacheFileName),
		SessionDir:    filepath.Join(dir, sessionDirName),
		LogLevel:      logging.LevelInfo,
		ProbeInterval: defaultProbeInterval,
		IdleLockAfter: defaultIdleLockAfter,
	}

	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var raw struct {
		LogLevel      string `toml:"log_level"`
		Environment   string `toml:"environment"`
		ProbeInterval string `toml:"probe_interval"`
		IdleLockAfter string `toml:"idle_lock_after"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parsing config file: %w", err)
	}

	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		level, err := logging.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("config log_level: %w", err)
		}
		cfg.LogLevel = level
	}
	cfg.Environment = strings.TrimSpace(raw.Environment)

	if cfg.ProbeInterval, err = durationField("probe_interval", raw.ProbeInterval, cfg.ProbeInterval); err != nil {
		return Config{}, err
	}
	if cfg.IdleLockAfter, err = durationField("idle_lock_after", raw.IdleLockAfter, cfg.IdleLockAfter); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func durationField(name, value string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config %s: must be positive, got %s", name, d)
	}
	return d, nil
}
