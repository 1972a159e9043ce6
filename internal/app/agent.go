package app

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/daemon"

	"deckhand/internal/appstate"
	"deckhand/internal/connectivity"
	"deckhand/internal/flags"
	"deckhand/internal/session"
	"deckhand/internal/settings"
	"deckhand/pkg/logging"
)

// Agent is the long-running background mode. It restores the persisted
// session, feeds connectivity changes into the state machine, arms the idle
// auto-lock, and reloads settings when another process edits the file.
type Agent struct {
	core    *Core
	locker  *session.IdleLocker
	watcher *settings.Watcher
	ready   chan struct{}
}

func NewAgent(core *Core) *Agent {
	return &Agent{core: core, ready: make(chan struct{})}
}

// Ready is closed once every subscription is wired and the agent is only
// waiting for work. An Agent runs at most once.
func (a *Agent) Ready() <-chan struct{} {
	return a.ready
}

// Run blocks until ctx is cancelled. Subscriptions are torn down and
// systemd is notified of the shutdown before it returns.
func (a *Agent) Run(ctx context.Context) error {
	a.locker = session.NewIdleLocker(a.core.Config.IdleLockAfter, a.lockIdleSession)
	defer a.locker.Stop()

	unsubState := a.core.State.OnChange(func(ch appstate.Change) {
		logging.Info("Agent", "State changed: %s -> %s", ch.From, ch.To)
		a.armIdleLock()
	})
	defer unsubState()

	if restored, err := a.core.Sessions.Restore(); err != nil {
		logging.Warn("Agent", "Session restore failed: %v", err)
	} else if restored {
		if user, ok := appstate.CurrentUser(a.core.State.Current()); ok {
			logging.Info("Agent", "Restored session for %s", user.Email)
		}
	} else {
		logging.Info("Agent", "No persisted session, starting unauthenticated")
	}

	unsubConn := a.core.Monitor.OnChange(func(ch connectivity.Change) {
		if !a.core.Flags.IsEnabled(flags.FlagOfflineDetection) {
			return
		}
		if ch.Online {
			if a.core.State.ExitOfflineMode() {
				logging.Info("Agent", "Connectivity restored, leaving offline mode")
			}
		} else if a.core.State.EnterOfflineMode() {
			logging.Warn("Agent", "Connectivity lost, entering offline mode")
		}
	})
	defer unsubConn()

	if a.core.probeMonitor != nil {
		if err := a.core.probeMonitor.Start(ctx); err != nil {
			return fmt.Errorf("starting connectivity monitor: %w", err)
		}
		defer a.core.probeMonitor.Stop()
	}

	unsubFlags := a.core.Flags.OnChange(func(ch flags.Change) {
		if ch.ID == flags.FlagAutoLock {
			a.armIdleLock()
		}
	})
	defer unsubFlags()
	a.armIdleLock()

	a.watcher = settings.NewWatcher(a.core.Settings.Path(), 0)
	unsubReload := a.watcher.OnReload(func(ev settings.ReloadEvent) {
		if err := a.core.Settings.Reload(); err != nil {
			logging.Warn("Agent", "Settings reload failed: %v", err)
			return
		}
		a.core.Flags.Refresh()
		a.core.Environments.Refresh()
		logging.Info("Agent", "Settings reloaded from %s", ev.Path)
	})
	defer unsubReload()
	if err := a.watcher.Start(ctx); err != nil {
		logging.Warn("Agent", "Settings watcher unavailable: %v", err)
	} else {
		defer func() { _ = a.watcher.Stop() }()
	}

	if sent, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Warn("Agent", "sd_notify failed: %v", err)
	} else if sent {
		logging.Debug("Agent", "Notified systemd of readiness")
	}
	logging.Info("Agent", "Agent running in %s environment", a.core.Environments.CurrentID())

	close(a.ready)
	<-ctx.Done()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	logging.Info("Agent", "Shutting down")
	return nil
}

// armIdleLock keeps the idle timer running exactly while an unlocked
// session exists and the auto-lock flag is on.
func (a *Agent) armIdleLock() {
	if a.core.Flags.IsEnabled(flags.FlagAutoLock) && a.core.State.CurrentKind() == appstate.KindAuthenticated {
		a.locker.Start()
	} else {
		a.locker.Stop()
	}
}

func (a *Agent) lockIdleSession() {
	if err := a.core.Sessions.Lock(); err != nil {
		// Typically a session without a passcode. Re-arm so a passcode
		// set later still gets picked up at the next idle window.
		logging.Debug("Agent", "Idle lock skipped: %v", err)
		a.armIdleLock()
		return
	}
	logging.Info("Agent", "Session locked after %s idle", a.core.Config.IdleLockAfter)
}
