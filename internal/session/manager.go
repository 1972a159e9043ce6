package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"deckhand/internal/appstate"
	"deckhand/pkg/logging"
)

const minPasscodeLength = 4

// Manager owns the sign-in lifecycle: it talks to the auth backend, keeps
// the stored session in line with reality and drives the corresponding
// application state transitions.
type Manager struct {
	store  SecureStore
	client AuthClient
	state  *appstate.Manager
}

// NewManager wires a session manager to its store, auth client and the
// application state machine.
func NewManager(store SecureStore, client AuthClient, state *appstate.Manager) *Manager {
	return &Manager{
		store:  store,
		client: client,
		state:  state,
	}
}

// Login exchanges credentials for a session, persists it and moves the app
// to Authenticated. A rejected login parks the app in the error state with
// an authentication failure the user can retry.
func (m *Manager) Login(ctx context.Context, creds Credentials) (appstate.User, error) {
	sess, err := m.client.Login(ctx, creds)
	if err != nil {
		m.state.SetError(appstate.NewErrorInfo(
			appstate.ErrorCodeAuthenticationFailure, "sign-in rejected", true))
		return appstate.User{}, fmt.Errorf("logging in: %w", err)
	}

	if err := m.store.Save(sess); err != nil {
		// The session still works for this run; it just will not survive
		// a restart.
		logging.Warn("Session", "Could not persist session: %v", err)
	}

	user := sess.User()
	m.state.Authenticate(user)
	logging.Info("Session", "Signed in as %s", user.Email)
	return user, nil
}

// Restore loads a persisted session at startup. It reports whether one was
// restored and always leaves the state machine somewhere sensible:
// Authenticated (or Locked when a passcode is set) on success,
// Unauthenticated otherwise. Expired and unreadable sessions are deleted.
func (m *Manager) Restore() (bool, error) {
	sess, err := m.store.Load()
	if errors.Is(err, ErrNoSession) {
		m.state.Logout()
		return false, nil
	}
	if err != nil {
		_ = m.store.Delete()
		m.state.Logout()
		return false, fmt.Errorf("restoring session: %w", err)
	}

	if sess.Expired(time.Now()) {
		logging.Info("Session", "Stored session for %s has expired", sess.Email)
		_ = m.store.Delete()
		m.state.Logout()
		return false, nil
	}

	if sess.HasPasscode() {
		m.state.Transition(appstate.Locked{User: sess.User()})
		logging.Info("Session", "Restored locked session for %s", sess.Email)
	} else {
		m.state.Authenticate(sess.User())
		logging.Info("Session", "Restored session for %s", sess.Email)
	}
	return true, nil
}

// Logout deletes the stored session and moves the app to Unauthenticated.
func (m *Manager) Logout() error {
	if err := m.store.Delete(); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	m.state.Logout()
	logging.Info("Session", "Signed out")
	return nil
}

// SetPasscode configures the lock passcode for the current session. Only
// the bcrypt hash is ever stored.
func (m *Manager) SetPasscode(code string) error {
	if len(code) < minPasscodeLength {
		return fmt.Errorf("passcode must be at least %d characters", minPasscodeLength)
	}
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing passcode: %w", err)
	}
	sess.PasscodeHash = hash
	if err := m.store.Save(sess); err != nil {
		return fmt.Errorf("saving passcode: %w", err)
	}
	return nil
}

// ClearPasscode removes the lock passcode from the current session.
func (m *Manager) ClearPasscode() error {
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	sess.PasscodeHash = nil
	if err := m.store.Save(sess); err != nil {
		return fmt.Errorf("clearing passcode: %w", err)
	}
	return nil
}

// Lock moves the app to Locked. It requires a configured passcode, since a
// lock screen nobody can pass is just a logout with extra steps.
func (m *Manager) Lock() error {
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	if !sess.HasPasscode() {
		return ErrNoPasscode
	}
	if !m.state.Lock() {
		return fmt.Errorf("cannot lock while %s", m.state.CurrentKind())
	}
	return nil
}

// Unlock verifies the passcode and returns the app to Authenticated. A
// wrong passcode returns ErrPasscodeMismatch and leaves the app locked.
func (m *Manager) Unlock(code string) error {
	sess, err := m.store.Load()
	if err != nil {
		return err
	}
	if !sess.HasPasscode() {
		return ErrNoPasscode
	}
	if err := bcrypt.CompareHashAndPassword(sess.PasscodeHash, []byte(code)); err != nil {
		return ErrPasscodeMismatch
	}
	if !m.state.Unlock() {
		return fmt.Errorf("cannot unlock while %s", m.state.CurrentKind())
	}
	return nil
}
