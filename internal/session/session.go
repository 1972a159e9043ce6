package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"deckhand/internal/appstate"
)

var (
	// ErrNoSession means the store holds no session.
	ErrNoSession = errors.New("no stored session")

	// ErrInvalidCredentials means the backend rejected the login.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNoPasscode means a passcode operation ran before one was set.
	ErrNoPasscode = errors.New("no passcode configured")

	// ErrPasscodeMismatch means the supplied passcode did not match.
	ErrPasscodeMismatch = errors.New("passcode does not match")
)

// Session is everything persisted for a signed-in user: the bearer token,
// the account identity and, when configured, the bcrypt hash of the lock
// passcode.
type Session struct {
	Token        *oauth2.Token `json:"token"`
	UserID       string        `json:"user_id"`
	Email        string        `json:"email"`
	DisplayName  string        `json:"display_name,omitempty"`
	PasscodeHash []byte        `json:"passcode_hash,omitempty"`
}

// User converts the session identity into the state machine's user record.
func (s Session) User() appstate.User {
	return appstate.User{
		ID:          s.UserID,
		Email:       s.Email,
		DisplayName: s.DisplayName,
	}
}

// HasPasscode reports whether a lock passcode is configured.
func (s Session) HasPasscode() bool {
	return len(s.PasscodeHash) > 0
}

// Expired reports whether the session token is past its lifetime at now.
// The token's own expiry wins; when it carries none, the JWT exp claim is
// consulted without verifying the signature. A token with no expiry
// information at all is treated as still valid.
func (s Session) Expired(now time.Time) bool {
	if s.Token == nil || s.Token.AccessToken == "" {
		return true
	}
	if !s.Token.Expiry.IsZero() {
		return now.After(s.Token.Expiry)
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token.AccessToken, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return now.After(claims.ExpiresAt.Time)
}
