// Package session manages sign-in, persistence and the passcode lock.
//
// A Session pairs an OAuth2 bearer token with the account identity and an
// optional bcrypt passcode hash. The SecureStore keeps it on disk with
// owner-only permissions; the Manager drives the application state machine
// through login, restore, lock, unlock and logout. Restore screens the
// stored token for expiry, falling back to the JWT exp claim when the
// token itself carries no expiry, so a stale session never reaches
// Authenticated.
package session
