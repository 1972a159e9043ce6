package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// Credentials are what a user types at the sign-in prompt.
type Credentials struct {
	Email    string
	Password string
}

// AuthClient exchanges credentials for a session.
type AuthClient interface {
	Login(ctx context.Context, creds Credentials) (Session, error)
}

// HTTPAuthClient signs in against the backend's auth endpoint.
type HTTPAuthClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPAuthClient creates a client for the given API base URL. A nil
// httpClient uses http.DefaultClient.
func NewHTTPAuthClient(baseURL string, httpClient *http.Client) *HTTPAuthClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPAuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token oauth2.Token `json:"token"`
	User  struct {
		ID          string `json:"id"`
		Email       string `json:"email"`
		DisplayName string `json:"display_name"`
	} `json:"user"`
}

// Login implements AuthClient.
func (c *HTTPAuthClient) Login(ctx context.Context, creds Credentials) (Session, error) {
	body, err := json.Marshal(loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return Session{}, fmt.Errorf("encoding login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return Session{}, fmt.Errorf("building login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Session{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Session{}, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		return Session{}, fmt.Errorf("login returned status %d", resp.StatusCode)
	}

	var decoded loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Session{}, fmt.Errorf("decoding login response: %w", err)
	}

	return Session{
		Token:       &decoded.Token,
		UserID:      decoded.User.ID,
		Email:       decoded.User.Email,
		DisplayName: decoded.User.DisplayName,
	}, nil
}

// mockSigningSecret signs mock-environment tokens. It protects nothing;
// the mock backend never leaves localhost.
var mockSigningSecret = []byte("deckhand-mock-signing-secret")

// MockAuthClient mints local sessions without a backend. Any non-empty
// credential pair signs in.
type MockAuthClient struct {
	secret []byte
	ttl    time.Duration
}

// NewMockAuthClient returns a mock client issuing 24h tokens.
func NewMockAuthClient() *MockAuthClient {
	return &MockAuthClient{
		secret: mockSigningSecret,
		ttl:    24 * time.Hour,
	}
}

// Login implements AuthClient.
func (c *MockAuthClient) Login(_ context.Context, creds Credentials) (Session, error) {
	if strings.TrimSpace(creds.Email) == "" || creds.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	now := time.Now()
	expiry := now.Add(c.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   creds.Email,
		Issuer:    "deckhand-mock",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Session{}, fmt.Errorf("signing mock token: %w", err)
	}

	return Session{
		Token: &oauth2.Token{
			AccessToken: signed,
			TokenType:   "Bearer",
			Expiry:      expiry,
		},
		UserID:      uuid.NewString(),
		Email:       creds.Email,
		DisplayName: displayNameFor(creds.Email),
	}, nil
}

// displayNameFor derives a readable name from the email local part.
func displayNameFor(email string) string {
	local := email
	if at := strings.Index(email, "@"); at > 0 {
		local = email[:at]
	}
	words := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
