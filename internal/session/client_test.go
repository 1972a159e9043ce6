package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAuthClientLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "correct" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": map[string]any{
				"access_token": "srv-token",
				"token_type":   "Bearer",
				"expiry":       time.Now().Add(time.Hour).Format(time.RFC3339),
			},
			"user": map[string]any{
				"id":           "u-42",
				"email":        req.Email,
				"display_name": "Server User",
			},
		})
	}))
	defer srv.Close()

	client := NewHTTPAuthClient(srv.URL+"/", srv.Client())

	sess, err := client.Login(context.Background(), Credentials{Email: "kim@example.com", Password: "correct"})
	require.NoError(t, err)
	assert.Equal(t, "srv-token", sess.Token.AccessToken)
	assert.Equal(t, "u-42", sess.UserID)
	assert.Equal(t, "kim@example.com", sess.Email)
	assert.Equal(t, "Server User", sess.DisplayName)
	assert.False(t, sess.Expired(time.Now()))

	_, err = client.Login(context.Background(), Credentials{Email: "kim@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestHTTPAuthClientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewHTTPAuthClient(srv.URL, srv.Client())

	_, err := client.Login(context.Background(), Credentials{Email: "a@b.c", Password: "x"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "status 500")
}

func TestMockAuthClientMintsVerifiableToken(t *testing.T) {
	client := NewMockAuthClient()

	sess, err := client.Login(context.Background(), Credentials{Email: "dev@example.com", Password: "anything"})
	require.NoError(t, err)
	require.NotNil(t, sess.Token)

	parsed, err := jwt.Parse(sess.Token.AccessToken, func(tok *jwt.Token) (any, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tok.Method)
		return mockSigningSecret, nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "dev@example.com", claims["sub"])
	assert.Equal(t, "deckhand-mock", claims["iss"])

	assert.Equal(t, "dev@example.com", sess.Email)
	assert.Equal(t, "Dev", sess.DisplayName)
	assert.NotEmpty(t, sess.UserID)
	assert.False(t, sess.Expired(time.Now()))
	assert.True(t, sess.Expired(time.Now().Add(25*time.Hour)))
}

func TestMockAuthClientRejectsEmptyCredentials(t *testing.T) {
	client := NewMockAuthClient()

	_, err := client.Login(context.Background(), Credentials{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = client.Login(context.Background(), Credentials{Email: "a@b.c", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDisplayNameFor(t *testing.T) {
	assert.Equal(t, "Jane Doe", displayNameFor("jane.doe@example.com"))
	assert.Equal(t, "Sam", displayNameFor("sam@example.com"))
	assert.Equal(t, "Ops Team", displayNameFor("ops_team@example.com"))
	assert.Equal(t, "Noat", displayNameFor("noat"))
}
