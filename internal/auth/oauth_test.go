package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeToken(w http.ResponseWriter, token Token) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(token)
}

//nolint:funlen
func TestOAuth2TokenManager_GetToken(t *testing.T) {
	t.Parallel()

	t.Run("returns existing valid token", func(t *testing.T) {
		t.Parallel()

		manager := NewOAuth2TokenManager(&OAuth2Config{AccessToken: "existing-token"})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "existing-token", token)
	})

	t.Run("uses client credentials with basic auth and scopes", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth/token", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)

			username, password, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", username)
			assert.Equal(t, "client-secret", password)

			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
			assert.Equal(t, "configuration contact", r.Form.Get("scope"))

			writeToken(w, Token{AccessToken: "client-token", ExpiresIn: 3600, TokenType: "bearer"})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			Scopes:       []string{"configuration", "contact"},
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "client-token", token)

		stored := manager.Token()
		require.NotNil(t, stored)
		assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, time.Minute)
	})

	t.Run("refreshes expired token using refresh token", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))

			writeToken(w, Token{
				AccessToken:  "new-access-token",
				RefreshToken: "new-refresh-token",
				ExpiresIn:    3600,
				TokenType:    "bearer",
			})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
		})

		manager.store.Set(&Token{
			AccessToken:  "expired-token",
			RefreshToken: "old-refresh-token",
			ExpiresAt:    time.Now().Add(-1 * time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)
		assert.Equal(t, "new-refresh-token", manager.Token().RefreshToken)
	})

	t.Run("falls back to client credentials when refresh fails", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())

			if r.Form.Get("grant_type") == "refresh_token" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))

				return
			}

			writeToken(w, Token{AccessToken: "client-token", ExpiresIn: 3600})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "revoked",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "client-token", token)
	})

	t.Run("handles token request error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":             "invalid_client",
				"error_description": "Client authentication failed",
			})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth/token",
			ClientID:     "bad-client",
			ClientSecret: "bad-secret",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid_client")
		assert.Contains(t, err.Error(), "Client authentication failed")
		assert.Empty(t, token)
	})

	t.Run("no credentials available", func(t *testing.T) {
		t.Parallel()

		manager := NewOAuth2TokenManager(&OAuth2Config{TokenURL: "http://example.com/oauth/token"})

		token, err := manager.GetToken(context.Background())
		require.ErrorIs(t, err, ErrNoValidCredentials)
		assert.Empty(t, token)
	})
}

func TestOAuth2TokenManager_ConcurrentGetTokenFetchesOnce(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		time.Sleep(20 * time.Millisecond)
		writeToken(w, Token{AccessToken: "shared-token", ExpiresIn: 3600})
	}))
	defer server.Close()

	manager := NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	done := make(chan string, 5)
	for i := 0; i < 5; i++ {
		go func() {
			token, _ := manager.GetToken(context.Background())
			done <- token
		}()
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, "shared-token", <-done)
	}

	assert.Equal(t, int32(1), requests.Load())
}

func TestOAuth2TokenManager_SetToken(t *testing.T) {
	t.Parallel()

	manager := NewOAuth2TokenManager(&OAuth2Config{RefreshToken: "refresh"})

	expiresAt := time.Now().Add(1 * time.Hour)
	manager.SetToken("manual-token", expiresAt)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual-token", token)

	stored := manager.store.Get()
	assert.Equal(t, "manual-token", stored.AccessToken)
	assert.Equal(t, "bearer", stored.TokenType)
	assert.Equal(t, "refresh", stored.RefreshToken)
	assert.Equal(t, expiresAt.Unix(), stored.ExpiresAt.Unix())
}

func TestOAuth2TokenManager_RefreshToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeToken(w, Token{AccessToken: "refreshed-token", ExpiresIn: 3600, TokenType: "bearer"})
	}))
	defer server.Close()

	manager := NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     server.URL + "/oauth/token",
		ClientID:     "client-id",
		ClientSecret: "client-secret",
	})

	manager.SetToken("current-token", time.Now().Add(1*time.Hour))

	require.NoError(t, manager.RefreshToken(context.Background()))

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "refreshed-token", token)
}
