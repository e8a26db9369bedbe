package sbclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
	"github.com/smartbusiness/api2-go/pkg/sbclient"
)

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		config  *sbapi.Config
		wantErr error
	}{
		{name: "nil config", config: nil, wantErr: sbapi.ErrConfigRequired},
		{name: "missing client id", config: &sbapi.Config{ClientSecret: "secret"}, wantErr: sbapi.ErrMissingCredentials},
		{name: "missing client secret", config: &sbapi.Config{ClientID: "id"}, wantErr: sbapi.ErrMissingCredentials},
		{
			name:    "access token alone is not enough",
			config:  &sbapi.Config{AccessToken: "token"},
			wantErr: sbapi.ErrMissingCredentials,
		},
		{
			name:    "relative base URL",
			config:  &sbapi.Config{ClientID: "id", ClientSecret: "secret", BaseURL: "api.example.com"},
			wantErr: sbapi.ErrInvalidBaseURL,
		},
		{
			name:    "invalid token URL",
			config:  &sbapi.Config{ClientID: "id", ClientSecret: "secret", TokenURL: "ftp://tokens"},
			wantErr: sbapi.ErrInvalidBaseURL,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := sbclient.New(context.Background(), tt.config)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, client)
		})
	}
}

func TestNew_MissingCredentialsMakesNoRequest(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	_, err := sbclient.New(context.Background(), &sbapi.Config{BaseURL: server.URL})
	require.ErrorIs(t, err, sbapi.ErrMissingCredentials)
	assert.Equal(t, int32(0), requests.Load())
}

func TestResolveBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		config   *sbapi.Config
		expected string
	}{
		{name: "production by default", config: &sbapi.Config{}, expected: "https://api.smartbusiness.sk/api/v2"},
		{name: "staging", config: &sbapi.Config{Staging: true}, expected: "https://api.staging.smartbusiness.sk/api/v2"},
		{
			name:     "explicit base URL wins",
			config:   &sbapi.Config{Staging: true, BaseURL: "http://localhost:8080/api/v2/"},
			expected: "http://localhost:8080/api/v2",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			baseURL, err := sbclient.ResolveBaseURL(tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, baseURL)
		})
	}
}

func TestNew_EndToEnd(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "id", username)
		assert.Equal(t, "secret", password)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/v2/contacts/configuration/groups/5", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":5,"name":"VIP"}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := sbclient.New(context.Background(), &sbapi.Config{
		BaseURL:      server.URL + "/api/v2/",
		ClientID:     "id",
		ClientSecret: "secret",
	})
	require.NoError(t, err)

	resp, err := client.ContactGroups().Get(context.Background(), 5, nil)
	require.NoError(t, err)

	name, err := resp.Search("name")
	require.NoError(t, err)
	assert.Equal(t, "VIP", name)
}

//nolint:paralleltest // t.Setenv is incompatible with t.Parallel
func TestConfigFromEnv(t *testing.T) {
	t.Setenv("CLIENT_ID", "env-id")
	t.Setenv("CLIENT_SECRET", "env-secret")
	t.Setenv("STAGING", "")
	t.Setenv("BASE_URL", "")
	t.Setenv("TOKEN_URL", "https://auth.example.com/token")

	config, err := sbclient.ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-id", config.ClientID)
	assert.Equal(t, "env-secret", config.ClientSecret)
	assert.True(t, config.Staging, "an empty STAGING variable still selects staging")
	assert.Empty(t, config.BaseURL)
	assert.Equal(t, "https://auth.example.com/token", config.TokenURL)

	baseURL, err := sbclient.ResolveBaseURL(config)
	require.NoError(t, err)
	assert.Equal(t, "https://api.staging.smartbusiness.sk/api/v2", baseURL)
}

//nolint:paralleltest // t.Setenv is incompatible with t.Parallel
func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("CLIENT_ID", "")
	t.Setenv("CLIENT_SECRET", "")

	_, err := sbclient.NewFromEnv(context.Background())
	require.ErrorIs(t, err, sbapi.ErrMissingCredentials)
}
