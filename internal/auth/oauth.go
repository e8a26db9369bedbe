package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrTokenExpired       = errors.New("access token expired")
)

// OAuth2Config configures the OAuth2 token manager.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
	AccessToken  string
	Scopes       []string
	// HTTPClient is used for token requests. Defaults to a client with a
	// short timeout.
	HTTPClient *http.Client
}

// OAuth2TokenManager obtains tokens with the refresh_token grant when a
// refresh token is known, falling back to client_credentials.
type OAuth2TokenManager struct {
	config *OAuth2Config
	store  *TokenStore
	mu     sync.Mutex
}

// NewOAuth2TokenManager creates a token manager.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	store := NewTokenStore()
	if config.AccessToken != "" {
		store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    constants.TokenTypeBearer,
		})
	}

	return &OAuth2TokenManager{config: config, store: store}
}

// GetToken returns a valid access token, fetching a new one when needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have refreshed while we waited.
	token = m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetch(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken forces a new token regardless of the current one.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.fetch(ctx)

	return err
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refresh := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refresh = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    constants.TokenTypeBearer,
		ExpiresAt:    expiresAt,
	})
}

// Token returns the stored token, or nil.
func (m *OAuth2TokenManager) Token() *Token {
	return m.store.Get()
}

func (m *OAuth2TokenManager) fetch(ctx context.Context) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient())

	var refreshErr error

	if refresh := m.refreshToken(); refresh != "" {
		token, err := m.refreshGrant(ctx, refresh)
		if err == nil {
			m.store.Set(token)

			return token, nil
		}

		refreshErr = err
	}

	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		if refreshErr != nil {
			return nil, refreshErr
		}

		return nil, ErrNoValidCredentials
	}

	token, err := m.clientCredentialsGrant(ctx)
	if err != nil {
		return nil, err
	}

	m.store.Set(token)

	return token, nil
}

func (m *OAuth2TokenManager) refreshToken() string {
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		return current.RefreshToken
	}

	return m.config.RefreshToken
}

func (m *OAuth2TokenManager) refreshGrant(ctx context.Context, refresh string) (*Token, error) {
	config := &oauth2.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: m.config.TokenURL, AuthStyle: oauth2.AuthStyleInHeader},
		Scopes:       m.config.Scopes,
	}

	source := config.TokenSource(ctx, &oauth2.Token{RefreshToken: refresh, Expiry: time.Unix(1, 0)})

	token, err := source.Token()
	if err != nil {
		return nil, fmt.Errorf("refreshing token: %w", err)
	}

	return fromOAuth2(token, refresh), nil
}

func (m *OAuth2TokenManager) clientCredentialsGrant(ctx context.Context) (*Token, error) {
	config := &clientcredentials.Config{
		ClientID:     m.config.ClientID,
		ClientSecret: m.config.ClientSecret,
		TokenURL:     m.config.TokenURL,
		Scopes:       m.config.Scopes,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("requesting client credentials token: %w", err)
	}

	return fromOAuth2(token, ""), nil
}

func (m *OAuth2TokenManager) httpClient() *http.Client {
	if m.config.HTTPClient != nil {
		return m.config.HTTPClient
	}

	return &http.Client{Timeout: constants.ShortHTTPTimeout}
}

func fromOAuth2(token *oauth2.Token, previousRefresh string) *Token {
	refresh := token.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}

	out := &Token{
		AccessToken:  token.AccessToken,
		RefreshToken: refresh,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
	}

	if out.TokenType == "" {
		out.TokenType = constants.TokenTypeBearer
	}

	if !token.Expiry.IsZero() {
		out.ExpiresIn = int(time.Until(token.Expiry).Seconds())
	}

	if scope, ok := token.Extra("scope").(string); ok {
		out.Scope = scope
	}

	return out
}
