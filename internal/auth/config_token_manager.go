package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves issued tokens so later runs can reuse them.
type ConfigPersister interface {
	UpdateAPIToken(baseURL, token string, expiresAt time.Time, refreshToken string) error
}

// WarnFunc reports non-fatal persistence failures.
type WarnFunc func(msg string, err error)

// ConfigTokenManager wraps OAuth2TokenManager and persists every newly issued
// token through a ConfigPersister.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
	baseURL         string
	warn            WarnFunc

	mutex      sync.Mutex
	lastToken  string
	lastExpiry time.Time
}

// NewConfigTokenManager creates a config-persisting token manager. The
// initial token, if any, is used until it expires.
func NewConfigTokenManager(config *OAuth2Config, persister ConfigPersister, baseURL, initialToken string, initialExpiry time.Time, warn WarnFunc) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)
	if initialToken != "" {
		oauth2Manager.SetToken(initialToken, initialExpiry)
	}

	if warn == nil {
		warn = func(string, error) {}
	}

	return &ConfigTokenManager{
		oauth2Manager:   oauth2Manager,
		configPersister: persister,
		baseURL:         baseURL,
		warn:            warn,
		lastToken:       initialToken,
		lastExpiry:      initialExpiry,
	}
}

// GetToken returns a valid access token, persisting it when it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token. It is not persisted.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.oauth2Manager.SetToken(token, expiresAt)
	m.lastToken = token
	m.lastExpiry = expiresAt
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.oauth2Manager.Token()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistIfChanged() {
	current := m.oauth2Manager.Token()
	if current == nil || (current.AccessToken == m.lastToken && current.ExpiresAt.Equal(m.lastExpiry)) {
		return
	}

	err := m.persistToken(current)
	if err != nil {
		m.warn("failed to persist refreshed token", err)
	}

	m.lastToken = current.AccessToken
	m.lastExpiry = current.ExpiresAt
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.UpdateAPIToken(m.baseURL, token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("failed to update API token: %w", err)
	}

	return nil
}
