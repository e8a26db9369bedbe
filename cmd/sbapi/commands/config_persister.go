package commands

import (
	"sync"
	"time"
)

// ConfigPersister implements the auth.ConfigPersister interface by storing
// issued tokens in the CLI config file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// UpdateAPIToken replaces the stored token with one issued for baseURL.
func (p *ConfigPersister) UpdateAPIToken(baseURL, token string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config, err := loadConfig()
	if err != nil {
		return err
	}

	now := time.Now()
	stored := &TokenConfig{
		BaseURL:       baseURL,
		AccessToken:   token,
		LastRefreshed: &now,
	}

	if !expiresAt.IsZero() {
		stored.ExpiresAt = &expiresAt
	}

	// Keep the previous refresh token when the server did not rotate it.
	if refreshToken == "" && config.Token != nil && config.Token.BaseURL == baseURL {
		refreshToken = config.Token.RefreshToken
	}

	stored.RefreshToken = refreshToken
	config.Token = stored

	return saveConfigStruct(config)
}
