package auth

import (
	"context"
	"sync"
	"time"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// TokenManager supplies bearer tokens to the HTTP layer.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is an OAuth2 token as issued by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresIn    int       `json:"expires_in,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can be used for at least the expiration
// buffer. Tokens without an expiry never expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirationBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// StaticTokenManager hands out a fixed token and cannot refresh it.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager for token.
func NewStaticTokenManager(token string) *StaticTokenManager {
	store := NewTokenStore()
	store.Set(&Token{AccessToken: token, TokenType: constants.TokenTypeBearer})

	return &StaticTokenManager{store: store}
}

// GetToken returns the token while it is valid.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if !token.Valid() {
		return "", ErrTokenExpired
	}

	return token.AccessToken, nil
}

// RefreshToken always fails; a static token has nothing to refresh with.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrNoValidCredentials
}

// SetToken replaces the token.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: constants.TokenTypeBearer, ExpiresAt: expiresAt})
}
