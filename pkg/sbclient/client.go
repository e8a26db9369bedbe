// Package sbclient provides the main entry point for creating smartbusiness API clients
package sbclient

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/smartbusiness/api2-go/internal/client"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// New creates a new smartbusiness API client.
//
// ClientID and ClientSecret are checked before anything else so a
// misconfigured client fails without issuing a request.
func New(ctx context.Context, config *sbapi.Config) (sbapi.Client, error) {
	if config == nil {
		return nil, sbapi.ErrConfigRequired
	}

	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, sbapi.ErrMissingCredentials
	}

	baseURL, err := ResolveBaseURL(config)
	if err != nil {
		return nil, err
	}

	resolved := *config
	resolved.BaseURL = baseURL

	if resolved.TokenURL != "" {
		resolved.TokenURL, err = normalizeURL(resolved.TokenURL)
		if err != nil {
			return nil, err
		}
	}

	// Use the internal client implementation
	cli, err := client.New(ctx, &resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return cli, nil
}

// NewWithClientCredentials creates a client for the production API, or the
// staging API when staging is true.
func NewWithClientCredentials(ctx context.Context, clientID, clientSecret string, staging bool) (sbapi.Client, error) {
	return New(ctx, &sbapi.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Staging:      staging,
	})
}

// NewFromEnv creates a client from CLIENT_ID, CLIENT_SECRET, STAGING,
// BASE_URL and TOKEN_URL. A .env file in the working directory is loaded
// first; variables already set in the environment win.
func NewFromEnv(ctx context.Context) (sbapi.Client, error) {
	config, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	return New(ctx, config)
}

// ConfigFromEnv loads .env (when present) and builds a Config from the
// environment. STAGING selects the staging API by its presence alone.
func ConfigFromEnv() (*sbapi.Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	_, staging := os.LookupEnv(constants.EnvStaging)

	return &sbapi.Config{
		ClientID:     os.Getenv(constants.EnvClientID),
		ClientSecret: os.Getenv(constants.EnvClientSecret),
		Staging:      staging,
		BaseURL:      os.Getenv(constants.EnvBaseURL),
		TokenURL:     os.Getenv(constants.EnvTokenURL),
	}, nil
}

// ResolveBaseURL returns the API root for config: BaseURL when set, else the
// staging or production API. The result has no trailing slash.
func ResolveBaseURL(config *sbapi.Config) (string, error) {
	if config == nil {
		return "", sbapi.ErrConfigRequired
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = constants.ProductionBaseURL
		if config.Staging {
			baseURL = constants.StagingBaseURL
		}
	}

	return normalizeURL(baseURL)
}

func normalizeURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", sbapi.ErrInvalidBaseURL, raw, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("%w: %q", sbapi.ErrInvalidBaseURL, raw)
	}

	if parsed.RawQuery != "" || parsed.Fragment != "" {
		return "", fmt.Errorf("%w: %q has a query or fragment", sbapi.ErrInvalidBaseURL, raw)
	}

	return trimmed, nil
}
