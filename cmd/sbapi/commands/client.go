package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/smartbusiness/api2-go/internal/auth"
	"github.com/smartbusiness/api2-go/internal/client"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
	"github.com/smartbusiness/api2-go/pkg/sbclient"
)

// settings are the effective CLI settings after flags, environment and the
// config file have been merged by viper.
type settings struct {
	ClientID     string
	ClientSecret string
	Staging      bool
	BaseURL      string
	TokenURL     string
}

func currentSettings() settings {
	return settings{
		ClientID:     viper.GetString("client_id"),
		ClientSecret: viper.GetString("client_secret"),
		Staging:      viper.GetBool("staging"),
		BaseURL:      viper.GetString("base_url"),
		TokenURL:     viper.GetString("token_url"),
	}
}

// CreateClient creates an API client from the current settings. Issued tokens
// are stored in the config file and reused by later invocations.
func CreateClient(ctx context.Context) (sbapi.Client, error) {
	current := currentSettings()
	if current.ClientID == "" || current.ClientSecret == "" {
		return nil, constants.ErrNoCredentials
	}

	config := &sbapi.Config{
		BaseURL:      current.BaseURL,
		Staging:      current.Staging,
		ClientID:     current.ClientID,
		ClientSecret: current.ClientSecret,
		TokenURL:     current.TokenURL,
		Debug:        viper.GetBool("debug"),
		UserAgent:    "sbapi-cli/1.0",
	}

	baseURL, err := sbclient.ResolveBaseURL(config)
	if err != nil {
		return nil, err
	}

	config.BaseURL = baseURL

	logger, err := newCLILogger(viper.GetBool("verbose") || config.Debug)
	if err != nil {
		return nil, err
	}

	config.Logger = logger

	stored, err := loadConfig()
	if err != nil {
		return nil, err
	}

	tokenManager := newTokenManager(config, stored.Token)

	apiClient, err := client.NewWithTokenManager(ctx, config, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return apiClient, nil
}

// newTokenManager creates a persisting token manager seeded with the stored
// token when it was issued for the same API.
func newTokenManager(config *sbapi.Config, stored *TokenConfig) *auth.ConfigTokenManager {
	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = config.BaseURL + constants.TokenPath
	}

	scopes := make([]string, 0, len(client.RequiredScopes()))
	for _, scope := range client.RequiredScopes() {
		scopes = append(scopes, string(scope))
	}

	oauthConfig := &auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Scopes:       scopes,
	}

	var (
		initialToken  string
		initialExpiry time.Time
	)

	if stored != nil && stored.BaseURL == config.BaseURL {
		initialToken = stored.AccessToken
		oauthConfig.RefreshToken = stored.RefreshToken

		if stored.ExpiresAt != nil {
			initialExpiry = *stored.ExpiresAt
		}
	}

	warn := func(msg string, err error) {
		_, _ = fmt.Fprintf(os.Stderr, "Warning: %s: %v\n", msg, err)
	}

	return auth.NewConfigTokenManager(oauthConfig, NewConfigPersister(), config.BaseURL, initialToken, initialExpiry, warn)
}

// newCLILogger logs warnings to stderr, or everything when verbose.
func newCLILogger(verbose bool) (*sbapi.ZapLogger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

	if verbose {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stderr"}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return sbapi.NewZapLogger(logger), nil
}
