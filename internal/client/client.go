package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/smartbusiness/api2-go/internal/auth"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/internal/http"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Static errors for err113 compliance.
var (
	ErrBaseURLRequired          = errors.New("base URL is required")
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
)

// Client implements the sbapi.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       sbapi.Logger
	scopes       []sbapi.Scope

	// Resource clients
	units         *endpoint.Resource
	bankAccounts  *endpoint.Resource
	exchangeRates *endpoint.Resource
	contactGroups *endpoint.Resource
	contacts      *endpoint.Resource
	addresses     *endpoint.Nested
	people        *endpoint.Nested
}

// New creates a client for config.BaseURL, which must already be resolved.
func New(ctx context.Context, config *sbapi.Config) (*Client, error) {
	if config == nil {
		return nil, sbapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	scopes := requestedScopes(config)

	return NewWithTokenManager(ctx, config, createTokenManager(config, scopes))
}

// NewWithTokenManager creates a client that authenticates with tokenManager.
// A nil token manager sends unauthenticated requests.
func NewWithTokenManager(ctx context.Context, config *sbapi.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, sbapi.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, ErrBaseURLRequired
	}

	err := validateDefinitions()
	if err != nil {
		return nil, err
	}

	httpOpts, err := createHTTPClientOptions(ctx, config)
	if err != nil {
		return nil, err
	}

	httpClient := http.NewClient(config.BaseURL, tokenManager, httpOpts...)

	client := newClient(httpClient, tokenManager, config.Logger)
	client.scopes = requestedScopes(config)

	return client, nil
}

func newClient(httpClient *http.Client, tokenManager auth.TokenManager, logger sbapi.Logger) *Client {
	if logger == nil {
		logger = sbapi.NopLogger
	}

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      httpClient.BaseURL(),
		logger:       logger,
		scopes:       RequiredScopes(),
	}

	client.initializeResourceClients()

	return client
}

func validateDefinitions() error {
	for _, def := range Definitions() {
		err := def.Validate()
		if err != nil {
			return fmt.Errorf("validating resource table: %w", err)
		}
	}

	return nil
}

func requestedScopes(config *sbapi.Config) []sbapi.Scope {
	if len(config.Scopes) > 0 {
		return config.Scopes
	}

	return RequiredScopes()
}

// createTokenManager creates the token manager matching the configured
// credentials, or nil when there are none.
func createTokenManager(config *sbapi.Config, scopes []sbapi.Scope) auth.TokenManager {
	hasCredentials := config.ClientID != "" && config.ClientSecret != ""

	if !hasCredentials && config.RefreshToken == "" {
		if config.AccessToken == "" {
			return nil
		}

		manager := auth.NewStaticTokenManager(config.AccessToken)
		if !config.TokenExpiresAt.IsZero() {
			manager.SetToken(config.AccessToken, config.TokenExpiresAt)
		}

		return manager
	}

	scopeNames := make([]string, 0, len(scopes))
	for _, scope := range scopes {
		scopeNames = append(scopeNames, string(scope))
	}

	manager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
		AccessToken:  config.AccessToken,
		Scopes:       scopeNames,
	})

	if config.AccessToken != "" && !config.TokenExpiresAt.IsZero() {
		manager.SetToken(config.AccessToken, config.TokenExpiresAt)
	}

	return manager
}

// getTokenURL returns token URL from config or the API's own token endpoint.
func getTokenURL(config *sbapi.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return config.BaseURL + constants.TokenPath
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(ctx context.Context, config *sbapi.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(config.Logger))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Tracing {
		httpOpts = append(httpOpts, http.WithTracing(true))
	}

	chain, err := createInterceptorChain(config)
	if err != nil {
		return nil, err
	}

	if chain.Len() > 0 {
		httpOpts = append(httpOpts, http.WithInterceptors(chain))
	}

	if config.Cache != nil && config.Cache.Type != sbapi.CacheTypeNone {
		backend, err := sbapi.NewCacheFromConfig(ctx, config.Cache)
		if err != nil {
			return nil, fmt.Errorf("creating response cache: %w", err)
		}

		manager := sbapi.NewCacheManager(backend, config.Cache.Options)
		httpOpts = append(httpOpts, http.WithCache(manager, config.Cache.Policy))
	}

	return httpOpts, nil
}

func createInterceptorChain(config *sbapi.Config) (*sbapi.InterceptorChain, error) {
	chain := sbapi.NewInterceptorChain()

	if config.Logger != nil {
		chain.AddResponseInterceptor(sbapi.LoggingResponseInterceptor(config.Logger))
	}

	if config.CircuitBreaker != nil {
		before, after := sbapi.NewCircuitBreaker(config.CircuitBreaker).Interceptors()
		chain.AddRequestInterceptor(before)
		chain.AddResponseInterceptor(after)
	}

	if config.MetricsRegisterer != nil {
		metrics, err := sbapi.NewPrometheusMetrics(config.MetricsRegisterer)
		if err != nil {
			return nil, fmt.Errorf("creating metrics: %w", err)
		}

		chain.AddResponseInterceptor(metrics.ResponseInterceptor())
	}

	chain.Append(config.Interceptors)

	return chain, nil
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return token, nil
}

// BaseURL returns the API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Scopes implements sbapi.Client.Scopes.
func (c *Client) Scopes() []sbapi.Scope {
	return append([]sbapi.Scope(nil), c.scopes...)
}

// Resource client accessors

// Units implements sbapi.Client.Units.
func (c *Client) Units() sbapi.ReadOnlyClient {
	return c.units
}

// BankAccounts implements sbapi.Client.BankAccounts.
func (c *Client) BankAccounts() sbapi.CRUDClient {
	return c.bankAccounts
}

// ExchangeRates implements sbapi.Client.ExchangeRates.
func (c *Client) ExchangeRates() sbapi.CRUDClient {
	return c.exchangeRates
}

// ContactGroups implements sbapi.Client.ContactGroups.
func (c *Client) ContactGroups() sbapi.CRUDClient {
	return c.contactGroups
}

// Contacts implements sbapi.Client.Contacts.
func (c *Client) Contacts() sbapi.CRUDClient {
	return c.contacts
}

// Addresses implements sbapi.Client.Addresses. Every call returns a new
// client with no contact bound.
func (c *Client) Addresses() sbapi.ContactScopedClient {
	return newContactScoped(c.addresses)
}

// People implements sbapi.Client.People. Every call returns a new client
// with no contact bound.
func (c *Client) People() sbapi.ContactScopedClient {
	return newContactScoped(c.people)
}

// initializeResourceClients initializes all resource-specific clients.
func (c *Client) initializeResourceClients() {
	c.units = endpoint.NewResource(unitsDefinition, c.baseURL, c.httpClient)
	c.bankAccounts = endpoint.NewResource(bankAccountsDefinition, c.baseURL, c.httpClient)
	c.exchangeRates = endpoint.NewResource(exchangeRatesDefinition, c.baseURL, c.httpClient)
	c.contactGroups = endpoint.NewResource(contactGroupsDefinition, c.baseURL, c.httpClient)
	c.contacts = endpoint.NewResource(contactsDefinition, c.baseURL, c.httpClient)
	c.addresses = endpoint.NewNested(addressesDefinition, c.baseURL, c.httpClient)
	c.people = endpoint.NewNested(peopleDefinition, c.baseURL, c.httpClient)
}

var _ sbapi.Client = (*Client)(nil)
