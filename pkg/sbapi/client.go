package sbapi

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Scope is an OAuth2 scope a resource requires.
type Scope string

const (
	// ScopeConfiguration grants access to configuration resources.
	ScopeConfiguration Scope = "configuration"

	// ScopeContact grants access to contacts and their sub-resources.
	ScopeContact Scope = "contact"
)

// Operation is one of the capabilities a resource may support.
type Operation string

const (
	OperationList   Operation = "list"
	OperationGet    Operation = "get"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
)

// Operations lists every operation in a stable order.
func Operations() []Operation {
	return []Operation{OperationList, OperationGet, OperationCreate, OperationUpdate, OperationDelete}
}

// Method returns the HTTP verb used for the operation.
func (o Operation) Method() string {
	switch o {
	case OperationList, OperationGet:
		return http.MethodGet
	case OperationCreate:
		return http.MethodPost
	case OperationUpdate:
		return http.MethodPut
	case OperationDelete:
		return http.MethodDelete
	default:
		return ""
	}
}

// Payload is the body of a create or update call.
type Payload map[string]any

// Lister lists a collection.
type Lister interface {
	List(ctx context.Context, params *ListParameters) (*Response, error)
}

// Getter fetches a single item.
type Getter interface {
	Get(ctx context.Context, id int, params *GetParameters) (*Response, error)
}

// Creator creates an item.
type Creator interface {
	Create(ctx context.Context, payload Payload) (*Response, error)
}

// Updater replaces an item.
type Updater interface {
	Update(ctx context.Context, id int, payload Payload) (*Response, error)
}

// Deleter removes one or more items in a single call.
type Deleter interface {
	Delete(ctx context.Context, ids []int) (*Response, error)
}

// ReadOnlyClient is a resource that can only be listed and read.
type ReadOnlyClient interface {
	Lister
	Getter
}

// CRUDClient is a resource supporting every operation.
type CRUDClient interface {
	Lister
	Getter
	Creator
	Updater
	Deleter
}

// ContactScopedClient is a resource living under a contact.
//
// The *ForContact methods take the contact id explicitly and never touch the
// bound id. The plain CRUD methods use the id bound with SetContactID and fail
// with ErrContextNotSet when none is bound.
type ContactScopedClient interface {
	CRUDClient

	SetContactID(contactID int)
	ContactID() (int, bool)
	ForContact(contactID int) ContactScopedClient

	ListForContact(ctx context.Context, contactID int, params *ListParameters) (*Response, error)
	GetForContact(ctx context.Context, contactID, id int, params *GetParameters) (*Response, error)
	CreateForContact(ctx context.Context, contactID int, payload Payload) (*Response, error)
	UpdateForContact(ctx context.Context, contactID, id int, payload Payload) (*Response, error)
	DeleteForContact(ctx context.Context, contactID int, ids []int) (*Response, error)
}

// ConfigurationClients provides access to configuration resources.
type ConfigurationClients interface {
	Units() ReadOnlyClient
	BankAccounts() CRUDClient
	ExchangeRates() CRUDClient
}

// ContactClients provides access to contacts and their sub-resources.
type ContactClients interface {
	Contacts() CRUDClient
	ContactGroups() CRUDClient
	Addresses() ContactScopedClient
	People() ContactScopedClient
}

// Client is the smartbusiness API client.
type Client interface {
	ConfigurationClients
	ContactClients

	// Scopes returns the union of scopes required by every resource.
	Scopes() []Scope
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Config represents client configuration for building an sbapi.Client.
//
// # Credentials
//
// ClientID and ClientSecret are required; sbclient.New fails with
// ErrMissingCredentials before any request when either is empty. When
// AccessToken is also set it is used until it expires or is rejected, after
// which the client_credentials grant takes over.
//
// # Endpoints
//
// BaseURL wins when set. Otherwise Staging selects the staging API and the
// production API is used by default. TokenURL defaults to BaseURL + "/oauth/token".
//
// # Retries
//
// Requests are not retried unless RetryMax is greater than zero.
type Config struct {
	// BaseURL overrides the API root (e.g. "https://api.example.com/api/v2").
	BaseURL string
	// Staging selects the staging API when BaseURL is empty.
	Staging bool

	// ClientID is the OAuth2 client id.
	ClientID string
	// ClientSecret is the OAuth2 client secret.
	ClientSecret string
	// AccessToken is an optional pre-issued bearer token.
	AccessToken string
	// RefreshToken is an optional refresh token used before falling back to
	// the client_credentials grant.
	RefreshToken string
	// TokenExpiresAt is the expiry of AccessToken, if known.
	TokenExpiresAt time.Time
	// TokenURL overrides the OAuth2 token endpoint.
	TokenURL string
	// Scopes overrides the requested scopes. Defaults to the union of all
	// resource scopes.
	Scopes []Scope

	// HTTPTimeout bounds each HTTP request. Defaults to 30s.
	HTTPTimeout time.Duration
	// RetryMax is the number of retries for 5xx, 429 and connection errors.
	RetryMax int
	// RetryWaitMin is the minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax is the maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables request/response logging through Logger.
	Debug bool
	// Logger receives client logs. Defaults to NopLogger.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache enables the GET response cache when non-nil.
	Cache *CacheConfig
	// MetricsRegisterer enables Prometheus request metrics when non-nil.
	MetricsRegisterer prometheus.Registerer
	// Tracing wraps the transport with OpenTelemetry instrumentation.
	Tracing bool
	// CircuitBreaker enables the circuit breaker when non-nil.
	CircuitBreaker *CircuitBreakerConfig
	// Interceptors are run around every request after the built-in ones.
	Interceptors *InterceptorChain
}
