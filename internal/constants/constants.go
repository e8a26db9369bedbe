package constants

import "time"

// API locations. Either can be overridden through configuration (BASE_URL).
const (
	// ProductionBaseURL is the production API root.
	ProductionBaseURL = "https://api.smartbusiness.sk/api/v2"

	// StagingBaseURL is the staging API root, selected by the STAGING flag.
	StagingBaseURL = "https://api.staging.smartbusiness.sk/api/v2"

	// TokenPath is appended to the base URL when no token URL is configured.
	TokenPath = "/oauth/token"
)

// Environment variable names.
const (
	// EnvClientID holds the OAuth2 client id.
	EnvClientID = "CLIENT_ID"

	// EnvClientSecret holds the OAuth2 client secret.
	EnvClientSecret = "CLIENT_SECRET"

	// EnvStaging selects the staging API when present.
	EnvStaging = "STAGING"

	// EnvBaseURL overrides the resolved base URL.
	EnvBaseURL = "BASE_URL"

	// EnvTokenURL overrides the token endpoint.
	EnvTokenURL = "TOKEN_URL"
)

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// Batch execution.
const (
	// DefaultBatchConcurrency is the number of batch operations run at once.
	DefaultBatchConcurrency = 5
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token requests.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits. Retries are off unless RetryMax is configured.
const (
	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second

	// ExtendedRetryWaitMax is used for operations that need longer waits.
	ExtendedRetryWaitMax = 30 * time.Second
)

// HTTP status codes commonly used.
const (
	// HTTPStatusOK represents a successful HTTP response.
	HTTPStatusOK = 200

	// HTTPStatusMultipleChoices is the first non-success status.
	HTTPStatusMultipleChoices = 300

	// HTTPStatusBadRequest represents a client error.
	HTTPStatusBadRequest = 400

	// HTTPStatusInternalServerError represents server errors.
	HTTPStatusInternalServerError = 500
)

// Header names.
const (
	// HeaderRequestID carries the per-request correlation id.
	HeaderRequestID = "X-Request-Id"

	// HeaderCache marks responses served from the local cache.
	HeaderCache = "X-Cache"

	// HeaderETag carries the entity tag of a response.
	HeaderETag = "ETag"

	// HeaderIfNoneMatch carries the entity tag of a stored response.
	HeaderIfNoneMatch = "If-None-Match"
)

// Token handling.
const (
	// TokenExpirationBuffer is the buffer time before token expiration.
	TokenExpirationBuffer = 30 * time.Second

	// TokenTypeBearer is the default token type.
	TokenTypeBearer = "bearer"
)

// Cache defaults.
const (
	// DefaultCacheSize is the default cache size limit.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default cache time-to-live.
	DefaultCacheTTL = 5 * time.Minute

	// ETagRetention is how long a revalidation copy of an ETag-bearing
	// entry outlives the entry itself.
	ETagRetention = time.Hour

	// MaxCacheValueSize is the maximum size for cached values (1MB).
	MaxCacheValueSize = 1024 * 1024

	// DefaultNATSBucket is the JetStream KV bucket used for cached responses.
	DefaultNATSBucket = "sbapi-cache"

	// DefaultRedisPrefix namespaces cached responses in Redis.
	DefaultRedisPrefix = "sbapi:cache:"
)

// Circuit breaker defaults.
const (
	// CircuitBreakerThreshold is the failure threshold for circuit breaker.
	CircuitBreakerThreshold = 5

	// CircuitBreakerSuccessThreshold is the success threshold for circuit breaker.
	CircuitBreakerSuccessThreshold = 2

	// CircuitBreakerTimeout is the timeout for circuit breaker.
	CircuitBreakerTimeout = 30 * time.Second
)

// State and status constants.
const (
	// StatusClosed indicates a closed circuit.
	StatusClosed = "closed"

	// StatusOpen indicates an open state.
	StatusOpen = "open"

	// StatusHalfOpen indicates a half-open state.
	StatusHalfOpen = "half-open"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON indentation.
	JSONIndentSize = 2
)

// UI and display constants.
const (
	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"

	// StringTruncationLength is the default length for truncating strings.
	StringTruncationLength = 80
)

// Pagination defaults.
const (
	// StandardPageSize is the common page size for list requests.
	StandardPageSize = 50
)
