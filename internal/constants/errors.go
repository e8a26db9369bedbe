package constants

import "errors"

// Configuration errors.
var (
	ErrNoCredentials       = errors.New("no credentials configured, run 'sbapi login' or set CLIENT_ID and CLIENT_SECRET")
	ErrFailedRetrieveToken = errors.New("failed to retrieve refreshed token")
	ErrUnknownConfigKey    = errors.New("unknown configuration key")
)

// Command input errors.
var (
	ErrContactRequired     = errors.New("--contact flag is required")
	ErrPayloadRequired     = errors.New("a payload is required (use --data or --from-file)")
	ErrInvalidID           = errors.New("invalid resource id")
	ErrUnsupportedOutput   = errors.New("unsupported output format")
	ErrPayloadNotAnObject  = errors.New("payload must be a JSON or YAML object")
	ErrEmptySecretProvided = errors.New("client secret must not be empty")
	ErrInvalidFilter       = errors.New("filter must be key=value")
)
