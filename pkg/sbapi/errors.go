package sbapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error kinds. Everything returned by this module wraps one of these (or is an
// *APIError) so callers can branch with errors.Is.
var (
	// ErrNotFound matches an *APIError carrying a 404 status.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidUse marks a local programming-contract violation. No request
	// is issued when it is returned.
	ErrInvalidUse = errors.New("invalid use")

	// ErrMissingCredentials is returned before any request when the client id
	// or secret is missing.
	ErrMissingCredentials = errors.New("client id and client secret are required")
)

// Invalid-use refinements.
var (
	ErrContextNotSet         = fmt.Errorf("%w: contact id should be set first with SetContactID", ErrInvalidUse)
	ErrUnresolvedPlaceholder = fmt.Errorf("%w: unresolved path placeholder", ErrInvalidUse)
	ErrUnknownPlaceholder    = fmt.Errorf("%w: placeholder not present in template", ErrInvalidUse)
	ErrNoIdentifiers         = fmt.Errorf("%w: at least one identifier is required", ErrInvalidUse)
	ErrUnsupportedOperation  = fmt.Errorf("%w: operation not supported by resource", ErrInvalidUse)
)

// Configuration errors.
var (
	ErrConfigRequired     = errors.New("config is required")
	ErrInvalidBaseURL     = errors.New("invalid base URL")
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")
)

// APIError represents a non-success response from the API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code,omitempty"`
	Message    string `json:"message,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Body       []byte `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}

	if e.Detail != "" {
		message = message + ": " + e.Detail
	}

	if e.Code != "" {
		return fmt.Sprintf("API error %d (%s): %s", e.StatusCode, e.Code, message)
	}

	return fmt.Sprintf("API error %d: %s", e.StatusCode, message)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// apiErrorBody covers the error envelopes the API is known to return.
type apiErrorBody struct {
	Code             json.RawMessage `json:"code"`
	Message          string          `json:"message"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Detail           string          `json:"detail"`
	Errors           []struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	} `json:"errors"`
}

// ParseAPIError builds an *APIError from a status code and raw response body.
// Bodies that are not JSON are kept verbatim as the message.
func ParseAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: body}

	var parsed apiErrorBody

	err := json.Unmarshal(body, &parsed)
	if err != nil {
		apiErr.Message = strings.TrimSpace(string(body))

		return apiErr
	}

	apiErr.Code = errorCode(parsed.Code)
	apiErr.Detail = parsed.Detail

	switch {
	case parsed.Message != "":
		apiErr.Message = parsed.Message
	case parsed.ErrorDescription != "":
		apiErr.Message = parsed.ErrorDescription
		if apiErr.Code == "" {
			apiErr.Code = parsed.Error
		}
	case parsed.Error != "":
		apiErr.Message = parsed.Error
	case len(parsed.Errors) > 0:
		apiErr.Message = parsed.Errors[0].Message
		if apiErr.Detail == "" {
			apiErr.Detail = parsed.Errors[0].Detail
		}
	}

	return apiErr
}

// errorCode renders a string or numeric code. A null or missing code is empty.
func errorCode(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}

	var code string

	err := json.Unmarshal(trimmed, &code)
	if err == nil {
		return code
	}

	return string(trimmed)
}

// IsNotFound checks if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error is an unauthorized error.
func IsUnauthorized(err error) bool {
	return hasStatus(err, http.StatusUnauthorized)
}

// IsForbidden checks if the error is a forbidden error.
func IsForbidden(err error) bool {
	return hasStatus(err, http.StatusForbidden)
}

// IsInvalidUse reports whether err is a local contract violation.
func IsInvalidUse(err error) bool {
	return errors.Is(err, ErrInvalidUse)
}

func hasStatus(err error, status int) bool {
	apiErr := &APIError{}
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}

	return false
}
