package sbapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jmespath/go-jmespath"
)

// Response is the result of a successful (or categorised) API call. It is
// read-only once constructed.
type Response struct {
	statusCode int
	headers    http.Header
	body       []byte
}

// NewResponse creates a response. Headers and body are copied.
func NewResponse(statusCode int, headers http.Header, body []byte) *Response {
	return &Response{
		statusCode: statusCode,
		headers:    headers.Clone(),
		body:       bytes.Clone(body),
	}
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// Header returns the first value of the named header.
func (r *Response) Header(name string) string {
	return r.headers.Get(name)
}

// Headers returns a copy of all response headers.
func (r *Response) Headers() http.Header {
	if r.headers == nil {
		return make(http.Header)
	}

	return r.headers.Clone()
}

// Body returns a copy of the raw response body.
func (r *Response) Body() []byte {
	return bytes.Clone(r.body)
}

// IsEmpty reports whether the response has no body.
func (r *Response) IsEmpty() bool {
	return len(bytes.TrimSpace(r.body)) == 0
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	err := json.Unmarshal(r.body, v)
	if err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

// Search evaluates a JMESPath expression against the JSON body.
func (r *Response) Search(expression string) (any, error) {
	var data any

	err := r.Decode(&data)
	if err != nil {
		return nil, err
	}

	result, err := jmespath.Search(expression, data)
	if err != nil {
		return nil, fmt.Errorf("evaluating expression %q: %w", expression, err)
	}

	return result, nil
}
