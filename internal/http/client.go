package http

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/smartbusiness/api2-go/internal/auth"
	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

const defaultUserAgent = "sbapi-go/1.0"

// Request describes one API request. Path is relative to the base URL unless
// it is an absolute http(s) URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers map[string]string
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Cached     bool
}

// Client performs authenticated JSON requests against the API.
type Client struct {
	baseURL      string
	httpClient   *retryablehttp.Client
	tokenManager auth.TokenManager
	logger       sbapi.Logger
	debug        bool
	userAgent    string
	interceptors *sbapi.InterceptorChain
	cache        *sbapi.CacheManager
	cachePolicy  *sbapi.CachingPolicy
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger sbapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRetryConfig enables retries of 5xx, 429 and connection errors.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTimeout bounds each HTTP round trip.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.HTTPClient.Timeout = timeout
		}
	}
}

// WithTracing wraps the transport with OpenTelemetry instrumentation.
func WithTracing(enabled bool) Option {
	return func(c *Client) {
		if enabled {
			c.httpClient.HTTPClient.Transport = otelhttp.NewTransport(c.httpClient.HTTPClient.Transport)
		}
	}
}

// WithInterceptors appends interceptors run around every request.
func WithInterceptors(chain *sbapi.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors.Append(chain)
	}
}

// WithCache enables the GET response cache. A nil policy caches successful
// GET responses.
func WithCache(manager *sbapi.CacheManager, policy *sbapi.CachingPolicy) Option {
	return func(c *Client) {
		if policy == nil {
			policy = sbapi.DefaultCachingPolicy()
		}

		c.cache = manager
		c.cachePolicy = policy
	}
}

// NewClient creates a client for baseURL. A nil token manager sends
// unauthenticated requests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 0
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   retryClient,
		tokenManager: tokenManager,
		logger:       sbapi.NopLogger,
		userAgent:    defaultUserAgent,
		interceptors: sbapi.NewInterceptorChain(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// BaseURL returns the normalised base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Call performs method against an absolute URL. It satisfies endpoint.Caller.
func (c *Client) Call(ctx context.Context, method, rawURL string, body any) (*sbapi.Response, error) {
	resp, err := c.Do(ctx, &Request{Method: method, Path: rawURL, Body: body})
	if err != nil {
		return nil, err
	}

	return sbapi.NewResponse(resp.StatusCode, resp.Headers, resp.Body), nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Do performs req. Non-2xx responses are returned together with an
// *sbapi.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	fullURL := c.resolveURL(req.Path, req.Query)

	var body []byte

	if req.Body != nil {
		var err error

		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
	}

	cacheKey := c.cacheKey(req.Method, fullURL, body)

	if cached := c.cached(ctx, req.Method, fullURL, cacheKey); cached != nil {
		if !isSuccess(cached.StatusCode) {
			return cached, sbapi.ParseAPIError(cached.StatusCode, cached.Body)
		}

		return cached, nil
	}

	validator := c.validator(ctx, req.Method, cacheKey)

	info := &sbapi.RequestInfo{
		Method:   req.Method,
		URL:      fullURL,
		Headers:  make(http.Header),
		Body:     body,
		Metadata: make(map[string]interface{}),
	}

	for key, value := range req.Headers {
		info.Headers.Set(key, value)
	}

	if info.Headers.Get(constants.HeaderRequestID) == "" {
		info.Headers.Set(constants.HeaderRequestID, uuid.NewString())
	}

	if validator != nil && info.Headers.Get(constants.HeaderIfNoneMatch) == "" {
		info.Headers.Set(constants.HeaderIfNoneMatch, validator.ETag)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, info)
	if err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := c.send(ctx, info)
	if err == nil && resp.StatusCode == http.StatusNotModified && validator != nil {
		resp = c.revalidated(fullURL, validator, resp)
	}

	respInfo := &sbapi.ResponseInfo{Duration: time.Since(start), Error: err}
	if resp != nil {
		respInfo.StatusCode = resp.StatusCode
		respInfo.Headers = resp.Headers
		respInfo.Body = resp.Body
	}

	if err == nil && !isSuccess(resp.StatusCode) {
		err = sbapi.ParseAPIError(resp.StatusCode, resp.Body)
		respInfo.Error = err
	}

	interceptErr := c.interceptors.ExecuteResponseInterceptors(ctx, info, respInfo)

	if resp != nil && interceptErr == nil {
		c.updateCache(ctx, req.Method, fullURL, cacheKey, resp)
	}

	if err != nil {
		return resp, err
	}

	if interceptErr != nil {
		return resp, interceptErr
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, info *sbapi.RequestInfo) (*Response, error) {
	resp, err := c.attempt(ctx, info, false)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.tokenManager != nil {
		refreshErr := c.tokenManager.RefreshToken(ctx)
		if refreshErr != nil {
			c.logger.Warn("Token refresh after 401 failed", map[string]interface{}{"error": refreshErr})

			return resp, nil
		}

		return c.attempt(ctx, info, true)
	}

	return resp, nil
}

func (c *Client) attempt(ctx context.Context, info *sbapi.RequestInfo, replay bool) (*Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, info.Method, info.URL, info.Body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range info.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if info.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokenManager != nil {
		token, tokenErr := c.tokenManager.GetToken(ctx)
		if tokenErr != nil {
			return nil, fmt.Errorf("getting access token: %w", tokenErr)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	if c.debug {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     info.Method,
			"url":        info.URL,
			"request_id": info.Headers.Get(constants.HeaderRequestID),
			"replay":     replay,
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":   info.Method,
			"url":      info.URL,
			"status":   httpResp.StatusCode,
			"duration": time.Since(start).String(),
		})
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}, nil
}

func (c *Client) resolveURL(path string, query url.Values) string {
	fullURL := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		fullURL = c.baseURL + path
	}

	if len(query) == 0 {
		return fullURL
	}

	separator := "?"
	if strings.Contains(fullURL, "?") {
		separator = "&"
	}

	return fullURL + separator + query.Encode()
}

// cacheKey keys GET requests by URL. POST requests add a digest of the body
// because the same URL answers different queries.
func (c *Client) cacheKey(method, fullURL string, body []byte) string {
	if c.cache == nil {
		return ""
	}

	if method != http.MethodPost {
		return c.cache.GetCacheKey(method, fullURL, nil)
	}

	digest := sha256.Sum256(body)

	return c.cache.GetCacheKey(method, fullURL, map[string]string{"body": hex.EncodeToString(digest[:])})
}

func (c *Client) lookupEnabled(method string) bool {
	if c.cache == nil {
		return false
	}

	switch method {
	case http.MethodGet:
		return c.cachePolicy.CacheGET
	case http.MethodPost:
		return c.cachePolicy.CachePOST
	default:
		return false
	}
}

func (c *Client) cached(ctx context.Context, method, fullURL, key string) *Response {
	if !c.lookupEnabled(method) {
		return nil
	}

	entry, err := c.cache.GetEntry(ctx, key)
	if err != nil {
		return nil
	}

	if c.debug {
		c.logger.Debug("Cache hit", map[string]interface{}{"url": fullURL})
	}

	return responseFromEntry(entry, "HIT")
}

// validator returns the stored entry to revalidate with If-None-Match.
func (c *Client) validator(ctx context.Context, method, key string) *sbapi.CacheEntry {
	if !c.lookupEnabled(method) {
		return nil
	}

	entry, err := c.cache.GetValidator(ctx, key)
	if err != nil {
		return nil
	}

	return entry
}

// revalidated turns a 304 into the stored response. Headers sent with the
// 304 replace the stored ones.
func (c *Client) revalidated(fullURL string, validator *sbapi.CacheEntry, notModified *Response) *Response {
	resp := responseFromEntry(validator, "REVALIDATED")

	for key, values := range notModified.Headers {
		resp.Headers[key] = values
	}

	if c.debug {
		c.logger.Debug("Cache entry revalidated", map[string]interface{}{"url": fullURL, "etag": validator.ETag})
	}

	return resp
}

func responseFromEntry(entry *sbapi.CacheEntry, state string) *Response {
	headers := entry.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}

	headers.Set(constants.HeaderCache, state)

	return &Response{
		StatusCode: entry.StatusCode,
		Headers:    headers,
		Body:       bytes.Clone(entry.Data),
		Cached:     true,
	}
}

// updateCache stores responses the policy accepts. Any other successful
// mutation clears the cache.
func (c *Client) updateCache(ctx context.Context, method, fullURL, key string, resp *Response) {
	if c.cache == nil {
		return
	}

	if !c.cachePolicy.ShouldCache(method, fullURL, resp.StatusCode) {
		if method != http.MethodGet && isSuccess(resp.StatusCode) {
			err := c.cache.Clear(ctx)
			if err != nil {
				c.logger.Warn("Failed to clear response cache", map[string]interface{}{"error": err})
			}
		}

		return
	}

	headers := resp.Headers.Clone()
	if headers == nil {
		headers = make(http.Header)
	}

	headers.Del(constants.HeaderCache)

	err := c.cache.SetEntry(ctx, key, &sbapi.CacheEntry{
		Data:       bytes.Clone(resp.Body),
		StatusCode: resp.StatusCode,
		Headers:    headers,
		ETag:       headers.Get(constants.HeaderETag),
	})
	if err != nil {
		c.logger.Warn("Failed to store response in cache", map[string]interface{}{"error": err})
	}
}

func isSuccess(statusCode int) bool {
	return statusCode >= constants.HTTPStatusOK && statusCode < constants.HTTPStatusMultipleChoices
}
