package sbapi

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// RequestInfo is an outgoing request as seen by interceptors.
type RequestInfo struct {
	Method   string
	URL      string
	Headers  http.Header
	Body     []byte
	Metadata map[string]interface{}
}

// ResponseInfo is a received response as seen by interceptors.
type ResponseInfo struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
	Error      error
}

// RequestInterceptor is called before a request is sent.
type RequestInterceptor func(ctx context.Context, req *RequestInfo) error

// ResponseInterceptor is called after a response is received.
type ResponseInterceptor func(ctx context.Context, req *RequestInfo, resp *ResponseInfo) error

// InterceptorChain manages a chain of interceptors.
type InterceptorChain struct {
	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// NewInterceptorChain creates a new interceptor chain.
func NewInterceptorChain() *InterceptorChain {
	return &InterceptorChain{
		requestInterceptors:  make([]RequestInterceptor, 0),
		responseInterceptors: make([]ResponseInterceptor, 0),
	}
}

// AddRequestInterceptor adds a request interceptor to the chain.
func (c *InterceptorChain) AddRequestInterceptor(interceptor RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptor)
}

// AddResponseInterceptor adds a response interceptor to the chain.
func (c *InterceptorChain) AddResponseInterceptor(interceptor ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptor)
}

// Append adds every interceptor of other to c.
func (c *InterceptorChain) Append(other *InterceptorChain) {
	if other == nil {
		return
	}

	c.requestInterceptors = append(c.requestInterceptors, other.requestInterceptors...)
	c.responseInterceptors = append(c.responseInterceptors, other.responseInterceptors...)
}

// Len returns the number of registered interceptors.
func (c *InterceptorChain) Len() int {
	return len(c.requestInterceptors) + len(c.responseInterceptors)
}

// ExecuteRequestInterceptors runs all request interceptors.
func (c *InterceptorChain) ExecuteRequestInterceptors(ctx context.Context, req *RequestInfo) error {
	for _, interceptor := range c.requestInterceptors {
		err := interceptor(ctx, req)
		if err != nil {
			return fmt.Errorf("request interceptor failed: %w", err)
		}
	}

	return nil
}

// ExecuteResponseInterceptors runs all response interceptors.
func (c *InterceptorChain) ExecuteResponseInterceptors(ctx context.Context, req *RequestInfo, resp *ResponseInfo) error {
	for _, interceptor := range c.responseInterceptors {
		err := interceptor(ctx, req, resp)
		if err != nil {
			return fmt.Errorf("response interceptor failed: %w", err)
		}
	}

	return nil
}

// LoggingInterceptor logs requests.
func LoggingInterceptor(logger Logger) RequestInterceptor {
	return func(ctx context.Context, req *RequestInfo) error {
		logger.Debug("API Request", operationFields(ctx, map[string]interface{}{
			"method": req.Method,
			"url":    req.URL,
		}))

		return nil
	}
}

// LoggingResponseInterceptor logs responses, failures at error level.
func LoggingResponseInterceptor(logger Logger) ResponseInterceptor {
	return func(ctx context.Context, req *RequestInfo, resp *ResponseInfo) error {
		fields := operationFields(ctx, map[string]interface{}{
			"method":      req.Method,
			"url":         req.URL,
			"status_code": resp.StatusCode,
			"duration":    resp.Duration.String(),
		})

		if resp.Error != nil {
			fields["error"] = resp.Error
			logger.Error("API Response Error", fields)
		} else {
			logger.Debug("API Response", fields)
		}

		return nil
	}
}

// HeaderInterceptor adds custom headers to requests.
func HeaderInterceptor(headers map[string]string) RequestInterceptor {
	return func(ctx context.Context, req *RequestInfo) error {
		if req.Headers == nil {
			req.Headers = make(http.Header)
		}

		for key, value := range headers {
			req.Headers.Set(key, value)
		}

		return nil
	}
}

func operationFields(ctx context.Context, fields map[string]interface{}) map[string]interface{} {
	if info, ok := OperationFromContext(ctx); ok {
		fields["resource"] = info.Resource
		fields["operation"] = string(info.Operation)
	}

	return fields
}

// CircuitBreakerConfig configures the circuit breaker.
type CircuitBreakerConfig struct {
	Threshold        int           // Number of failures before opening
	Timeout          time.Duration // Time before trying again
	SuccessThreshold int           // Number of successes to close
}

// DefaultCircuitBreakerConfig returns the default circuit breaker settings.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Threshold:        constants.CircuitBreakerThreshold,
		Timeout:          constants.CircuitBreakerTimeout,
		SuccessThreshold: constants.CircuitBreakerSuccessThreshold,
	}
}

// CircuitBreaker tracks circuit state.
type CircuitBreaker struct {
	mu          sync.Mutex
	config      *CircuitBreakerConfig
	failures    int
	successes   int
	state       string
	lastFailure time.Time
	now         func() time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config *CircuitBreakerConfig) *CircuitBreaker {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}

	return &CircuitBreaker{
		config: config,
		state:  constants.StatusClosed,
		now:    time.Now,
	}
}

// State returns the current state: closed, open or half-open.
func (b *CircuitBreaker) State() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.state
}

// Interceptors returns the request and response interceptors driving b.
func (b *CircuitBreaker) Interceptors() (RequestInterceptor, ResponseInterceptor) {
	return CircuitBreakerRequestInterceptor(b), CircuitBreakerResponseInterceptor(b)
}

// CircuitBreakerRequestInterceptor checks circuit state before requests.
func CircuitBreakerRequestInterceptor(breaker *CircuitBreaker) RequestInterceptor {
	return func(ctx context.Context, req *RequestInfo) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if breaker.state == constants.StatusOpen {
			if breaker.now().Sub(breaker.lastFailure) <= breaker.config.Timeout {
				return ErrCircuitBreakerOpen
			}

			breaker.state = constants.StatusHalfOpen
			breaker.successes = 0
		}

		return nil
	}
}

// CircuitBreakerResponseInterceptor updates circuit state based on responses.
// Transport errors and 5xx responses count as failures.
func CircuitBreakerResponseInterceptor(breaker *CircuitBreaker) ResponseInterceptor {
	return func(ctx context.Context, req *RequestInfo, resp *ResponseInfo) error {
		breaker.mu.Lock()
		defer breaker.mu.Unlock()

		if resp.StatusCode == 0 || resp.StatusCode >= constants.HTTPStatusInternalServerError {
			breaker.failures++
			breaker.lastFailure = breaker.now()

			if breaker.failures >= breaker.config.Threshold || breaker.state == constants.StatusHalfOpen {
				breaker.state = constants.StatusOpen
			}

			return nil
		}

		switch breaker.state {
		case constants.StatusHalfOpen:
			breaker.successes++
			if breaker.successes >= breaker.config.SuccessThreshold {
				breaker.state = constants.StatusClosed
				breaker.failures = 0
			}
		case constants.StatusClosed:
			breaker.failures = 0
		}

		return nil
	}
}
