package sbapi_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

var errInterceptorBoom = errors.New("boom")

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

type logEntry struct {
	level  string
	msg    string
	fields map[string]interface{}
}

func (l *recordingLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, logEntry{level: level, msg: msg, fields: fields})
}

func (l *recordingLogger) Debug(msg string, fields map[string]interface{}) { l.log("debug", msg, fields) }
func (l *recordingLogger) Info(msg string, fields map[string]interface{})  { l.log("info", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields map[string]interface{})  { l.log("warn", msg, fields) }
func (l *recordingLogger) Error(msg string, fields map[string]interface{}) { l.log("error", msg, fields) }

func TestInterceptorChain_Order(t *testing.T) {
	t.Parallel()

	chain := sbapi.NewInterceptorChain()
	ctx := context.Background()

	var order []string

	chain.AddRequestInterceptor(func(ctx context.Context, req *sbapi.RequestInfo) error {
		order = append(order, "req-1")

		return nil
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *sbapi.RequestInfo) error {
		order = append(order, "req-2")

		return nil
	})
	chain.AddResponseInterceptor(func(ctx context.Context, req *sbapi.RequestInfo, resp *sbapi.ResponseInfo) error {
		order = append(order, "resp-1")

		return nil
	})

	req := &sbapi.RequestInfo{Method: http.MethodGet, URL: "/contacts"}
	require.NoError(t, chain.ExecuteRequestInterceptors(ctx, req))
	require.NoError(t, chain.ExecuteResponseInterceptors(ctx, req, &sbapi.ResponseInfo{StatusCode: 200}))

	assert.Equal(t, []string{"req-1", "req-2", "resp-1"}, order)
	assert.Equal(t, 3, chain.Len())
}

func TestInterceptorChain_StopsOnError(t *testing.T) {
	t.Parallel()

	chain := sbapi.NewInterceptorChain()
	called := false

	chain.AddRequestInterceptor(func(ctx context.Context, req *sbapi.RequestInfo) error {
		return errInterceptorBoom
	})
	chain.AddRequestInterceptor(func(ctx context.Context, req *sbapi.RequestInfo) error {
		called = true

		return nil
	})

	err := chain.ExecuteRequestInterceptors(context.Background(), &sbapi.RequestInfo{})
	require.ErrorIs(t, err, errInterceptorBoom)
	assert.False(t, called)
}

func TestInterceptorChain_Append(t *testing.T) {
	t.Parallel()

	base := sbapi.NewInterceptorChain()
	extra := sbapi.NewInterceptorChain()
	extra.AddRequestInterceptor(sbapi.HeaderInterceptor(map[string]string{"X-Tenant": "acme"}))

	base.Append(extra)
	base.Append(nil)

	req := &sbapi.RequestInfo{}
	require.NoError(t, base.ExecuteRequestInterceptors(context.Background(), req))
	assert.Equal(t, "acme", req.Headers.Get("X-Tenant"))
}

func TestLoggingInterceptors(t *testing.T) {
	t.Parallel()

	logger := &recordingLogger{}
	ctx := sbapi.WithOperation(context.Background(), "bank-accounts", sbapi.OperationList)
	req := &sbapi.RequestInfo{Method: http.MethodGet, URL: "https://api.example.com/configuration/bank-accounts"}

	require.NoError(t, sbapi.LoggingInterceptor(logger)(ctx, req))
	require.NoError(t, sbapi.LoggingResponseInterceptor(logger)(ctx, req, &sbapi.ResponseInfo{StatusCode: 200}))
	require.NoError(t, sbapi.LoggingResponseInterceptor(logger)(ctx, req, &sbapi.ResponseInfo{
		StatusCode: 500,
		Error:      errInterceptorBoom,
	}))

	require.Len(t, logger.entries, 3)
	assert.Equal(t, "API Request", logger.entries[0].msg)
	assert.Equal(t, "bank-accounts", logger.entries[0].fields["resource"])
	assert.Equal(t, "list", logger.entries[0].fields["operation"])
	assert.Equal(t, "debug", logger.entries[1].level)
	assert.Equal(t, 200, logger.entries[1].fields["status_code"])
	assert.Equal(t, "error", logger.entries[2].level)
	assert.Equal(t, "API Response Error", logger.entries[2].msg)
}

func TestOperationFromContext(t *testing.T) {
	t.Parallel()

	_, ok := sbapi.OperationFromContext(context.Background())
	assert.False(t, ok)

	info, ok := sbapi.OperationFromContext(sbapi.WithOperation(context.Background(), "people", sbapi.OperationDelete))
	require.True(t, ok)
	assert.Equal(t, "people", info.Resource)
	assert.Equal(t, sbapi.OperationDelete, info.Operation)
}

func TestCircuitBreaker(t *testing.T) {
	t.Parallel()

	breaker := sbapi.NewCircuitBreaker(&sbapi.CircuitBreakerConfig{
		Threshold:        2,
		Timeout:          20 * time.Millisecond,
		SuccessThreshold: 1,
	})
	reqInterceptor, respInterceptor := breaker.Interceptors()
	ctx := context.Background()
	req := &sbapi.RequestInfo{Method: http.MethodGet, URL: "/contacts"}

	assert.Equal(t, "closed", breaker.State())

	for i := 0; i < 2; i++ {
		require.NoError(t, reqInterceptor(ctx, req))
		require.NoError(t, respInterceptor(ctx, req, &sbapi.ResponseInfo{StatusCode: 503}))
	}

	assert.Equal(t, "open", breaker.State())
	require.ErrorIs(t, reqInterceptor(ctx, req), sbapi.ErrCircuitBreakerOpen)

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, reqInterceptor(ctx, req))
	assert.Equal(t, "half-open", breaker.State())

	require.NoError(t, respInterceptor(ctx, req, &sbapi.ResponseInfo{StatusCode: 200}))
	assert.Equal(t, "closed", breaker.State())
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	t.Parallel()

	breaker := sbapi.NewCircuitBreaker(&sbapi.CircuitBreakerConfig{Threshold: 1, Timeout: time.Minute, SuccessThreshold: 1})
	_, respInterceptor := breaker.Interceptors()

	require.NoError(t, respInterceptor(context.Background(), &sbapi.RequestInfo{}, &sbapi.ResponseInfo{StatusCode: 404}))
	assert.Equal(t, "closed", breaker.State())

	require.NoError(t, respInterceptor(context.Background(), &sbapi.RequestInfo{}, &sbapi.ResponseInfo{StatusCode: 0}))
	assert.Equal(t, "open", breaker.State())
}
