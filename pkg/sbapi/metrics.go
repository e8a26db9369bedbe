package sbapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "sbapi"
	metricsSubsystem = "client"
	unknownLabel     = "unknown"
)

// PrometheusMetrics records request counts and latencies per resource and
// operation.
type PrometheusMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg.
// Collectors already registered with reg are reused.
func NewPrometheusMetrics(reg prometheus.Registerer) (*PrometheusMetrics, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "requests_total",
		Help:      "Number of API requests by resource, operation and status code.",
	}, []string{"resource", "operation", "method", "code"})

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Subsystem: metricsSubsystem,
		Name:      "request_duration_seconds",
		Help:      "API request latency by resource and operation.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "operation", "method"})

	var err error

	requests, err = register(reg, requests)
	if err != nil {
		return nil, err
	}

	latency, err = register(reg, latency)
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{requests: requests, latency: latency}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, collector C) (C, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}

	return collector, fmt.Errorf("registering metrics collector: %w", err)
}

// ResponseInterceptor returns an interceptor observing every completed request.
func (m *PrometheusMetrics) ResponseInterceptor() ResponseInterceptor {
	return func(ctx context.Context, req *RequestInfo, resp *ResponseInfo) error {
		resource, operation := unknownLabel, unknownLabel
		if info, ok := OperationFromContext(ctx); ok {
			resource, operation = info.Resource, string(info.Operation)
		}

		code := "error"
		if resp.StatusCode > 0 {
			code = strconv.Itoa(resp.StatusCode)
		}

		m.requests.WithLabelValues(resource, operation, req.Method, code).Inc()
		m.latency.WithLabelValues(resource, operation, req.Method).Observe(resp.Duration.Seconds())

		return nil
	}
}
