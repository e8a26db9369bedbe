package sbapi

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const operationKey contextKey = "sbapi.operation"

// OperationInfo names the resource operation a request belongs to.
type OperationInfo struct {
	Resource  string
	Operation Operation
}

// WithOperation annotates ctx with the resource and operation being executed.
// Interceptors use it to label logs and metrics.
func WithOperation(ctx context.Context, resource string, op Operation) context.Context {
	return context.WithValue(ctx, operationKey, OperationInfo{Resource: resource, Operation: op})
}

// OperationFromContext returns the operation stored by WithOperation.
func OperationFromContext(ctx context.Context) (OperationInfo, bool) {
	info, ok := ctx.Value(operationKey).(OperationInfo)

	return info, ok
}
