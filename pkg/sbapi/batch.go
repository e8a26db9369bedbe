package sbapi

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrBatchTargetRequired = errors.New("batch operation has no target resource")
	ErrTransactionFailed   = errors.New("transaction failed")
)

// BatchOperation is a single call in a batch. Target is the resource client
// the call is made on, for example client.Contacts() or a contact-bound
// client.Addresses().
type BatchOperation struct {
	ID       string
	Type     Operation
	Target   any
	ItemID   int
	ItemIDs  []int
	Payload  Payload
	List     *ListParameters
	Get      *GetParameters
	Callback func(result *BatchResult)
}

// BatchResult is the outcome of one batch operation.
type BatchResult struct {
	ID       string
	Success  bool
	Response *Response
	Error    error
	Duration time.Duration
}

// BatchExecutor runs batch operations concurrently.
type BatchExecutor struct {
	concurrency int
	timeout     time.Duration
}

// NewBatchExecutor creates a batch executor running at most concurrency
// operations at once.
func NewBatchExecutor(concurrency int) *BatchExecutor {
	if concurrency <= 0 {
		concurrency = constants.DefaultBatchConcurrency
	}

	return &BatchExecutor{
		concurrency: concurrency,
		timeout:     constants.DefaultHTTPTimeout,
	}
}

// SetTimeout sets the timeout of each operation.
func (b *BatchExecutor) SetTimeout(timeout time.Duration) {
	b.timeout = timeout
}

// Execute runs a batch of operations. Results are in the order of operations.
func (b *BatchExecutor) Execute(ctx context.Context, operations []BatchOperation) ([]BatchResult, error) {
	results := make([]BatchResult, len(operations))

	var waitGroup sync.WaitGroup

	semaphore := make(chan struct{}, b.concurrency)

	for index, operation := range operations {
		waitGroup.Add(1)

		go func(index int, operation BatchOperation) {
			defer waitGroup.Done()

			semaphore <- struct{}{}

			defer func() { <-semaphore }()

			opCtx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			start := time.Now()
			result := b.executeOperation(opCtx, operation)
			result.Duration = time.Since(start)
			results[index] = *result

			if operation.Callback != nil {
				operation.Callback(result)
			}
		}(index, operation)
	}

	waitGroup.Wait()

	return results, nil
}

// executeOperation dispatches an operation to the capability of its target.
func (b *BatchExecutor) executeOperation(ctx context.Context, operation BatchOperation) *BatchResult {
	result := &BatchResult{ID: operation.ID}

	if operation.Target == nil {
		result.Error = ErrBatchTargetRequired

		return result
	}

	unsupported := fmt.Errorf("%w: %s", ErrUnsupportedOperation, operation.Type)

	var (
		resp *Response
		err  error
	)

	switch operation.Type {
	case OperationList:
		lister, ok := operation.Target.(Lister)
		if !ok {
			err = unsupported

			break
		}

		resp, err = lister.List(ctx, operation.List)
	case OperationGet:
		getter, ok := operation.Target.(Getter)
		if !ok {
			err = unsupported

			break
		}

		resp, err = getter.Get(ctx, operation.ItemID, operation.Get)
	case OperationCreate:
		creator, ok := operation.Target.(Creator)
		if !ok {
			err = unsupported

			break
		}

		resp, err = creator.Create(ctx, operation.Payload)
	case OperationUpdate:
		updater, ok := operation.Target.(Updater)
		if !ok {
			err = unsupported

			break
		}

		resp, err = updater.Update(ctx, operation.ItemID, operation.Payload)
	case OperationDelete:
		deleter, ok := operation.Target.(Deleter)
		if !ok {
			err = unsupported

			break
		}

		resp, err = deleter.Delete(ctx, operation.ItemIDs)
	default:
		err = unsupported
	}

	result.Success = err == nil
	result.Response = resp
	result.Error = err

	return result
}

// BatchBuilder helps build batch operations.
type BatchBuilder struct {
	operations []BatchOperation
}

// NewBatchBuilder creates a new batch builder.
func NewBatchBuilder() *BatchBuilder {
	return &BatchBuilder{
		operations: make([]BatchOperation, 0),
	}
}

// AddList adds a list operation.
func (b *BatchBuilder) AddList(id string, target Lister, params *ListParameters) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Type: OperationList, Target: target, List: params})
}

// AddGet adds a get operation.
func (b *BatchBuilder) AddGet(id string, target Getter, itemID int, params *GetParameters) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Type: OperationGet, Target: target, ItemID: itemID, Get: params})
}

// AddCreate adds a create operation.
func (b *BatchBuilder) AddCreate(id string, target Creator, payload Payload) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Type: OperationCreate, Target: target, Payload: payload})
}

// AddUpdate adds an update operation.
func (b *BatchBuilder) AddUpdate(id string, target Updater, itemID int, payload Payload) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Type: OperationUpdate, Target: target, ItemID: itemID, Payload: payload})
}

// AddDelete adds a delete operation for one or more items.
func (b *BatchBuilder) AddDelete(id string, target Deleter, itemIDs ...int) *BatchBuilder {
	return b.AddOperation(BatchOperation{ID: id, Type: OperationDelete, Target: target, ItemIDs: itemIDs})
}

// AddOperation adds a custom operation.
func (b *BatchBuilder) AddOperation(operation BatchOperation) *BatchBuilder {
	b.operations = append(b.operations, operation)

	return b
}

// Build returns the built operations.
func (b *BatchBuilder) Build() []BatchOperation {
	return b.operations
}

// BatchTransaction is a batch that deletes the items it created when any of
// its operations fails. Updates and deletes are not undone.
type BatchTransaction struct {
	operations []BatchOperation
	results    []BatchResult
	executor   *BatchExecutor
	rollback   bool
}

// NewBatchTransaction creates a new batch transaction.
func NewBatchTransaction(executor *BatchExecutor) *BatchTransaction {
	return &BatchTransaction{
		executor:   executor,
		operations: make([]BatchOperation, 0),
		rollback:   true,
	}
}

// Add adds an operation to the transaction.
func (t *BatchTransaction) Add(operation BatchOperation) *BatchTransaction {
	t.operations = append(t.operations, operation)

	return t
}

// SetRollback sets whether to roll back on failure.
func (t *BatchTransaction) SetRollback(rollback bool) *BatchTransaction {
	t.rollback = rollback

	return t
}

// Execute executes the transaction.
func (t *BatchTransaction) Execute(ctx context.Context) ([]BatchResult, error) {
	results, err := t.executor.Execute(ctx, t.operations)
	t.results = results

	var failedOps []string

	for _, result := range results {
		if !result.Success {
			failedOps = append(failedOps, result.ID)
		}
	}

	if len(failedOps) > 0 && t.rollback {
		t.performRollback(ctx)

		return results, fmt.Errorf("%w, %d operations failed: %v", ErrTransactionFailed, len(failedOps), failedOps)
	}

	return results, err
}

// performRollback deletes every item created by a successful create whose
// target can delete and whose response carries the new id.
func (t *BatchTransaction) performRollback(ctx context.Context) {
	var rollbackOps []BatchOperation

	for i, result := range t.results {
		original := t.operations[i]
		if !result.Success || original.Type != OperationCreate {
			continue
		}

		if _, ok := original.Target.(Deleter); !ok {
			continue
		}

		var created struct {
			ID int `json:"id"`
		}

		if result.Response == nil || result.Response.Decode(&created) != nil || created.ID <= 0 {
			continue
		}

		rollbackOps = append(rollbackOps, BatchOperation{
			ID:      "rollback_" + original.ID,
			Type:    OperationDelete,
			Target:  original.Target,
			ItemIDs: []int{created.ID},
		})
	}

	if len(rollbackOps) > 0 {
		_, _ = t.executor.Execute(ctx, rollbackOps)
	}
}
