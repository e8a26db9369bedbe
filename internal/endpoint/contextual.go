package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

// Contextual wraps a Nested resource with an optional bound parent id. The
// parameterless-parent methods use the bound id and fail with
// sbapi.ErrContextNotSet, without issuing a request, while none is bound.
type Contextual struct {
	nested *Nested

	mu       sync.RWMutex
	parentID int
	bound    bool
}

// NewContextual creates an unbound contextual resource.
func NewContextual(nested *Nested) *Contextual {
	return &Contextual{nested: nested}
}

// Nested returns the underlying resource for explicit-parent calls.
func (c *Contextual) Nested() *Nested {
	return c.nested
}

// SetParentID binds (or rebinds) the parent id.
func (c *Contextual) SetParentID(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.parentID = id
	c.bound = true
}

// ParentID returns the bound parent id and whether one is bound.
func (c *Contextual) ParentID() (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.parentID, c.bound
}

// WithParentID returns an independent copy bound to id.
func (c *Contextual) WithParentID(id int) *Contextual {
	bound := NewContextual(c.nested)
	bound.SetParentID(id)

	return bound
}

func (c *Contextual) requireParent(op sbapi.Operation) (int, error) {
	id, ok := c.ParentID()
	if !ok {
		return 0, fmt.Errorf("%s %s: %w", gerunds[op], c.nested.engine.def.Name, sbapi.ErrContextNotSet)
	}

	return id, nil
}

// List lists the collection under the bound parent.
func (c *Contextual) List(ctx context.Context, params *sbapi.ListParameters) (*sbapi.Response, error) {
	parentID, err := c.requireParent(sbapi.OperationList)
	if err != nil {
		return nil, err
	}

	return c.nested.List(ctx, parentID, params)
}

// Get fetches one item under the bound parent.
func (c *Contextual) Get(ctx context.Context, id int, params *sbapi.GetParameters) (*sbapi.Response, error) {
	parentID, err := c.requireParent(sbapi.OperationGet)
	if err != nil {
		return nil, err
	}

	return c.nested.Get(ctx, parentID, id, params)
}

// Create creates an item under the bound parent.
func (c *Contextual) Create(ctx context.Context, payload sbapi.Payload) (*sbapi.Response, error) {
	parentID, err := c.requireParent(sbapi.OperationCreate)
	if err != nil {
		return nil, err
	}

	return c.nested.Create(ctx, parentID, payload)
}

// Update replaces an item under the bound parent.
func (c *Contextual) Update(ctx context.Context, id int, payload sbapi.Payload) (*sbapi.Response, error) {
	parentID, err := c.requireParent(sbapi.OperationUpdate)
	if err != nil {
		return nil, err
	}

	return c.nested.Update(ctx, parentID, id, payload)
}

// Delete removes items under the bound parent.
func (c *Contextual) Delete(ctx context.Context, ids []int) (*sbapi.Response, error) {
	parentID, err := c.requireParent(sbapi.OperationDelete)
	if err != nil {
		return nil, err
	}

	return c.nested.Delete(ctx, parentID, ids)
}
