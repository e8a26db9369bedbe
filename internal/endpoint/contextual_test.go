package endpoint_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func addressesDefinition() *endpoint.Definition {
	return &endpoint.Definition{
		Name:   "addresses",
		Scopes: []sbapi.Scope{sbapi.ScopeContact},
		Parent: "contactId",
		Routes: map[sbapi.Operation]endpoint.Route{
			sbapi.OperationList:   {Template: "/contacts/{contactId}/addresses"},
			sbapi.OperationGet:    {Template: "/contacts/{contactId}/addresses/{addressId}", Placeholder: "addressId"},
			sbapi.OperationCreate: {Template: "/contacts/{contactId}/addresses"},
			sbapi.OperationUpdate: {Template: "/contacts/{contactId}/addresses/{addressId}", Placeholder: "addressId"},
			sbapi.OperationDelete: {Template: "/contacts/{contactId}/addresses/{addressesIds}", Placeholder: "addressesIds"},
		},
	}
}

func newContextual(caller endpoint.Caller) *endpoint.Contextual {
	return endpoint.NewContextual(endpoint.NewNested(addressesDefinition(), testBaseURL, caller))
}

func TestContextual_NotSetIssuesNoRequest(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	caller := &fakeCaller{}
	addresses := newContextual(caller)

	_, ok := addresses.ParentID()
	assert.False(t, ok)

	calls := map[string]func() error{
		"list": func() error {
			_, err := addresses.List(ctx, nil)

			return err
		},
		"get": func() error {
			_, err := addresses.Get(ctx, 1, nil)

			return err
		},
		"create": func() error {
			_, err := addresses.Create(ctx, sbapi.Payload{"city": "X"})

			return err
		},
		"update": func() error {
			_, err := addresses.Update(ctx, 1, sbapi.Payload{"city": "X"})

			return err
		},
		"delete": func() error {
			_, err := addresses.Delete(ctx, []int{1})

			return err
		},
	}

	for name, call := range calls {
		err := call()
		require.ErrorIs(t, err, sbapi.ErrContextNotSet, name)
		require.ErrorIs(t, err, sbapi.ErrInvalidUse, name)
	}

	assert.Empty(t, caller.calls)
}

func TestContextual_SetParentID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	caller := &fakeCaller{}
	addresses := newContextual(caller)

	addresses.SetParentID(10)

	id, ok := addresses.ParentID()
	require.True(t, ok)
	assert.Equal(t, 10, id)

	_, err := addresses.Create(ctx, sbapi.Payload{"city": "X"})
	require.NoError(t, err)

	got := caller.last(t)
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, testBaseURL+"/contacts/10/addresses", got.url)
	assert.Equal(t, sbapi.Payload{"city": "X"}, got.body)

	_, err = addresses.Get(ctx, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/contacts/10/addresses/3", caller.last(t).url)

	_, err = addresses.Delete(ctx, []int{3, 4})
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/contacts/10/addresses/3,4", caller.last(t).url)

	// Rebinding changes the target.
	addresses.SetParentID(11)

	_, err = addresses.List(ctx, sbapi.NewListParameters().WithPerPage(5))
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/contacts/11/addresses?per_page=5", caller.last(t).url)

	_, err = addresses.Update(ctx, 2, sbapi.Payload{"city": "Y"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, caller.last(t).method)
	assert.Equal(t, testBaseURL+"/contacts/11/addresses/2", caller.last(t).url)
}

func TestContextual_ExplicitParentLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	caller := &fakeCaller{}
	addresses := newContextual(caller)

	_, err := addresses.Nested().Get(ctx, 5, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/contacts/5/addresses/2", caller.last(t).url)

	_, ok := addresses.ParentID()
	assert.False(t, ok, "explicit calls do not bind")

	addresses.SetParentID(10)

	_, err = addresses.Nested().List(ctx, 6, nil)
	require.NoError(t, err)
	assert.Equal(t, testBaseURL+"/contacts/6/addresses", caller.last(t).url)

	id, _ := addresses.ParentID()
	assert.Equal(t, 10, id)
}

func TestContextual_WithParentIDIsIndependent(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	addresses := newContextual(caller)

	bound := addresses.WithParentID(42)

	id, ok := bound.ParentID()
	require.True(t, ok)
	assert.Equal(t, 42, id)

	_, ok = addresses.ParentID()
	assert.False(t, ok)

	bound.SetParentID(43)
	addresses.SetParentID(1)

	id, _ = bound.ParentID()
	assert.Equal(t, 43, id)
}

func TestContextual_DeleteWithoutIDs(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	addresses := newContextual(caller)
	addresses.SetParentID(1)

	_, err := addresses.Delete(context.Background(), []int{})
	require.ErrorIs(t, err, sbapi.ErrNoIdentifiers)
	assert.Empty(t, caller.calls)
}

func TestContextual_ConcurrentBinding(t *testing.T) {
	t.Parallel()

	caller := &fakeCaller{}
	addresses := newContextual(caller)

	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func(id int) {
			defer wg.Done()

			addresses.SetParentID(id)
			_, _ = addresses.List(context.Background(), nil)
		}(i + 1)
	}

	wg.Wait()

	_, ok := addresses.ParentID()
	assert.True(t, ok)
	assert.Len(t, caller.calls, 20)
}
