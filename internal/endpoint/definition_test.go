package endpoint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/internal/endpoint"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func TestDefinition_Capabilities(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []sbapi.Operation{sbapi.OperationList, sbapi.OperationGet}, unitsDefinition().Capabilities())
	assert.Equal(t, sbapi.Operations(), bankAccountsDefinition().Capabilities())

	assert.True(t, unitsDefinition().Supports(sbapi.OperationGet))
	assert.False(t, unitsDefinition().Supports(sbapi.OperationUpdate))

	_, err := unitsDefinition().Route(sbapi.OperationUpdate)
	require.ErrorIs(t, err, sbapi.ErrUnsupportedOperation)
}

func TestDefinition_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, bankAccountsDefinition().Validate())
	require.NoError(t, unitsDefinition().Validate())
	require.NoError(t, addressesDefinition().Validate())

	tests := []struct {
		name string
		def  *endpoint.Definition
	}{
		{
			name: "missing name",
			def:  &endpoint.Definition{Routes: map[sbapi.Operation]endpoint.Route{sbapi.OperationList: {Template: "/x"}}},
		},
		{
			name: "no routes",
			def:  &endpoint.Definition{Name: "x"},
		},
		{
			name: "placeholder missing from template",
			def: &endpoint.Definition{Name: "x", Routes: map[sbapi.Operation]endpoint.Route{
				sbapi.OperationGet: {Template: "/x", Placeholder: "id"},
			}},
		},
		{
			name: "item route without placeholder",
			def: &endpoint.Definition{Name: "x", Routes: map[sbapi.Operation]endpoint.Route{
				sbapi.OperationDelete: {Template: "/x/{ids}"},
			}},
		},
		{
			name: "collection route with placeholder",
			def: &endpoint.Definition{Name: "x", Routes: map[sbapi.Operation]endpoint.Route{
				sbapi.OperationList: {Template: "/x/{id}", Placeholder: "id"},
			}},
		},
		{
			name: "parent missing from template",
			def: &endpoint.Definition{Name: "x", Parent: "contactId", Routes: map[sbapi.Operation]endpoint.Route{
				sbapi.OperationList: {Template: "/x"},
			}},
		},
		{
			name: "unknown operation",
			def: &endpoint.Definition{Name: "x", Routes: map[sbapi.Operation]endpoint.Route{
				sbapi.Operation("archive"): {Template: "/x"},
			}},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.ErrorIs(t, tt.def.Validate(), endpoint.ErrInvalidDefinition)
		})
	}
}
