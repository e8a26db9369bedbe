package sbapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartbusiness/api2-go/pkg/sbapi"
)

func TestListParameters_ToValues(t *testing.T) {
	t.Parallel()

	params := sbapi.NewListParameters().
		WithPage(2).
		WithPerPage(50).
		WithSort("name", "-created_at").
		WithFields("id", "name").
		WithFilter("group", "1").
		WithFilter("group", "2").
		With("search", "acme")

	values := params.ToValues()

	assert.Equal(t, "2", values.Get("page"))
	assert.Equal(t, "50", values.Get("per_page"))
	assert.Equal(t, "name,-created_at", values.Get("sort"))
	assert.Equal(t, "id,name", values.Get("fields"))
	assert.Equal(t, "1,2", values.Get("group"))
	assert.Equal(t, "acme", values.Get("search"))
	assert.Equal(t, "fields=id%2Cname&group=1%2C2&page=2&per_page=50&search=acme&sort=name%2C-created_at", values.Encode())
}

func TestListParameters_Empty(t *testing.T) {
	t.Parallel()

	var nilParams *sbapi.ListParameters
	assert.Empty(t, nilParams.ToValues())
	assert.Empty(t, sbapi.NewListParameters().ToValues())
	assert.Empty(t, (&sbapi.ListParameters{}).ToValues())
}

func TestListParameters_ZeroValueBuilders(t *testing.T) {
	t.Parallel()

	params := &sbapi.ListParameters{}
	params.WithFilter("country", "SK").With("q", "x")

	values := params.ToValues()
	assert.Equal(t, "SK", values.Get("country"))
	assert.Equal(t, "x", values.Get("q"))
}

func TestListParameters_TypedFieldsWin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		params   *sbapi.ListParameters
		expected string
	}{
		{
			name:     "filter after page",
			params:   sbapi.NewListParameters().WithPage(2).WithPerPage(5).WithFilter("page", "9"),
			expected: "page=2&per_page=5",
		},
		{
			name:     "raw value before page",
			params:   sbapi.NewListParameters().With("page", "7").WithPage(2),
			expected: "page=2",
		},
		{
			name:     "sort and fields",
			params:   sbapi.NewListParameters().With("sort", "id").WithFilter("fields", "x").WithSort("name").WithFields("id"),
			expected: "fields=id&sort=name",
		},
		{
			name:     "raw value kept when field unset",
			params:   sbapi.NewListParameters().With("page", "7"),
			expected: "page=7",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, tt.params.ToValues().Encode())
		})
	}
}

func TestGetParameters_TypedFieldsWin(t *testing.T) {
	t.Parallel()

	params := sbapi.NewGetParameters().With("fields", "all").With("expand", "x").WithFields("id")

	assert.Equal(t, "expand=x&fields=id", params.ToValues().Encode())
}

func TestGetParameters_ToValues(t *testing.T) {
	t.Parallel()

	params := sbapi.NewGetParameters().
		WithFields("id", "iban").
		WithExpand("currency").
		With("lang", "sk")

	values := params.ToValues()

	assert.Equal(t, "id,iban", values.Get("fields"))
	assert.Equal(t, "currency", values.Get("expand"))
	assert.Equal(t, "sk", values.Get("lang"))

	var nilParams *sbapi.GetParameters
	assert.Empty(t, nilParams.ToValues())
}

func TestOperation_Method(t *testing.T) {
	t.Parallel()

	tests := map[sbapi.Operation]string{
		sbapi.OperationList:   http.MethodGet,
		sbapi.OperationGet:    http.MethodGet,
		sbapi.OperationCreate: http.MethodPost,
		sbapi.OperationUpdate: http.MethodPut,
		sbapi.OperationDelete: http.MethodDelete,
		sbapi.Operation("x"):  "",
	}

	for op, method := range tests {
		assert.Equal(t, method, op.Method(), string(op))
	}

	assert.Len(t, sbapi.Operations(), 5)
}
