//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
	"github.com/smartbusiness/api2-go/pkg/sbclient"
)

// newTestClient creates a client from CLIENT_ID, CLIENT_SECRET and STAGING,
// skipping the test when no credentials are configured.
func newTestClient(t *testing.T) (context.Context, sbapi.Client) {
	t.Helper()

	if os.Getenv(constants.EnvClientID) == "" || os.Getenv(constants.EnvClientSecret) == "" {
		t.Skip("CLIENT_ID and CLIENT_SECRET not set, skipping integration test")
	}

	config, err := sbclient.ConfigFromEnv()
	require.NoError(t, err)

	config.RetryMax = 2

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	t.Cleanup(cancel)

	client, err := sbclient.New(ctx, config)
	require.NoError(t, err)

	return ctx, client
}

// createdID decodes the id of a created resource.
func createdID(t *testing.T, resp *sbapi.Response) int {
	t.Helper()

	var created struct {
		ID int `json:"id"`
	}

	require.NoError(t, resp.Decode(&created))
	require.NotZero(t, created.ID)

	return created.ID
}
