package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartbusiness/api2-go/internal/constants"
)

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)
	assert.Equal(t, "Login to the smartbusiness API", cmd.Short)
	assert.NotNil(t, cmd.RunE)

	for _, flagName := range []string{"client-id", "client-secret"} {
		assert.NotNil(t, cmd.Flags().Lookup(flagName), "Flag %s should exist", flagName)
	}
}

//nolint:paralleltest // Tests share global viper state
func TestLoginCommand(t *testing.T) {
	t.Run("stores verified credentials and token", func(t *testing.T) {
		api := newFakeAPI(t)
		setupViper(t, nil)
		viper.Set("base_url", api.URL+"/api/v2")

		out, err := execute(t, []string{"login", "--client-id", "id", "--client-secret", "secret"}, NewLoginCommand())
		require.NoError(t, err)
		assert.Contains(t, out, "Logged in to "+api.URL+"/api/v2")

		config, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "id", config.ClientID)
		assert.Equal(t, "secret", config.ClientSecret)
		require.NotNil(t, config.Token)
		assert.Equal(t, "cli-token", config.Token.AccessToken)
	})

	t.Run("prompts for missing credentials", func(t *testing.T) {
		api := newFakeAPI(t)
		setupViper(t, nil)
		viper.Set("base_url", api.URL+"/api/v2")

		root := NewLoginCommand()
		root.SetIn(strings.NewReader("prompted-id\nprompted-secret\n"))

		var out bytes.Buffer

		root.SetOut(&out)
		root.SetArgs([]string{})

		require.NoError(t, root.Execute())
		assert.Contains(t, out.String(), "Client ID: ")

		config, err := loadConfig()
		require.NoError(t, err)
		assert.Equal(t, "prompted-id", config.ClientID)
		assert.Equal(t, "prompted-secret", config.ClientSecret)
	})

	t.Run("rejected credentials are not stored", func(t *testing.T) {
		api := newFakeAPI(t)
		api.rejectAuth = true
		setupViper(t, nil)
		viper.Set("base_url", api.URL+"/api/v2")

		_, err := execute(t, []string{"login", "--client-id", "id", "--client-secret", "bad"}, NewLoginCommand())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to authenticate")

		config, err := loadConfig()
		require.NoError(t, err)
		assert.Empty(t, config.ClientID)
	})

	t.Run("empty client id", func(t *testing.T) {
		setupViper(t, nil)

		_, err := execute(t, []string{"login"}, NewLoginCommand())
		require.ErrorIs(t, err, constants.ErrNoCredentials)
	})
}
