package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/smartbusiness/api2-go/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	ClientID     string `json:"client_id,omitempty"     yaml:"client_id,omitempty"`
	ClientSecret string `json:"client_secret,omitempty" yaml:"client_secret,omitempty"`
	Staging      bool   `json:"staging,omitempty"       yaml:"staging,omitempty"`
	BaseURL      string `json:"base_url,omitempty"      yaml:"base_url,omitempty"`
	TokenURL     string `json:"token_url,omitempty"     yaml:"token_url,omitempty"`
	Output       string `json:"output,omitempty"        yaml:"output,omitempty"`

	Token *TokenConfig `json:"token,omitempty" yaml:"token,omitempty"`
}

// TokenConfig is the last token issued for BaseURL.
type TokenConfig struct {
	BaseURL       string     `json:"base_url"                 yaml:"base_url"`
	AccessToken   string     `json:"access_token"             yaml:"access_token"`
	RefreshToken  string     `json:"refresh_token,omitempty"  yaml:"refresh_token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"     yaml:"expires_at,omitempty"`
	LastRefreshed *time.Time `json:"last_refreshed,omitempty" yaml:"last_refreshed,omitempty"`
}

// environment maps configuration keys to the variables they are read from.
var environment = map[string]string{
	"client_id":     constants.EnvClientID,
	"client_secret": constants.EnvClientSecret,
	"base_url":      constants.EnvBaseURL,
	"token_url":     constants.EnvTokenURL,
}

// BindEnvironment binds CLIENT_ID, CLIENT_SECRET, BASE_URL and TOKEN_URL to
// their configuration keys. STAGING selects staging by its presence alone.
func BindEnvironment() {
	for key, env := range environment {
		_ = viper.BindEnv(key, env)
	}

	if _, ok := os.LookupEnv(constants.EnvStaging); ok {
		viper.Set("staging", true)
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the sbapi CLI configuration stored in $HOME/.sbapi/config.yml",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			masked := maskConfig(config)
			out := cmd.OutOrStdout()

			switch viper.GetString("output") {
			case constants.FormatJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")

				return encoder.Encode(masked)
			case constants.FormatYAML:
				return yaml.NewEncoder(out).Encode(masked)
			default:
				return displayConfigTable(out, masked)
			}
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set one of client_id, client_secret, staging, base_url, token_url or output",
		Args:  cobra.ExactArgs(2), //nolint:mnd
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			err = setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove one configuration value; 'token' forgets the stored access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadConfig()
			if err != nil {
				return err
			}

			if args[0] == "token" {
				config.Token = nil
			} else {
				err = setConfigValue(config, args[0], "")
				if err != nil {
					return err
				}
			}

			err = saveConfigStruct(config)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case "client_id":
		config.ClientID = value
	case "client_secret":
		config.ClientSecret = value
	case "staging":
		config.Staging = parseBoolValue(value)
	case "base_url":
		config.BaseURL = value
	case "token_url":
		config.TokenURL = value
	case "output":
		if value != "" && !isOutputFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrUnsupportedOutput, value)
		}

		config.Output = value
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

func parseBoolValue(value string) bool {
	parsed, err := strconv.ParseBool(value)

	return err == nil && parsed
}

// configFilePath returns the config file viper uses, or the default location.
func configFilePath() (string, error) {
	if file := viper.ConfigFileUsed(); file != "" {
		return file, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".sbapi", "config.yml"), nil
}

func loadConfig() (*Config, error) {
	path, err := configFilePath()
	if err != nil {
		return nil, err
	}

	// path is the user's own config file
	// #nosec G304
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &config, nil
}

func saveConfigStruct(config *Config) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func maskConfig(config *Config) *Config {
	masked := *config
	if masked.ClientSecret != "" {
		masked.ClientSecret = constants.MaskedSecret
	}

	if config.Token != nil {
		token := *config.Token
		token.AccessToken = constants.MaskedSecret

		if token.RefreshToken != "" {
			token.RefreshToken = constants.MaskedSecret
		}

		masked.Token = &token
	}

	return &masked
}

func displayConfigTable(out io.Writer, config *Config) error {
	table := tablewriter.NewWriter(out)
	table.Header("Property", "Value")

	_ = table.Append([]string{"Client ID", valueOrNA(config.ClientID)})
	_ = table.Append([]string{"Client Secret", valueOrNA(config.ClientSecret)})
	_ = table.Append([]string{"Staging", strconv.FormatBool(config.Staging)})
	_ = table.Append([]string{"Base URL", valueOrNA(config.BaseURL)})
	_ = table.Append([]string{"Token URL", valueOrNA(config.TokenURL)})
	_ = table.Append([]string{"Output", valueOrNA(config.Output)})

	if config.Token != nil {
		expires := constants.NotAvailable
		if config.Token.ExpiresAt != nil {
			expires = config.Token.ExpiresAt.Format(time.RFC3339)
		}

		_ = table.Append([]string{"Token", config.Token.AccessToken})
		_ = table.Append([]string{"Token API", config.Token.BaseURL})
		_ = table.Append([]string{"Token Expires", expires})
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

func valueOrNA(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
