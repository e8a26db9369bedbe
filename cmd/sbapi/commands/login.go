package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/smartbusiness/api2-go/internal/constants"
	"github.com/smartbusiness/api2-go/pkg/sbapi"
	"github.com/smartbusiness/api2-go/pkg/sbclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the smartbusiness API",
		Long: `Verify OAuth2 client credentials against the smartbusiness API and store them
in the config file. Missing credentials are prompted for. Use --staging or
--base-url to log in to another API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			if clientID == "" {
				clientID = viper.GetString("client_id")
			}

			if clientID == "" {
				_, _ = fmt.Fprint(out, "Client ID: ")
				clientID = readLine(reader)
			}

			if clientID == "" {
				return constants.ErrNoCredentials
			}

			if clientSecret == "" {
				secret, err := readSecret(out, cmd.InOrStdin(), reader)
				if err != nil {
					return err
				}

				clientSecret = secret
			}

			if clientSecret == "" {
				return constants.ErrEmptySecretProvided
			}

			config := &sbapi.Config{
				BaseURL:      viper.GetString("base_url"),
				Staging:      viper.GetBool("staging"),
				ClientID:     clientID,
				ClientSecret: clientSecret,
				TokenURL:     viper.GetString("token_url"),
			}

			baseURL, err := sbclient.ResolveBaseURL(config)
			if err != nil {
				return err
			}

			config.BaseURL = baseURL

			// A fresh token proves the credentials; it is persisted on success.
			_, err = newTokenManager(config, nil).GetToken(contextOf(cmd))
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			stored, err := loadConfig()
			if err != nil {
				return err
			}

			stored.ClientID = clientID
			stored.ClientSecret = clientSecret
			stored.Staging = config.Staging
			stored.BaseURL = viper.GetString("base_url")
			stored.TokenURL = config.TokenURL

			err = saveConfigStruct(stored)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(out, "Logged in to %s\n", baseURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth2 client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret")

	return cmd
}

func readLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// readSecret reads the client secret without echo when in is a terminal.
func readSecret(out io.Writer, in io.Reader, reader *bufio.Reader) (string, error) {
	_, _ = fmt.Fprint(out, "Client secret: ")

	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) { // #nosec G115
		return readLine(reader), nil
	}

	fd := int(file.Fd()) // #nosec G115

	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read client secret: %w", err)
	}

	return strings.TrimSpace(string(secret)), nil
}
