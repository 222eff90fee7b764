package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
	"github.com/fivetwenty-io/shadow-nav/pkg/debankclient"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiKey     string
		headerName string
		verify     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a DeBank API key",
		Long:  "Prompt for a DeBank access key with hidden input and save it to the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" {
				var err error

				apiKey, err = readSecret(cmd.OutOrStdout(), cmd.InOrStdin(), "DeBank API key: ")
				if err != nil {
					return err
				}
			}

			if apiKey == "" {
				return constants.ErrAPIKeyRequired
			}

			if verify != "" {
				err := verifyAPIKey(cmd, apiKey, headerName, verify)
				if err != nil {
					return err
				}
			}

			path, err := configFilePath()
			if err != nil {
				return err
			}

			config, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			config.APIKey = apiKey
			if headerName != "" {
				config.HeaderName = headerName
			}

			err = saveConfigFile(path, config)
			if err != nil {
				return err
			}

			viper.Set(keyAPIKey, apiKey)

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API key saved to %s\n", path)

			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key (prompted when omitted)")
	cmd.Flags().StringVar(&headerName, "header", "", "authentication header name to save with the key")
	cmd.Flags().StringVar(&verify, "verify", "", "wallet address used to check the key before saving")

	return cmd
}

// readSecret reads a line without echo when in is a terminal.
func readSecret(out io.Writer, in io.Reader, prompt string) (string, error) {
	_, _ = fmt.Fprint(out, prompt)

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}

		_, _ = fmt.Fprintln(out)

		return strings.TrimSpace(string(secret)), nil
	}

	return readLine(in)
}

// readLine reads one trimmed line. EOF ends the line.
func readLine(in io.Reader) (string, error) {
	reader := bufio.NewReader(in)

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// verifyAPIKey makes one total balance call with the new key.
func verifyAPIKey(cmd *cobra.Command, apiKey, headerName, addr string) error {
	config := clientConfig(nil)
	config.APIKey = apiKey

	if headerName != "" {
		config.HeaderName = headerName
	}

	client, err := debankclient.NewFromEnv(config)
	if err != nil {
		return err
	}

	_, err = client.TotalBalance(commandContext(cmd), addr)
	if err != nil {
		if debank.StatusCode(err) == 401 || debank.StatusCode(err) == 403 {
			return fmt.Errorf("API key rejected: %w", err)
		}

		return fmt.Errorf("failed to verify API key: %w", describeError(err))
	}

	return nil
}
