package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

// Config represents the CLI configuration file.
type Config struct {
	APIKey      string `json:"api_key,omitempty"      yaml:"api_key,omitempty"`
	HeaderName  string `json:"header_name,omitempty"  yaml:"header_name,omitempty"`
	BaseURL     string `json:"base_url,omitempty"     yaml:"base_url,omitempty"`
	Output      string `json:"output,omitempty"       yaml:"output,omitempty"`
	Timeout     string `json:"timeout,omitempty"      yaml:"timeout,omitempty"`
	MaxAttempts int    `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	BoardFile   string `json:"board_file,omitempty"   yaml:"board_file,omitempty"`
	NATSURL     string `json:"nats_url,omitempty"     yaml:"nats_url,omitempty"`
	Subject     string `json:"subject,omitempty"      yaml:"subject,omitempty"`
}

// configSetters assign a string value to one configuration key.
var configSetters = map[string]func(*Config, string) error{
	keyAPIKey:     func(c *Config, v string) error { c.APIKey = v; return nil },
	keyHeaderName: func(c *Config, v string) error { c.HeaderName = v; return nil },
	keyBaseURL:    func(c *Config, v string) error { c.BaseURL = v; return nil },
	keyOutput: func(c *Config, v string) error {
		switch v {
		case "", constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
			c.Output = v

			return nil
		default:
			return fmt.Errorf("%w: %q", constants.ErrInvalidOutput, v)
		}
	},
	keyTimeout: func(c *Config, v string) error {
		if v != "" {
			_, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid timeout %q: %w", v, err)
			}
		}

		c.Timeout = v

		return nil
	},
	keyMaxAttempts: func(c *Config, v string) error {
		if v == "" {
			c.MaxAttempts = 0

			return nil
		}

		attempts, err := strconv.Atoi(v)
		if err != nil || attempts < 1 {
			return fmt.Errorf("invalid max_attempts %q: must be a positive integer", v)
		}

		c.MaxAttempts = attempts

		return nil
	},
	keyBoardFile: func(c *Config, v string) error { c.BoardFile = v; return nil },
	keyNATSURL:   func(c *Config, v string) error { c.NATSURL = v; return nil },
	keySubject:   func(c *Config, v string) error { c.Subject = v; return nil },
}

// configKeys returns the settable keys, sorted.
func configKeys() []string {
	keys := make([]string, 0, len(configSetters))
	for key := range configSetters {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the shadownav configuration file",
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
		Long:  "Display the configuration file contents with the API key masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configFilePath()
			if err != nil {
				return err
			}

			config, err := loadConfigFile(path)
			if err != nil {
				return err
			}

			if config.APIKey != "" {
				config.APIKey = constants.MaskedSecret
			}

			return render(cmd.OutOrStdout(), config, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")
				_ = table.Append([]string{"Config File", path})
				_ = table.Append([]string{"API Key", orNotAvailable(config.APIKey)})
				_ = table.Append([]string{"Header Name", orNotAvailable(config.HeaderName)})
				_ = table.Append([]string{"Base URL", orNotAvailable(config.BaseURL)})
				_ = table.Append([]string{"Output", orNotAvailable(config.Output)})
				_ = table.Append([]string{"Timeout", orNotAvailable(config.Timeout)})

				attempts := constants.NotAvailable
				if config.MaxAttempts > 0 {
					attempts = strconv.Itoa(config.MaxAttempts)
				}

				_ = table.Append([]string{"Max Attempts", attempts})
				_ = table.Append([]string{"Board File", orNotAvailable(config.BoardFile)})
				_ = table.Append([]string{"NATS URL", orNotAvailable(config.NATSURL)})
				_ = table.Append([]string{"Subject", orNotAvailable(config.Subject)})

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  fmt.Sprintf("Set a configuration value. Valid keys: %v", configKeys()),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(args[0], args[1])
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a value from the configuration file so the default applies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateConfig(args[0], "")
		},
	}
}

func updateConfig(key, value string) error {
	setter, ok := configSetters[key]
	if !ok {
		return fmt.Errorf("%w: %s (valid keys: %v)", constants.ErrUnknownConfigKey, key, configKeys())
	}

	path, err := configFilePath()
	if err != nil {
		return err
	}

	config, err := loadConfigFile(path)
	if err != nil {
		return err
	}

	err = setter(config, value)
	if err != nil {
		return err
	}

	return saveConfigFile(path, config)
}

// configFilePath returns the file viper uses, or ~/.shadownav/config.yml.
func configFilePath() (string, error) {
	if configFile := viper.ConfigFileUsed(); configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName, constants.ConfigFileName+".yml"), nil
}

// loadConfigFile reads the configuration file. A missing file is an empty configuration.
func loadConfigFile(path string) (*Config, error) {
	config := &Config{}

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	err = yaml.Unmarshal(data, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return config, nil
}

func saveConfigFile(path string, config *Config) error {
	err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
