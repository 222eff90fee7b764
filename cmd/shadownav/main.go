package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/shadow-nav/cmd/shadownav/commands"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "shadownav",
	Short: "DeBank portfolio CLI and NAV board",
	Long: `A command-line interface for the DeBank Pro OpenAPI.

Query wallet balances, tokens and DeFi positions, summarize wallets, and keep
a NAV board of client wallets that can be valued and published to NATS.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.shadownav/config.yml)")
	rootCmd.PersistentFlags().StringP("api-key", "k", "", "DeBank API key")
	rootCmd.PersistentFlags().String("header-name", "", "authentication header name (default AccessKey)")
	rootCmd.PersistentFlags().String("base-url", "", "API origin (default https://pro-openapi.debank.com)")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().Duration("timeout", constants.DefaultHTTPTimeout, "per-attempt HTTP timeout")
	rootCmd.PersistentFlags().Int("max-attempts", constants.DefaultMaxAttempts, "total attempts on transport failures")
	rootCmd.PersistentFlags().String("board-file", "", "board file (default is $HOME/.shadownav/board.yml)")

	// Bind flags to viper
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("header_name", rootCmd.PersistentFlags().Lookup("header-name"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("max_attempts", rootCmd.PersistentFlags().Lookup("max-attempts"))
	_ = viper.BindPFlag("board_file", rootCmd.PersistentFlags().Lookup("board-file"))

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewLoginCommand())
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewWalletCommand())
	rootCmd.AddCommand(commands.NewSummaryCommand())
	rootCmd.AddCommand(commands.NewBoardCommand())
	rootCmd.AddCommand(commands.NewPublishCommand())
}

func initConfig() {
	// A .env in the working directory may carry DEBANK_* variables
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, constants.ConfigDirName)
		if err := os.MkdirAll(configDir, constants.ConfigDirPerm); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating config directory: %v\n", err)
		}

		// Search config in ~/.shadownav/config.yml
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName(constants.ConfigFileName)
	}

	// SHADOWNAV_* for every setting, DEBANK_* for the client credentials
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.AutomaticEnv()
	_ = viper.BindEnv("api_key", "SHADOWNAV_API_KEY", constants.EnvAPIKey)
	_ = viper.BindEnv("header_name", "SHADOWNAV_HEADER_NAME", constants.EnvHeaderName)
	_ = viper.BindEnv("base_url", "SHADOWNAV_BASE_URL", constants.EnvBaseURL)
	_ = viper.BindEnv("board_file", "SHADOWNAV_BOARD_FILE", constants.EnvBoardPath)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
