package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/shadow-nav/internal/board"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/internal/logging"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
	"github.com/fivetwenty-io/shadow-nav/pkg/debankclient"
)

// Viper keys shared by the root flags, the config file and the commands.
const (
	keyAPIKey      = "api_key"
	keyHeaderName  = "header_name"
	keyBaseURL     = "base_url"
	keyOutput      = "output"
	keyVerbose     = "verbose"
	keyTimeout     = "timeout"
	keyMaxAttempts = "max_attempts"
	keyBoardFile   = "board_file"
	keyNATSURL     = "nats_url"
	keySubject     = "subject"
)

// identityFields are shown, in order, when a generic payload is rendered as a table.
var identityFields = []string{"id", "name", "symbol", "chain", "usd_value", "time_at"}

// outputFormat returns the validated --output value.
func outputFormat() (string, error) {
	output := strings.ToLower(viper.GetString(keyOutput))

	switch output {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return output, nil
	default:
		return "", fmt.Errorf("%w: %q", constants.ErrInvalidOutput, output)
	}
}

// StandardJSONRenderer writes data as indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes data as YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

// render writes data in the selected output format. table is called for the
// table format.
func render[T any](w io.Writer, data T, table func(*tablewriter.Table) error) error {
	output, err := outputFormat()
	if err != nil {
		return err
	}

	switch output {
	case constants.FormatJSON:
		return StandardJSONRenderer(w, data)
	case constants.FormatYAML:
		return StandardYAMLRenderer(w, data)
	default:
		t := tablewriter.NewWriter(w)

		err = table(t)
		if err != nil {
			return err
		}

		err = t.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

// renderPayload writes a raw API payload. Tables show top-level properties of
// an object, or identity columns of an array of objects.
func renderPayload(w io.Writer, payload debank.Payload) error {
	return render(w, payload, func(table *tablewriter.Table) error {
		var decoded interface{}

		err := payload.Decode(&decoded)
		if err != nil {
			return fmt.Errorf("decoding payload: %w", err)
		}

		switch value := decoded.(type) {
		case map[string]interface{}:
			table.Header("Property", "Value")

			keys := make([]string, 0, len(value))
			for key := range value {
				keys = append(keys, key)
			}

			sort.Strings(keys)

			for _, key := range keys {
				_ = table.Append(key, cell(value[key]))
			}
		case []interface{}:
			columns := payloadColumns(value)

			header := append([]string{"#"}, columns...)
			table.Header(toAny(header)...)

			for i, item := range value {
				fields, _ := item.(map[string]interface{})

				row := []string{strconv.Itoa(i)}
				for _, column := range columns {
					row = append(row, cell(fields[column]))
				}

				_ = table.Append(row)
			}
		default:
			table.Header("Value")
			_ = table.Append(cell(value))
		}

		return nil
	})
}

// payloadColumns picks the identity fields present in at least one item.
func payloadColumns(items []interface{}) []string {
	present := make(map[string]bool)

	for _, item := range items {
		fields, _ := item.(map[string]interface{})
		for _, field := range identityFields {
			if _, ok := fields[field]; ok {
				present[field] = true
			}
		}
	}

	columns := make([]string, 0, len(identityFields))
	for _, field := range identityFields {
		if present[field] {
			columns = append(columns, field)
		}
	}

	if len(columns) == 0 {
		columns = append(columns, "value")
	}

	return columns
}

func cell(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}

		return string(data)
	}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, value := range values {
		out[i] = value
	}

	return out
}

func formatUSD(value float64) string {
	return "$" + strconv.FormatFloat(value, 'f', 2, 64)
}

// clientConfig builds the client configuration from flags, config file and
// environment. Empty credentials are filled from DEBANK_* later.
func clientConfig(logger debank.Logger) *debank.Config {
	config := &debank.Config{
		APIKey:      viper.GetString(keyAPIKey),
		HeaderName:  viper.GetString(keyHeaderName),
		BaseURL:     viper.GetString(keyBaseURL),
		Timeout:     viper.GetDuration(keyTimeout),
		MaxAttempts: viper.GetInt(keyMaxAttempts),
	}

	if logger != nil {
		config.Logger = logger
		config.Debug = viper.GetBool(keyVerbose)
	}

	return config
}

// newLogger returns a zap-backed logger when --verbose is set, nil otherwise.
func newLogger() (*logging.ZapLogger, error) {
	if !viper.GetBool(keyVerbose) {
		return nil, nil
	}

	logger, err := logging.New(true)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return logger, nil
}

// withClient creates a DeBank client for the duration of fn.
func withClient(fn func(client debank.Client, logger debank.Logger) error) error {
	zapLogger, err := newLogger()
	if err != nil {
		return err
	}

	var logger debank.Logger
	if zapLogger != nil {
		logger = zapLogger

		defer func() { _ = zapLogger.Sync() }()
	}

	client, err := debankclient.NewFromEnv(clientConfig(logger))
	if err != nil {
		if debank.IsConfiguration(err) {
			return fmt.Errorf("%w: %w", constants.ErrAPIKeyRequired, err)
		}

		return err
	}

	return fn(client, logger)
}

// commandContext returns the command's context, or Background outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}

// openBoard opens the persisted board at --board-file, or the default path.
func openBoard() (*board.Store, error) {
	path := viper.GetString(keyBoardFile)
	if path == "" {
		var err error

		path, err = board.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("locating board file: %w", err)
		}
	}

	store, err := board.Open(board.NewYAMLPersister(path))
	if err != nil {
		return nil, fmt.Errorf("opening board: %w", err)
	}

	return store, nil
}

// parseIndex parses a board index argument.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil || index < 0 {
		return 0, fmt.Errorf("%w: %q", constants.ErrInvalidWalletIndex, arg)
	}

	return index, nil
}

// describeError adds a hint for the error kinds a user can act on.
func describeError(err error) error {
	var rateLimit *debank.RateLimitError

	switch {
	case errors.As(err, &rateLimit):
		return fmt.Errorf("%w (slow down and try again later)", err)
	case debank.IsDNS(err):
		return fmt.Errorf("%w (check the base URL and your network)", err)
	default:
		return err
	}
}
