package debankclient

import (
	"fmt"
	"os"

	"github.com/fivetwenty-io/shadow-nav/internal/client"
	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// LookupFunc reports the value of a named configuration source.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// New creates a new DeBank API client from fully resolved configuration.
func New(config *debank.Config) (debank.Client, error) {
	if config == nil {
		return nil, &debank.ConfigurationError{Field: "api_key", Err: debank.ErrMissingAPIKey}
	}

	c, err := client.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating DeBank client: %w", err)
	}

	return c, nil
}

// NewFromEnv fills empty credentials from the process environment, then calls New.
func NewFromEnv(config *debank.Config) (debank.Client, error) {
	return New(ResolveConfig(config, os.LookupEnv))
}

// ResolveConfig returns a copy of config whose empty APIKey, HeaderName and
// BaseURL are taken from lookup. A nil config resolves from lookup alone.
func ResolveConfig(config *debank.Config, lookup LookupFunc) *debank.Config {
	resolved := debank.Config{}
	if config != nil {
		resolved = *config
	}

	if lookup == nil {
		return &resolved
	}

	fill := func(field *string, key string) {
		if *field != "" {
			return
		}

		if value, ok := lookup(key); ok {
			*field = value
		}
	}

	fill(&resolved.APIKey, constants.EnvAPIKey)
	fill(&resolved.HeaderName, constants.EnvHeaderName)
	fill(&resolved.BaseURL, constants.EnvBaseURL)

	return &resolved
}

// NewWithAPIKey creates a new client for the default endpoint with an API key.
func NewWithAPIKey(apiKey string) (debank.Client, error) {
	return New(&debank.Config{
		APIKey: apiKey,
	})
}

// NewWithEndpoint creates a new client for a custom base URL and API key.
func NewWithEndpoint(baseURL, apiKey string) (debank.Client, error) {
	return New(&debank.Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
	})
}
