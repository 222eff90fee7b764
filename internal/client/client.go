package client

import (
	"context"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/internal/http"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// Client implements the debank.Client interface.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     debank.Logger

	// Resource clients
	*WalletClient
	*TokensClient
	*ProtocolsClient
	*CurvesClient
	*HistoryClient
	*ApprovalsClient
}

var _ debank.Client = (*Client)(nil)

// New creates a new DeBank API client from fully resolved configuration.
// An empty API key fails with *debank.ConfigurationError before any network
// activity.
func New(config *debank.Config) (*Client, error) {
	if config == nil || config.APIKey == "" {
		return nil, &debank.ConfigurationError{Field: "api_key", Err: debank.ErrMissingAPIKey}
	}

	resolved := withDefaults(*config)

	credentials := &http.Credentials{
		HeaderName: resolved.HeaderName,
		APIKey:     resolved.APIKey,
	}

	httpClient := http.NewClient(resolved.BaseURL, credentials, createHTTPClientOptions(&resolved)...)

	return NewWithHTTPClient(httpClient, resolved.Logger), nil
}

// NewWithHTTPClient wires the endpoint catalog on top of an existing transport.
func NewWithHTTPClient(httpClient *http.Client, logger debank.Logger) *Client {
	client := &Client{
		httpClient: httpClient,
		baseURL:    httpClient.BaseURL(),
		logger:     logger,
	}

	client.initializeResourceClients()

	return client
}

// withDefaults fills zero-valued fields. MaxAttempts below one falls back to
// the default.
func withDefaults(config debank.Config) debank.Config {
	if config.BaseURL == "" {
		config.BaseURL = constants.DefaultBaseURL
	}

	if config.HeaderName == "" {
		config.HeaderName = constants.DefaultHeaderName
	}

	if config.Timeout <= 0 {
		config.Timeout = constants.DefaultHTTPTimeout
	}

	if config.MaxAttempts < 1 {
		config.MaxAttempts = constants.DefaultMaxAttempts
	}

	if config.BackoffBase <= 0 {
		config.BackoffBase = constants.DefaultBackoffBase
	}

	if config.MaxIdleConnsPerHost <= 0 {
		config.MaxIdleConnsPerHost = constants.DefaultMaxIdleConnsPerHost
	}

	return config
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *debank.Config) []http.Option {
	httpOpts := []http.Option{
		http.WithRetryConfig(config.MaxAttempts, config.BackoffBase),
		http.WithTimeout(config.Timeout),
		http.WithMaxIdleConnsPerHost(config.MaxIdleConnsPerHost),
	}

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Transport != nil {
		httpOpts = append(httpOpts, http.WithTransport(config.Transport))
	}

	if config.Resolver != nil {
		httpOpts = append(httpOpts, http.WithResolver(config.Resolver))
	}

	if config.RequestsPerSecond > 0 {
		httpOpts = append(httpOpts, http.WithRateLimit(config.RequestsPerSecond))
	}

	return httpOpts
}

func (c *Client) initializeResourceClients() {
	c.WalletClient = NewWalletClient(c)
	c.TokensClient = NewTokensClient(c)
	c.ProtocolsClient = NewProtocolsClient(c)
	c.CurvesClient = NewCurvesClient(c)
	c.HistoryClient = NewHistoryClient(c)
	c.ApprovalsClient = NewApprovalsClient(c)
}

// BaseURL returns the normalized API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get implements debank.Getter.Get. A 2xx body that is not valid JSON fails
// with *debank.HTTPStatusError wrapping debank.ErrMalformedBody.
func (c *Client) Get(ctx context.Context, path string, params debank.Params) (debank.Payload, error) {
	resp, err := c.httpClient.Get(ctx, path, params.Values())
	if err != nil {
		return nil, err
	}

	payload, err := debank.NormalizeEnvelope(resp.Body)
	if err != nil {
		return nil, &debank.HTTPStatusError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Body:       debank.BodyExcerpt(resp.Body),
			Err:        err,
		}
	}

	return payload, nil
}

// loggerAdapter adapts debank.Logger to http.Logger.
type loggerAdapter struct {
	logger debank.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}
