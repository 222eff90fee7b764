// Package http implements the DeBank request layer: API-key authentication,
// a pre-flight DNS check, linear retry on transport failures, and HTTP status
// classification.
package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/fivetwenty-io/shadow-nav/internal/constants"
	"github.com/fivetwenty-io/shadow-nav/pkg/debank"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Resolver resolves host names before a request is attempted.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Credentials carries the API-key header injected into every request.
type Credentials struct {
	HeaderName string
	APIKey     string
}

// Request describes a single API call.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client sends authenticated requests to a single base URL.
type Client struct {
	baseURL     string
	credentials *Credentials
	userAgent   string
	logger      Logger
	debug       bool

	maxAttempts int
	backoffBase time.Duration
	timeout     time.Duration
	maxIdle     int

	transport http.RoundTripper
	resolver  Resolver
	limiter   *rate.Limiter

	retryClient *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request and response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the total attempt count and the linear backoff unit.
func WithRetryConfig(maxAttempts int, backoffBase time.Duration) Option {
	return func(c *Client) {
		if maxAttempts >= 1 {
			c.maxAttempts = maxAttempts
		}

		if backoffBase >= 0 {
			c.backoffBase = backoffBase
		}
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithMaxIdleConnsPerHost sizes the pooled transport.
func WithMaxIdleConnsPerHost(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxIdle = n
		}
	}
}

// WithTransport replaces the pooled transport.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithResolver replaces the resolver used by the DNS pre-check.
func WithResolver(resolver Resolver) Option {
	return func(c *Client) {
		if resolver != nil {
			c.resolver = resolver
		}
	}
}

// WithRateLimit throttles attempts to requestsPerSecond. Zero disables throttling.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// NewClient creates a new HTTP client for baseURL. A nil credentials value
// sends no authentication header.
func NewClient(baseURL string, credentials *Credentials, opts ...Option) *Client {
	client := &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		userAgent:   constants.DefaultUserAgent,
		maxAttempts: constants.DefaultMaxAttempts,
		backoffBase: constants.DefaultBackoffBase,
		timeout:     constants.DefaultHTTPTimeout,
		maxIdle:     constants.DefaultMaxIdleConnsPerHost,
		resolver:    net.DefaultResolver,
	}

	for _, opt := range opts {
		opt(client)
	}

	client.retryClient = client.buildRetryClient()

	return client
}

func (c *Client) buildRetryClient() *retryablehttp.Client {
	transport := c.transport
	if transport == nil {
		pooled := cleanhttp.DefaultPooledTransport()
		pooled.MaxIdleConnsPerHost = c.maxIdle
		transport = pooled
	}

	if c.limiter != nil {
		transport = &throttledTransport{base: transport, limiter: c.limiter}
	}

	transport = &bufferedTransport{base: transport}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
	}
	retryClient.RetryMax = c.maxAttempts - 1
	retryClient.RetryWaitMin = c.backoffBase
	retryClient.RetryWaitMax = c.backoffBase * time.Duration(c.maxAttempts)
	retryClient.CheckRetry = checkRetry
	retryClient.Backoff = linearBackoff
	retryClient.ErrorHandler = exhaustedHandler
	retryClient.Logger = nil

	if c.logger != nil {
		logger := c.logger
		retryClient.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attemptNum int) {
			if attemptNum > 0 {
				logger.Warn("Retrying request", map[string]interface{}{
					"path":    req.URL.Path,
					"attempt": attemptNum + 1,
				})
			}
		}

		if c.debug {
			retryClient.Logger = &leveledLogger{logger: logger}
		}
	}

	return retryClient
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do executes req. Status errors are returned together with the response.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	err := c.checkDNS(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	c.setHeaders(httpReq.Header, req.Headers)

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": method,
			"url":    c.baseURL + req.Path,
			"query":  req.Query.Encode(),
		})
	}

	start := time.Now()

	httpResp, err := c.retryClient.Do(httpReq)
	if err != nil {
		return nil, c.networkError(req.Path, err)
	}

	defer func() {
		_ = httpResp.Body.Close()
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &debank.NetworkError{Path: req.Path, BaseURL: c.baseURL, Attempts: 1, Err: fmt.Errorf("reading response body: %w", err)}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":   resp.StatusCode,
			"path":     req.Path,
			"bytes":    len(body),
			"duration": time.Since(start).String(),
		})
	}

	return resp, classifyStatus(req.Path, resp)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

func (c *Client) setHeaders(header http.Header, extra map[string]string) {
	if c.credentials != nil && c.credentials.HeaderName != "" {
		header.Set(c.credentials.HeaderName, c.credentials.APIKey)
	}

	header.Set("Accept", "application/json")
	header.Set("User-Agent", c.userAgent)

	for key, value := range extra {
		header.Set(key, value)
	}
}

// checkDNS resolves the base URL host so misconfigured networks fail fast
// with a readable diagnosis instead of burning retry attempts.
func (c *Client) checkDNS(ctx context.Context, path string) error {
	err := ctx.Err()
	if err != nil {
		return &debank.NetworkError{Path: path, BaseURL: c.baseURL, Err: err}
	}

	host := ""

	parsed, err := url.Parse(c.baseURL)
	if err == nil {
		host = parsed.Hostname()
	}

	if host == "" {
		return &debank.NetworkError{DNS: true, BaseURL: c.baseURL, Err: debank.ErrNoHostInURL}
	}

	_, err = c.resolver.LookupHost(ctx, host)
	if err != nil {
		ctxErr := ctx.Err()
		if ctxErr != nil {
			return &debank.NetworkError{Path: path, BaseURL: c.baseURL, Err: ctxErr}
		}

		return &debank.NetworkError{DNS: true, Host: host, BaseURL: c.baseURL, Err: err}
	}

	return nil
}

func (c *Client) networkError(path string, err error) error {
	var exhausted *attemptsError
	if errors.As(err, &exhausted) {
		return &debank.NetworkError{Path: path, BaseURL: c.baseURL, Attempts: exhausted.attempts, Err: exhausted.err}
	}

	return &debank.NetworkError{Path: path, BaseURL: c.baseURL, Attempts: 1, Err: err}
}

func classifyStatus(path string, resp *Response) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &debank.RateLimitError{Path: path, Body: debank.BodyExcerpt(resp.Body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &debank.HTTPStatusError{StatusCode: resp.StatusCode, Path: path, Body: debank.BodyExcerpt(resp.Body)}
	default:
		return nil
	}
}

// checkRetry retries transport failures only. Any response, whatever its
// status, ends the retry loop.
func checkRetry(ctx context.Context, _ *http.Response, err error) (bool, error) {
	ctxErr := ctx.Err()
	if ctxErr != nil {
		return false, ctxErr
	}

	return err != nil, nil
}

// linearBackoff waits base*n before attempt n+1; attemptNum is zero-based.
func linearBackoff(base, limit time.Duration, attemptNum int, _ *http.Response) time.Duration {
	wait := base * time.Duration(attemptNum+1)
	if limit > 0 && wait > limit {
		return limit
	}

	return wait
}

type attemptsError struct {
	attempts int
	err      error
}

func (e *attemptsError) Error() string {
	return fmt.Sprintf("giving up after %d attempt(s): %v", e.attempts, e.err)
}

func (e *attemptsError) Unwrap() error {
	return e.err
}

func exhaustedHandler(resp *http.Response, err error, numTries int) (*http.Response, error) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return nil, &attemptsError{attempts: numTries, err: err}
}

type throttledTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *throttledTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	err := t.limiter.Wait(req.Context())
	if err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	return t.base.RoundTrip(req)
}

// bufferedTransport reads the whole body inside the round trip so a read
// failure or timeout counts as a transport error and is retried.
type bufferedTransport struct {
	base http.RoundTripper
}

func (t *bufferedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))

	return resp, nil
}

// leveledLogger adapts Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	logger Logger
}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, toFields(keysAndValues))
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, toFields(keysAndValues))
}

func toFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)

	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		fields[key] = keysAndValues[i+1]
	}

	return fields
}
