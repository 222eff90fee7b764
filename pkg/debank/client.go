package debank

import (
	"context"
	"net/http"
	"time"
)

// Getter performs a raw GET against an API route and returns the normalized payload.
type Getter interface {
	Get(ctx context.Context, path string, params Params) (Payload, error)
}

// WalletClient provides access to wallet balance endpoints.
type WalletClient interface {
	TotalBalance(ctx context.Context, addr string) (Payload, error)
	ChainBalance(ctx context.Context, addr, chainID string) (Payload, error)
	UsedChains(ctx context.Context, addr string) (Payload, error)
}

// TokensClient provides access to token holdings endpoints.
type TokensClient interface {
	TokenList(ctx context.Context, addr, chainID string, isAll bool) (Payload, error)
	AllTokenList(ctx context.Context, addr string, isAll bool) (Payload, error)
	Token(ctx context.Context, addr, chainID, tokenID string) (Payload, error)
	TokenInfo(ctx context.Context, chainID, tokenAddr string) (Payload, error)
}

// ProtocolsClient provides access to DeFi position endpoints.
type ProtocolsClient interface {
	// ComplexProtocolList lists positions on one chain, or across all chains
	// when chainID is empty.
	ComplexProtocolList(ctx context.Context, addr, chainID string) (Payload, error)
	Protocol(ctx context.Context, addr, protocolID string) (Payload, error)
}

// CurvesClient provides access to net-worth time series.
type CurvesClient interface {
	TotalNetCurve(ctx context.Context, addr string) (Payload, error)
	ChainNetCurve(ctx context.Context, addr, chainID string) (Payload, error)
}

// HistoryClient provides access to paginated transaction history.
type HistoryClient interface {
	AllHistoryList(ctx context.Context, addr string, opts *HistoryOptions) (Payload, error)
	HistoryList(ctx context.Context, addr, chainID string, opts *HistoryOptions) (Payload, error)
}

// ApprovalsClient provides access to token and NFT allowance lists.
type ApprovalsClient interface {
	TokenApprovals(ctx context.Context, addr, chainID string) (Payload, error)
	NFTApprovals(ctx context.Context, addr, chainID string) (Payload, error)
}

// Client is the full DeBank API surface.
type Client interface {
	Getter
	WalletClient
	TokensClient
	ProtocolsClient
	CurvesClient
	HistoryClient
	ApprovalsClient

	// SummarizeWallet composes total balance, used chains, and aggregated
	// positions for one address. Any failing sub-call fails the summary.
	SummarizeWallet(ctx context.Context, addr string) (*WalletSummary, error)
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Resolver resolves host names. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Config represents client configuration for building a debank.Client.
//
// # Resolution
//
// debankclient.New expects fully resolved values and fails with a
// ConfigurationError when APIKey is empty. debankclient.NewFromEnv fills empty
// APIKey, HeaderName, and BaseURL fields from DEBANK_API_KEY,
// DEBANK_HEADER_NAME, and DEBANK_BASE_URL before calling New; explicit values
// always win.
//
// # Timeouts and retries
//
// Timeout bounds a single attempt (connect and read). Transport failures are
// retried up to MaxAttempts total attempts, sleeping BackoffBase*n before
// attempt n+1. HTTP 429 and other status errors are never retried.
type Config struct {
	// BaseURL: API origin plus optional path prefix. One trailing slash is
	// trimmed. Defaults to https://pro-openapi.debank.com.
	BaseURL string
	// HeaderName: authentication header. Defaults to "AccessKey".
	HeaderName string
	// APIKey: required secret sent in HeaderName.
	APIKey string

	// Timeout: per-attempt HTTP timeout. Defaults to 20s.
	Timeout time.Duration
	// MaxAttempts: total attempts for transport failures (>= 1). Defaults to 3.
	MaxAttempts int
	// BackoffBase: linear backoff unit. Defaults to 800ms.
	BackoffBase time.Duration

	// UserAgent: overrides the default User-Agent header.
	UserAgent string
	// Debug: enables request/response logging when a Logger is provided.
	Debug bool
	// Logger: optional structured logger. Nil keeps the client silent.
	Logger Logger
	// RequestsPerSecond: optional client-side throttle, 0 disables it.
	RequestsPerSecond float64
	// MaxIdleConnsPerHost: pooled transport size. Defaults to 50.
	MaxIdleConnsPerHost int

	// Transport: overrides the pooled transport (tests, proxies).
	Transport http.RoundTripper
	// Resolver: overrides the resolver used by the pre-flight DNS check.
	Resolver Resolver
}

// HistoryOptions controls transaction history pagination.
type HistoryOptions struct {
	// StartTime is a unix-seconds cursor; zero omits it.
	StartTime int64
	// PageCount defaults to 50.
	PageCount int
}

// WalletSummary is the composed result of SummarizeWallet.
type WalletSummary struct {
	Address   string  `json:"address"   yaml:"address"`
	TotalUSD  float64 `json:"total_usd" yaml:"total_usd"`
	NetUSD    float64 `json:"net_usd"   yaml:"net_usd"`
	Chains    Payload `json:"chains"    yaml:"chains"`
	Positions Payload `json:"positions" yaml:"positions"`
}
