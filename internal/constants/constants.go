package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration and board files.
	ConfigFilePerm = 0600
)

// Configuration locations.
const (
	// ConfigDirName is the directory under $HOME holding CLI state.
	ConfigDirName = ".shadownav"

	// ConfigFileName is the viper config file name (without extension).
	ConfigFileName = "config"

	// BoardFileName is the persisted board state file.
	BoardFileName = "board.yml"

	// EnvPrefix is the viper environment prefix for CLI settings.
	EnvPrefix = "SHADOWNAV"
)

// Environment variables consulted when a value is not given explicitly.
const (
	// EnvAPIKey holds the DeBank access key.
	EnvAPIKey = "DEBANK_API_KEY"

	// EnvHeaderName holds the authentication header name.
	EnvHeaderName = "DEBANK_HEADER_NAME"

	// EnvBaseURL holds the API origin.
	EnvBaseURL = "DEBANK_BASE_URL"

	// EnvBoardPath overrides the board file location.
	EnvBoardPath = "SHADOW_NAV_STORE"
)

// DeBank API defaults.
const (
	// DefaultBaseURL is the canonical DeBank Pro OpenAPI origin.
	DefaultBaseURL = "https://pro-openapi.debank.com"

	// DefaultHeaderName is the authentication header used by DeBank Cloud.
	DefaultHeaderName = "AccessKey"

	// DefaultUserAgent identifies this client.
	DefaultUserAgent = "shadow-nav/2.1"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout covers connect and read for a single attempt.
	DefaultHTTPTimeout = 20 * time.Second

	// DefaultPublishTimeout bounds a NATS flush when the caller sets no deadline.
	DefaultPublishTimeout = 5 * time.Second
)

// Retry and pooling limits.
const (
	// DefaultMaxAttempts is the default total number of transport attempts.
	DefaultMaxAttempts = 3

	// DefaultBackoffBase is the linear backoff unit between attempts.
	DefaultBackoffBase = 800 * time.Millisecond

	// DefaultMaxIdleConnsPerHost sizes the pooled transport.
	DefaultMaxIdleConnsPerHost = 50
)

// Concurrency limits.
const (
	// DefaultConcurrencyLimit bounds concurrent wallet fetches on the board.
	DefaultConcurrencyLimit = 8
)

// Pagination and display limits.
const (
	// DefaultHistoryPageCount is the default page size for history lists.
	DefaultHistoryPageCount = 50

	// RecentCommentsLimit is the number of comments shown per wallet.
	RecentCommentsLimit = 5

	// TokenDisplayLimit caps token rows shown for a wallet.
	TokenDisplayLimit = 25
)

// Board defaults.
const (
	// UnassignedClient labels wallets parsed without a client.
	UnassignedClient = "Unassigned"

	// WalletLabelPrefix is used for auto-generated wallet labels.
	WalletLabelPrefix = "Wallet"

	// CommentTimestampFormat is the UTC layout for comment timestamps.
	CommentTimestampFormat = "2006-01-02 15:04:05 UTC"

	// DefaultSnapshotSubject is the NATS subject for board snapshots.
	DefaultSnapshotSubject = "shadownav.snapshots"
)

// UI and display constants.
const (
	// CheckMarkSymbol is used to indicate current/active items.
	CheckMarkSymbol = "✓"

	// NotAvailable is used when information is not available.
	NotAvailable = "N/A"

	// MaskedSecret is used to hide sensitive information.
	MaskedSecret = "***"
)

// Format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"

	// FormatTable for table output format.
	FormatTable = "table"

	// JSONIndentSize is the number of spaces for JSON and YAML indentation.
	JSONIndentSize = 2
)
