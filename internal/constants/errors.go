package constants

import "errors"

// Configuration errors.
var (
	ErrAPIKeyRequired   = errors.New("API key is required, use 'shadownav login' or set DEBANK_API_KEY")
	ErrUnknownConfigKey = errors.New("unknown configuration key")
	ErrInvalidOutput    = errors.New("invalid output format, expected table, json, or yaml")
)

// Board errors.
var (
	ErrNoWallets           = errors.New("no wallets on the board, use 'shadownav board load' to add some")
	ErrWalletIndexRange    = errors.New("wallet index out of range")
	ErrEmptyComment        = errors.New("comment text is empty")
	ErrNoActiveWallet      = errors.New("no wallet selected")
	ErrInvalidWalletIndex  = errors.New("invalid wallet index")
	ErrNoNATSURLConfigured = errors.New("no NATS URL configured")
)
