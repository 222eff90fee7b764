package debank

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MaxBodyExcerpt is the number of characters of a non-JSON error body kept for diagnostics.
const MaxBodyExcerpt = 500

// Static errors that can be matched with errors.Is.
var (
	ErrMissingAPIKey = errors.New("missing API key. Set DEBANK_API_KEY or pass an API key explicitly")
	ErrMalformedBody = errors.New("response body is not valid JSON")
	ErrNoHostInURL   = errors.New("no host specified in base URL")
)

// DNSRemediationHint is appended to DNS pre-check failures.
const DNSRemediationHint = "Try VPN/proxy or change DNS (1.1.1.1 / 8.8.8.8)"

// ConfigurationError is returned when a client cannot be constructed.
type ConfigurationError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// NetworkError covers DNS pre-check failures and exhausted transport retries.
type NetworkError struct {
	// DNS is true when the pre-flight lookup failed and no attempt was made.
	DNS      bool
	Host     string
	BaseURL  string
	Path     string
	Attempts int
	Err      error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	if e.DNS {
		return fmt.Sprintf("DNS failed for host %q in base URL %q: %v. %s", e.Host, e.BaseURL, e.Err, DNSRemediationHint)
	}

	return fmt.Sprintf("GET %s failed after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned on HTTP 429. It is never retried.
type RateLimitError struct {
	Path string
	Body interface{}
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited by DeBank (HTTP 429) on %s: reduce request frequency or add backoff", e.Path)
}

// HTTPStatusError is returned for non-2xx responses other than 429, and for
// 2xx responses whose body is not valid JSON.
type HTTPStatusError struct {
	StatusCode int
	Path       string
	// Body is the decoded JSON body, or up to MaxBodyExcerpt characters of raw text.
	Body interface{}
	Err  error
}

// Error implements the error interface.
func (e *HTTPStatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("HTTP %d on %s: %v: %s", e.StatusCode, e.Path, e.Err, formatBody(e.Body))
	}

	return fmt.Sprintf("HTTP %d on %s: %s", e.StatusCode, e.Path, formatBody(e.Body))
}

func (e *HTTPStatusError) Unwrap() error {
	return e.Err
}

// BodyExcerpt decodes body as JSON when possible, otherwise returns at most
// MaxBodyExcerpt characters of it as a string.
func BodyExcerpt(body []byte) interface{} {
	var decoded interface{}

	err := json.Unmarshal(body, &decoded)
	if err == nil {
		return decoded
	}

	text := []rune(string(body))
	if len(text) > MaxBodyExcerpt {
		text = text[:MaxBodyExcerpt]
	}

	return string(text)
}

func formatBody(body interface{}) string {
	switch value := body.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprint(value)
		}

		return string(encoded)
	}
}

// IsConfiguration checks if the error is a configuration error.
func IsConfiguration(err error) bool {
	configErr := &ConfigurationError{}

	return errors.As(err, &configErr)
}

// IsNetwork checks if the error is a DNS or transport error.
func IsNetwork(err error) bool {
	netErr := &NetworkError{}

	return errors.As(err, &netErr)
}

// IsDNS checks if the error is a pre-flight DNS failure.
func IsDNS(err error) bool {
	netErr := &NetworkError{}
	if errors.As(err, &netErr) {
		return netErr.DNS
	}

	return false
}

// IsRateLimited checks if the error is an HTTP 429.
func IsRateLimited(err error) bool {
	rateErr := &RateLimitError{}

	return errors.As(err, &rateErr)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	statusErr := &HTTPStatusError{}
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}

	if IsRateLimited(err) {
		return 429
	}

	return 0
}
