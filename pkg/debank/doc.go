// Package debank provides types, interfaces, and helpers for working with the
// DeBank Pro OpenAPI wallet-analytics endpoints.
//
// # Overview
//
// The debank package defines the client interfaces (Client and its resource
// groups), the configuration struct, the error taxonomy, and the payload
// helpers shared by every endpoint. A concrete implementation is provided by
// the debankclient package, which wires configuration, transport, the
// pre-flight DNS check, and retry policy. Most consumers should import
// debankclient to construct a client and then use the interfaces here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/shadow-nav/pkg/debank"
//	  "github.com/fivetwenty-io/shadow-nav/pkg/debankclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := debankclient.NewFromEnv(&debank.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  summary, err := cli.SummarizeWallet(ctx, "0xabc")
//	  if err != nil { log.Fatal(err) }
//	  _ = summary
//	}
//
// # Payloads
//
// The remote API wraps some payloads as {"data": ...} and returns others as a
// bare JSON value. Every method returns the unwrapped Payload; use Decode,
// Object, or Array to work with it.
//
// # Errors
//
// Failures are surfaced as one of ConfigurationError, NetworkError (DNS and
// transport), RateLimitError, or HTTPStatusError. Helpers such as
// IsRateLimited, IsNetwork, IsDNS, and IsConfiguration make it easy to branch
// on them.
package debank
