// Package debankclient provides the primary entry point for constructing a
// DeBank portfolio API client that implements the debank.Client interface.
//
// It layers configuration defaults, the pooled HTTP transport, API-key
// authentication and retry policy on top of the interfaces and types defined
// in the debank package.
//
// Quick start
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
//
//	  // Fully resolved configuration.
//	  cli, err := debankclient.New(&debank.Config{APIKey: "your-access-key"})
//	  if err != nil { log.Fatal(err) }
//
//	  // Or let DEBANK_API_KEY, DEBANK_HEADER_NAME and DEBANK_BASE_URL fill
//	  // whatever is left empty.
//	  cli, err = debankclient.NewFromEnv(&debank.Config{})
//	  if err != nil { log.Fatal(err) }
//
//	  summary, err := cli.SummarizeWallet(ctx, "0x5853ed4f26a3fcea565b3fbc698bb19cdf6deb85")
//	  if err != nil { log.Fatal(err) }
//	  _ = summary
//	}
//
// # Resolution order
//
// Explicit Config fields always win. NewFromEnv only consults the environment
// for fields that are empty. When no API key can be found, construction fails
// with *debank.ConfigurationError and no request is made.
package debankclient
