// Package sbapi provides types, interfaces, and helpers for working with the
// smartbusiness API v2.
//
// # Overview
//
// The sbapi package defines the resource client interfaces (Lister, Getter,
// Creator, Updater, Deleter and their composites), the query parameter types,
// the Response wrapper and the error taxonomy. A concrete implementation is
// provided by the sbclient package, which wires configuration, transport and
// OAuth2 authentication. Most consumers import sbclient to construct a client
// and then use the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/smartbusiness/api2-go/pkg/sbapi"
//	  "github.com/smartbusiness/api2-go/pkg/sbclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := sbclient.New(ctx, &sbapi.Config{ClientID: "id", ClientSecret: "secret"})
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := cli.BankAccounts().List(ctx, sbapi.NewListParameters().WithPerPage(50))
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// # Contact sub-resources
//
// Addresses and people live under a contact. Either pass the contact id to the
// *ForContact methods or bind it once:
//
//	addresses := cli.Addresses()
//	addresses.SetContactID(10)
//	resp, err := addresses.Create(ctx, sbapi.Payload{"city": "Bratislava"})
//
// Calling a context-relative method before SetContactID returns
// ErrContextNotSet without sending a request.
//
// # Errors
//
// A 404 response is an *APIError for which errors.Is(err, ErrNotFound) holds.
// Other non-success responses are *APIError values as well; IsUnauthorized and
// IsForbidden cover the common cases. Local misuse wraps ErrInvalidUse and
// configuration problems return ErrMissingCredentials or ErrInvalidBaseURL.
//
// # Interceptors, caching and metrics
//
// The package includes request/response interceptors (logging, headers,
// circuit breaking, Prometheus metrics) and a pluggable Cache abstraction with
// memory, NATS JetStream KV and Redis backends. GET responses may be cached;
// any successful write clears the cache.
//
// # Batches
//
// BatchExecutor runs many calls concurrently and returns one BatchResult per
// operation, in input order:
//
//	ops := sbapi.NewBatchBuilder().
//	  AddCreate("vip", cli.ContactGroups(), sbapi.Payload{"name": "VIP"}).
//	  AddDelete("old", cli.BankAccounts(), 3, 4).
//	  Build()
//	results, err := sbapi.NewBatchExecutor(4).Execute(ctx, ops)
//
// BatchTransaction deletes the items it created when any operation fails.
package sbapi
