// Package sbclient is the entry point for building a smartbusiness API v2
// client that implements the sbapi.Client interface.
//
// It resolves the API root (production, staging or an explicit BaseURL),
// checks credentials, and wires OAuth2 authentication, the HTTP transport and
// the optional cache, metrics, tracing and circuit breaker on top of the
// resource interfaces defined in the sbapi package.
//
// Quick start
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
//
//	  cli, err := sbclient.New(ctx, &sbapi.Config{
//	    ClientID:     "client-id",
//	    ClientSecret: "client-secret",
//	    Staging:      true,
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  units, err := cli.Units().List(ctx, sbapi.NewListParameters().WithPerPage(10))
//	  if err != nil { log.Fatal(err) }
//	  _ = units
//	}
//
// # Environment
//
// NewFromEnv reads CLIENT_ID and CLIENT_SECRET (required), STAGING (its
// presence selects the staging API), BASE_URL and TOKEN_URL. A .env file in
// the working directory is loaded first without overriding variables that are
// already set.
//
// # Errors
//
// New fails with sbapi.ErrMissingCredentials when either credential is
// empty and with sbapi.ErrInvalidBaseURL when BaseURL is not an absolute
// http(s) URL. Neither case issues a request.
package sbclient
