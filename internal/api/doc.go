// Package api provides the HTTP REST API for GridSense Core.
//
// It exposes account registration, token login, and the owner-scoped device
// and usage endpoints. All data routes require a bearer token; the
// authenticated user resolved from it scopes every query, so a client can
// never reach another user's devices or readings.
//
// The server follows the same lifecycle pattern as other infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
