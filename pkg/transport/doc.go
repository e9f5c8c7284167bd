// Package transport executes HTTP exchanges against a Vault-compatible
// server and turns the responses into typed results or structured errors.
//
// One Engine is bound to one base address and owns one *http.Client.
// Execute is generic over the result type:
//
//	secret, err := transport.Execute(ctx, engine, transport.Request[Secret]{
//	    Path:    "v1/secret/app",
//	    Method:  http.MethodGet,
//	    Headers: map[string]string{"X-Vault-Token": token},
//	})
//
// Header overrides are written to the engine's shared header set unless
// Config.PerCallHeaders is set, so a token attached on one call is still
// attached on the next.
package transport
