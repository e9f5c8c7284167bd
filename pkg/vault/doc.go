// Package vault is a typed client for the Vault HTTP API built on
// pkg/transport and pkg/auth.
//
// Each method validates its arguments, obtains a token from the configured
// authenticator and performs a single exchange:
//
//	client, err := vault.NewClient("https://vault.example.com:8200",
//	    &auth.UsernamePasswordInfo{Username: "alice", Password: pw},
//	    vault.WithNamespace("team-a"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	secret, err := client.ReadSecret(ctx, "secret/app")
//
// Errors from the server are *transport.StatusError values wrapped with the
// operation that failed; use transport.IsStatus or transport.IsNotFound to
// classify them.
package vault
