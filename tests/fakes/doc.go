// Package fakes provides test doubles for the servers vaultkit talks to.
//
// FakeVault is an in-memory Vault server built on httptest. It records
// every request and answers the sys, secret, policy, token, mount and
// login routes vaultkit uses, so client and command tests run without a
// real server.
//
// Usage:
//
//	fv := fakes.NewFakeVault(t)
//	fv.SetSecret("secret/app", map[string]any{"password": "secret123"})
//	client, _ := vault.NewClient(fv.URL, &auth.TokenInfo{Token: fakes.RootToken})
//	// Exercise the client, then inspect fv.Requests()...
package fakes
