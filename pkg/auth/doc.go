// Package auth turns a declarative authentication descriptor into a live
// Authenticator.
//
// Descriptors are the *Info types. Select dispatches over them with a closed
// type switch: adding a backend means adding an Info type and a case.
//
//	a, err := auth.Select(&auth.UsernamePasswordInfo{
//	    Username: "alice",
//	    Password: os.Getenv("VAULT_PASSWORD"),
//	}, "https://vault.example.com:8200", auth.Options{Timeout: 30 * time.Second})
//	token, err := a.Token(ctx)
package auth
