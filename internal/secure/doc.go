// Package secure keeps credentials such as Vault client tokens out of
// plain process memory.
//
// A SecureBuffer wraps a memguard enclave: the value is encrypted at rest,
// and only decrypted into a locked buffer for the moment it is needed.
//
//	buf := secure.NewSecureString(token)
//	defer buf.Destroy()
//
//	token, err := buf.Reveal()
//
// Call memguard.Purge (or secure.Purge) at process exit to wipe every
// enclave key.
package secure
