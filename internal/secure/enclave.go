package secure

import (
	"errors"
	"sync"

	"github.com/awnumar/memguard"
)

// ErrDestroyed is returned when reading a buffer after Destroy.
var ErrDestroyed = errors.New("secure buffer destroyed")

// SecureBuffer provides memory-safe storage for a credential.
// It is safe for concurrent use.
type SecureBuffer struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	destroyed bool
}

// NewSecureBuffer seals data into an encrypted enclave.
// memguard wipes the input slice once it has been copied.
func NewSecureBuffer(data []byte) *SecureBuffer {
	if len(data) == 0 {
		return &SecureBuffer{}
	}
	return &SecureBuffer{enclave: memguard.NewEnclave(data)}
}

// NewSecureString seals a string value.
func NewSecureString(value string) *SecureBuffer {
	return NewSecureBuffer([]byte(value))
}

// Open decrypts the value into a locked buffer.
// The caller must Destroy the returned buffer.
func (s *SecureBuffer) Open() (*memguard.LockedBuffer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.enclave == nil {
		return memguard.NewBuffer(0), nil
	}
	return s.enclave.Open()
}

// Reveal returns the value as a string. The returned copy lives on the
// regular heap; keep it only as long as the request that needs it.
func (s *SecureBuffer) Reveal() (string, error) {
	locked, err := s.Open()
	if err != nil {
		return "", err
	}
	defer locked.Destroy()
	return string(locked.Bytes()), nil
}

// Empty reports whether the buffer holds no value.
func (s *SecureBuffer) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.destroyed || s.enclave == nil || s.enclave.Size() == 0
}

// Destroy drops the enclave. It is idempotent.
func (s *SecureBuffer) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.enclave = nil
	s.destroyed = true
}

// Purge wipes all memguard state. Call it once at process exit.
func Purge() {
	memguard.Purge()
}
