package auth

import (
	"sync"
	"time"

	"github.com/systmms/vaultkit/internal/secure"
)

// expiryBuffer is subtracted from a lease so tokens are renewed before the
// server expires them.
const expiryBuffer = 5 * time.Second

// TokenCache holds one client token in encrypted memory.
// A token stored with a zero TTL never expires.
type TokenCache struct {
	mu        sync.RWMutex
	token     *secure.SecureBuffer
	expiresAt time.Time
	now       func() time.Time
}

// NewTokenCache creates an empty cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{now: time.Now}
}

// Get returns the cached token if one is set and still valid.
func (c *TokenCache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil || c.token.Empty() || c.expiredLocked() {
		return "", false
	}

	token, err := c.token.Reveal()
	if err != nil {
		return "", false
	}
	return token, true
}

// Set stores token for ttl, less a small renewal buffer.
func (c *TokenCache) Set(token string, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil {
		c.token.Destroy()
	}
	c.token = secure.NewSecureString(token)

	if ttl <= 0 {
		c.expiresAt = time.Time{}
		return
	}
	if ttl > expiryBuffer {
		ttl -= expiryBuffer
	}
	c.expiresAt = c.now().Add(ttl)
}

// Clear destroys the cached token.
func (c *TokenCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != nil {
		c.token.Destroy()
	}
	c.token = nil
	c.expiresAt = time.Time{}
}

// IsExpired returns true if the token is expired or not set
func (c *TokenCache) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.token == nil || c.token.Empty() || c.expiredLocked()
}

// ExpiresAt returns the expiry time, or the zero time when the token does
// not expire or none is cached.
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}

// TTL returns the remaining lifetime. It is 0 when nothing is cached, when
// the token has expired, and when it never expires.
func (c *TokenCache) TTL() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == nil || c.expiresAt.IsZero() {
		return 0
	}

	remaining := c.expiresAt.Sub(c.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *TokenCache) expiredLocked() bool {
	return !c.expiresAt.IsZero() && c.now().After(c.expiresAt)
}
