package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCache(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	cache := NewTokenCache()
	cache.now = func() time.Time { return now }

	_, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.IsExpired())
	assert.Zero(t, cache.TTL())

	cache.Set("s.token", time.Minute)
	token, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "s.token", token)
	assert.False(t, cache.IsExpired())
	assert.Equal(t, now.Add(55*time.Second), cache.ExpiresAt())
	assert.Equal(t, 55*time.Second, cache.TTL())

	now = now.Add(56 * time.Second)
	_, ok = cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.IsExpired())
	assert.Zero(t, cache.TTL())
}

func TestTokenCache_ShortLeaseKeepsFullTTL(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := NewTokenCache()
	cache.now = func() time.Time { return now }

	cache.Set("short", 3*time.Second)
	assert.Equal(t, now.Add(3*time.Second), cache.ExpiresAt())
}

func TestTokenCache_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cache := NewTokenCache()
	cache.now = func() time.Time { return now }

	cache.Set("forever", 0)
	now = now.Add(10 * 365 * 24 * time.Hour)

	token, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "forever", token)
	assert.True(t, cache.ExpiresAt().IsZero())
	assert.Zero(t, cache.TTL())
}

func TestTokenCache_SetReplacesAndClearDestroys(t *testing.T) {
	t.Parallel()

	cache := NewTokenCache()
	cache.Set("first", time.Hour)
	cache.Set("second", time.Hour)

	token, ok := cache.Get()
	assert.True(t, ok)
	assert.Equal(t, "second", token)

	cache.Clear()
	_, ok = cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.ExpiresAt().IsZero())
}

func TestTokenCache_EmptyTokenIsNotCached(t *testing.T) {
	t.Parallel()

	cache := NewTokenCache()
	cache.Set("", time.Hour)

	_, ok := cache.Get()
	assert.False(t, ok)
	assert.True(t, cache.IsExpired())
}
