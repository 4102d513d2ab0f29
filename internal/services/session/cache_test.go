package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
)

// cookiePage fakes just the cookie surface of the Page capability.
// The embedded interface satisfies the rest of the method set.
type cookiePage struct {
	interfaces.Page
	cookies   []models.Cookie
	applied   []models.Cookie
	setErr    error
	cookieErr error
}

func (p *cookiePage) Cookies(ctx context.Context) ([]models.Cookie, error) {
	return p.cookies, p.cookieErr
}

func (p *cookiePage) SetCookies(ctx context.Context, cookies []models.Cookie) error {
	if p.setErr != nil {
		return p.setErr
	}
	p.applied = append(p.applied, cookies...)
	return nil
}

func testCookies() []models.Cookie {
	return []models.Cookie{
		{Name: "portal_session", Value: "abc123", Domain: "portal.example.com", Path: "/"},
		{Name: "remember_me", Value: "1", Domain: "portal.example.com", Path: "/"},
	}
}

func TestCacheRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	cache := newCacheWithClock(arbor.NewLogger(), common.CookieTTL, func() time.Time { return now })

	assert.False(t, cache.IsFresh(), "empty cache must not be fresh")

	cache.Save(context.Background(), &cookiePage{cookies: testCookies()})
	assert.True(t, cache.IsFresh(), "cache must be fresh immediately after save")

	// Just inside the TTL.
	now = now.Add(common.CookieTTL - time.Minute)
	assert.True(t, cache.IsFresh())

	// Past the TTL.
	now = now.Add(2 * time.Minute)
	assert.False(t, cache.IsFresh(), "cache must expire after the TTL")
	assert.True(t, cache.HasCookies(), "stale cookies remain until cleared")
}

func TestCacheApplyInstallsCookies(t *testing.T) {
	now := time.Now()
	cache := newCacheWithClock(arbor.NewLogger(), common.CookieTTL, func() time.Time { return now })
	cache.Save(context.Background(), &cookiePage{cookies: testCookies()})

	target := &cookiePage{}
	cache.Apply(context.Background(), target)

	assert.Len(t, target.applied, 2)
	assert.Equal(t, "portal_session", target.applied[0].Name)
}

func TestCacheApplyFailureClears(t *testing.T) {
	cache := newCacheWithClock(arbor.NewLogger(), common.CookieTTL, time.Now)
	cache.Save(context.Background(), &cookiePage{cookies: testCookies()})
	assert.True(t, cache.IsFresh())

	// A failed install treats the cache as corrupt.
	cache.Apply(context.Background(), &cookiePage{setErr: errors.New("page gone")})

	assert.False(t, cache.IsFresh(), "apply failure must clear the cache")
	assert.False(t, cache.HasCookies())
}

func TestCacheApplySkipsWhenStale(t *testing.T) {
	now := time.Now()
	cache := newCacheWithClock(arbor.NewLogger(), common.CookieTTL, func() time.Time { return now })
	cache.Save(context.Background(), &cookiePage{cookies: testCookies()})

	now = now.Add(common.CookieTTL + time.Hour)
	target := &cookiePage{}
	cache.Apply(context.Background(), target)

	assert.Empty(t, target.applied, "stale cache must not be applied")
}

func TestCacheSaveSwallowsFailures(t *testing.T) {
	cache := newCacheWithClock(arbor.NewLogger(), common.CookieTTL, time.Now)

	// Read failure leaves the cache untouched.
	cache.Save(context.Background(), &cookiePage{cookieErr: errors.New("browser closed")})
	assert.False(t, cache.IsFresh())

	// Empty cookie sets are not cached.
	cache.Save(context.Background(), &cookiePage{})
	assert.False(t, cache.IsFresh())
}
