package session

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/accipio/internal/common"
	"github.com/ternarybob/accipio/internal/interfaces"
	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
)

// Cache is the process-wide store of authenticated portal cookies.
// Replacement is atomic and wholesale; there are no partial updates.
// Concurrent jobs share one instance and race on it: the last Save wins
// and a Clear triggered by one job's apply failure simply forces the
// next job through the full login path.
type Cache struct {
	mu         sync.Mutex
	cookies    []models.Cookie
	capturedAt time.Time
	ttl        time.Duration
	now        func() time.Time
	logger     arbor.ILogger
}

// NewCache creates the cache with the fixed cookie TTL.
func NewCache(logger arbor.ILogger) *Cache {
	return newCacheWithClock(logger, common.CookieTTL, time.Now)
}

func newCacheWithClock(logger arbor.ILogger, ttl time.Duration, now func() time.Time) *Cache {
	return &Cache{
		ttl:    ttl,
		now:    now,
		logger: logger,
	}
}

// IsFresh reports whether the cached cookie set is non-empty and
// younger than the TTL.
func (c *Cache) IsFresh() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cookies) > 0 && c.now().Sub(c.capturedAt) < c.ttl
}

// Apply installs cached cookies into the page when the cache is fresh.
// Any failure during installation treats the cache as corrupt and
// clears it unconditionally; the caller proceeds without cookies and
// recovers through the login path if needed.
func (c *Cache) Apply(ctx context.Context, page interfaces.Page) {
	c.mu.Lock()
	if len(c.cookies) == 0 || c.now().Sub(c.capturedAt) >= c.ttl {
		c.mu.Unlock()
		return
	}
	cookies := make([]models.Cookie, len(c.cookies))
	copy(cookies, c.cookies)
	c.mu.Unlock()

	if err := page.SetCookies(ctx, cookies); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to apply cached session cookies, clearing cache")
		c.Clear()
		return
	}

	c.logger.Debug().Int("cookies", len(cookies)).Msg("Applied cached session cookies")
}

// Save replaces the cache wholesale with the page's current cookies and
// resets the freshness clock. Failures are swallowed; caching is an
// optimization, never a correctness requirement.
func (c *Cache) Save(ctx context.Context, page interfaces.Page) {
	cookies, err := page.Cookies(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to read cookies for session cache")
		return
	}
	if len(cookies) == 0 {
		return
	}

	c.mu.Lock()
	c.cookies = cookies
	c.capturedAt = c.now()
	c.mu.Unlock()

	c.logger.Debug().Int("cookies", len(cookies)).Msg("Session cache refreshed")
}

// Clear drops the cached cookies.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.cookies = nil
	c.capturedAt = time.Time{}
	c.mu.Unlock()
}

// HasCookies reports whether any cookies are cached, regardless of age.
func (c *Cache) HasCookies() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cookies) > 0
}
