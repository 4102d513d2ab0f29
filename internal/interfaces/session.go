package interfaces

import "context"

// SessionStore is the shared, TTL-bounded cookie cache. One instance is
// constructed at process start and handed to every pipeline; concurrent
// jobs race on it by design (last save wins, corruption self-heals by
// forcing the next job through a full login).
type SessionStore interface {
	// IsFresh reports whether the cached cookie set is non-empty and
	// younger than the TTL.
	IsFresh() bool

	// Apply installs cached cookies into the page when fresh. Any
	// failure clears the cache unconditionally; the caller proceeds
	// without cookies.
	Apply(ctx context.Context, page Page)

	// Save replaces the cache wholesale with the page's current cookies
	// and resets the freshness clock. Failures are swallowed; caching
	// is an optimization, never a correctness requirement.
	Save(ctx context.Context, page Page)

	// Clear drops the cached cookies.
	Clear()
}
