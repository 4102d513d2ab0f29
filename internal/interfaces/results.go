package interfaces

import (
	"time"

	"github.com/ternarybob/accipio/internal/models"
)

// ResultStore persists job outcomes for observability. The accept
// pipeline treats store failures as non-fatal; the callback remains the
// authoritative delivery channel.
type ResultStore interface {
	SaveResult(result *models.JobResult) error
	ListRecent(limit int) ([]*models.JobResult, error)
	PurgeOlderThan(cutoff time.Time) (int, error)
	Close() error
}

// Notifier delivers a JobResult to the caller-supplied callback URL.
// Delivery is best-effort and never retried.
type Notifier interface {
	Notify(callbackURL string, result *models.JobResult) error
}
