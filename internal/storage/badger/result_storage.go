package badger

import (
	"fmt"
	"time"

	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// ResultStorage persists job outcomes in BadgerDB. Results are
// append-only; a resubmitted job id gets its own record keyed by
// completion time.
type ResultStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewResultStorage creates a result store on the shared connection.
func NewResultStorage(db *BadgerDB, logger arbor.ILogger) *ResultStorage {
	return &ResultStorage{
		db:     db,
		logger: logger,
	}
}

// SaveResult stores one job outcome.
func (s *ResultStorage) SaveResult(result *models.JobResult) error {
	key := fmt.Sprintf("%s:%d", result.JobID, result.CompletedAt.UnixNano())
	if err := s.db.Store().Upsert(key, result); err != nil {
		return fmt.Errorf("failed to save job result: %w", err)
	}

	s.logger.Debug().
		Str("job_id", result.JobID).
		Bool("success", result.Success).
		Msg("Job result stored")
	return nil
}

// ListRecent returns up to limit results, newest first.
func (s *ResultStorage) ListRecent(limit int) ([]*models.JobResult, error) {
	query := badgerhold.Where("JobID").Ne("").SortBy("CompletedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var results []*models.JobResult
	if err := s.db.Store().Find(&results, query); err != nil {
		return nil, fmt.Errorf("failed to list job results: %w", err)
	}
	return results, nil
}

// PurgeOlderThan deletes results completed before the cutoff and
// returns how many were removed.
func (s *ResultStorage) PurgeOlderThan(cutoff time.Time) (int, error) {
	query := badgerhold.Where("CompletedAt").Lt(cutoff)

	count, err := s.db.Store().Count(&models.JobResult{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired results: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.db.Store().DeleteMatching(&models.JobResult{}, query); err != nil {
		return 0, fmt.Errorf("failed to purge expired results: %w", err)
	}

	purged := int(count)
	s.logger.Info().
		Int("purged", purged).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Msg("Expired job results purged")
	return purged, nil
}

// Close releases the underlying database.
func (s *ResultStorage) Close() error {
	return s.db.Close()
}
