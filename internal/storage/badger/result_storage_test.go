package badger

import (
	"testing"
	"time"

	"github.com/ternarybob/accipio/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

func newTestStorage(t *testing.T) *ResultStorage {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	db := &BadgerDB{store: store}
	return NewResultStorage(db, arbor.NewLogger())
}

func TestResultPersistence(t *testing.T) {
	storage := newTestStorage(t)

	now := time.Now().UTC()
	results := []*models.JobResult{
		{JobID: "job-1", TaskID: "t1", Success: true, SelectedSlot: "Monday 9:00am-11:00am", CompletedAt: now.Add(-2 * time.Hour)},
		{JobID: "job-2", TaskID: "t2", Success: false, Error: "no slots found on page", CompletedAt: now.Add(-time.Hour)},
		{JobID: "job-3", TaskID: "t3", Success: true, CompletedAt: now},
	}
	for _, r := range results {
		if err := storage.SaveResult(r); err != nil {
			t.Fatalf("Failed to save result: %v", err)
		}
	}

	recent, err := storage.ListRecent(2)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(recent))
	}
	if recent[0].JobID != "job-3" || recent[1].JobID != "job-2" {
		t.Errorf("Expected newest-first order, got %s, %s", recent[0].JobID, recent[1].JobID)
	}
}

func TestPurgeOlderThan(t *testing.T) {
	storage := newTestStorage(t)

	now := time.Now().UTC()
	old := &models.JobResult{JobID: "old-job", CompletedAt: now.Add(-48 * time.Hour)}
	fresh := &models.JobResult{JobID: "fresh-job", CompletedAt: now}
	for _, r := range []*models.JobResult{old, fresh} {
		if err := storage.SaveResult(r); err != nil {
			t.Fatalf("Failed to save result: %v", err)
		}
	}

	purged, err := storage.PurgeOlderThan(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if purged != 1 {
		t.Errorf("Expected 1 purged result, got %d", purged)
	}

	remaining, err := storage.ListRecent(0)
	if err != nil {
		t.Fatalf("Failed to list results: %v", err)
	}
	if len(remaining) != 1 || remaining[0].JobID != "fresh-job" {
		t.Errorf("Expected only fresh-job to remain, got %+v", remaining)
	}
}
