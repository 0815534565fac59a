package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/store"
)

type fakeSearcher struct {
	calls int32
	jobs  []jobsearch.Posting
	err   error
	seen  atomic.Value
}

func (f *fakeSearcher) Search(_ context.Context, criteria jobsearch.Criteria) (jobs []jobsearch.Posting, err error) {
	atomic.AddInt32(&f.calls, 1)
	f.seen.Store(criteria)
	return f.jobs, f.err
}

func newStore(t *testing.T) (s *store.FileStore) {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "results.json"), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}

func TestNewRejectsBadSchedule(t *testing.T) {
	_, err := New("not a schedule", &fakeSearcher{}, newStore(t), nil)
	if err == nil {
		t.Error("Expected error for invalid schedule, got nil")
	}
}

func TestRefreshOnceWithoutSavedSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	r, err := New("@every 1h", searcher, newStore(t), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err = r.RefreshOnce(context.Background())
	if !errors.Is(err, store.ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if atomic.LoadInt32(&searcher.calls) != 0 {
		t.Error("Expected no search without saved criteria")
	}
}

func TestRefreshOnceReplacesResults(t *testing.T) {
	ctx := context.Background()
	results := newStore(t)

	err := results.Save(ctx, store.Snapshot{
		Criteria: jobsearch.Criteria{Title: "Go Engineer"},
		Jobs:     []jobsearch.Posting{{JobID: "1"}},
	})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	searcher := &fakeSearcher{jobs: []jobsearch.Posting{{JobID: "2"}, {JobID: "3"}}}
	r, err := New("@every 1h", searcher, results, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err = r.RefreshOnce(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	criteria, _ := searcher.seen.Load().(jobsearch.Criteria)
	if criteria.Title != "Go Engineer" {
		t.Errorf("Expected saved criteria to be searched, got '%s'", criteria.Title)
	}

	snap, err := results.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if len(snap.Jobs) != 2 {
		t.Errorf("Expected 2 jobs after refresh, got %d", len(snap.Jobs))
	}
}

func TestRefreshOnceKeepsResultsOnFailure(t *testing.T) {
	ctx := context.Background()
	results := newStore(t)

	err := results.Save(ctx, store.Snapshot{
		Criteria: jobsearch.Criteria{Title: "Go Engineer"},
		Jobs:     []jobsearch.Posting{{JobID: "1"}},
	})
	if err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	r, err := New("@every 1h", &fakeSearcher{err: jobsearch.ErrTimedOut}, results, nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err = r.RefreshOnce(ctx)
	if !errors.Is(err, jobsearch.ErrTimedOut) {
		t.Errorf("Expected ErrTimedOut, got %v", err)
	}

	snap, _ := results.Load(ctx)
	if len(snap.Jobs) != 1 || snap.Jobs[0].JobID != "1" {
		t.Errorf("Expected previous results to be kept, got %+v", snap.Jobs)
	}
}

func TestStartAndShutdown(t *testing.T) {
	r, err := New("@every 1h", &fakeSearcher{}, newStore(t), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	err = r.Start(context.Background())
	if err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = r.Shutdown(ctx)
	if err != nil {
		t.Errorf("Unexpected shutdown error: %v", err)
	}
}
