// Package scheduler re-runs the last saved job search on a cron schedule so
// the cached results stay current.
package scheduler

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/store"
)

// Searcher runs a job search.
type Searcher interface {
	Search(ctx context.Context, criteria jobsearch.Criteria) (jobs []jobsearch.Posting, err error)
}

// Refresher wraps robfig/cron and refreshes the saved search.
type Refresher struct {
	cron     *cron.Cron
	spec     string
	searcher Searcher
	results  store.ResultStore
	logger   *logging.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New creates a Refresher firing on spec (standard cron syntax or descriptors
// such as "@every 6h").
func New(spec string, searcher Searcher, results store.ResultStore, logger *logging.Logger) (r *Refresher, err error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	_, err = cron.ParseStandard(spec)
	if err != nil {
		err = errors.Wrapf(err, "invalid refresh schedule %q", spec)
		return r, err
	}

	r = &Refresher{
		cron:     cron.New(),
		spec:     spec,
		searcher: searcher,
		results:  results,
		logger:   logger.With("component", "refresher"),
	}
	return r, err
}

// Start registers the job and starts the scheduler.
func (r *Refresher) Start(ctx context.Context) (err error) {
	ctx, r.cancel = context.WithCancel(ctx)

	_, err = r.cron.AddFunc(r.spec, func() {
		refreshErr := r.RefreshOnce(ctx)
		if refreshErr != nil && !errors.Is(refreshErr, store.ErrEmpty) {
			r.logger.Warn("refresh failed", "err", refreshErr)
		}
	})
	if err != nil {
		err = errors.Wrap(err, "failed to schedule refresh")
		return err
	}

	r.cron.Start()
	r.logger.Info("refresh scheduled", "spec", r.spec)

	return err
}

// RefreshOnce re-runs the saved criteria and saves the new results. Overlapping
// runs are skipped.
func (r *Refresher) RefreshOnce(ctx context.Context) (err error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		r.logger.Debug("refresh already running, skipping")
		return err
	}
	r.running = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	var snap store.Snapshot
	snap, err = r.results.Load(ctx)
	if err != nil {
		return err
	}

	var jobs []jobsearch.Posting
	jobs, err = r.searcher.Search(ctx, snap.Criteria)
	if err != nil {
		err = errors.Wrap(err, "refresh search failed")
		return err
	}

	if len(jobs) == 0 {
		r.logger.Info("refresh returned no jobs, keeping previous results")
		return err
	}

	err = r.results.Save(ctx, store.Snapshot{Criteria: snap.Criteria, Jobs: jobs})
	if err != nil {
		return err
	}

	r.logger.Info("refreshed job search results", "jobs", len(jobs))
	return err
}

// Shutdown stops the scheduler and waits for a running refresh, bounded by ctx.
func (r *Refresher) Shutdown(ctx context.Context) (err error) {
	if r.cancel != nil {
		r.cancel()
	}

	done := r.cron.Stop()

	select {
	case <-done.Done():
		r.logger.Info("refresh scheduler stopped")
	case <-ctx.Done():
		err = errors.Wrap(ctx.Err(), "refresh scheduler did not stop in time")
	}

	return err
}
