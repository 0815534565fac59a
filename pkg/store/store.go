// Package store persists the most recent job search so it survives restarts.
package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/logging"
)

// Key is the fixed name under which the last search is kept.
const Key = "jobSearchResults"

// ErrEmpty is returned by Load when nothing has been saved yet.
var ErrEmpty = errors.New("no saved job search results")

// Snapshot is one saved search.
type Snapshot struct {
	Criteria jobsearch.Criteria  `json:"criteria"`
	Jobs     []jobsearch.Posting `json:"jobs"`
	SavedAt  time.Time           `json:"savedAt"`
}

// ResultStore keeps a single Snapshot.
type ResultStore interface {
	Load(ctx context.Context) (snap Snapshot, err error)
	Save(ctx context.Context, snap Snapshot) (err error)
	Shutdown(ctx context.Context) (err error)
}

// New opens the backend selected in cfg.
func New(ctx context.Context, cfg config.StoreConfig, logger *logging.Logger) (s ResultStore, err error) {
	switch cfg.Backend {
	case config.StoreRedis:
		s, err = NewRedisStore(ctx, cfg.RedisURL, logger)
	case config.StoreFile, "":
		s, err = NewFileStore(cfg.Path, logger)
	default:
		err = errors.Errorf("unknown store backend: %q", cfg.Backend)
	}
	return s, err
}

// stamp prepares a snapshot for saving. It reports false for an empty result set,
// which is never persisted.
func stamp(snap Snapshot) (stamped Snapshot, ok bool) {
	if len(snap.Jobs) == 0 {
		return stamped, ok
	}

	stamped = snap
	if stamped.SavedAt.IsZero() {
		stamped.SavedAt = time.Now().UTC()
	}
	ok = true
	return stamped, ok
}
