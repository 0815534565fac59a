package cmd

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/editor"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
	"github.com/nikogura/smartresume/pkg/store"
)

// ErrNoSavedSearch is returned by --job when no search has been saved.
var ErrNoSavedSearch = errors.New("no saved search results; run 'smartresume search' first")

// openSession creates an editor session backed by the configured results store.
// The caller shuts the store down.
func openSession(ctx context.Context, storeCfg config.StoreConfig, p profile.Profile, gen editor.Generator, fetcher editor.PageFetcher, log *logging.Logger) (session *editor.Session, results store.ResultStore, err error) {
	results, err = store.New(ctx, storeCfg, log)
	if err != nil {
		err = errors.Wrap(err, "failed to open results store")
		return session, results, err
	}

	session = editor.NewSession(p, gen, fetcher, results, log)
	return session, results, err
}

// selectSavedJob restores the last search, selects its nth job (1-based, as
// printed by search), and fetches the full description when the saved one is thin.
func selectSavedJob(ctx context.Context, log *logging.Logger, session *editor.Session, n int) (err error) {
	err = session.Restore(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to load saved search results")
		return err
	}

	results := session.Results()
	if len(results) == 0 {
		err = ErrNoSavedSearch
		return err
	}
	if n < 1 || n > len(results) {
		err = errors.Errorf("job %d out of range: the last search returned %d jobs", n, len(results))
		return err
	}

	session.SelectJob(results[n-1])

	changed, backfillErr := session.Backfill(ctx)
	switch {
	case backfillErr != nil:
		log.Warn("could not fetch the full job description", "err", backfillErr)
	case changed:
		log.Debug("job description fetched from the job page")
	}

	if strings.TrimSpace(session.Job().Description) == "" {
		err = editor.ErrNoJobDescription
		return err
	}

	return err
}

// importResume overlays a parsed resume onto existing.
func importResume(existing, parsed profile.Profile, log *logging.Logger) (merged profile.Profile) {
	session := editor.NewSession(existing, nil, nil, nil, log)
	session.ImportProfile(parsed)
	merged = session.Profile()
	return merged
}
