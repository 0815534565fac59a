package cmd

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/api"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/scheduler"
	"github.com/nikogura/smartresume/pkg/shutdown"
	"github.com/nikogura/smartresume/pkg/store"
)

const shutdownTimeout = 15 * time.Second

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API used by the resume editor",
	Long: `Run the HTTP API used by the resume editor.

Endpoints:
  POST /api/apify           search LinkedIn jobs
  GET  /api/apify/last      last saved search results
  POST /api/ai              run an AI task
  POST /api/linkedin        fetch and parse a LinkedIn job URL
  POST /api/linkedin/parse  parse pasted job page HTML

When refresh.schedule (or REFRESH_SCHEDULE) is set, the last search is re-run
on that cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results, err := store.New(ctx, cfg.Store, log)
	if err != nil {
		err = errors.Wrap(err, "failed to open results store")
		return err
	}

	searcher := newSearchClient(cfg, log)
	gateway := newGateway(cfg, log)

	if !searcher.Configured() {
		log.Warn("APIFY_API_KEY not set; job search is disabled")
	}
	if !gateway.Configured() {
		log.Warn("AI API key not set; AI tasks will return fallback content")
	}

	server := api.NewServer(cfg.Addr(), api.Deps{
		Search:  searcher,
		AI:      gateway,
		Fetcher: linkedin.NewFetcher(log),
		Results: results,
		Logger:  log,
	})

	components := []shutdown.Stoppable{server}

	if cfg.Refresh.Schedule != "" {
		var refresher *scheduler.Refresher
		refresher, err = scheduler.New(cfg.Refresh.Schedule, searcher, results, log)
		if err != nil {
			return err
		}

		err = refresher.Start(ctx)
		if err != nil {
			return err
		}
		components = append(components, refresher)
	}

	components = append(components, results)

	listenErr := make(chan error, 1)
	go func() {
		serveErr := server.ListenAndServe()
		if serveErr != nil {
			listenErr <- serveErr
			cancel()
		}
	}()

	err = shutdown.Graceful(ctx, []os.Signal{syscall.SIGINT, syscall.SIGTERM}, shutdownTimeout, log, components...)

	select {
	case serveErr := <-listenErr:
		err = errors.Wrap(serveErr, "HTTP server failed")
	default:
	}

	return err
}
