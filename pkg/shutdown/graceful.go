package shutdown

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/nikogura/smartresume/pkg/logging"
)

// Stoppable is anything that can be drained within a deadline.
type Stoppable interface {
	Shutdown(ctx context.Context) error
}

// Graceful blocks until one of signals arrives (or parent is cancelled), then stops every
// component in order within timeout.
func Graceful(parent context.Context, signals []os.Signal, timeout time.Duration, log *logging.Logger, components ...Stoppable) (err error) {
	sigCtx, stop := signal.NotifyContext(parent, signals...)
	defer stop()

	<-sigCtx.Done()
	log.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, c := range components {
		stopErr := c.Shutdown(ctx)
		if stopErr != nil {
			log.Warn("graceful shutdown completed with error", "err", stopErr)
			if err == nil {
				err = stopErr
			}
		}
	}

	if err == nil {
		log.Info("graceful shutdown completed successfully")
	}

	return err
}
