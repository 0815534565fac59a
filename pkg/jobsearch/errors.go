package jobsearch

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrMissingInput is returned when criteria have neither title nor company.
	ErrMissingInput = errors.New("please provide a job title or company name")
	// ErrNotConfigured is returned when no actor API token is available.
	ErrNotConfigured = errors.New("job search API token not configured")
	// ErrTimedOut is returned when the run never reached a terminal state.
	ErrTimedOut = errors.New("job search timed out or failed: run did not finish in time")
	// ErrUnknownFilter is returned when a filter label has no actor code.
	ErrUnknownFilter = errors.New("unrecognized search filter")
)

// Stage names the step of a search that failed.
type Stage string

const (
	StageStartRun Stage = "start_run"
	StagePollRun  Stage = "poll_run"
	StageDataset  Stage = "dataset"
)

// UpstreamError is a non-2xx answer from the actor API.
type UpstreamError struct {
	Stage      Stage
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() (msg string) {
	msg = fmt.Sprintf("job search API error during %s: %d %s", e.Stage, e.StatusCode, e.Body)
	return msg
}

// RunFailedError is returned when the actor run ended in a non-success terminal state.
type RunFailedError struct {
	RunID  string
	Status string
}

func (e *RunFailedError) Error() (msg string) {
	msg = fmt.Sprintf("job search timed out or failed: run %s finished with status %s", e.RunID, e.Status)
	return msg
}
