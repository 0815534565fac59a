package jobsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/poll"
)

const (
	// DefaultBaseURL is the actor platform API root.
	DefaultBaseURL = "https://api.apify.com"
	// DefaultActorID is the LinkedIn jobs scraper actor.
	DefaultActorID = "JkfTWxtpgfvcRQn3p"
	// DefaultPollInterval is the wait before each run-status check.
	DefaultPollInterval = 2 * time.Second
	// DefaultMaxPollAttempts bounds the run-status checks.
	DefaultMaxPollAttempts = 30

	statusSucceeded = "SUCCEEDED"
)

// terminalStatuses are run states after which the run will not change.
//
//nolint:gochecknoglobals // lookup table
var terminalStatuses = map[string]bool{
	statusSucceeded: true,
	"FAILED":        true,
	"ABORTED":       true,
	"TIMED-OUT":     true,
}

// Config holds the actor platform settings.
type Config struct {
	Token           string
	ActorID         string
	BaseURL         string
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Client runs job searches through the actor platform.
type Client struct {
	cfg        Config
	httpClient *http.Client
	poller     poll.Poller
	logger     *logging.Logger
}

// Option customizes a Client.
type Option func(c *Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) (opt Option) {
	opt = func(c *Client) {
		c.httpClient = hc
	}
	return opt
}

// WithSleeper replaces the wait between run-status checks.
func WithSleeper(s poll.Sleeper) (opt Option) {
	opt = func(c *Client) {
		c.poller.Sleep = s
	}
	return opt
}

// NewClient creates a Client, filling unset config with defaults.
func NewClient(cfg Config, logger *logging.Logger, opts ...Option) (client *Client) {
	if cfg.ActorID == "" {
		cfg.ActorID = DefaultActorID
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = DefaultMaxPollAttempts
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	client = &Client{
		cfg:    cfg,
		poller: poll.New(cfg.PollInterval, cfg.MaxPollAttempts),
		logger: logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Configured reports whether an API token is present.
func (c *Client) Configured() (ok bool) {
	ok = c.cfg.Token != ""
	return ok
}

// runState is the subset of an actor run the client cares about.
type runState struct {
	ID        string
	Status    string
	DatasetID string
}

// Search starts an actor run for criteria, waits for it to finish, and returns
// the normalized dataset. Validation happens before any network call.
func (c *Client) Search(ctx context.Context, criteria Criteria) (postings []Posting, err error) {
	log := logging.FromContext(ctx, c.logger)

	err = criteria.Validate()
	if err != nil {
		log.Info("job search rejected", "reason", err.Error())
		return postings, err
	}

	if !c.Configured() {
		err = ErrNotConfigured
		log.Error("job search not configured")
		return postings, err
	}

	input := BuildActorInput(criteria)
	log.Info("starting job search run", "input", input)

	var runID string
	runID, err = c.startRun(ctx, input)
	if err != nil {
		return postings, err
	}

	log = log.With("run_id", runID)
	log.Info("job search run started")

	var run runState
	run, err = c.waitForRun(ctx, log, runID)
	if err != nil {
		return postings, err
	}

	postings, err = c.fetchDataset(ctx, run.DatasetID)
	if err != nil {
		return postings, err
	}

	log.Info("job search completed", "jobs", len(postings))
	return postings, err
}

func (c *Client) startRun(ctx context.Context, input ActorInput) (runID string, err error) {
	var body []byte
	body, err = json.Marshal(input)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal actor input")
		return runID, err
	}

	endpoint := c.cfg.BaseURL + "/v2/acts/" + url.PathEscape(c.cfg.ActorID) + "/runs"

	var respBody []byte
	var status int
	respBody, status, err = c.do(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		err = errors.Wrap(err, "failed to start job search run")
		return runID, err
	}

	if status < 200 || status >= 300 {
		err = &UpstreamError{Stage: StageStartRun, StatusCode: status, Body: string(respBody)}
		return runID, err
	}

	runID = gjson.GetBytes(respBody, "data.id").String()
	if runID == "" {
		err = errors.Errorf("job search run response carried no run id: %s", string(respBody))
		return runID, err
	}

	return runID, err
}

// waitForRun polls the run until it is terminal. A non-2xx status check is
// logged and polling continues; transport errors end the wait.
func (c *Client) waitForRun(ctx context.Context, log *logging.Logger, runID string) (run runState, err error) {
	endpoint := c.cfg.BaseURL + "/v2/actor-runs/" + url.PathEscape(runID)
	run.ID = runID

	var attempts int
	attempts, err = c.poller.Until(ctx, func(ctx context.Context, attempt int) (done bool, checkErr error) {
		var respBody []byte
		var status int
		respBody, status, checkErr = c.do(ctx, http.MethodGet, endpoint, nil)
		if checkErr != nil {
			checkErr = errors.Wrap(checkErr, "failed to check job search run status")
			return done, checkErr
		}

		if status < 200 || status >= 300 {
			log.Warn("run status check failed", "attempt", attempt, "status", status)
			return done, checkErr
		}

		run.Status = gjson.GetBytes(respBody, "data.status").String()
		run.DatasetID = gjson.GetBytes(respBody, "data.defaultDatasetId").String()
		log.Debug("run status", "attempt", attempt, "status", run.Status)

		done = terminalStatuses[run.Status]
		return done, checkErr
	})

	if errors.Is(err, poll.ErrExhausted) {
		log.Warn("job search run did not finish", "attempts", attempts, "last_status", run.Status)
		err = ErrTimedOut
		return run, err
	}

	if err != nil {
		return run, err
	}

	if run.Status != statusSucceeded {
		log.Warn("job search run failed", "status", run.Status)
		err = &RunFailedError{RunID: runID, Status: run.Status}
		return run, err
	}

	return run, err
}

func (c *Client) fetchDataset(ctx context.Context, datasetID string) (postings []Posting, err error) {
	postings = make([]Posting, 0)

	if datasetID == "" {
		err = errors.New("job search run finished without a dataset")
		return postings, err
	}

	endpoint := c.cfg.BaseURL + "/v2/datasets/" + url.PathEscape(datasetID) + "/items"

	var respBody []byte
	var status int
	respBody, status, err = c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to fetch job results")
		return postings, err
	}

	if status < 200 || status >= 300 {
		err = &UpstreamError{Stage: StageDataset, StatusCode: status, Body: string(respBody)}
		return postings, err
	}

	postings = NormalizeDataset(respBody)
	return postings, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (respBody []byte, status int, err error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return respBody, status, err
	}

	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return respBody, status, err
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return respBody, status, err
	}

	return respBody, status, err
}
