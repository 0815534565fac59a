package linkedin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/logging"
)

const (
	// JobViewURL is the public job page, keyed by job ID.
	JobViewURL = "https://www.linkedin.com/jobs/view/"
	// GuestJobPostingURL is the guest endpoint used when the job page redirects.
	GuestJobPostingURL = "https://www.linkedin.com/jobs-guest/jobs/api/jobPosting/"

	// MaxPageBytes caps how much of a page is read.
	MaxPageBytes = 5 << 20
	// minPageBytes is the smallest body accepted as a real job page.
	minPageBytes = 100

	browserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36"
)

// FetchError describes why a job page could not be retrieved.
type FetchError struct {
	JobID      string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() (msg string) {
	switch {
	case e.StatusCode != 0:
		msg = fmt.Sprintf("fetching job %s from %s: unexpected status %d", e.JobID, e.URL, e.StatusCode)
	case e.Err != nil:
		msg = fmt.Sprintf("fetching job %s from %s: %v", e.JobID, e.URL, e.Err)
	default:
		msg = fmt.Sprintf("fetching job %s from %s failed", e.JobID, e.URL)
	}
	return msg
}

func (e *FetchError) Unwrap() (err error) {
	err = e.Err
	return err
}

// PossibleCauses lists the usual reasons a job page is unavailable.
func (e *FetchError) PossibleCauses() (causes []string) {
	causes = []string{
		"LinkedIn is restricted in the current region (HTTP 451)",
		"The job has expired or been removed",
		"Network connectivity problem",
	}
	return causes
}

// Fetcher retrieves raw job-page HTML.
type Fetcher struct {
	httpClient *http.Client
	viewURL    string
	guestURL   string
	logger     *logging.Logger
}

// FetcherOption customizes a Fetcher.
type FetcherOption func(f *Fetcher)

// WithEndpoints overrides the job page and guest endpoint prefixes.
func WithEndpoints(viewURL, guestURL string) (opt FetcherOption) {
	opt = func(f *Fetcher) {
		f.viewURL = viewURL
		f.guestURL = guestURL
	}
	return opt
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) (opt FetcherOption) {
	opt = func(f *Fetcher) {
		f.httpClient.Timeout = timeout
	}
	return opt
}

// NewFetcher creates a Fetcher. Redirects are not followed so that a login
// redirect can be detected and answered with the guest endpoint.
func NewFetcher(logger *logging.Logger, opts ...FetcherOption) (f *Fetcher) {
	if logger == nil {
		logger = logging.NewNop()
	}

	f = &Fetcher{
		viewURL:  JobViewURL,
		guestURL: GuestJobPostingURL,
		logger:   logger,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// FetchJobHTML downloads the page for jobID, falling back to the guest endpoint on redirect.
func (f *Fetcher) FetchJobHTML(ctx context.Context, jobID string) (page string, err error) {
	viewURL := f.viewURL + jobID

	var status int
	page, status, err = f.get(ctx, viewURL, "document")
	if err != nil {
		err = &FetchError{JobID: jobID, URL: viewURL, Err: err}
		return page, err
	}

	f.logger.Debug("job page response", "job_id", jobID, "status", status, "bytes", len(page))

	if isRedirect(status) {
		guestURL := f.guestURL + jobID
		f.logger.Info("job page redirected, trying guest endpoint", "job_id", jobID)

		page, status, err = f.get(ctx, guestURL, "empty")
		if err != nil {
			err = &FetchError{JobID: jobID, URL: guestURL, Err: err}
			return page, err
		}

		if status < 200 || status >= 300 {
			page = ""
			err = &FetchError{JobID: jobID, URL: guestURL, StatusCode: status}
			return page, err
		}

		err = checkPageSize(jobID, guestURL, page)
		return page, err
	}

	if status < 200 || status >= 300 {
		page = ""
		err = &FetchError{JobID: jobID, URL: viewURL, StatusCode: status}
		return page, err
	}

	err = checkPageSize(jobID, viewURL, page)
	return page, err
}

// Fetch retrieves job HTML from a LinkedIn job URL, any other URL, or a local file.
func (f *Fetcher) Fetch(ctx context.Context, input string) (page string, err error) {
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		if jobID, ok := ExtractJobID(input); ok {
			page, err = f.FetchJobHTML(ctx, jobID)
			return page, err
		}

		var status int
		page, status, err = f.get(ctx, input, "document")
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch job page from URL: %s", input)
			return page, err
		}

		if status != http.StatusOK {
			page = ""
			err = errors.Errorf("HTTP request failed with status: %d", status)
			return page, err
		}

		return page, err
	}

	var data []byte
	data, err = os.ReadFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", input)
		return page, err
	}

	page = string(data)
	if page == "" {
		err = errors.Errorf("file is empty: %s", input)
		return page, err
	}

	return page, err
}

func (f *Fetcher) get(ctx context.Context, target, fetchDest string) (body string, status int, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return body, status, err
	}

	setBrowserHeaders(req, fetchDest)

	var resp *http.Response
	resp, err = f.httpClient.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return body, status, err
	}
	defer resp.Body.Close()

	status = resp.StatusCode

	var data []byte
	data, err = io.ReadAll(io.LimitReader(resp.Body, MaxPageBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return body, status, err
	}

	body = string(data)
	return body, status, err
}

func setBrowserHeaders(req *http.Request, fetchDest string) {
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,image/apng,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Cache-Control", "max-age=0")
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Sec-Ch-Ua-Mobile", "?0")
	req.Header.Set("Sec-Ch-Ua-Platform", `"macOS"`)
	req.Header.Set("Sec-Fetch-Dest", fetchDest)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func isRedirect(status int) (result bool) {
	result = status == http.StatusMovedPermanently || status == http.StatusFound
	return result
}

func checkPageSize(jobID, target, page string) (err error) {
	if len(page) < minPageBytes {
		err = &FetchError{JobID: jobID, URL: target, Err: errors.New("received empty or truncated page")}
	}
	return err
}
