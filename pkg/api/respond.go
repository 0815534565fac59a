package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/jobsearch"
)

// errorBody is the uniform failure shape.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details gin.H  `json:"details,omitempty"`
}

func failure(msg string, details gin.H) (body errorBody) {
	body = errorBody{Success: false, Error: msg, Details: details}
	return body
}

func fail(c *gin.Context, status int, msg string, details gin.H) {
	c.JSON(status, failure(msg, details))
}

// searchFailure maps a job-search error to a status and body.
func searchFailure(err error) (status int, body errorBody) {
	var upstream *jobsearch.UpstreamError
	var runFailed *jobsearch.RunFailedError

	switch {
	case errors.Is(err, jobsearch.ErrMissingInput):
		status = http.StatusBadRequest
		body = failure(jobsearch.ErrMissingInput.Error(), nil)
	case errors.Is(err, jobsearch.ErrNotConfigured):
		status = http.StatusInternalServerError
		body = failure(jobsearch.ErrNotConfigured.Error(), nil)
	case errors.Is(err, jobsearch.ErrTimedOut):
		status = http.StatusGatewayTimeout
		body = failure(jobsearch.ErrTimedOut.Error(), nil)
	case errors.As(err, &runFailed):
		status = http.StatusBadGateway
		body = failure(runFailed.Error(), gin.H{"runId": runFailed.RunID, "status": runFailed.Status})
	case errors.As(err, &upstream):
		status = http.StatusBadGateway
		if upstream.Stage == jobsearch.StageStartRun && upstream.StatusCode >= 400 && upstream.StatusCode < 600 {
			status = upstream.StatusCode
		}
		body = failure(upstream.Error(), gin.H{"stage": string(upstream.Stage), "status": upstream.StatusCode, "body": upstream.Body})
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		body = failure("Job search timed out", nil)
	default:
		status = http.StatusInternalServerError
		body = failure(err.Error(), nil)
	}

	return status, body
}
