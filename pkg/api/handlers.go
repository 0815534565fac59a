package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
	"github.com/nikogura/smartresume/pkg/store"
)

type aiRequest struct {
	Type           llm.Task        `json:"type"`
	Profile        profile.Profile `json:"profile"`
	JobDescription string          `json:"jobDescription"`
	Text           string          `json:"text"`
	HTML           string          `json:"html"`
}

type linkedInURLRequest struct {
	URL string `json:"url"`
}

type linkedInHTMLRequest struct {
	HTML string `json:"html"`
}

// linkedInJob is a parsed job page plus where it came from.
type linkedInJob struct {
	linkedin.ParsedJobFields
	OriginalURL string `json:"originalUrl"`
	JobID       string `json:"jobId"`
	Fallback    bool   `json:"fallback"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"apify":  s.deps.Search != nil && s.deps.Search.Configured(),
		"ai":     s.deps.AI != nil && s.deps.AI.Configured(),
	})
}

// searchJobs runs a job search and persists non-empty results.
func (s *Server) searchJobs(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx, s.deps.Logger)

	var criteria jobsearch.Criteria
	err := c.ShouldBindJSON(&criteria)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", gin.H{"reason": err.Error()})
		return
	}

	err = criteria.Validate()
	if err != nil {
		status, body := searchFailure(err)
		c.JSON(status, body)
		return
	}

	if s.deps.Search == nil || !s.deps.Search.Configured() {
		status, body := searchFailure(jobsearch.ErrNotConfigured)
		c.JSON(status, body)
		return
	}

	jobs, err := s.deps.Search.Search(ctx, criteria)
	if err != nil {
		log.Warn("job search failed", "err", err)
		status, body := searchFailure(err)
		c.JSON(status, body)
		return
	}

	if jobs == nil {
		jobs = []jobsearch.Posting{}
	}

	if s.deps.Results != nil && len(jobs) > 0 {
		saveErr := s.deps.Results.Save(ctx, store.Snapshot{Criteria: criteria, Jobs: jobs})
		if saveErr != nil {
			log.Warn("failed to persist search results", "err", saveErr)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": jobs})
}

// lastSearch returns the persisted results of the most recent search.
func (s *Server) lastSearch(c *gin.Context) {
	if s.deps.Results == nil {
		fail(c, http.StatusNotFound, store.ErrEmpty.Error(), nil)
		return
	}

	snap, err := s.deps.Results.Load(c.Request.Context())
	if err != nil {
		if errors.Is(err, store.ErrEmpty) {
			fail(c, http.StatusNotFound, store.ErrEmpty.Error(), nil)
			return
		}
		fail(c, http.StatusInternalServerError, "Failed to load saved search results", gin.H{"reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     snap.Jobs,
		"criteria": snap.Criteria,
		"savedAt":  snap.SavedAt,
	})
}

// generate runs one AI task. Every task except parse_resume answers 200,
// flagging static fallbacks.
func (s *Server) generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req aiRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body", gin.H{"reason": err.Error()})
		return
	}

	if req.Type == "" {
		fail(c, http.StatusBadRequest, "Missing type", nil)
		return
	}
	if !req.Type.Valid() {
		fail(c, http.StatusBadRequest, "Invalid type", gin.H{"type": string(req.Type), "allowed": llm.Tasks()})
		return
	}

	if s.deps.AI == nil {
		fail(c, http.StatusInternalServerError, llm.ErrNotConfigured.Error(), nil)
		return
	}

	input := llm.Input{Profile: req.Profile, JobDescription: req.JobDescription, Text: req.Text}
	if req.Type == llm.TaskLinkedInParse && input.JobDescription == "" {
		input.JobDescription = req.HTML
	}

	result, err := s.deps.AI.Run(ctx, req.Type, input)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrNotConfigured) {
			status = http.StatusInternalServerError
		}
		fail(c, status, err.Error(), gin.H{"type": string(req.Type)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"data":     result.Data,
		"type":     result.Task,
		"fallback": result.Fallback,
	})
}

// parseLinkedInURL fetches a LinkedIn job page and parses it.
func (s *Server) parseLinkedInURL(c *gin.Context) {
	ctx := c.Request.Context()
	log := logging.FromContext(ctx, s.deps.Logger)

	var req linkedInURLRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || strings.TrimSpace(req.URL) == "" {
		fail(c, http.StatusBadRequest, "LinkedIn job URL is required", nil)
		return
	}

	if !linkedin.IsJobURL(req.URL) {
		fail(c, http.StatusBadRequest, "Please provide a valid LinkedIn job URL", nil)
		return
	}

	jobID, ok := linkedin.ExtractJobID(req.URL)
	if !ok {
		fail(c, http.StatusBadRequest, "Could not extract job ID from the LinkedIn URL. Please check the URL format.", nil)
		return
	}

	if s.deps.Fetcher == nil || s.deps.AI == nil {
		fail(c, http.StatusServiceUnavailable, "LinkedIn fetching is not available", gin.H{"jobId": jobID})
		return
	}

	page, err := s.deps.Fetcher.FetchJobHTML(ctx, jobID)
	if err != nil {
		log.Warn("failed to fetch LinkedIn job", "job_id", jobID, "err", err)

		details := gin.H{
			"jobId":          jobID,
			"error":          err.Error(),
			"recommendation": "Try another LinkedIn job link or enter the job details manually",
		}
		var fetchErr *linkedin.FetchError
		if errors.As(err, &fetchErr) {
			details["possibleCauses"] = fetchErr.PossibleCauses()
			if fetchErr.StatusCode != 0 {
				details["status"] = fetchErr.StatusCode
			}
		}

		fail(c, http.StatusServiceUnavailable, "LinkedIn is unavailable. Job ID "+jobID+" could not be fetched.", details)
		return
	}

	parsed := s.deps.AI.ParseJobHTML(ctx, page)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": linkedInJob{
			ParsedJobFields: parsed.Value,
			OriginalURL:     req.URL,
			JobID:           jobID,
			Fallback:        parsed.Fallback,
		},
	})
}

// parseLinkedInHTML runs the local extractor over pasted page HTML.
func (s *Server) parseLinkedInHTML(c *gin.Context) {
	var req linkedInHTMLRequest
	err := c.ShouldBindJSON(&req)
	if err != nil || strings.TrimSpace(req.HTML) == "" {
		fail(c, http.StatusBadRequest, "Job page HTML is required", nil)
		return
	}

	fields, err := linkedin.Extract(req.HTML)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err.Error(), nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": fields.WithPlaceholders()})
}
