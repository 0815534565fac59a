package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/store"
)

type fakeSearcher struct {
	configured bool
	jobs       []jobsearch.Posting
	err        error
	calls      int
}

func (f *fakeSearcher) Configured() bool { return f.configured }

func (f *fakeSearcher) Search(_ context.Context, _ jobsearch.Criteria) (jobs []jobsearch.Posting, err error) {
	f.calls++
	return f.jobs, f.err
}

type fakeFetcher struct {
	page string
	err  error
}

func (f *fakeFetcher) FetchJobHTML(_ context.Context, _ string) (page string, err error) {
	return f.page, f.err
}

type response struct {
	Success  bool            `json:"success"`
	Error    string          `json:"error"`
	Details  map[string]any  `json:"details"`
	Data     json.RawMessage `json:"data"`
	Type     string          `json:"type"`
	Fallback bool            `json:"fallback"`
}

func newTestServer(t *testing.T, deps Deps) (s *Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s = NewServer(":0", deps)
	return s
}

func do(t *testing.T, s *Server, method, path string, body any) (rec *httptest.ResponseRecorder, resp response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

func newResultStore(t *testing.T) (rs store.ResultStore) {
	t.Helper()
	rs, err := store.NewFileStore(filepath.Join(t.TempDir(), "results.json"), nil)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return rs
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, Deps{Search: &fakeSearcher{configured: true}})

	rec, _ := do(t, s, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("Expected request ID header")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	s := newTestServer(t, Deps{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Header().Get(requestIDHeader) != "abc-123" {
		t.Errorf("Expected 'abc-123', got '%s'", rec.Header().Get(requestIDHeader))
	}
}

func TestSearchJobsValidation(t *testing.T) {
	searcher := &fakeSearcher{configured: true}
	s := newTestServer(t, Deps{Search: searcher})

	rec, resp := do(t, s, http.MethodPost, "/api/apify", map[string]any{"companies": []string{""}})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("Expected failure body, got %+v", resp)
	}
	if searcher.calls != 0 {
		t.Errorf("Expected no search calls, got %d", searcher.calls)
	}
}

func TestSearchJobsNotConfigured(t *testing.T) {
	s := newTestServer(t, Deps{Search: &fakeSearcher{}})

	rec, _ := do(t, s, http.MethodPost, "/api/apify", map[string]any{"title": "Go Engineer"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
}

func TestSearchJobsPersistsResults(t *testing.T) {
	results := newResultStore(t)
	searcher := &fakeSearcher{configured: true, jobs: []jobsearch.Posting{{JobID: "1", JobTitle: "Go Engineer"}}}
	s := newTestServer(t, Deps{Search: searcher, Results: results})

	rec, resp := do(t, s, http.MethodPost, "/api/apify", map[string]any{"title": "Go Engineer", "jobsEntries": 5})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var jobs []jobsearch.Posting
	_ = json.Unmarshal(resp.Data, &jobs)
	if len(jobs) != 1 {
		t.Errorf("Expected 1 job, got %d", len(jobs))
	}

	rec, resp = do(t, s, http.MethodGet, "/api/apify/last", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	_ = json.Unmarshal(resp.Data, &jobs)
	if len(jobs) != 1 || jobs[0].JobID != "1" {
		t.Errorf("Unexpected persisted jobs: %+v", jobs)
	}
}

func TestLastSearchEmpty(t *testing.T) {
	s := newTestServer(t, Deps{Results: newResultStore(t)})

	rec, _ := do(t, s, http.MethodGet, "/api/apify/last", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestSearchJobsErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"timeout", jobsearch.ErrTimedOut, http.StatusGatewayTimeout},
		{"run failed", &jobsearch.RunFailedError{RunID: "r1", Status: "FAILED"}, http.StatusBadGateway},
		{"start run rejected", &jobsearch.UpstreamError{Stage: jobsearch.StageStartRun, StatusCode: http.StatusUnauthorized}, http.StatusUnauthorized},
		{"dataset failed", &jobsearch.UpstreamError{Stage: jobsearch.StageDataset, StatusCode: http.StatusNotFound}, http.StatusBadGateway},
		{"wrapped timeout", errors.Wrap(jobsearch.ErrTimedOut, "search"), http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Deps{Search: &fakeSearcher{configured: true, err: tt.err}})

			rec, resp := do(t, s, http.MethodPost, "/api/apify", map[string]any{"title": "Go Engineer"})
			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if resp.Success {
				t.Error("Expected success false")
			}
		})
	}
}

func TestGenerateValidation(t *testing.T) {
	s := newTestServer(t, Deps{AI: llm.NewGatewayWithCompleter(llm.Config{}, nil, nil)})

	rec, _ := do(t, s, http.MethodPost, "/api/ai", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing type, got %d", rec.Code)
	}

	rec, resp := do(t, s, http.MethodPost, "/api/ai", map[string]any{"type": "haiku"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for invalid type, got %d", rec.Code)
	}
	if resp.Error != "Invalid type" {
		t.Errorf("Expected 'Invalid type', got '%s'", resp.Error)
	}
}

func TestGenerateFallback(t *testing.T) {
	s := newTestServer(t, Deps{AI: llm.NewGatewayWithCompleter(llm.Config{}, nil, nil)})

	rec, resp := do(t, s, http.MethodPost, "/api/ai", map[string]any{
		"type":           "resume_critique",
		"profile":        map[string]any{"name": "Jane"},
		"jobDescription": "Go",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if !resp.Fallback {
		t.Error("Expected fallback flag")
	}
	if resp.Type != "resume_critique" {
		t.Errorf("Expected type 'resume_critique', got '%s'", resp.Type)
	}

	var critique llm.Critique
	_ = json.Unmarshal(resp.Data, &critique)
	if critique.Score != 75 {
		t.Errorf("Expected fallback score 75, got %d", critique.Score)
	}
}

func TestGenerateParseResumeFails(t *testing.T) {
	s := newTestServer(t, Deps{AI: llm.NewGatewayWithCompleter(llm.Config{}, nil, nil)})

	rec, _ := do(t, s, http.MethodPost, "/api/ai", map[string]any{"type": "parse_resume", "text": "Jane Doe"})
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 when not configured, got %d", rec.Code)
	}
}

func TestParseLinkedInURL(t *testing.T) {
	page := `<html><head><title>Go Engineer | Acme | LinkedIn</title></head><body></body></html>`
	s := newTestServer(t, Deps{
		AI:      llm.NewGatewayWithCompleter(llm.Config{}, nil, nil),
		Fetcher: &fakeFetcher{page: page},
	})

	rec, resp := do(t, s, http.MethodPost, "/api/linkedin", map[string]any{"url": "https://www.linkedin.com/jobs/view/4012345678"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var job map[string]any
	_ = json.Unmarshal(resp.Data, &job)
	if job["jobId"] != "4012345678" {
		t.Errorf("Expected jobId '4012345678', got '%v'", job["jobId"])
	}
	if job["title"] != "Go Engineer" {
		t.Errorf("Expected title 'Go Engineer', got '%v'", job["title"])
	}
	if job["company"] != linkedin.PlaceholderCompany {
		t.Errorf("Expected company placeholder, got '%v'", job["company"])
	}
}

func TestParseLinkedInURLErrors(t *testing.T) {
	s := newTestServer(t, Deps{
		AI:      llm.NewGatewayWithCompleter(llm.Config{}, nil, nil),
		Fetcher: &fakeFetcher{err: &linkedin.FetchError{JobID: "1", StatusCode: 451}},
	})

	rec, _ := do(t, s, http.MethodPost, "/api/linkedin", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for missing url, got %d", rec.Code)
	}

	rec, _ = do(t, s, http.MethodPost, "/api/linkedin", map[string]any{"url": "https://example.com/jobs/1"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for non-LinkedIn url, got %d", rec.Code)
	}

	rec, _ = do(t, s, http.MethodPost, "/api/linkedin", map[string]any{"url": "https://www.linkedin.com/jobs/search/"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for url without job id, got %d", rec.Code)
	}

	rec, resp := do(t, s, http.MethodPost, "/api/linkedin", map[string]any{"url": "https://www.linkedin.com/jobs/view/1234567890"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", rec.Code)
	}
	if resp.Details["jobId"] != "1234567890" {
		t.Errorf("Expected jobId in details, got %v", resp.Details)
	}
	if _, ok := resp.Details["possibleCauses"]; !ok {
		t.Error("Expected possible causes in details")
	}
}

func TestParseLinkedInHTML(t *testing.T) {
	s := newTestServer(t, Deps{})

	rec, resp := do(t, s, http.MethodPost, "/api/linkedin/parse", map[string]any{
		"html": `<html><head><title>Data Engineer | LinkedIn</title></head></html>`,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var fields linkedin.ParsedJobFields
	_ = json.Unmarshal(resp.Data, &fields)
	if fields.Title != "Data Engineer" {
		t.Errorf("Expected 'Data Engineer', got '%s'", fields.Title)
	}

	rec, _ = do(t, s, http.MethodPost, "/api/linkedin/parse", map[string]any{"html": "<p>nothing</p>"})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected status 422, got %d", rec.Code)
	}
}

func TestRecoveryReturnsJSON(t *testing.T) {
	s := newTestServer(t, Deps{})
	s.router.GET("/boom", func(_ *gin.Context) { panic("boom") })

	rec, resp := do(t, s, http.MethodGet, "/boom", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", rec.Code)
	}
	if resp.Success || resp.Error == "" {
		t.Errorf("Expected error body, got %+v", resp)
	}
}
