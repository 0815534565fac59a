package cmd

import (
	"context"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/editor"
	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
)

type pageFetcher struct {
	calls int32
	page  string
}

func (f *pageFetcher) FetchJobHTML(_ context.Context, _ string) (page string, err error) {
	atomic.AddInt32(&f.calls, 1)
	page = f.page
	return page, err
}

func testStoreConfig(t *testing.T) (cfg config.StoreConfig) {
	t.Helper()
	cfg = config.StoreConfig{Backend: config.StoreFile, Path: filepath.Join(t.TempDir(), "results.json")}
	return cfg
}

// saveTestSearch records a search the way the search command does.
func saveTestSearch(t *testing.T, storeCfg config.StoreConfig, jobs []jobsearch.Posting) {
	t.Helper()
	ctx := context.Background()

	session, results, err := openSession(ctx, storeCfg, profile.Profile{}, nil, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = results.Shutdown(ctx) }()

	err = session.SetSearchResults(ctx, jobsearch.Criteria{Title: "Go Engineer"}, jobs)
	if err != nil {
		t.Fatalf("Failed to save search: %v", err)
	}
}

func TestSelectSavedJobBackfillsThinDescription(t *testing.T) {
	ctx := context.Background()
	storeCfg := testStoreConfig(t)

	saveTestSearch(t, storeCfg, []jobsearch.Posting{
		{JobID: "111", JobTitle: "Go Engineer", CompanyName: "Acme", JobDescription: strings.Repeat("Build services in Go. ", 10)},
		{JobID: "", JobTitle: "SRE", CompanyName: "Globex", JobURL: "https://www.linkedin.com/jobs/view/4012345678", JobDescription: "Short"},
	})

	description := strings.Repeat("Run Kubernetes clusters and own reliability. ", 5)
	fetcher := &pageFetcher{
		page: `<html><head><title>SRE | LinkedIn</title></head><body><div class="description">` + description + `</div></body></html>`,
	}
	gateway := llm.NewGatewayWithCompleter(llm.Config{}, nil, nil)

	session, results, err := openSession(ctx, storeCfg, profile.Demo(), gateway, fetcher, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = results.Shutdown(ctx) }()

	err = selectSavedJob(ctx, logging.NewNop(), session, 2)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	job := session.Job()
	if job.Selected == nil || job.Company != "Globex" {
		t.Fatalf("Expected second saved job selected, got %+v", job)
	}
	if !strings.HasPrefix(job.Description, "Run Kubernetes clusters") {
		t.Errorf("Expected description fetched from the job page, got %q", job.Description)
	}
	if atomic.LoadInt32(&fetcher.calls) != 1 {
		t.Errorf("Expected 1 fetch, got %d", fetcher.calls)
	}

	// A rich saved description is used as is.
	err = selectSavedJob(ctx, logging.NewNop(), session, 1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if session.Job().Company != "Acme" || atomic.LoadInt32(&fetcher.calls) != 1 {
		t.Error("Expected first job selected without fetching")
	}
}

func TestSelectSavedJobErrors(t *testing.T) {
	ctx := context.Background()
	storeCfg := testStoreConfig(t)
	gateway := llm.NewGatewayWithCompleter(llm.Config{}, nil, nil)

	session, results, err := openSession(ctx, storeCfg, profile.Demo(), gateway, &pageFetcher{}, logging.NewNop())
	if err != nil {
		t.Fatalf("Failed to open session: %v", err)
	}
	defer func() { _ = results.Shutdown(ctx) }()

	err = selectSavedJob(ctx, logging.NewNop(), session, 1)
	if !errors.Is(err, ErrNoSavedSearch) {
		t.Errorf("Expected ErrNoSavedSearch, got %v", err)
	}

	saveTestSearch(t, storeCfg, []jobsearch.Posting{{JobID: "111", JobTitle: "Go Engineer", JobDescription: strings.Repeat("x", 200)}})

	for _, n := range []int{0, 2} {
		err = selectSavedJob(ctx, logging.NewNop(), session, n)
		if err == nil {
			t.Errorf("Expected out of range error for job %d", n)
		}
	}

	// A thin description whose page cannot be parsed leaves nothing to tailor against.
	saveTestSearch(t, storeCfg, []jobsearch.Posting{{JobID: "222", JobTitle: "SRE"}})
	err = selectSavedJob(ctx, logging.NewNop(), session, 1)
	if !errors.Is(err, editor.ErrNoJobDescription) {
		t.Errorf("Expected ErrNoJobDescription, got %v", err)
	}
}

func TestImportResume(t *testing.T) {
	existing := profile.Demo()
	merged := importResume(existing, profile.Profile{Name: "Jane Doe", Skills: []string{"Go", "Rust"}}, logging.NewNop())

	if merged.Name != "Jane Doe" {
		t.Errorf("Expected 'Jane Doe', got '%s'", merged.Name)
	}
	if len(merged.Skills) != 2 {
		t.Errorf("Expected imported skills, got %v", merged.Skills)
	}
	if merged.Email != existing.Email || len(merged.Experience) != len(existing.Experience) {
		t.Error("Expected fields missing from the resume to be kept")
	}
}

func TestSearchCriteriaFrom(t *testing.T) {
	defer func() { searchCriteria = jobsearch.Criteria{} }()

	tests := []struct {
		name     string
		flags    jobsearch.Criteria
		args     []string
		wantErr  error
		expected string
	}{
		{"title argument", jobsearch.Criteria{ExperienceLevel: "Mid-Senior"}, []string{"SRE"}, nil, "SRE"},
		{"nothing to search", jobsearch.Criteria{}, nil, jobsearch.ErrMissingInput, ""},
		{"display label rejected", jobsearch.Criteria{ExperienceLevel: "Mid-Senior level"}, []string{"SRE"}, jobsearch.ErrUnknownFilter, "SRE"},
		{"unknown employment type", jobsearch.Criteria{Companies: []string{"Acme"}, EmploymentType: "Gig"}, nil, jobsearch.ErrUnknownFilter, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searchCriteria = tt.flags

			criteria, err := searchCriteriaFrom(tt.args)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}
			if criteria.Title != tt.expected {
				t.Errorf("Expected title '%s', got '%s'", tt.expected, criteria.Title)
			}
		})
	}
}

func TestSearchFlagHelpListsAcceptedLabels(t *testing.T) {
	for flag, labels := range map[string][]string{
		"experience-level": jobsearch.ExperienceLevels(),
		"employment-type":  jobsearch.EmploymentTypes(),
		"work-arrangement": jobsearch.WorkArrangements(),
		"posting-time":     jobsearch.PostingTimes(),
	} {
		usage := searchCmd.Flags().Lookup(flag).Usage
		for _, label := range labels {
			if !strings.Contains(usage, label) {
				t.Errorf("Expected --%s help to list '%s', got '%s'", flag, label, usage)
			}
		}
	}
}
