// Package editor owns the state behind one resume-tailoring session: the
// profile being edited, the selected job, the last search, and whatever has
// been generated for them.
package editor

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
	"github.com/nikogura/smartresume/pkg/store"
)

// ThinDescriptionLength is the length below which a selected job's description
// is fetched again from its page.
const ThinDescriptionLength = 100

// ErrNoJobDescription is returned when generation is requested before a job
// description is available.
var ErrNoJobDescription = errors.New("please select or enter a job description first")

// ErrNoJobSelected is returned by Backfill when no posting is selected.
var ErrNoJobSelected = errors.New("no job selected")

// Generator produces tailored content.
type Generator interface {
	CoverLetter(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[string]
	TailoredSummary(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[string]
	TailoredExperience(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[[]profile.ExperienceRewrite]
	InterviewPrep(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[[]llm.InterviewQuestion]
	SkillsAnalysis(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[llm.SkillsAnalysis]
	CritiqueResume(ctx context.Context, p profile.Profile, jobDescription string) llm.Outcome[llm.Critique]
	ParseJobHTML(ctx context.Context, html string) llm.Outcome[linkedin.ParsedJobFields]
}

// PageFetcher downloads a LinkedIn job page.
type PageFetcher interface {
	FetchJobHTML(ctx context.Context, jobID string) (page string, err error)
}

// JobData is the job being tailored for.
type JobData struct {
	Title          string             `json:"title"`
	Company        string             `json:"company"`
	Location       string             `json:"location"`
	EmploymentType string             `json:"employmentType"`
	SeniorityLevel string             `json:"seniorityLevel"`
	Salary         string             `json:"salary"`
	Description    string             `json:"description"`
	Selected       *jobsearch.Posting `json:"selectedJob,omitempty"`
}

// Generated holds the content produced for the current job.
type Generated struct {
	CoverLetter        string                      `json:"coverLetter"`
	TailoredSummary    string                      `json:"tailoredSummary"`
	TailoredExperience []profile.ExperienceRewrite `json:"tailoredExperience"`
	InterviewQuestions []llm.InterviewQuestion     `json:"interviewQuestions"`
	SkillsAnalysis     *llm.SkillsAnalysis         `json:"skillsAnalysis"`
	Critique           *llm.Critique               `json:"resumeCritique"`
	// Fallbacks names the tasks whose value is a static fallback.
	Fallbacks []llm.Task `json:"fallbacks,omitempty"`
}

// Session is the single owner of editor state. All methods are safe for
// concurrent use.
type Session struct {
	mu        sync.Mutex
	profile   profile.Profile
	job       JobData
	query     string
	results   []jobsearch.Posting
	generated Generated

	gen     Generator
	fetcher PageFetcher
	store   store.ResultStore
	logger  *logging.Logger
}

// NewSession creates a session for p. fetcher and results may be nil, which
// disables backfilling and persistence respectively.
func NewSession(p profile.Profile, gen Generator, fetcher PageFetcher, results store.ResultStore, logger *logging.Logger) (s *Session) {
	if logger == nil {
		logger = logging.NewNop()
	}

	s = &Session{
		profile: p,
		results: []jobsearch.Posting{},
		gen:     gen,
		fetcher: fetcher,
		store:   results,
		logger:  logger.With("component", "editor"),
	}
	return s
}

// Profile returns a copy of the profile.
func (s *Session) Profile() (p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p = s.profile
	return p
}

// SetProfile replaces the profile and discards generated content.
func (s *Session) SetProfile(p profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
	s.generated = Generated{}
}

// ImportProfile overlays a parsed resume onto the current profile.
func (s *Session) ImportProfile(parsed profile.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = s.profile.Merge(parsed)
}

// Job returns the job being tailored for.
func (s *Session) Job() (job JobData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job = s.job
	return job
}

// JobSelected reports whether a search result is selected.
func (s *Session) JobSelected() (selected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected = s.job.Selected != nil
	return selected
}

// SetJobDescription sets a manually entered job description.
func (s *Session) SetJobDescription(description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job.Description = description
}

// ApplyParsedJob fills the job from parsed page fields.
func (s *Session) ApplyParsedJob(fields linkedin.ParsedJobFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.job.Title = fields.Title
	s.job.Company = fields.Company
	s.job.Location = fields.Location
	s.job.EmploymentType = fields.EmploymentType
	s.job.SeniorityLevel = fields.SeniorityLevel
	s.job.Description = fields.Description
}

// Query returns the title of the search that produced the current results.
func (s *Session) Query() (query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	query = s.query
	return query
}

// Results returns the current search results.
func (s *Session) Results() (results []jobsearch.Posting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	results = append([]jobsearch.Posting{}, s.results...)
	return results
}

// Generated returns the generated content.
func (s *Session) Generated() (g Generated) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g = s.generated
	return g
}

// Restore loads the persisted search results, as on session start.
func (s *Session) Restore(ctx context.Context) (err error) {
	var results []jobsearch.Posting
	results, err = s.loadPersisted(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.results = results
	s.mu.Unlock()

	s.logger.Debug("restored search results", "jobs", len(results))
	return err
}

// SetSearchResults records a completed search. Non-empty results replace the
// persisted set.
func (s *Session) SetSearchResults(ctx context.Context, criteria jobsearch.Criteria, jobs []jobsearch.Posting) (err error) {
	if jobs == nil {
		jobs = []jobsearch.Posting{}
	}

	s.mu.Lock()
	s.results = jobs
	s.query = criteria.Title
	s.mu.Unlock()

	if s.store == nil || len(jobs) == 0 {
		return err
	}

	err = s.store.Save(ctx, store.Snapshot{Criteria: criteria, Jobs: jobs})
	if err != nil {
		err = errors.Wrap(err, "failed to persist search results")
		return err
	}

	return err
}

// SelectJob makes posting the job being tailored for. Every job field is
// replaced and generated content is discarded.
func (s *Session) SelectJob(posting jobsearch.Posting) {
	selected := posting

	salary := ""
	if posting.SalaryRange != nil {
		salary = *posting.SalaryRange
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.job = JobData{
		Title:          posting.JobTitle,
		Company:        posting.CompanyName,
		Location:       posting.Location,
		EmploymentType: posting.EmploymentType,
		SeniorityLevel: posting.SeniorityLevel,
		Salary:         salary,
		Description:    posting.JobDescription,
		Selected:       &selected,
	}
	s.generated = Generated{}
}

// ResetJobSelection clears the job and the search query and reloads the
// persisted search results.
func (s *Session) ResetJobSelection(ctx context.Context) (err error) {
	results, loadErr := s.loadPersisted(ctx)
	if loadErr != nil {
		s.logger.Warn("failed to load saved search results", "err", loadErr)
		results = []jobsearch.Posting{}
		err = loadErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.job = JobData{}
	s.query = ""
	s.results = results
	s.generated = Generated{}

	return err
}

func (s *Session) loadPersisted(ctx context.Context) (results []jobsearch.Posting, err error) {
	results = []jobsearch.Posting{}
	if s.store == nil {
		return results, err
	}

	var snap store.Snapshot
	snap, err = s.store.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrEmpty) {
			err = nil
		}
		return results, err
	}

	results = snap.Jobs
	return results, err
}

// Backfill re-fetches the selected job's page when its description is too thin
// to tailor against, and fills the description and any missing fields from it.
// It reports whether anything changed.
func (s *Session) Backfill(ctx context.Context) (changed bool, err error) {
	s.mu.Lock()
	job := s.job
	s.mu.Unlock()

	if job.Selected == nil {
		err = ErrNoJobSelected
		return changed, err
	}

	if len(strings.TrimSpace(job.Description)) >= ThinDescriptionLength {
		return changed, err
	}

	if s.fetcher == nil {
		err = errors.New("no page fetcher configured")
		return changed, err
	}

	jobID, ok := selectionID(job.Selected)
	if !ok {
		err = errors.Errorf("no job ID for %q", job.Selected.JobURL)
		return changed, err
	}

	var page string
	page, err = s.fetcher.FetchJobHTML(ctx, jobID)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch job %s", jobID)
		return changed, err
	}

	parsed := s.gen.ParseJobHTML(ctx, page)
	fields := parsed.Value
	if fields.Description == linkedin.PlaceholderDescription {
		s.logger.Info("job page had no usable description", "job_id", jobID)
		return changed, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The selection may have moved on while the page was fetched.
	if current, _ := selectionID(s.job.Selected); current != jobID || s.job.Selected.JobURL != job.Selected.JobURL {
		return changed, err
	}

	s.job.Description = fields.Description
	fillEmpty(&s.job.Location, fields.Location, linkedin.PlaceholderLocation)
	fillEmpty(&s.job.EmploymentType, fields.EmploymentType, linkedin.PlaceholderUnspecified)
	fillEmpty(&s.job.SeniorityLevel, fields.SeniorityLevel, linkedin.PlaceholderUnspecified)
	changed = true

	return changed, err
}

// selectionID is the job ID of posting, taken from its URL when the posting
// carries none.
func selectionID(posting *jobsearch.Posting) (jobID string, ok bool) {
	if posting == nil {
		return jobID, ok
	}

	jobID = posting.JobID
	if jobID != "" {
		ok = true
		return jobID, ok
	}

	jobID, ok = linkedin.ExtractJobID(posting.JobURL)
	return jobID, ok
}

func fillEmpty(dst *string, value, placeholder string) {
	if *dst == "" && value != "" && value != placeholder {
		*dst = value
	}
}

// inputs snapshots what generation needs.
func (s *Session) inputs() (p profile.Profile, jobDescription string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobDescription = s.job.Description
	if strings.TrimSpace(jobDescription) == "" {
		err = ErrNoJobDescription
		return p, jobDescription, err
	}

	p = s.profile
	return p, jobDescription, err
}

// Tailor generates the tailored summary and experience concurrently and
// records both once both are done. A cancelled ctx records nothing.
func (s *Session) Tailor(ctx context.Context) (err error) {
	p, jd, err := s.inputs()
	if err != nil {
		return err
	}

	var summary llm.Outcome[string]
	var experience llm.Outcome[[]profile.ExperienceRewrite]

	// Generator calls never fail, they fall back; the group only joins them.
	var g errgroup.Group
	g.Go(func() error {
		summary = s.gen.TailoredSummary(ctx, p, jd)
		return nil
	})
	g.Go(func() error {
		experience = s.gen.TailoredExperience(ctx, p, jd)
		return nil
	})
	_ = g.Wait()

	// Cancelled generation leaves state untouched instead of storing fallbacks.
	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generated.TailoredSummary = summary.Value
	s.generated.TailoredExperience = experience.Value
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskTailoredSummary, summary.Fallback)
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskTailoredExperience, experience.Fallback)

	return err
}

// Analyze generates the cover letter, skills analysis, critique, and interview
// questions concurrently. A cancelled ctx records nothing.
func (s *Session) Analyze(ctx context.Context) (err error) {
	p, jd, err := s.inputs()
	if err != nil {
		return err
	}

	var letter llm.Outcome[string]
	var skills llm.Outcome[llm.SkillsAnalysis]
	var critique llm.Outcome[llm.Critique]
	var questions llm.Outcome[[]llm.InterviewQuestion]

	var g errgroup.Group
	g.Go(func() error {
		letter = s.gen.CoverLetter(ctx, p, jd)
		return nil
	})
	g.Go(func() error {
		skills = s.gen.SkillsAnalysis(ctx, p, jd)
		return nil
	})
	g.Go(func() error {
		critique = s.gen.CritiqueResume(ctx, p, jd)
		return nil
	})
	g.Go(func() error {
		questions = s.gen.InterviewPrep(ctx, p, jd)
		return nil
	})
	_ = g.Wait()

	err = ctx.Err()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.generated.CoverLetter = letter.Value
	s.generated.SkillsAnalysis = &skills.Value
	s.generated.Critique = &critique.Value
	s.generated.InterviewQuestions = questions.Value
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskCoverLetter, letter.Fallback)
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskSkillsAnalysis, skills.Fallback)
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskResumeCritique, critique.Fallback)
	s.generated.Fallbacks = noteFallback(s.generated.Fallbacks, llm.TaskInterviewPrep, questions.Fallback)

	return err
}

// noteFallback adds or removes task from the fallback list.
func noteFallback(tasks []llm.Task, task llm.Task, fallback bool) (updated []llm.Task) {
	updated = make([]llm.Task, 0, len(tasks)+1)
	for _, t := range tasks {
		if t != task {
			updated = append(updated, t)
		}
	}
	if fallback {
		updated = append(updated, task)
	}
	return updated
}

// ResolvedExperience is the experience list with tailored descriptions applied
// by experience ID.
func (s *Session) ResolvedExperience() (experience []profile.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	experience = profile.ApplyRewrites(s.profile.Experience, s.generated.TailoredExperience)
	return experience
}

// Summary is the tailored summary when one exists, else the profile summary.
func (s *Session) Summary() (summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	summary = s.generated.TailoredSummary
	if summary == "" {
		summary = s.profile.Summary
	}
	return summary
}
