package jobsearch

import "strings"

// DefaultLocation is used when criteria carry no location.
const DefaultLocation = "United States"

// DefaultResultLimit is used when criteria carry no result limit.
const DefaultResultLimit = 10

// Criteria are the user-supplied search filters.
type Criteria struct {
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	Companies       []string `json:"companies"`
	ExperienceLevel string   `json:"experienceLevel"`
	EmploymentType  string   `json:"employmentType"`
	WorkArrangement string   `json:"workArrangement"`
	PostingTime     string   `json:"postingTime"`
	ResultLimit     int      `json:"resultLimit,omitempty"`
	// JobsEntries is the older name for ResultLimit, still accepted from clients.
	JobsEntries int `json:"jobsEntries,omitempty"`
}

// Validate rejects criteria with neither a title nor a non-blank company.
func (c Criteria) Validate() (err error) {
	if strings.TrimSpace(c.Title) != "" {
		return err
	}

	if len(c.ValidCompanies()) > 0 {
		return err
	}

	err = ErrMissingInput
	return err
}

// ValidCompanies returns the company names with blanks removed.
func (c Criteria) ValidCompanies() (companies []string) {
	companies = make([]string, 0, len(c.Companies))
	for _, company := range c.Companies {
		if strings.TrimSpace(company) != "" {
			companies = append(companies, company)
		}
	}
	return companies
}

// Limit returns the requested result count, or the default.
func (c Criteria) Limit() (limit int) {
	switch {
	case c.ResultLimit > 0:
		limit = c.ResultLimit
	case c.JobsEntries > 0:
		limit = c.JobsEntries
	default:
		limit = DefaultResultLimit
	}
	return limit
}

// Posting is one normalized job returned by a search.
type Posting struct {
	CompanyLogoURL        string  `json:"company_logo_url"`
	CompanyName           string  `json:"company_name"`
	JobTitle              string  `json:"job_title"`
	JobURL                string  `json:"job_url"`
	ApplyURL              string  `json:"apply_url"`
	CompanyURL            string  `json:"company_url"`
	Location              string  `json:"location"`
	TimePosted            string  `json:"time_posted"`
	NumApplicants         string  `json:"num_applicants"`
	JobDescription        string  `json:"job_description"`
	JobID                 string  `json:"job_id"`
	SeniorityLevel        string  `json:"seniority_level"`
	JobFunction           string  `json:"job_function"`
	Industries            string  `json:"industries"`
	EmploymentType        string  `json:"employment_type"`
	SalaryRange           *string `json:"salary_range"`
	EasyApply             bool    `json:"easy_apply"`
	JobDescriptionRawHTML string  `json:"job_description_raw_html"`
}

// ActorInput is the body sent to start an actor run.
type ActorInput struct {
	Location        string   `json:"location"`
	JobsEntries     int      `json:"jobs_entries"`
	StartJobs       int      `json:"start_jobs"`
	CompanyNames    []string `json:"company_names,omitempty"`
	JobTitle        string   `json:"job_title,omitempty"`
	ExperienceLevel string   `json:"experience_level,omitempty"`
	JobType         string   `json:"job_type,omitempty"`
	WorkSchedule    string   `json:"work_schedule,omitempty"`
	JobPostTime     string   `json:"job_post_time,omitempty"`
}

// BuildActorInput maps criteria onto the actor's input fields. Unrecognized
// filter labels are left out.
func BuildActorInput(c Criteria) (input ActorInput) {
	input = ActorInput{
		Location:    c.Location,
		JobsEntries: c.Limit(),
		StartJobs:   0,
	}

	if input.Location == "" {
		input.Location = DefaultLocation
	}

	if companies := c.ValidCompanies(); len(companies) > 0 {
		input.CompanyNames = companies
	}

	input.JobTitle = c.Title
	input.ExperienceLevel = experienceLevelCodes[c.ExperienceLevel]
	input.JobType = jobTypeCodes[c.EmploymentType]
	input.WorkSchedule = workScheduleCodes[c.WorkArrangement]
	input.JobPostTime = postingTimeCodes[c.PostingTime]

	return input
}
