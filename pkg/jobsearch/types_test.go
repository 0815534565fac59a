package jobsearch

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

func TestCriteriaValidate(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantErr  bool
	}{
		{"title only", Criteria{Title: "Engineer"}, false},
		{"company only", Criteria{Companies: []string{"Acme"}}, false},
		{"blank title and companies", Criteria{Title: "  ", Companies: []string{"", " "}}, true},
		{"nothing", Criteria{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.Validate()
			if tt.wantErr && !errors.Is(err, ErrMissingInput) {
				t.Errorf("Expected ErrMissingInput, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestCriteriaCheckFilters(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		wantErr  bool
	}{
		{"no filters", Criteria{Title: "Engineer"}, false},
		{"known labels", Criteria{ExperienceLevel: "Mid-Senior", EmploymentType: "Other", WorkArrangement: "Remote", PostingTime: "Any Time"}, false},
		{"display label for experience", Criteria{ExperienceLevel: "Mid-Senior level"}, true},
		{"entry level", Criteria{ExperienceLevel: "Entry level"}, true},
		{"lowercase employment type", Criteria{EmploymentType: "full-time"}, true},
		{"unknown posting time", Criteria{PostingTime: "Yesterday"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.criteria.CheckFilters()
			if tt.wantErr && !errors.Is(err, ErrUnknownFilter) {
				t.Errorf("Expected ErrUnknownFilter, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestAcceptedLabelsAllMap(t *testing.T) {
	for _, label := range ExperienceLevels() {
		if BuildActorInput(Criteria{ExperienceLevel: label}).ExperienceLevel == "" {
			t.Errorf("Expected experience level '%s' to map", label)
		}
	}
	for _, label := range EmploymentTypes() {
		if BuildActorInput(Criteria{EmploymentType: label}).JobType == "" {
			t.Errorf("Expected employment type '%s' to map", label)
		}
	}
	for _, label := range WorkArrangements() {
		if BuildActorInput(Criteria{WorkArrangement: label}).WorkSchedule == "" {
			t.Errorf("Expected work arrangement '%s' to map", label)
		}
	}
	for _, label := range PostingTimes() {
		if BuildActorInput(Criteria{PostingTime: label}).JobPostTime == "" {
			t.Errorf("Expected posting time '%s' to map", label)
		}
	}
}

func TestBuildActorInput(t *testing.T) {
	input := BuildActorInput(Criteria{
		Title:           "Data Engineer",
		Companies:       []string{"Acme", "", "Globex"},
		ExperienceLevel: "Mid-Senior",
		EmploymentType:  "Contract",
		WorkArrangement: "Hybrid",
		PostingTime:     "Past Week",
		JobsEntries:     25,
	})

	if input.Location != DefaultLocation {
		t.Errorf("Expected default location, got '%s'", input.Location)
	}

	if input.JobsEntries != 25 {
		t.Errorf("Expected 25 entries, got %d", input.JobsEntries)
	}

	if len(input.CompanyNames) != 2 || input.CompanyNames[1] != "Globex" {
		t.Errorf("Expected blank companies dropped, got %v", input.CompanyNames)
	}

	if input.ExperienceLevel != "3" || input.JobType != "C" || input.WorkSchedule != "3" || input.JobPostTime != "r604800" {
		t.Errorf("Unexpected mapped filters: %+v", input)
	}
}

func TestBuildActorInputUnknownLabelsOmitted(t *testing.T) {
	input := BuildActorInput(Criteria{
		Title:           "Engineer",
		ExperienceLevel: "Wizard",
		EmploymentType:  "Gig",
		WorkArrangement: "Moon",
		PostingTime:     "Last decade",
		ResultLimit:     5,
	})

	if input.ExperienceLevel != "" || input.JobType != "" || input.WorkSchedule != "" || input.JobPostTime != "" {
		t.Errorf("Expected unknown labels to be omitted, got %+v", input)
	}

	if input.JobsEntries != 5 {
		t.Errorf("Expected 5 entries, got %d", input.JobsEntries)
	}
}

func TestPostingTimeAnyTimeSharesDayWindow(t *testing.T) {
	if postingTimeCodes["Any Time"] != postingTimeCodes["Past 24 hours"] {
		t.Error("Expected 'Any Time' to map to the 24 hour window")
	}
}

func TestFormatLabels(t *testing.T) {
	tests := []struct {
		got      string
		expected string
	}{
		{FormatExperienceLevel("1"), "Entry level"},
		{FormatExperienceLevel("4"), "Senior level"},
		{FormatExperienceLevel("9"), "9"},
		{FormatEmploymentType("F"), "Full-time"},
		{FormatEmploymentType("O"), "O"},
	}

	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("Expected '%s', got '%s'", tt.expected, tt.got)
		}
	}
}

func TestNormalizeItemDefaults(t *testing.T) {
	p := NormalizeItem(gjson.Parse(`{"job_title":"Engineer"}`))

	if p.JobTitle != "Engineer" {
		t.Errorf("Expected title 'Engineer', got '%s'", p.JobTitle)
	}

	if p.CompanyName != "" || p.JobURL != "" || p.ApplyURL != "" || p.JobID != "" {
		t.Errorf("Expected empty defaults, got %+v", p)
	}

	if p.SalaryRange != nil {
		t.Errorf("Expected nil salary range, got '%s'", *p.SalaryRange)
	}

	if p.EasyApply {
		t.Error("Expected easy_apply false")
	}
}

func TestNormalizeItemLenientTypes(t *testing.T) {
	p := NormalizeItem(gjson.Parse(`{
		"num_applicants": 57,
		"industries": ["Software", "Finance"],
		"salary_range": "$100k-$120k",
		"easy_apply": true,
		"apply_url": "https://acme.example/apply",
		"job_url": "https://www.linkedin.com/jobs/view/99",
		"job_id": "explicit"
	}`))

	if p.NumApplicants != "57" {
		t.Errorf("Expected '57', got '%s'", p.NumApplicants)
	}

	if p.Industries != "Software, Finance" {
		t.Errorf("Expected joined industries, got '%s'", p.Industries)
	}

	if p.SalaryRange == nil || *p.SalaryRange != "$100k-$120k" {
		t.Error("Expected salary range to be set")
	}

	if !p.EasyApply {
		t.Error("Expected easy_apply true")
	}

	if p.ApplyURL != "https://acme.example/apply" {
		t.Errorf("Expected explicit apply URL, got '%s'", p.ApplyURL)
	}

	if p.JobID != "explicit" {
		t.Errorf("Expected explicit job ID, got '%s'", p.JobID)
	}
}

func TestNormalizeDatasetNonArray(t *testing.T) {
	for _, raw := range []string{`{"items":[]}`, `not json`, ``, `null`} {
		postings := NormalizeDataset([]byte(raw))
		if postings == nil || len(postings) != 0 {
			t.Errorf("Expected empty result for %q, got %v", raw, postings)
		}
	}
}
