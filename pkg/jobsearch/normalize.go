package jobsearch

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/nikogura/smartresume/pkg/linkedin"
)

// NormalizeDataset converts raw dataset items into postings. Anything that is
// not a JSON array yields an empty result.
func NormalizeDataset(raw []byte) (postings []Posting) {
	postings = make([]Posting, 0)

	if !gjson.ValidBytes(raw) {
		return postings
	}

	items := gjson.ParseBytes(raw)
	if !items.IsArray() {
		return postings
	}

	items.ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			postings = append(postings, NormalizeItem(item))
		}
		return true
	})

	return postings
}

// NormalizeItem fills every Posting field from one dataset record, defaulting
// missing values.
func NormalizeItem(item gjson.Result) (p Posting) {
	p = Posting{
		CompanyLogoURL:        text(item, "company_logo_url"),
		CompanyName:           text(item, "company_name"),
		JobTitle:              text(item, "job_title"),
		JobURL:                text(item, "job_url"),
		ApplyURL:              text(item, "apply_url"),
		CompanyURL:            text(item, "company_url"),
		Location:              text(item, "location"),
		TimePosted:            text(item, "time_posted"),
		NumApplicants:         text(item, "num_applicants"),
		JobDescription:        text(item, "job_description"),
		JobID:                 text(item, "job_id"),
		SeniorityLevel:        text(item, "seniority_level"),
		JobFunction:           text(item, "job_function"),
		Industries:            text(item, "industries"),
		EmploymentType:        text(item, "employment_type"),
		EasyApply:             item.Get("easy_apply").Bool(),
		JobDescriptionRawHTML: text(item, "job_description_raw_html"),
	}

	if p.ApplyURL == "" {
		p.ApplyURL = p.JobURL
	}

	if p.JobID == "" {
		if id, ok := linkedin.ExtractJobID(p.JobURL); ok {
			p.JobID = id
		}
	}

	if salary := text(item, "salary_range"); salary != "" {
		p.SalaryRange = &salary
	}

	return p
}

// text reads key as a string. Numbers keep their literal form and string
// arrays are joined.
func text(item gjson.Result, key string) (value string) {
	field := item.Get(key)

	switch {
	case !field.Exists(), field.Type == gjson.Null:
		return value
	case field.IsArray():
		parts := make([]string, 0)
		for _, element := range field.Array() {
			if s := strings.TrimSpace(element.String()); s != "" {
				parts = append(parts, s)
			}
		}
		value = strings.Join(parts, ", ")
	case field.IsObject():
		return value
	default:
		value = field.String()
	}

	return value
}
