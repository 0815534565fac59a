package jobsearch

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

//nolint:gochecknoglobals // lookup tables
var (
	experienceLevelCodes = map[string]string{
		"Intern":     "1",
		"Assistant":  "1",
		"Junior":     "1",
		"Mid-Senior": "3",
		"Director":   "5",
		"Executive":  "6",
	}

	jobTypeCodes = map[string]string{
		"Full-time":  "F",
		"Part-time":  "P",
		"Contract":   "C",
		"Temporary":  "T",
		"Volunteer":  "V",
		"Internship": "I",
		"Other":      "O",
	}

	workScheduleCodes = map[string]string{
		"On-site": "1",
		"Remote":  "2",
		"Hybrid":  "3",
	}

	// "Any Time" intentionally shares the 24 hour window.
	postingTimeCodes = map[string]string{
		"Any Time":      "r86400",
		"Past 24 hours": "r86400",
		"Past Week":     "r604800",
		"Past Month":    "r2592000",
	}

	experienceLevelLabels = map[string]string{
		"1": "Entry level",
		"2": "Associate",
		"3": "Mid-Senior level",
		"4": "Senior level",
		"5": "Director",
		"6": "Executive",
	}

	employmentTypeLabels = map[string]string{
		"F": "Full-time",
		"P": "Part-time",
		"C": "Contract",
		"T": "Temporary",
		"V": "Volunteer",
		"I": "Internship",
	}
)

// FormatExperienceLevel turns an actor experience code into a label. Unknown codes pass through.
func FormatExperienceLevel(code string) (label string) {
	label = code
	if known, ok := experienceLevelLabels[code]; ok {
		label = known
	}
	return label
}

// FormatEmploymentType turns an actor job-type code into a label. Unknown codes pass through.
func FormatEmploymentType(code string) (label string) {
	label = code
	if known, ok := employmentTypeLabels[code]; ok {
		label = known
	}
	return label
}

// ExperienceLevels lists the accepted experience filter labels.
func ExperienceLevels() (labels []string) {
	labels = []string{"Intern", "Assistant", "Junior", "Mid-Senior", "Director", "Executive"}
	return labels
}

// EmploymentTypes lists the accepted employment filter labels.
func EmploymentTypes() (labels []string) {
	labels = []string{"Full-time", "Part-time", "Contract", "Temporary", "Volunteer", "Internship", "Other"}
	return labels
}

// WorkArrangements lists the accepted work arrangement filter labels.
func WorkArrangements() (labels []string) {
	labels = []string{"On-site", "Remote", "Hybrid"}
	return labels
}

// PostingTimes lists the accepted posting time filter labels.
func PostingTimes() (labels []string) {
	labels = []string{"Any Time", "Past 24 hours", "Past Week", "Past Month"}
	return labels
}

// CheckFilters reports filter labels that have no actor code. BuildActorInput
// drops those filters from the search.
func (c Criteria) CheckFilters() (err error) {
	var problems []string

	check := func(name, value string, codes map[string]string, accepted []string) {
		if value == "" {
			return
		}
		if _, ok := codes[value]; !ok {
			problems = append(problems, fmt.Sprintf("%s %q (use one of: %s)", name, value, strings.Join(accepted, ", ")))
		}
	}

	check("experience level", c.ExperienceLevel, experienceLevelCodes, ExperienceLevels())
	check("employment type", c.EmploymentType, jobTypeCodes, EmploymentTypes())
	check("work arrangement", c.WorkArrangement, workScheduleCodes, WorkArrangements())
	check("posting time", c.PostingTime, postingTimeCodes, PostingTimes())

	if len(problems) > 0 {
		err = errors.Wrap(ErrUnknownFilter, strings.Join(problems, "; "))
	}
	return err
}
