package linkedin

import "github.com/pkg/errors"

// ErrNoJobFields is returned when neither a title nor a company could be found.
var ErrNoJobFields = errors.New("could not extract job information; the page structure might have changed or access is restricted")

// Placeholder values used when a field is missing at a rendering boundary.
const (
	PlaceholderTitle       = "Job title not found"
	PlaceholderCompany     = "Company name not found"
	PlaceholderLocation    = "Location not specified"
	PlaceholderDescription = "Job description could not be extracted. Please enter the job details manually or try refreshing the LinkedIn page."
	PlaceholderUnspecified = "Not specified"

	// MinDescriptionLength is the shortest description kept as-is by WithPlaceholders.
	MinDescriptionLength = 50
)

// ParsedJobFields holds the fields recovered from a job page.
type ParsedJobFields struct {
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Description    string   `json:"description"`
	Location       string   `json:"location"`
	EmploymentType string   `json:"employmentType"`
	SeniorityLevel string   `json:"seniorityLevel"`
	Industries     []string `json:"industries"`
}

// WithPlaceholders returns a copy in which every missing field has a display value.
func (f ParsedJobFields) WithPlaceholders() (filled ParsedJobFields) {
	filled = f

	if filled.Title == "" {
		filled.Title = PlaceholderTitle
	}
	if filled.Company == "" {
		filled.Company = PlaceholderCompany
	}
	if filled.Location == "" {
		filled.Location = PlaceholderLocation
	}
	if len(filled.Description) < MinDescriptionLength {
		filled.Description = PlaceholderDescription
	}
	if filled.EmploymentType == "" {
		filled.EmploymentType = PlaceholderUnspecified
	}
	if filled.SeniorityLevel == "" {
		filled.SeniorityLevel = PlaceholderUnspecified
	}
	if filled.Industries == nil {
		filled.Industries = []string{}
	}

	return filled
}

// Unavailable is the record produced when only the job ID is known.
func Unavailable(jobID string) (fields ParsedJobFields) {
	fields = ParsedJobFields{
		Title:          "Position " + jobID,
		Company:        PlaceholderCompany,
		Description:    "Job description not available due to LinkedIn access restrictions. Please enter the job details manually.",
		Location:       PlaceholderLocation,
		EmploymentType: PlaceholderUnspecified,
		SeniorityLevel: PlaceholderUnspecified,
		Industries:     []string{},
	}
	return fields
}
