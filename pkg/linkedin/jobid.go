package linkedin

import "regexp"

// jobIDPatterns are tried in order; the first match wins.
//
//nolint:gochecknoglobals // compiled once
var jobIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`linkedin\.com/jobs/view/(\d+)`),
	regexp.MustCompile(`linkedin\.com/jobs/view/\?currentJobId=(\d+)`),
	regexp.MustCompile(`linkedin\.com/jobs/search/\?[^"]*currentJobId=(\d+)`),
	regexp.MustCompile(`linkedin\.com/jobs/view/(\d+)/[^"]*`),
	regexp.MustCompile(`linkedin\.com/jobs/collections/[^?]*\?currentJobId=(\d+)`),
	regexp.MustCompile(`linkedin\.com/jobs/[^?]*\?currentJobId=(\d+)`),
}

// ExtractJobID returns the numeric job identifier embedded in a LinkedIn job URL.
func ExtractJobID(rawURL string) (id string, ok bool) {
	if rawURL == "" {
		return id, ok
	}

	for _, pattern := range jobIDPatterns {
		match := pattern.FindStringSubmatch(rawURL)
		if len(match) > 1 && match[1] != "" {
			id = match[1]
			ok = true
			return id, ok
		}
	}

	return id, ok
}

// IsJobURL reports whether rawURL points somewhere under linkedin.com/jobs.
func IsJobURL(rawURL string) (result bool) {
	result = jobsURLPattern.MatchString(rawURL)
	return result
}

//nolint:gochecknoglobals // compiled once
var jobsURLPattern = regexp.MustCompile(`linkedin\.com/jobs`)
