package linkedin

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
)

const fullJobPage = `<html>
<head><title>Senior Go Engineer | Acme Corp | LinkedIn</title></head>
<body>
<script>{"companyName": "Acme Corp", "formattedLocation": "Berlin, Germany", "employmentType": "Full-time", "seniorityLevel": "Mid-Senior level", "industries": ["Software Development", "IT Services"]}</script>
<span class="job-industry">Software Development</span>
<span class="job-industry">Fintech</span>
<div class="show-more-less-html__markup description">
<p>We are looking for a Go engineer to build distributed payment systems &amp; internal tooling.</p>
<ul><li>Design APIs</li><li>Operate Kubernetes clusters</li><li>Mentor other engineers</li></ul>
</div>
</body>
</html>`

func TestExtractFullPage(t *testing.T) {
	fields, err := Extract(fullJobPage)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fields.Title != "Senior Go Engineer" {
		t.Errorf("Expected title 'Senior Go Engineer', got '%s'", fields.Title)
	}

	if fields.Company != "Acme Corp" {
		t.Errorf("Expected company 'Acme Corp', got '%s'", fields.Company)
	}

	if fields.Location != "Berlin, Germany" {
		t.Errorf("Expected location 'Berlin, Germany', got '%s'", fields.Location)
	}

	if fields.EmploymentType != "Full-time" {
		t.Errorf("Expected employment type 'Full-time', got '%s'", fields.EmploymentType)
	}

	if fields.SeniorityLevel != "Mid-Senior level" {
		t.Errorf("Expected seniority 'Mid-Senior level', got '%s'", fields.SeniorityLevel)
	}

	if !strings.Contains(fields.Description, "distributed payment systems & internal tooling") {
		t.Errorf("Expected decoded description, got '%s'", fields.Description)
	}

	if strings.Contains(fields.Description, "<") {
		t.Errorf("Expected description without markup, got '%s'", fields.Description)
	}

	expected := []string{"Software Development", "IT Services", "Fintech"}
	if len(fields.Industries) != len(expected) {
		t.Fatalf("Expected industries %v, got %v", expected, fields.Industries)
	}

	for i, industry := range expected {
		if fields.Industries[i] != industry {
			t.Errorf("Expected industry %d '%s', got '%s'", i, industry, fields.Industries[i])
		}
	}
}

func TestExtractTitleOnly(t *testing.T) {
	fields, err := Extract("<html><head><title>X | LinkedIn</title></head><body></body></html>")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fields.Title != "X" {
		t.Errorf("Expected title 'X', got '%s'", fields.Title)
	}

	if fields.Company != "" || fields.Location != "" || fields.Description != "" {
		t.Errorf("Expected empty fields, got %+v", fields)
	}

	filled := fields.WithPlaceholders()
	if filled.Company != PlaceholderCompany {
		t.Errorf("Expected company placeholder, got '%s'", filled.Company)
	}

	if filled.Location != PlaceholderLocation {
		t.Errorf("Expected location placeholder, got '%s'", filled.Location)
	}

	if filled.Description != PlaceholderDescription {
		t.Errorf("Expected description placeholder, got '%s'", filled.Description)
	}
}

func TestExtractNoStructure(t *testing.T) {
	_, err := Extract("<html><body><p>nothing to see</p></body></html>")
	if !errors.Is(err, ErrNoJobFields) {
		t.Errorf("Expected ErrNoJobFields, got %v", err)
	}
}

func TestExtractTopCardFallbacks(t *testing.T) {
	page := `<html><body>
<h1 class="top-card-layout__title">Platform Engineer</h1>
<a class="topcard top-card-layout__company-url" href="/c">Globex</a>
<span class="top-card-layout__location-bullet">Remote</span>
</body></html>`

	fields, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fields.Title != "Platform Engineer" {
		t.Errorf("Expected title 'Platform Engineer', got '%s'", fields.Title)
	}

	if fields.Company != "Globex" {
		t.Errorf("Expected company 'Globex', got '%s'", fields.Company)
	}

	if fields.Location != "Remote" {
		t.Errorf("Expected location 'Remote', got '%s'", fields.Location)
	}
}

func TestExtractShortJSONDescriptionIgnored(t *testing.T) {
	page := `<title>Role | LinkedIn</title><script>{"description": "too short"}</script>`

	fields, err := Extract(page)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fields.Description == "too short" {
		t.Error("Expected short JSON description to be ignored")
	}
}

func TestLargestTextBlockSkipsBoilerplate(t *testing.T) {
	body := strings.Repeat("Build reliable data pipelines and own the ingestion platform end to end. ", 3)
	boilerplate := strings.Repeat("Sign in to LinkedIn to see who you already know at this company today. ", 5)

	page := "<html><body><footer><div>" + boilerplate + "</div></footer><article><p>" + body + "</p></article></body></html>"

	block := LargestTextBlock(page)
	if !strings.HasPrefix(block, "Build reliable data pipelines") {
		t.Errorf("Expected description block, got '%s'", block)
	}
}

func TestLargestTextBlockNothingQualifies(t *testing.T) {
	block := LargestTextBlock("<div>short</div>")
	if block != "" {
		t.Errorf("Expected empty block, got '%s'", block)
	}
}

func TestCustomRules(t *testing.T) {
	rules := DefaultRules()
	rules.Title = []Rule{{Name: "fixed", Extract: func(string) string { return "  Fixed Title  " }}}

	fields, err := NewExtractorWithRules(rules).Extract("<html></html>")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if fields.Title != "Fixed Title" {
		t.Errorf("Expected 'Fixed Title', got '%s'", fields.Title)
	}
}
