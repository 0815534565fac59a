package linkedin

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// Rule is one named strategy for pulling a field out of a page.
type Rule struct {
	Name    string
	Extract func(page string) string
}

// Rules lists the strategies for each field, in priority order.
type Rules struct {
	Title          []Rule
	Company        []Rule
	Location       []Rule
	Description    []Rule
	EmploymentType []Rule
	SeniorityLevel []Rule
}

// minDescriptionBlock is the length a candidate description must exceed.
const minDescriptionBlock = 100

// nonContentMarkers disqualify a text block from being the description.
//
//nolint:gochecknoglobals // lookup table
var nonContentMarkers = []string{"linkedin", "cookie", "privacy", "terms of service", "sign in"}

// descriptionBlockTags are the elements considered by the largest-block strategy.
//
//nolint:gochecknoglobals // lookup table
var descriptionBlockTags = map[string]bool{
	"div":     true,
	"section": true,
	"article": true,
	"main":    true,
	"ul":      true,
	"p":       true,
}

// DefaultRules returns the built-in extraction strategies.
func DefaultRules() (rules Rules) {
	rules = Rules{
		Title: []Rule{
			{Name: "title-tag", Extract: titleTag},
			regexRule("json-title", `"title":\s*"([^"]+)"`),
			regexRule("top-card-h1", `<h1[^>]*class[^>]*top-card-layout__title[^>]*>([^<]+)</h1>`),
			regexRule("h1", `<h1[^>]*>([^<]+)</h1>`),
		},
		Company: []Rule{
			regexRule("json-company-name", `"companyName":\s*"([^"]+)"`),
			regexRule("json-name", `"name":\s*"([^"]+)"`),
			regexRule("top-card-company-span", `<span[^>]*class[^>]*top-card-layout__company[^>]*>([^<]+)</span>`),
			regexRule("top-card-company-link", `<a[^>]*class[^>]*top-card-layout__company[^>]*>([^<]+)</a>`),
		},
		Location: []Rule{
			regexRule("json-formatted-location", `"formattedLocation":\s*"([^"]+)"`),
			regexRule("json-location", `"location":\s*"([^"]+)"`),
			regexRule("top-card-location", `<span[^>]*class[^>]*top-card-layout__location[^>]*>([^<]+)</span>`),
			regexRule("result-card-location", `<span[^>]*class[^>]*job-result-card__location[^>]*>([^<]+)</span>`),
		},
		Description: []Rule{
			{Name: "json-description", Extract: jsonDescription},
			sectionRule("description-div", `<div[^>]*class[^>]*description[^>]*>([\s\S]*?)</div>`),
			sectionRule("job-description-div", `<div[^>]*class[^>]*job-description[^>]*>([\s\S]*?)</div>`),
			sectionRule("description-section", `<section[^>]*class[^>]*description[^>]*>([\s\S]*?)</section>`),
			sectionRule("data-section-description", `<div[^>]*data-section="description"[^>]*>([\s\S]*?)</div>`),
			{Name: "largest-text-block", Extract: LargestTextBlock},
		},
		EmploymentType: []Rule{
			regexRule("json-employment-type", `"employmentType":\s*"([^"]+)"`),
			regexRule("employment-type-span", `<span[^>]*class[^>]*employment-type[^>]*>([^<]+)</span>`),
		},
		SeniorityLevel: []Rule{
			regexRule("json-seniority-level", `"seniorityLevel":\s*"([^"]+)"`),
			regexRule("seniority-level-span", `<span[^>]*class[^>]*seniority-level[^>]*>([^<]+)</span>`),
		},
	}
	return rules
}

// Extractor applies Rules to raw job-page HTML.
type Extractor struct {
	rules Rules
}

// NewExtractor creates an Extractor with the default rules.
func NewExtractor() (e *Extractor) {
	e = &Extractor{rules: DefaultRules()}
	return e
}

// NewExtractorWithRules creates an Extractor with custom rules.
func NewExtractorWithRules(rules Rules) (e *Extractor) {
	e = &Extractor{rules: rules}
	return e
}

// Extract is shorthand for NewExtractor().Extract(page).
func Extract(page string) (fields ParsedJobFields, err error) {
	fields, err = NewExtractor().Extract(page)
	return fields, err
}

// Extract pulls structured fields out of page. Missing fields are left empty.
// It fails only when both title and company are empty.
func (e *Extractor) Extract(page string) (fields ParsedJobFields, err error) {
	fields = ParsedJobFields{
		Title:          CleanText(firstMatch(page, e.rules.Title)),
		Company:        CleanText(firstMatch(page, e.rules.Company)),
		Location:       CleanText(firstMatch(page, e.rules.Location)),
		Description:    CleanText(firstMatch(page, e.rules.Description)),
		EmploymentType: CleanText(firstMatch(page, e.rules.EmploymentType)),
		SeniorityLevel: CleanText(firstMatch(page, e.rules.SeniorityLevel)),
		Industries:     extractIndustries(page),
	}

	if fields.Title == "" && fields.Company == "" {
		fields = ParsedJobFields{}
		err = ErrNoJobFields
		return fields, err
	}

	return fields, err
}

func firstMatch(page string, rules []Rule) (value string) {
	for _, rule := range rules {
		value = strings.TrimSpace(rule.Extract(page))
		if value != "" {
			return value
		}
	}
	return value
}

func regexRule(name, pattern string) (rule Rule) {
	re := regexp.MustCompile(pattern)
	rule = Rule{
		Name: name,
		Extract: func(page string) (value string) {
			match := re.FindStringSubmatch(page)
			if len(match) > 1 {
				value = strings.TrimSpace(match[1])
			}
			return value
		},
	}
	return rule
}

// sectionRule captures a description container and accepts it only when its
// cleaned text is long enough.
func sectionRule(name, pattern string) (rule Rule) {
	re := regexp.MustCompile(pattern)
	rule = Rule{
		Name: name,
		Extract: func(page string) (value string) {
			match := re.FindStringSubmatch(page)
			if len(match) < 2 {
				return value
			}
			text := CleanText(stripTags(match[1]))
			if len(text) > minDescriptionBlock {
				value = text
			}
			return value
		},
	}
	return rule
}

//nolint:gochecknoglobals // compiled once
var (
	titleTagPattern        = regexp.MustCompile(`<title[^>]*>([^<]+)</title>`)
	jsonDescriptionPattern = regexp.MustCompile(`"description":\s*"([^"]+)"`)
	industriesPattern      = regexp.MustCompile(`"industries":\s*\[([\s\S]*?)\]`)
	quotedPattern          = regexp.MustCompile(`"([^"]+)"`)
	industrySpanPattern    = regexp.MustCompile(`<span[^>]*class[^>]*industry[^>]*>([^<]+)</span>`)
)

// titleTag takes the part of <title> before the first " | " separator.
func titleTag(page string) (value string) {
	match := titleTagPattern.FindStringSubmatch(page)
	if len(match) < 2 {
		return value
	}
	value = strings.TrimSpace(match[1])
	value = strings.Split(value, " | ")[0]
	return value
}

func jsonDescription(page string) (value string) {
	match := jsonDescriptionPattern.FindStringSubmatch(page)
	if len(match) > 1 && len(match[1]) > minDescriptionBlock {
		value = match[1]
	}
	return value
}

// extractIndustries merges a JSON industries array with industry spans, de-duplicated.
func extractIndustries(page string) (industries []string) {
	industries = make([]string, 0)
	seen := make(map[string]bool)

	add := func(raw string) {
		value := CleanText(raw)
		if value == "" || seen[value] {
			return
		}
		seen[value] = true
		industries = append(industries, value)
	}

	if match := industriesPattern.FindStringSubmatch(page); len(match) > 1 {
		for _, quoted := range quotedPattern.FindAllStringSubmatch(match[1], -1) {
			add(quoted[1])
		}
	}

	for _, span := range industrySpanPattern.FindAllStringSubmatch(page, -1) {
		add(span[1])
	}

	return industries
}

// LargestTextBlock returns the longest block-level text that does not look like
// navigation or legal boilerplate.
func LargestTextBlock(page string) (block string) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return block
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && descriptionBlockTags[n.Data] {
			text := CleanText(nodeText(n))
			if len(text) > minDescriptionBlock && len(text) > len(block) && !hasNonContentMarker(text) {
				block = text
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return block
}

// nodeText concatenates the text under n, skipping script and style content.
func nodeText(n *html.Node) (text string) {
	var sb strings.Builder

	var collect func(n *html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)

	text = sb.String()
	return text
}

func hasNonContentMarker(text string) (found bool) {
	lower := strings.ToLower(text)
	for _, marker := range nonContentMarkers {
		if strings.Contains(lower, marker) {
			found = true
			return found
		}
	}
	return found
}
