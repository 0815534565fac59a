package linkedin

import (
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled once
var (
	escapedWhitespace = regexp.MustCompile(`\\[nt]`)
	unicodeEscape     = regexp.MustCompile(`\\u[0-9a-fA-F]{4}`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
	entityReplacer    = strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
)

// CleanText normalizes text scraped from a page: escaped newlines and tabs become
// spaces, \uXXXX escape artifacts are dropped, a small set of entities is decoded,
// and whitespace is collapsed.
func CleanText(text string) (cleaned string) {
	if text == "" {
		return cleaned
	}

	cleaned = escapedWhitespace.ReplaceAllString(text, " ")
	cleaned = unicodeEscape.ReplaceAllString(cleaned, "")
	cleaned = entityReplacer.Replace(cleaned)
	cleaned = whitespaceRun.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	return cleaned
}

// stripTags removes script and style blocks and then every remaining tag.
func stripTags(markup string) (text string) {
	text = removeTagAndContent(markup, "script")
	text = removeTagAndContent(text, "style")

	inTag := false
	result := strings.Builder{}
	for _, char := range text {
		if char == '<' {
			inTag = true
			continue
		}
		if char == '>' {
			inTag = false
			result.WriteRune(' ')
			continue
		}
		if !inTag {
			result.WriteRune(char)
		}
	}

	text = result.String()
	return text
}

// removeTagAndContent removes a specific HTML tag and its content.
func removeTagAndContent(markup, tag string) (result string) {
	result = markup
	openTag := "<" + tag
	closeTag := "</" + tag + ">"

	for {
		startIdx := strings.Index(result, openTag)
		if startIdx == -1 {
			break
		}

		endIdx := strings.Index(result[startIdx:], closeTag)
		if endIdx == -1 {
			break
		}

		endIdx += startIdx + len(closeTag)
		result = result[:startIdx] + result[endIdx:]
	}

	return result
}
