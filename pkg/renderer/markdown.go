package renderer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nikogura/smartresume/pkg/profile"
)

// Filenames are the output paths for one application.
type Filenames struct {
	ResumeMD  string
	ResumePDF string
	CoverMD   string
	CoverPDF  string
	JobTXT    string
}

// BuildFilenames names the files for an application as
// {name}-{company}-{role}[-{jobID}]-{kind}.{ext} inside outDir.
func BuildFilenames(outDir, name, company, role, jobID string) (filenames Filenames) {
	// Truncate role to first 4 words to keep filename reasonable
	roleWords := strings.Fields(role)
	if len(roleWords) > 4 {
		role = strings.Join(roleWords[:4], " ")
	}

	parts := []string{}
	for _, part := range []string{name, company, role, jobID} {
		if s := SanitizeFilename(part); s != "" {
			parts = append(parts, s)
		}
	}
	base := strings.Join(parts, "-")
	if base == "" {
		base = "application"
	}

	filenames = Filenames{
		ResumeMD:  filepath.Join(outDir, base+"-resume.md"),
		ResumePDF: filepath.Join(outDir, base+"-resume.pdf"),
		CoverMD:   filepath.Join(outDir, base+"-cover.md"),
		CoverPDF:  filepath.Join(outDir, base+"-cover.pdf"),
		JobTXT:    filepath.Join(outDir, base+"-jd.txt"),
	}
	return filenames
}

// SanitizeFilename lowercases name, drops common company suffixes, and
// replaces everything but letters and digits with single hyphens.
func SanitizeFilename(name string) (sanitized string) {
	suffixes := []string{
		", LLC", ", llc",
		", Inc.", ", inc.",
		", Inc", ", inc",
		" LLC", " llc",
		" Inc.", " inc.",
		" Inc", " inc",
		" Corporation", " corporation",
		" Corp.", " corp.",
		" Corp", " corp",
		" Limited", " limited",
		" Ltd.", " ltd.",
		" Ltd", " ltd",
		" Co.", " co.",
		" Co", " co",
	}

	sanitized = strings.TrimSpace(name)
	for _, suffix := range suffixes {
		sanitized = strings.TrimSuffix(sanitized, suffix)
	}

	sanitized = strings.ToLower(sanitized)

	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")

	return sanitized
}

// CleanForLaTeX converts literal \n to newlines and drops emoji, which LaTeX
// cannot typeset.
func CleanForLaTeX(text string) (cleaned string) {
	cleaned = strings.ReplaceAll(text, "\\n", "\n")

	var sb strings.Builder
	for _, r := range cleaned {
		switch {
		case r >= 0x1F300 && r <= 0x1F9FF:
			continue
		case r >= 0x2600 && r <= 0x26FF:
			continue
		case r >= 0x2700 && r <= 0x27BF:
			continue
		}
		sb.WriteRune(r)
	}
	cleaned = sb.String()

	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}

	return cleaned
}

// ResumeMarkdown renders a resume for p using summary and experience in place
// of the profile's own, so tailored content can be substituted.
func ResumeMarkdown(p profile.Profile, summary string, experience []profile.Experience) (md string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", p.Name)
	if p.Role != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", p.Role)
	}

	contact := nonEmpty(p.Email, p.Phone, p.Location, p.LinkedIn, p.GitHub)
	if len(contact) > 0 {
		sb.WriteString(strings.Join(contact, " | "))
		sb.WriteString("\n\n")
	}

	if summary != "" {
		sb.WriteString("## Summary\n\n")
		sb.WriteString(strings.TrimSpace(summary))
		sb.WriteString("\n\n")
	}

	if len(p.Skills) > 0 {
		sb.WriteString("## Skills\n\n")
		sb.WriteString(strings.Join(p.Skills, ", "))
		sb.WriteString("\n\n")
	}

	if len(experience) > 0 {
		sb.WriteString("## Experience\n\n")
		for _, exp := range experience {
			fmt.Fprintf(&sb, "### %s, %s\n\n", exp.Role, exp.Company)
			if exp.Period != "" {
				fmt.Fprintf(&sb, "*%s*\n\n", exp.Period)
			}
			for _, line := range strings.Split(strings.TrimSpace(exp.Description), "\n") {
				line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-•*"))
				if line != "" {
					fmt.Fprintf(&sb, "- %s\n", line)
				}
			}
			sb.WriteString("\n")
		}
	}

	if len(p.Education) > 0 {
		sb.WriteString("## Education\n\n")
		for _, edu := range p.Education {
			fmt.Fprintf(&sb, "**%s**, %s", edu.Degree, edu.School)
			if edu.Period != "" {
				fmt.Fprintf(&sb, " (%s)", edu.Period)
			}
			sb.WriteString("\n\n")
		}
	}

	md = CleanForLaTeX(strings.TrimRight(sb.String(), "\n") + "\n")
	return md
}

// CoverLetterMarkdown renders a cover letter for p.
func CoverLetterMarkdown(p profile.Profile, letter string) (md string) {
	var sb strings.Builder

	if p.Name != "" {
		fmt.Fprintf(&sb, "# %s\n\n", p.Name)
	}

	contact := nonEmpty(p.Email, p.Phone, p.Location)
	if len(contact) > 0 {
		sb.WriteString(strings.Join(contact, " | "))
		sb.WriteString("\n\n")
	}

	sb.WriteString(strings.TrimSpace(letter))
	sb.WriteString("\n")

	md = CleanForLaTeX(sb.String())
	return md
}
