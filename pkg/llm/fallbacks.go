package llm

import (
	"fmt"

	"github.com/nikogura/smartresume/pkg/profile"
)

// FallbackCoverLetter is the letter template returned when generation fails.
func FallbackCoverLetter(p profile.Profile) (letter string) {
	name := p.Name
	if name == "" {
		name = "Your Name"
	}

	letter = fmt.Sprintf(`Dear Hiring Manager,

I am excited to apply for this position. With my background and experience, I believe I would be a valuable addition to your team.

[Please manually edit this cover letter based on your specific experience and the job requirements]

Sincerely,
%s`, name)
	return letter
}

// FallbackSummary is the summary returned when generation fails.
func FallbackSummary(p profile.Profile) (summary string) {
	name := p.Name
	if name == "" {
		name = "Professional"
	}

	summary = fmt.Sprintf("%s with %d+ years of experience. Skilled in relevant technologies and methodologies. Seeking to contribute expertise to a dynamic team.", name, len(p.Experience))
	return summary
}

// FallbackSkillsAnalysis is returned when the skills comparison fails.
func FallbackSkillsAnalysis() (analysis SkillsAnalysis) {
	analysis = SkillsAnalysis{
		MatchingSkills: []string{},
		MissingSkills:  []string{},
		Advice:         "Skills analysis temporarily unavailable. Please manually compare your skills with job requirements.",
	}
	return analysis
}

// FallbackCritique is returned when scoring fails.
func FallbackCritique() (critique Critique) {
	critique = Critique{
		Score: 75,
		Pros: []string{
			"Clear professional experience",
			"Relevant educational background",
			"Professional presentation",
		},
		Cons: []string{
			"Could be more tailored to this specific role",
			"Missing quantifiable achievements",
			"Could highlight more relevant skills",
		},
		Verdict: "Good candidate but could improve alignment with job requirements",
	}
	return critique
}

// FallbackInterviewQuestions is returned when question prediction fails.
func FallbackInterviewQuestions() (questions []InterviewQuestion) {
	questions = []InterviewQuestion{
		{
			Question: "Tell me about yourself and why you are interested in this role.",
			Tip:      "Connect your most recent experience to the key requirements in the job description.",
		},
		{
			Question: "Describe a challenging project you led and the result.",
			Tip:      "Use the STAR method and quantify the outcome.",
		},
		{
			Question: "Which of your skills best match what this team needs?",
			Tip:      "Pick two or three skills named in the job description and back each with an example.",
		},
	}
	return questions
}

// FallbackOptimizationTips is returned when experience optimization fails.
func FallbackOptimizationTips() (tips []string) {
	tips = []string{
		"• Start with a strong action verb (e.g. led, optimized, built)",
		"• Quantify concrete results (e.g. improved efficiency by 30%, saved $50k)",
		"• Use the STAR method: Situation, Task, Action, Result",
	}
	return tips
}

// optimizationPreviewLength is how many characters of an unparseable reply are quoted.
const optimizationPreviewLength = 100

// unparseableOptimizationTips wraps a non-JSON optimization reply in suggestions.
func unparseableOptimizationTips(raw string) (tips []string) {
	preview := raw
	if runes := []rune(preview); len(runes) > optimizationPreviewLength {
		preview = string(runes[:optimizationPreviewLength])
	}

	tips = []string{
		fmt.Sprintf("Suggestion 1: %s...", preview),
		"Suggestion 2: Start with a stronger action verb",
		"Suggestion 3: Quantify concrete results and impact",
	}
	return tips
}
