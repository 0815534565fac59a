package llm

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/profile"
)

// MaxPromptHTMLBytes caps how much page HTML is embedded in a parse prompt.
const MaxPromptHTMLBytes = 200_000

// BuildPrompt renders the fixed template for task from input.
func BuildPrompt(task Task, input Input) (prompt string, err error) {
	switch task {
	case TaskCoverLetter:
		prompt = buildCoverLetterPrompt(input.Profile, input.JobDescription)
	case TaskTailoredSummary:
		prompt = buildTailoredSummaryPrompt(input.Profile, input.JobDescription)
	case TaskTailoredExperience:
		prompt = buildTailoredExperiencePrompt(input.Profile, input.JobDescription)
	case TaskInterviewPrep:
		prompt = buildInterviewPrepPrompt(input.Profile, input.JobDescription)
	case TaskSkillsAnalysis:
		prompt = buildSkillsAnalysisPrompt(input.Profile, input.JobDescription)
	case TaskResumeCritique:
		prompt = buildResumeCritiquePrompt(input.Profile, input.JobDescription)
	case TaskOptimizeExperience:
		prompt = buildOptimizeExperiencePrompt(input.Text)
	case TaskLinkedInParse:
		prompt = buildLinkedInParsePrompt(input.JobDescription)
	case TaskParseResume:
		prompt = buildParseResumePrompt(input.Text)
	default:
		err = errors.Errorf("unknown task: %q", task)
	}

	return prompt, err
}

func profileJSON(p profile.Profile) (out string) {
	data, _ := json.MarshalIndent(p, "", "  ")
	out = string(data)
	return out
}

func buildCoverLetterPrompt(p profile.Profile, jd string) (prompt string) {
	prompt = fmt.Sprintf(`As a professional career consultant, write a compelling cover letter in English based on the candidate profile and job description.

Candidate Profile: %s
Job Description: %s

Requirements:
1. Professional and confident tone
2. Highlight key experiences that match the JD requirements
3. Keep it under 300 words
4. Standard letter format with salutation and closing
5. Output only the letter content, no markdown code blocks`, profileJSON(p), jd)
	return prompt
}

func buildTailoredSummaryPrompt(p profile.Profile, jd string) (prompt string) {
	prompt = fmt.Sprintf(`As a resume optimization expert, rewrite the candidate's Professional Summary based on this job description.

Original Summary: %s
Job Description: %s

Requirements:
1. Include 2-3 core keywords from the JD
2. Emphasize most relevant experience for this position
3. Write in English, 40-60 words
4. Output only the paragraph content`, p.Summary, jd)
	return prompt
}

func buildTailoredExperiencePrompt(p profile.Profile, jd string) (prompt string) {
	experience, _ := json.MarshalIndent(p.Experience, "", "  ")

	prompt = fmt.Sprintf(`You are a Senior Technical Recruiter. Optimize the candidate's work experience to match the target job description.

Target JD: %s
Candidate Experience: %s

Requirements:
1. Retain the original truth but swap generic terms for JD-specific keywords (e.g., change "Backend Scaling" to "Distributed Systems Scaling" if the JD emphasizes it).
2. Use the STAR method (Situation, Task, Action, Result) to make bullets punchy.
3. Return a JSON array with the same structure, containing only "id" and "description" fields.
4. Strict JSON format only.`, jd, string(experience))
	return prompt
}

func buildInterviewPrepPrompt(p profile.Profile, jd string) (prompt string) {
	prompt = fmt.Sprintf(`As a senior hiring manager, predict the 3 most likely interview questions based on this resume and job description, and provide brief answer tips.

Resume: %s
Job Description: %s

Requirements:
1. Output format: JSON array of objects with "question" and "tip" fields
2. Example: [{"question": "...", "tip": "..."}, ...]
3. Return only the JSON string, no markdown blocks
4. Use English for both questions and tips`, profileJSON(p), jd)
	return prompt
}

func buildSkillsAnalysisPrompt(p profile.Profile, jd string) (prompt string) {
	prompt = fmt.Sprintf(`Compare this candidate's resume with the job description and perform a skills gap analysis.

Resume: %s
Job Description: %s

Requirements:
1. Identify "matching_skills" (skills the candidate has that the JD requires)
2. Identify "missing_skills" (skills the JD requires but aren't shown in the resume)
3. Provide one-sentence improvement "advice" in English
4. Strict JSON format: {"matching_skills": [], "missing_skills": [], "advice": ""}
5. No markdown code blocks`, profileJSON(p), jd)
	return prompt
}

func buildResumeCritiquePrompt(p profile.Profile, jd string) (prompt string) {
	prompt = fmt.Sprintf(`As a strict hiring manager, score this resume's match for the position (0-100).

Resume: %s
Job Description: %s

Requirements:
1. Provide a "score" (0-100)
2. List 3 "pros" (strengths in English)
3. List 3 "cons" (weaknesses in English)
4. Give an overall "verdict" (English)
5. Strict JSON format: {"score": 85, "pros": [], "cons": [], "verdict": ""}
6. No markdown code blocks`, profileJSON(p), jd)
	return prompt
}

func buildOptimizeExperiencePrompt(description string) (prompt string) {
	prompt = fmt.Sprintf(`As an expert resume writer, optimize this work experience description to make it more impactful and structured using STAR method and strong action verbs.

Original description: "%s"

Requirements:
1. Provide 3 different optimized versions in English
2. Each version should be concise but powerful
3. Strict JSON array format: ["Version 1...", "Version 2...", "Version 3..."]
4. No markdown code block markers`, description)
	return prompt
}

func buildLinkedInParsePrompt(html string) (prompt string) {
	if len(html) > MaxPromptHTMLBytes {
		html = html[:MaxPromptHTMLBytes]
	}

	prompt = fmt.Sprintf(`Extract the key information from the following LinkedIn job page HTML and return it as JSON.

HTML content:
%s

Return the following fields as strict JSON:
{
  "title": "job title",
  "company": "company name",
  "description": "full, detailed job description",
  "location": "work location",
  "employmentType": "employment type (e.g. Full-time, Part-time, Contract)",
  "seniorityLevel": "seniority level (e.g. Entry level, Mid-Senior level, Director, Executive)",
  "industries": ["industry 1", "industry 2"]
}

Notes:
1. If a field cannot be found, use an empty string or empty array
2. Keep the job description as complete and detailed as possible
3. Return valid JSON only, without markdown code block markers
4. Keep the original language of the page
5. Do not add any explanation, return only the JSON data`, html)
	return prompt
}

func buildParseResumePrompt(resumeText string) (prompt string) {
	prompt = fmt.Sprintf(`You are a professional resume parser. Analyze the following resume text and extract key information into strict JSON format.

Resume Text:
"%s"

Extract the following fields (return empty string or empty array if not found):
- name (string)
- role (string): Current or most recent job title
- email (string)
- phone (string)
- location (string)
- linkedin (string): URL
- github (string): URL
- summary (string): Professional summary
- skills (array of strings)
- experience (array of objects): { "id": 1, "company": "...", "role": "...", "period": "...", "description": "..." }. Keep description detailed; if it's a list, separate by newlines.
- education (array of objects): { "id": 1, "school": "...", "degree": "...", "period": "..." }

Requirements:
1. Return ONLY pure JSON. No Markdown code blocks.
2. Ensure valid JSON format.`, resumeText)
	return prompt
}
