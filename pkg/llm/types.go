package llm

import (
	"github.com/nikogura/smartresume/pkg/profile"
)

// Task identifies a generation prompt.
type Task string

const (
	TaskCoverLetter        Task = "cover_letter"
	TaskTailoredSummary    Task = "tailored_summary"
	TaskTailoredExperience Task = "tailored_experience"
	TaskInterviewPrep      Task = "interview_prep"
	TaskSkillsAnalysis     Task = "skills_analysis"
	TaskResumeCritique     Task = "resume_critique"
	TaskOptimizeExperience Task = "optimize_experience"
	TaskLinkedInParse      Task = "linkedin_parse"
	TaskParseResume        Task = "parse_resume"
)

// Format is the reply shape requested from the model.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Tasks lists every known task.
func Tasks() (tasks []Task) {
	tasks = []Task{
		TaskCoverLetter,
		TaskTailoredSummary,
		TaskTailoredExperience,
		TaskInterviewPrep,
		TaskSkillsAnalysis,
		TaskResumeCritique,
		TaskOptimizeExperience,
		TaskLinkedInParse,
		TaskParseResume,
	}
	return tasks
}

// Valid reports whether t is a known task.
func (t Task) Valid() (ok bool) {
	for _, known := range Tasks() {
		if t == known {
			ok = true
			return ok
		}
	}
	return ok
}

// Format returns the reply format a task expects.
func (t Task) Format() (f Format) {
	switch t {
	case TaskCoverLetter, TaskTailoredSummary:
		f = FormatText
	default:
		f = FormatJSON
	}
	return f
}

// Input is the data a prompt is built from. Which fields matter depends on the task.
type Input struct {
	Profile        profile.Profile `json:"profile"`
	JobDescription string          `json:"jobDescription"`
	Text           string          `json:"text"`
}

// Request is one gateway call. Zero values fall back to gateway defaults.
type Request struct {
	Task        Task
	Input       Input
	Model       string
	Format      Format
	Temperature *float64
	MaxTokens   int
}

// InterviewQuestion is a predicted question with an answer tip.
type InterviewQuestion struct {
	Question string `json:"question"`
	Tip      string `json:"tip"`
}

// SkillsAnalysis compares resume skills against a job description.
type SkillsAnalysis struct {
	MatchingSkills []string `json:"matching_skills"`
	MissingSkills  []string `json:"missing_skills"`
	Advice         string   `json:"advice"`
}

// Critique scores how well a resume matches a job.
type Critique struct {
	Score   int      `json:"score"`
	Pros    []string `json:"pros"`
	Cons    []string `json:"cons"`
	Verdict string   `json:"verdict"`
}

// Outcome carries a task result and whether it is a static fallback.
type Outcome[T any] struct {
	Value    T      `json:"value"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}
