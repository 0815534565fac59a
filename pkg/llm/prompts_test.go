package llm

import (
	"strings"
	"testing"

	"github.com/nikogura/smartresume/pkg/profile"
)

func TestBuildPromptEveryTask(t *testing.T) {
	input := Input{
		Profile:        profile.Demo(),
		JobDescription: "We need a Go engineer for payments at Acme Corp.",
		Text:           "Built APIs for internal tools.",
	}

	for _, task := range Tasks() {
		t.Run(string(task), func(t *testing.T) {
			prompt, err := BuildPrompt(task, input)
			if err != nil {
				t.Fatalf("BuildPrompt failed: %v", err)
			}

			if prompt == "" {
				t.Fatal("Expected non-empty prompt")
			}

			again, _ := BuildPrompt(task, input)
			if again != prompt {
				t.Error("Expected deterministic prompt")
			}
		})
	}
}

func TestBuildPromptContents(t *testing.T) {
	input := Input{
		Profile:        profile.Demo(),
		JobDescription: "Kubernetes platform role",
		Text:           "Maintained legacy billing code",
	}

	tests := []struct {
		task     Task
		contains []string
	}{
		{TaskCoverLetter, []string{"cover letter", "Alex Chen", "Kubernetes platform role"}},
		{TaskTailoredSummary, []string{input.Profile.Summary, "40-60 words"}},
		{TaskTailoredExperience, []string{`"id"`, "StartupXYZ", "STAR"}},
		{TaskInterviewPrep, []string{`"question"`, `"tip"`}},
		{TaskSkillsAnalysis, []string{"matching_skills", "missing_skills", "advice"}},
		{TaskResumeCritique, []string{`"score"`, "pros", "cons", "verdict"}},
		{TaskOptimizeExperience, []string{"Maintained legacy billing code", "3 different"}},
		{TaskParseResume, []string{"Maintained legacy billing code", "education"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.task), func(t *testing.T) {
			prompt, err := BuildPrompt(tt.task, input)
			if err != nil {
				t.Fatalf("BuildPrompt failed: %v", err)
			}

			for _, want := range tt.contains {
				if !strings.Contains(prompt, want) {
					t.Errorf("Prompt should contain '%s'", want)
				}
			}
		})
	}
}

func TestBuildLinkedInParsePromptTruncates(t *testing.T) {
	html := strings.Repeat("a", MaxPromptHTMLBytes+500)

	prompt, err := BuildPrompt(TaskLinkedInParse, Input{JobDescription: html})
	if err != nil {
		t.Fatalf("BuildPrompt failed: %v", err)
	}

	if strings.Contains(prompt, strings.Repeat("a", MaxPromptHTMLBytes+1)) {
		t.Error("Expected HTML to be truncated")
	}

	if !strings.Contains(prompt, "employmentType") {
		t.Error("Prompt should list employmentType")
	}
}

func TestBuildPromptUnknownTask(t *testing.T) {
	_, err := BuildPrompt(Task("haiku"), Input{})
	if err == nil {
		t.Error("Expected error for unknown task, got nil")
	}
}

func TestTaskFormat(t *testing.T) {
	if TaskCoverLetter.Format() != FormatText {
		t.Error("Expected cover letter to be text")
	}

	if TaskSkillsAnalysis.Format() != FormatJSON {
		t.Error("Expected skills analysis to be JSON")
	}

	if Task("nope").Valid() {
		t.Error("Expected unknown task to be invalid")
	}
}
