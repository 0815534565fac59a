package llm

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"

	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
)

// ErrUnknownTask is returned by Run for a task it cannot dispatch.
var ErrUnknownTask = errors.New("invalid type")

// RunResult is the outcome of a task dispatched by name.
type RunResult struct {
	Task     Task   `json:"type"`
	Data     any    `json:"data"`
	Fallback bool   `json:"fallback"`
	Reason   string `json:"reason,omitempty"`
}

// Run dispatches task by name. Only parse_resume and unknown tasks return an error;
// every other task degrades to its fallback value.
func (g *Gateway) Run(ctx context.Context, task Task, input Input) (result RunResult, err error) {
	switch task {
	case TaskCoverLetter:
		result = resultOf(task, g.CoverLetter(ctx, input.Profile, input.JobDescription))
	case TaskTailoredSummary:
		result = resultOf(task, g.TailoredSummary(ctx, input.Profile, input.JobDescription))
	case TaskTailoredExperience:
		result = resultOf(task, g.TailoredExperience(ctx, input.Profile, input.JobDescription))
	case TaskInterviewPrep:
		result = resultOf(task, g.InterviewPrep(ctx, input.Profile, input.JobDescription))
	case TaskSkillsAnalysis:
		result = resultOf(task, g.SkillsAnalysis(ctx, input.Profile, input.JobDescription))
	case TaskResumeCritique:
		result = resultOf(task, g.CritiqueResume(ctx, input.Profile, input.JobDescription))
	case TaskOptimizeExperience:
		result = resultOf(task, g.OptimizeExperience(ctx, input.Text))
	case TaskLinkedInParse:
		result = resultOf(task, g.ParseJobHTML(ctx, input.JobDescription))
	case TaskParseResume:
		var parsed profile.Profile
		parsed, err = g.ParseResume(ctx, input.Text)
		result = RunResult{Task: task, Data: parsed}
	default:
		err = ErrUnknownTask
	}

	return result, err
}

func resultOf[T any](task Task, o Outcome[T]) (result RunResult) {
	result = RunResult{Task: task, Data: o.Value, Fallback: o.Fallback, Reason: o.Reason}
	return result
}

func fallbackOutcome[T any](value T, reason error) (o Outcome[T]) {
	o = Outcome[T]{Value: value, Fallback: true}
	if reason != nil {
		o.Reason = reason.Error()
	}
	return o
}

func (g *Gateway) noteFallback(ctx context.Context, task Task, reason error) {
	logging.FromContext(ctx, g.logger).Info("using fallback", "task", string(task), "reason", reason.Error())
}

// generateText runs a text task; an empty reply counts as a failure.
func (g *Gateway) generateText(ctx context.Context, task Task, input Input) (text string, err error) {
	var reply Reply
	reply, err = g.Generate(ctx, Request{Task: task, Input: input})
	if err != nil {
		return text, err
	}

	text = reply.Text
	if text == "" {
		err = ErrEmptyReply
	}

	return text, err
}

// CoverLetter writes a cover letter for the job.
func (g *Gateway) CoverLetter(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[string]) {
	text, err := g.generateText(ctx, TaskCoverLetter, Input{Profile: p, JobDescription: jobDescription})
	if err != nil {
		g.noteFallback(ctx, TaskCoverLetter, err)
		o = fallbackOutcome(FallbackCoverLetter(p), err)
		return o
	}

	o.Value = text
	return o
}

// TailoredSummary rewrites the profile summary for the job.
func (g *Gateway) TailoredSummary(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[string]) {
	text, err := g.generateText(ctx, TaskTailoredSummary, Input{Profile: p, JobDescription: jobDescription})
	if err != nil {
		g.noteFallback(ctx, TaskTailoredSummary, err)
		o = fallbackOutcome(FallbackSummary(p), err)
		return o
	}

	o.Value = text
	return o
}

// TailoredExperience rewrites experience descriptions for the job, keyed by experience ID.
// On failure the list is empty and the original descriptions stand.
func (g *Gateway) TailoredExperience(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[[]profile.ExperienceRewrite]) {
	rewrites, err := generateList[profile.ExperienceRewrite](ctx, g, TaskTailoredExperience, Input{Profile: p, JobDescription: jobDescription})
	if err != nil {
		g.noteFallback(ctx, TaskTailoredExperience, err)
		o = fallbackOutcome([]profile.ExperienceRewrite{}, err)
		return o
	}

	o.Value = rewrites
	return o
}

// InterviewPrep predicts likely interview questions with answer tips.
func (g *Gateway) InterviewPrep(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[[]InterviewQuestion]) {
	questions, err := generateList[InterviewQuestion](ctx, g, TaskInterviewPrep, Input{Profile: p, JobDescription: jobDescription})
	if err == nil && len(questions) == 0 {
		err = ErrEmptyReply
	}
	if err != nil {
		g.noteFallback(ctx, TaskInterviewPrep, err)
		o = fallbackOutcome(FallbackInterviewQuestions(), err)
		return o
	}

	o.Value = questions
	return o
}

// SkillsAnalysis compares the profile's skills against the job.
func (g *Gateway) SkillsAnalysis(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[SkillsAnalysis]) {
	var analysis SkillsAnalysis
	err := g.generateObject(ctx, TaskSkillsAnalysis, Input{Profile: p, JobDescription: jobDescription}, &analysis)
	if err != nil {
		g.noteFallback(ctx, TaskSkillsAnalysis, err)
		o = fallbackOutcome(FallbackSkillsAnalysis(), err)
		return o
	}

	if analysis.MatchingSkills == nil {
		analysis.MatchingSkills = []string{}
	}
	if analysis.MissingSkills == nil {
		analysis.MissingSkills = []string{}
	}

	o.Value = analysis
	return o
}

// CritiqueResume scores the profile's fit for the job.
func (g *Gateway) CritiqueResume(ctx context.Context, p profile.Profile, jobDescription string) (o Outcome[Critique]) {
	var critique Critique
	err := g.generateObject(ctx, TaskResumeCritique, Input{Profile: p, JobDescription: jobDescription}, &critique)
	if err != nil {
		g.noteFallback(ctx, TaskResumeCritique, err)
		o = fallbackOutcome(FallbackCritique(), err)
		return o
	}

	if critique.Pros == nil {
		critique.Pros = []string{}
	}
	if critique.Cons == nil {
		critique.Cons = []string{}
	}

	o.Value = critique
	return o
}

// OptimizeExperience proposes three stronger phrasings of one description.
func (g *Gateway) OptimizeExperience(ctx context.Context, description string) (o Outcome[[]string]) {
	reply, err := g.Generate(ctx, Request{Task: TaskOptimizeExperience, Input: Input{Text: description}})
	if err != nil {
		g.noteFallback(ctx, TaskOptimizeExperience, err)
		o = fallbackOutcome(FallbackOptimizationTips(), err)
		return o
	}

	var versions []string
	versions, err = decodeList[string](reply)
	if err != nil || len(versions) == 0 {
		if err == nil {
			err = ErrEmptyReply
		}
		g.noteFallback(ctx, TaskOptimizeExperience, err)
		o = fallbackOutcome(unparseableOptimizationTips(reply.Text), err)
		return o
	}

	o.Value = versions
	return o
}

// ParseJobHTML turns a job page into fields. When the provider is unavailable
// the local extractor is used instead; when nothing can be recovered every
// field carries a placeholder.
func (g *Gateway) ParseJobHTML(ctx context.Context, html string) (o Outcome[linkedin.ParsedJobFields]) {
	reply, err := g.Generate(ctx, Request{Task: TaskLinkedInParse, Input: Input{JobDescription: html}})
	if err != nil {
		g.noteFallback(ctx, TaskLinkedInParse, err)

		fields, extractErr := g.extractor.Extract(html)
		if extractErr != nil {
			o = fallbackOutcome(linkedin.ParsedJobFields{}.WithPlaceholders(), errors.Wrap(extractErr, err.Error()))
			return o
		}

		o = fallbackOutcome(fields.WithPlaceholders(), err)
		return o
	}

	if reply.Kind != ReplyJSON {
		err = ErrNotJSON
		g.noteFallback(ctx, TaskLinkedInParse, err)
		o = fallbackOutcome(linkedin.ParsedJobFields{Description: reply.Text}.WithPlaceholders(), err)
		return o
	}

	o.Value = fieldsFromJSON(gjson.ParseBytes(reply.JSON)).WithPlaceholders()
	return o
}

// ParseResume converts free resume text into a profile. Unlike the other
// tasks it has no fallback.
func (g *Gateway) ParseResume(ctx context.Context, resumeText string) (p profile.Profile, err error) {
	if strings.TrimSpace(resumeText) == "" {
		err = errors.New("resume text is empty")
		return p, err
	}

	var reply Reply
	reply, err = g.Generate(ctx, Request{Task: TaskParseResume, Input: Input{Text: resumeText}})
	if err != nil {
		err = errors.Wrap(err, "resume import failed")
		return p, err
	}

	err = reply.Decode(&p)
	if err != nil {
		err = errors.Wrap(err, "resume import returned an unusable answer")
		return p, err
	}

	return p, err
}

func (g *Gateway) generateObject(ctx context.Context, task Task, input Input, v any) (err error) {
	var reply Reply
	reply, err = g.Generate(ctx, Request{Task: task, Input: input})
	if err != nil {
		return err
	}

	err = reply.Decode(v)
	return err
}

func generateList[T any](ctx context.Context, g *Gateway, task Task, input Input) (list []T, err error) {
	var reply Reply
	reply, err = g.Generate(ctx, Request{Task: task, Input: input})
	if err != nil {
		return list, err
	}

	list, err = decodeList[T](reply)
	return list, err
}

// decodeList accepts either a JSON array or an object wrapping one, which is
// what providers in JSON-object mode tend to return.
func decodeList[T any](reply Reply) (list []T, err error) {
	if reply.Kind != ReplyJSON {
		err = ErrNotJSON
		return list, err
	}

	parsed := gjson.ParseBytes(reply.JSON)
	if parsed.IsObject() {
		var inner gjson.Result
		parsed.ForEach(func(_, value gjson.Result) bool {
			if value.IsArray() {
				inner = value
				return false
			}
			return true
		})

		if !inner.Exists() {
			err = errors.Errorf("reply holds no list: %s", reply.Text)
			return list, err
		}

		reply = Reply{Kind: ReplyJSON, Text: reply.Text, JSON: []byte(inner.Raw)}
	}

	err = reply.Decode(&list)
	if err != nil {
		return list, err
	}

	if list == nil {
		list = []T{}
	}

	return list, err
}

// fieldsFromJSON reads job fields leniently; industries may be a list or a
// comma separated string.
func fieldsFromJSON(r gjson.Result) (fields linkedin.ParsedJobFields) {
	fields = linkedin.ParsedJobFields{
		Title:          strings.TrimSpace(r.Get("title").String()),
		Company:        strings.TrimSpace(r.Get("company").String()),
		Description:    strings.TrimSpace(r.Get("description").String()),
		Location:       strings.TrimSpace(r.Get("location").String()),
		EmploymentType: strings.TrimSpace(r.Get("employmentType").String()),
		SeniorityLevel: strings.TrimSpace(r.Get("seniorityLevel").String()),
		Industries:     []string{},
	}

	industries := r.Get("industries")
	switch {
	case industries.IsArray():
		for _, item := range industries.Array() {
			if s := strings.TrimSpace(item.String()); s != "" {
				fields.Industries = append(fields.Industries, s)
			}
		}
	case industries.Type == gjson.String:
		for _, part := range strings.Split(industries.String(), ",") {
			if s := strings.TrimSpace(part); s != "" {
				fields.Industries = append(fields.Industries, s)
			}
		}
	}

	return fields
}
