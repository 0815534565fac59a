package cmd

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/editor"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/profile"
	"github.com/nikogura/smartresume/pkg/renderer"
	"github.com/nikogura/smartresume/pkg/store"
)

//nolint:gochecknoglobals // Cobra boilerplate
var tailorProfile string

//nolint:gochecknoglobals // Cobra boilerplate
var company string

//nolint:gochecknoglobals // Cobra boilerplate
var role string

//nolint:gochecknoglobals // Cobra boilerplate
var outputDir string

//nolint:gochecknoglobals // Cobra boilerplate
var jobID string

//nolint:gochecknoglobals // Cobra boilerplate
var keepMarkdown bool

//nolint:gochecknoglobals // Cobra boilerplate
var skipPDF bool

//nolint:gochecknoglobals // Cobra boilerplate
var skipAnalysis bool

//nolint:gochecknoglobals // Cobra boilerplate
var savedJob int

//nolint:gochecknoglobals // Cobra boilerplate
var tailorCmd = &cobra.Command{
	Use:   "tailor [job-url-or-file]",
	Short: "Generate a tailored resume and cover letter",
	Long: `Generate a tailored resume, cover letter, and interview preparation for a job.

The job can be provided as:
- A LinkedIn job URL, parsed into title, company, and description
- Any other URL or an .html file, parsed the same way
- A plain text file holding the job description
- --job N, the Nth result of the last saved search. A short saved description
  is completed from the job page.

The profile comes from --profile, then profile_location in the config file,
and falls back to a built-in demo profile.

Example:
  smartresume tailor https://www.linkedin.com/jobs/view/4012345678
  smartresume tailor jd.txt --company "Acme Corp" --role "Staff Engineer"
  smartresume tailor jd.txt --company "Acme" --role "SRE" --job-id "req-12345" --skip-pdf
  smartresume tailor --job 3`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTailor,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(tailorCmd)
	tailorCmd.Flags().StringVar(&tailorProfile, "profile", "", "Profile JSON file (default from config)")
	tailorCmd.Flags().StringVar(&company, "company", "", "Company name (taken from the job page if not provided)")
	tailorCmd.Flags().StringVar(&role, "role", "", "Role title (taken from the job page if not provided)")
	tailorCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default from config)")
	tailorCmd.Flags().StringVar(&jobID, "job-id", "", "Optional job/req ID to differentiate multiple applications")
	tailorCmd.Flags().BoolVar(&keepMarkdown, "keep-markdown", true, "Keep markdown files after PDF generation")
	tailorCmd.Flags().BoolVar(&skipPDF, "skip-pdf", false, "Skip PDF generation")
	tailorCmd.Flags().BoolVar(&skipAnalysis, "skip-analysis", false, "Skip the cover letter, critique, skills analysis, and interview questions")
	tailorCmd.Flags().IntVar(&savedJob, "job", 0, "Tailor to the Nth job of the last saved search")
}

func runTailor(cmd *cobra.Command, args []string) (err error) {
	if (savedJob > 0) == (len(args) > 0) {
		err = errors.New("pass either a job URL or file, or --job N")
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	p, err := loadProfile(cfg)
	if err != nil {
		return err
	}

	gateway := newGateway(cfg, log)
	if !gateway.Configured() {
		fmt.Println("Warning: no AI API key configured; generated content will be generic")
	}

	fetcher := linkedin.NewFetcher(log)

	var session *editor.Session
	if savedJob > 0 {
		var results store.ResultStore
		session, results, err = openSession(ctx, cfg.Store, p, gateway, fetcher, log)
		if err != nil {
			return err
		}
		defer func() { _ = results.Shutdown(ctx) }()

		err = withSpinner("Loading saved job...", func() error {
			return selectSavedJob(ctx, log, session, savedJob)
		})
	} else {
		session = editor.NewSession(p, gateway, fetcher, nil, log)
		err = loadJob(ctx, log, session, gateway, fetcher, args[0])
	}
	if err != nil {
		return err
	}

	err = withSpinner("Tailoring summary and experience...", func() error {
		return session.Tailor(ctx)
	})
	if err != nil {
		err = errors.Wrap(err, "tailoring failed")
		return err
	}

	if !skipAnalysis {
		err = withSpinner("Writing cover letter and interview preparation...", func() error {
			return session.Analyze(ctx)
		})
		if err != nil {
			err = errors.Wrap(err, "analysis failed")
			return err
		}
	}

	err = writeApplication(ctx, cfg, session)
	if err != nil {
		return err
	}

	printAnalysis(session.Generated())
	return err
}

// loadProfile picks the profile from the flag, the config, or the demo.
func loadProfile(cfg config.Config) (p profile.Profile, err error) {
	path := tailorProfile
	if path == "" {
		path = cfg.ProfileLocation
	}

	if path == "" {
		p = profile.Demo()
		return p, err
	}

	p, err = profile.Load(path)
	if err != nil {
		if tailorProfile == "" && errors.Is(err, os.ErrNotExist) {
			fmt.Printf("Profile %s not found, using the demo profile\n", path)
			p = profile.Demo()
			err = nil
			return p, err
		}
		return p, err
	}

	return p, err
}

// loadJob fills the session from a job URL, an HTML file, or a text file.
func loadJob(ctx context.Context, log *logging.Logger, session *editor.Session, gateway *llm.Gateway, fetcher *linkedin.Fetcher, input string) (err error) {
	if !isHTMLSource(input) {
		var data []byte
		data, err = os.ReadFile(input)
		if err != nil {
			err = errors.Wrapf(err, "failed to read job description: %s", input)
			return err
		}
		session.SetJobDescription(strings.TrimSpace(string(data)))
		return err
	}

	var page string
	err = withSpinner("Fetching job page...", func() (fetchErr error) {
		page, fetchErr = fetcher.Fetch(ctx, input)
		return fetchErr
	})
	if err != nil {
		err = errors.Wrap(err, "failed to fetch job page; save the description to a file and pass that instead")
		return err
	}

	outcome := gateway.ParseJobHTML(ctx, page)
	if outcome.Value.Description == linkedin.PlaceholderDescription {
		err = errors.New("could not find a job description on the page; save it to a file and pass that instead")
		return err
	}

	session.ApplyParsedJob(outcome.Value)
	log.Debug("job loaded", "title", outcome.Value.Title, "fallback", outcome.Fallback)
	return err
}

// isHTMLSource reports whether input is a URL or an HTML file.
func isHTMLSource(input string) (result bool) {
	parsed, err := url.Parse(input)
	if err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		result = true
		return result
	}

	lower := strings.ToLower(input)
	result = strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm")
	return result
}

// applicationNames resolves company and role from flags, then the job.
func applicationNames(job editor.JobData) (finalCompany, finalRole string) {
	finalCompany = company
	if finalCompany == "" && job.Company != linkedin.PlaceholderCompany {
		finalCompany = job.Company
	}
	if finalCompany == "" {
		finalCompany = "company"
	}

	finalRole = role
	if finalRole == "" && job.Title != linkedin.PlaceholderTitle {
		finalRole = job.Title
	}
	if finalRole == "" {
		finalRole = "role"
	}

	return finalCompany, finalRole
}

func writeApplication(ctx context.Context, cfg config.Config, session *editor.Session) (err error) {
	p := session.Profile()
	job := session.Job()
	generated := session.Generated()

	finalCompany, finalRole := applicationNames(job)

	baseDir := outputDir
	if baseDir == "" {
		baseDir = cfg.Defaults.OutputDir
	}
	outDir := filepath.Join(baseDir, renderer.SanitizeFilename(finalCompany))

	err = os.MkdirAll(outDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return err
	}

	id := jobID
	if id == "" && job.Selected != nil {
		id = job.Selected.JobID
	}

	filenames := renderer.BuildFilenames(outDir, p.Name, finalCompany, finalRole, id)

	err = renderer.WriteMarkdown(job.Description, filenames.JobTXT)
	if err != nil {
		err = errors.Wrap(err, "failed to save job description")
		return err
	}

	err = renderer.WriteMarkdown(renderer.ResumeMarkdown(p, session.Summary(), session.ResolvedExperience()), filenames.ResumeMD)
	if err != nil {
		err = errors.Wrap(err, "failed to write resume markdown")
		return err
	}

	markdown := []string{filenames.ResumeMD}
	pdfs := map[string]string{filenames.ResumeMD: filenames.ResumePDF}

	if generated.CoverLetter != "" {
		err = renderer.WriteMarkdown(renderer.CoverLetterMarkdown(p, generated.CoverLetter), filenames.CoverMD)
		if err != nil {
			err = errors.Wrap(err, "failed to write cover letter markdown")
			return err
		}
		markdown = append(markdown, filenames.CoverMD)
		pdfs[filenames.CoverMD] = filenames.CoverPDF
	}

	if skipPDF {
		fmt.Println("\nMarkdown files saved (PDF generation skipped):")
		for _, path := range markdown {
			fmt.Printf("  %s\n", path)
		}
		return err
	}

	opts := renderer.PDFOptions{TemplatePath: cfg.Pandoc.TemplatePath, ClassFile: cfg.Pandoc.ClassFile}
	for _, md := range markdown {
		err = renderer.RenderPDF(ctx, md, pdfs[md], opts)
		if err != nil {
			err = errors.Wrapf(err, "failed to render %s", md)
			return err
		}
		fmt.Printf("✓ %s\n", pdfs[md])
	}

	if !keepMarkdown {
		err = renderer.CleanupMarkdown(markdown...)
		if err != nil {
			return err
		}
	}

	return err
}

func printAnalysis(g editor.Generated) {
	if len(g.Fallbacks) > 0 {
		names := make([]string, 0, len(g.Fallbacks))
		for _, task := range g.Fallbacks {
			names = append(names, string(task))
		}
		fmt.Printf("\nNote: generic content was used for: %s\n", strings.Join(names, ", "))
	}

	if g.Critique != nil {
		fmt.Printf("\nMatch score: %d/100\n", g.Critique.Score)
		if g.Critique.Verdict != "" {
			fmt.Printf("  %s\n", g.Critique.Verdict)
		}
	}

	if g.SkillsAnalysis != nil && len(g.SkillsAnalysis.MissingSkills) > 0 {
		fmt.Printf("\nSkills to address: %s\n", strings.Join(g.SkillsAnalysis.MissingSkills, ", "))
	}

	if len(g.InterviewQuestions) > 0 {
		fmt.Println("\nInterview preparation:")
		for i, q := range g.InterviewQuestions {
			fmt.Printf("%d. %s\n", i+1, q.Question)
		}
	}
}
