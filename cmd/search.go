package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/editor"
	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/profile"
	"github.com/nikogura/smartresume/pkg/store"
)

//nolint:gochecknoglobals // Cobra boilerplate
var searchCriteria jobsearch.Criteria

//nolint:gochecknoglobals // Cobra boilerplate
var searchJSON bool

//nolint:gochecknoglobals // Cobra boilerplate
var searchSave bool

//nolint:gochecknoglobals // Cobra boilerplate
var searchCmd = &cobra.Command{
	Use:   "search [title]",
	Short: "Search LinkedIn job postings",
	Long: `Search LinkedIn job postings through the Apify job scraper.

Either a title or at least one company is required. Results are saved as the
last search; tailor to one of them with 'smartresume tailor --job N'.

Example:
  smartresume search "Staff Engineer" --location "Remote" --posting-time "Past Week"
  smartresume search --company Stripe --company Plaid --limit 25
  smartresume search "SRE" --experience-level "Mid-Senior" --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchCriteria.Location, "location", "", "Location (default \"United States\")")
	searchCmd.Flags().StringSliceVar(&searchCriteria.Companies, "company", nil, "Company to search (repeatable)")
	searchCmd.Flags().StringVar(&searchCriteria.ExperienceLevel, "experience-level", "", oneOf(jobsearch.ExperienceLevels()))
	searchCmd.Flags().StringVar(&searchCriteria.EmploymentType, "employment-type", "", oneOf(jobsearch.EmploymentTypes()))
	searchCmd.Flags().StringVar(&searchCriteria.WorkArrangement, "work-arrangement", "", oneOf(jobsearch.WorkArrangements()))
	searchCmd.Flags().StringVar(&searchCriteria.PostingTime, "posting-time", "", oneOf(jobsearch.PostingTimes()))
	searchCmd.Flags().IntVar(&searchCriteria.ResultLimit, "limit", jobsearch.DefaultResultLimit, "Maximum number of jobs")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")
	searchCmd.Flags().BoolVar(&searchSave, "save", true, "Save results as the last search")
}

func oneOf(labels []string) (help string) {
	help = "One of: " + strings.Join(labels, ", ")
	return help
}

// searchCriteriaFrom combines the flags with an optional title argument and
// rejects criteria the search would not honor.
func searchCriteriaFrom(args []string) (criteria jobsearch.Criteria, err error) {
	criteria = searchCriteria
	if len(args) > 0 {
		criteria.Title = args[0]
	}

	err = criteria.Validate()
	if err != nil {
		return criteria, err
	}

	err = criteria.CheckFilters()
	return criteria, err
}

func runSearch(cmd *cobra.Command, args []string) (err error) {
	criteria, err := searchCriteriaFrom(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	client := newSearchClient(cfg, log)
	if !client.Configured() {
		err = errors.Wrap(jobsearch.ErrNotConfigured, "set APIFY_API_KEY or apify.api_key in the config file")
		return err
	}

	// The run is polled for at most MaxPollAttempts intervals; leave headroom for
	// starting it and reading the dataset.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	session := editor.NewSession(profile.Profile{}, nil, nil, nil, log)
	if searchSave {
		var results store.ResultStore
		var openErr error
		session, results, openErr = openSession(ctx, cfg.Store, profile.Profile{}, nil, nil, log)
		if openErr != nil {
			log.Warn("search results will not be saved", "err", openErr)
			session = editor.NewSession(profile.Profile{}, nil, nil, nil, log)
		} else {
			defer func() { _ = results.Shutdown(ctx) }()
		}
	}

	var jobs []jobsearch.Posting
	err = withSpinner("Searching LinkedIn jobs...", func() (searchErr error) {
		jobs, searchErr = client.Search(ctx, criteria)
		return searchErr
	})
	if err != nil {
		err = errors.Wrap(err, "job search failed")
		return err
	}

	saveErr := session.SetSearchResults(ctx, criteria, jobs)
	if saveErr != nil {
		log.Warn("failed to save search results", "err", saveErr)
	}

	if searchJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		err = enc.Encode(session.Results())
		if err != nil {
			err = errors.Wrap(err, "failed to encode results")
		}
		return err
	}

	printJobs(session.Results())
	return err
}

func printJobs(jobs []jobsearch.Posting) {
	if len(jobs) == 0 {
		fmt.Println("No jobs found.")
		return
	}

	fmt.Printf("✓ Found %d jobs\n\n", len(jobs))
	for i, job := range jobs {
		fmt.Printf("%2d. %s at %s\n", i+1, job.JobTitle, job.CompanyName)
		if job.Location != "" {
			fmt.Printf("    Location: %s\n", job.Location)
		}
		if job.TimePosted != "" {
			fmt.Printf("    Posted:   %s\n", job.TimePosted)
		}
		if job.SalaryRange != nil && *job.SalaryRange != "" {
			fmt.Printf("    Salary:   %s\n", *job.SalaryRange)
		}
		if job.JobURL != "" {
			fmt.Printf("    URL:      %s\n", job.JobURL)
		}
	}

	fmt.Println("\nTailor to a job with: smartresume tailor --job <number>")
}
