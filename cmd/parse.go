package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/profile"
)

//nolint:gochecknoglobals // Cobra boilerplate
var parseResume bool

//nolint:gochecknoglobals // Cobra boilerplate
var parseOutput string

//nolint:gochecknoglobals // Cobra boilerplate
var parseMerge bool

//nolint:gochecknoglobals // Cobra boilerplate
var parseCmd = &cobra.Command{
	Use:   "parse <job-url-or-file>",
	Short: "Parse a job page or import a resume",
	Long: `Parse a job page into structured fields, or import a plain-text resume
into a profile.

A job page can be a LinkedIn job URL, any other URL, or a saved HTML file. The
AI provider is used when configured; otherwise the page is parsed locally.

With --resume the argument is a text file holding a resume. The parsed profile
is printed, or written with --output. --merge overlays the fields found in the
resume onto the profile at profile_location and keeps the rest.

Example:
  smartresume parse https://www.linkedin.com/jobs/view/4012345678
  smartresume parse saved-job.html
  smartresume parse --resume resume.txt --merge --output ~/.smartresume/profile.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&parseResume, "resume", false, "Treat the argument as a resume text file")
	parseCmd.Flags().StringVar(&parseOutput, "output", "", "Write the result to this file instead of stdout")
	parseCmd.Flags().BoolVar(&parseMerge, "merge", false, "Merge an imported resume into the configured profile")
}

func runParse(cmd *cobra.Command, args []string) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	gateway := newGateway(cfg, log)

	if parseResume {
		var data []byte
		data, err = os.ReadFile(args[0])
		if err != nil {
			err = errors.Wrapf(err, "failed to read resume: %s", args[0])
			return err
		}

		var parsed profile.Profile
		err = withSpinner("Importing resume...", func() (parseErr error) {
			parsed, parseErr = gateway.ParseResume(ctx, string(data))
			return parseErr
		})
		if err != nil {
			return err
		}

		if parseMerge && cfg.ProfileLocation != "" {
			var existing profile.Profile
			existing, err = profile.Load(cfg.ProfileLocation)
			if err != nil {
				return err
			}
			parsed = importResume(existing, parsed, log)
		}

		err = writeResult(parsed, parseOutput)
		return err
	}

	fetcher := linkedin.NewFetcher(log)

	var page string
	page, err = fetcher.Fetch(ctx, args[0])
	if err != nil {
		jobID, ok := linkedin.ExtractJobID(args[0])
		if !ok {
			return err
		}

		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		err = writeResult(linkedin.Unavailable(jobID), parseOutput)
		return err
	}

	var fields linkedin.ParsedJobFields
	err = withSpinner("Parsing job page...", func() (parseErr error) {
		outcome := gateway.ParseJobHTML(ctx, page)
		fields = outcome.Value
		if outcome.Fallback {
			log.Info("job page parsed without the AI provider", "reason", outcome.Reason)
		}
		return parseErr
	})
	if err != nil {
		return err
	}

	err = writeResult(fields, parseOutput)
	return err
}

// writeResult prints v as indented JSON, or writes it to path.
func writeResult(v any, path string) (err error) {
	var data []byte
	data, err = json.MarshalIndent(v, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to encode result")
		return err
	}

	if path == "" {
		fmt.Println(string(data))
		return err
	}

	err = os.WriteFile(path, append(data, '\n'), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write %s", path)
		return err
	}

	fmt.Printf("✓ Wrote %s\n", path)
	return err
}
