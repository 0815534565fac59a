package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/config"
	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "smartresume",
	Short: "Find jobs and tailor your resume to them",
	Long: `smartresume searches LinkedIn job postings, parses job pages, and tailors
your resume, cover letter, and interview preparation to a chosen job.

Run it as an HTTP service for the resume editor (serve) or use the
search, parse, and tailor commands directly.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.smartresume/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// loadConfig reads .env and the config file.
func loadConfig() (cfg config.Config, err error) {
	err = config.LoadDotEnv()
	if err != nil {
		err = errors.Wrap(err, "failed to load .env")
		return cfg, err
	}

	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, err
	}

	return cfg, err
}

// newLogger logs JSON at the configured level, or human-readable debug output
// with --verbose.
func newLogger(cfg config.Config) (log *logging.Logger) {
	if getVerbose() {
		log = logging.NewDevelopment("debug")
		return log
	}
	log = logging.New(cfg.LogLevel)
	return log
}

func newSearchClient(cfg config.Config, log *logging.Logger) (client *jobsearch.Client) {
	client = jobsearch.NewClient(jobsearch.Config{
		Token:           cfg.Apify.APIKey,
		ActorID:         cfg.Apify.ActorID,
		BaseURL:         cfg.Apify.BaseURL,
		PollInterval:    cfg.PollInterval(),
		MaxPollAttempts: cfg.Apify.MaxPollAttempts,
	}, log)
	return client
}

func newGateway(cfg config.Config, log *logging.Logger) (gateway *llm.Gateway) {
	gateway = llm.NewGateway(llm.Config{
		Provider: cfg.AI.Provider,
		APIKey:   cfg.AI.APIKey,
		BaseURL:  cfg.AI.BaseURL,
		Models: llm.Models{
			Writing:   cfg.AI.Models.Writing,
			Analysis:  cfg.AI.Models.Analysis,
			Interview: cfg.AI.Models.Interview,
		},
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
		Timeout:     cfg.AITimeout(),
	}, log)
	return gateway
}
