package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikogura/smartresume/pkg/config"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default configuration file",
	Long: `Create a default configuration file at $HOME/.smartresume/config.json
(or the path given with --config).

API keys may be left empty in the file and supplied through the environment
or a .env file instead:
  APIFY_API_KEY, MULERUN_API_KEY or ANTHROPIC_API_KEY`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	path := getConfigFile()
	if path == "" {
		path, err = config.DefaultPath()
		if err != nil {
			return err
		}
	}

	err = config.InitConfig(path)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Created config file: %s\n", path)
	return err
}
