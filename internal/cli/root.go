// Package cli implements the fingerquiz command line.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerquiz/internal/config"
)

type options struct {
	configPath string
	envFile    string
	debug      bool
}

func (o *options) load() (config.Config, error) {
	cfg, err := config.Load(o.envFile, o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.debug {
		cfg.Debug = true
	}
	return cfg, nil
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "fingerquiz",
		Short:         "Answer quiz questions by pointing at the webcam",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("FINGERQUIZ_CONFIG"), "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "path to a .env file, ignored when missing")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newLeaderboardCmd(opts))
	cmd.AddCommand(newQuestionsCmd(opts))
	return cmd
}
