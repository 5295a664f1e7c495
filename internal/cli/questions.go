package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newQuestionsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Work with the question bank",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "check [file]",
		Short: "Validate a question bank",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			path := cfg.QuestionsPath()
			if len(args) == 1 {
				path = args[0]
			}

			records, err := loadQuestions(path, cfg.SessionSize)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d questions, %d per session\n", path, len(records), cfg.SessionSize)
			return nil
		},
	})

	return cmd
}
