package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/fingerquiz/internal/leaderboard"
)

func newLeaderboardCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show or reset the saved scores",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			board, _, closeStore, err := openBoard(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			entries, err := board.List(cmd.Context())
			if err != nil && !errors.Is(err, leaderboard.ErrCorrupt) {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, leaderboard.Title())
			if len(entries) == 0 {
				fmt.Fprintln(out, leaderboard.EmptyMessage)
				return nil
			}
			for _, row := range leaderboard.Rank(entries, cfg.SessionSize) {
				fmt.Fprintf(out, "%s %s %s\n", row.Badge, row.Name, row.Display)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all saved scores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			board, _, closeStore, err := openBoard(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := board.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Leaderboard cleared.")
			return nil
		},
	})

	return cmd
}
