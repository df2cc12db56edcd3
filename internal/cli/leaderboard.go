package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"fun-quiz/internal/app"
	"github.com/spf13/cobra"
)

// NewLeaderboardCmd prints the top scores.
func NewLeaderboardCmd(configPath *string) *cobra.Command {
	var top int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the top scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			d, err := buildDeps(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			n := top
			if !cmd.Flags().Changed("top") && cfg.Leaderboard.Top > 0 {
				n = cfg.Leaderboard.Top
			}
			printLeaderboard(cmd.Context(), cmd.OutOrStdout(), d.service, n)
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of entries to show")
	return cmd
}

func printLeaderboard(ctx context.Context, out io.Writer, service *app.QuizService, n int) {
	entries, err := service.Leaderboard(ctx, n)
	if err != nil {
		failColor.Fprintf(out, "Leaderboard unavailable: %v\n", err)
		return
	}
	fmt.Fprintln(out, "\nLeaderboard (top scores)")
	if len(entries) == 0 {
		fmt.Fprintln(out, "No scores yet. Be the first!")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tscore\ttotal\tcategory\ttime")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", e.Name, e.Score, e.Total, e.Category, e.Time.Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
