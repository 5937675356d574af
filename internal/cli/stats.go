package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/entities"
)

func newStatsCommand() *cobra.Command {
	var (
		userID string
		goal   int
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print reading statistics for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			user := s.userOrDefault(userID)
			stats, err := s.library.ComputeStats(cmd.Context(), user)
			if err != nil {
				return err
			}
			progress, err := s.library.ReadingGoal(cmd.Context(), user, goal)
			if err != nil {
				return err
			}

			printStats(cmd.OutOrStdout(), user, stats, progress)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "owner of the library (defaults to AUTH_DEFAULT_USER_ID)")
	cmd.Flags().IntVar(&goal, "goal", 0, "yearly reading goal (defaults to READING_GOAL)")
	return cmd
}

func printStats(w io.Writer, user string, stats *entities.Stats, goal *entities.ReadingGoal) {
	fmt.Fprintf(w, "Library of %s: %d books\n", user, stats.TotalBooks)
	fmt.Fprintf(w, "  unread:      %d\n", stats.ByStatus.Unread)
	fmt.Fprintf(w, "  in progress: %d\n", stats.ByStatus.InProgress)
	fmt.Fprintf(w, "  completed:   %d\n", stats.ByStatus.Completed)

	if len(stats.GenreDistribution) > 0 {
		fmt.Fprintln(w, "\nGenres:")
		for _, g := range stats.GenreDistribution {
			fmt.Fprintf(w, "  %-20s %d\n", g.Genre, g.Count)
		}
	}

	fmt.Fprintf(w, "\nCompleted in %d:\n", goal.Year)
	for month, count := range stats.MonthlyCompleted {
		if count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-10s %d\n", time.Month(month+1), count)
	}
	fmt.Fprintf(w, "\nReading goal: %d/%d (%d%%)\n", goal.Completed, goal.Goal, goal.Percent)
}
