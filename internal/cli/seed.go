package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add the starter books to an empty library",
		Long: "Adds the five starter books for the user. A library that already " +
			"holds books is left untouched.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.close(cmd.Context())

			user := s.userOrDefault(userID)
			n, err := s.library.SeedDefaultBooks(cmd.Context(), user)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Library of %s is not empty, nothing seeded\n", user)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d books for %s\n", n, user)
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "owner of the library (defaults to AUTH_DEFAULT_USER_ID)")
	return cmd
}
