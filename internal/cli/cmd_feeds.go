package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mkrupp/newsletterhub/internal/domain"
)

func newFeedsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feeds",
		Short: "Inspect feeds",
	}

	cmd.AddCommand(newFeedsListCmd(st))

	return cmd
}

func newFeedsListCmd(st *state) *cobra.Command {
	var userEmail string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feeds of all users or of one user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := st.requireApp()
			if err != nil {
				return err
			}

			doc, err := app.snapshot(cmd.Context())
			if err != nil {
				return err
			}

			feeds := doc.Feeds

			if userEmail != "" {
				user, ok := doc.UserByEmail(userEmail)
				if !ok {
					return fmt.Errorf("%w: %s", domain.ErrUserNotFound, userEmail)
				}

				feeds = doc.FeedsOwnedBy(user.ID)
			}

			rows := make([]FeedRow, 0, len(feeds))

			for _, feed := range feeds {
				owner, _ := doc.UserByID(feed.UserID)

				rows = append(rows, FeedRow{
					ID:         feed.ID,
					OwnerEmail: owner.Email,
					Name:       feed.Name,
					Keywords:   feed.Keywords,
					SourceIDs:  slices.Clone(feed.SourceIDs),
				})
			}

			if st.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			return writeFeedsTable(cmd.OutOrStdout(), rows)
		},
	}

	cmd.Flags().StringVar(&userEmail, "user", "", "Only list feeds of the user with this email")

	return cmd
}
