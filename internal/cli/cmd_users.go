package cli

import (
	"github.com/spf13/cobra"
)

func newUsersCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect registered users",
	}

	cmd.AddCommand(newUsersListCmd(st))

	return cmd
}

func newUsersListCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users with their source, feed and session counts",
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

			rows := make([]UserRow, 0, len(doc.Users))

			for _, user := range doc.Users {
				row := UserRow{
					ID:      user.ID,
					Name:    user.Name,
					Email:   user.Email,
					Sources: len(doc.SourcesOwnedBy(user.ID)),
					Feeds:   len(doc.FeedsOwnedBy(user.ID)),
				}

				for _, session := range doc.Sessions {
					if session.UserID == user.ID {
						row.Sessions++
					}
				}

				rows = append(rows, row)
			}

			if st.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			return writeUsersTable(cmd.OutOrStdout(), rows)
		},
	}
}
