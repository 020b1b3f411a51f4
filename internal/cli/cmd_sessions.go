package cli

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

const tokenPrefixLength = 8

func newSessionsCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and prune sessions",
	}

	cmd.AddCommand(newSessionsListCmd(st))
	cmd.AddCommand(newSessionsPruneCmd(st))

	return cmd
}

func newSessionsListCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions, oldest first",
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

			now := st.now()
			rows := make([]SessionRow, 0, len(doc.Sessions))

			for token, session := range doc.Sessions {
				user, ok := doc.UserByID(session.UserID)

				rows = append(rows, SessionRow{
					TokenPrefix: token[:min(len(token), tokenPrefixLength)],
					UserID:      session.UserID,
					UserEmail:   user.Email,
					CreatedAt:   session.Created().UTC(),
					Expired:     session.Expired(now),
					Orphaned:    !ok,
				})
			}

			slices.SortFunc(rows, func(a, b SessionRow) int {
				return cmp.Or(a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.TokenPrefix, b.TokenPrefix))
			})

			if st.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), rows)
			}

			return writeSessionsTable(cmd.OutOrStdout(), rows, now)
		},
	}
}

func newSessionsPruneCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := st.requireApp()
			if err != nil {
				return err
			}

			app.sessions.Now = st.now

			pruned, err := app.sessions.Prune(cmd.Context())
			if err != nil {
				return err
			}

			if st.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]int{"pruned": pruned})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired session(s)\n", pruned)

			return nil
		},
	}
}
