package cli

import (
	"github.com/spf13/cobra"
)

func newStatsCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show entity counts and store size",
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

			stats := Stats{
				Users:     len(doc.Users),
				Sources:   len(doc.Sources),
				Feeds:     len(doc.Feeds),
				Sessions:  len(doc.Sessions),
				StoreSize: app.storeSize(),
			}

			if st.output == OutputJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			return writeStatsTable(cmd.OutOrStdout(), stats)
		},
	}
}
