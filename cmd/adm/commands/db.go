package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openhome-school/backend/internal/database"
)

// MigrateCommand applies the embedded baseline schema.
func MigrateCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long: `Apply the embedded baseline schema to the configured database.
Running it against an up-to-date database is a no-op.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Migrate(cmd.Context(), env.Config.Database.URL, env.Logger); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}
