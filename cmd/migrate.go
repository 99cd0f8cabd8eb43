package cmd

import (
	"fmt"
	"strconv"

	"animalitos/config"
	"animalitos/database"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the Postgres schema",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return database.MigrateUp(config.Get().GetDatabaseURL())
			},
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations (default 1)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					parsed, err := strconv.Atoi(args[0])
					if err != nil {
						return fmt.Errorf("invalid steps value %q: %w", args[0], err)
					}
					steps = parsed
				}
				return database.MigrateDown(config.Get().GetDatabaseURL(), steps)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				status, err := database.MigrateStatus(config.Get().GetDatabaseURL())
				if err != nil {
					return err
				}
				if !status.Applied {
					fmt.Fprintln(cmd.OutOrStdout(), "No migrations applied")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Version: %d, Dirty: %t\n", status.Version, status.Dirty)
				return nil
			},
		},
	)
	return migrateCmd
}
