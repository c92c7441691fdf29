package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"medals/config"
	"medals/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply every pending migration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := config.Get().DatabaseConnectionURL()
		if err != nil {
			return err
		}
		return database.MigrateUp(url)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations, one by default",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := config.Get().DatabaseConnectionURL()
		if err != nil {
			return err
		}
		steps := "1"
		if len(args) == 1 {
			steps = args[0]
		}
		return database.MigrateDown(url, steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the applied schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, err := config.Get().DatabaseConnectionURL()
		if err != nil {
			return err
		}
		status, err := database.GetMigrationStatus(url)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !status.Applied {
			fmt.Fprintln(out, "No migrations applied")
			return nil
		}
		fmt.Fprintf(out, "Version: %d\n", status.Version)
		if status.Dirty {
			fmt.Fprintln(out, "Status: dirty (a migration failed part way)")
		} else {
			fmt.Fprintln(out, "Status: clean")
		}
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}
