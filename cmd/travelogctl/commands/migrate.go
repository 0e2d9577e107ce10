package commands

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/AlbertoOrlando/travel-journal-app/internal/database"

	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long: `Run the embedded SQL migrations.

Subcommands:
  up      - Apply pending migrations
  down    - Rollback a migration
  status  - Show migration status`,
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, closeDB, err := openDB(ctx, false)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := database.RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "sql migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [version]",
	Short: "Rollback a migration",
	Long: `Rollback one applied migration. Without a version the latest applied
migration is rolled back.

Examples:
  travelogctl migrate down        # Rollback the latest migration
  travelogctl migrate down 1      # Rollback migration 000001`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		_, db, closeDB, err := openDB(ctx, false)
		if err != nil {
			return err
		}
		defer closeDB()

		if len(args) == 0 {
			version, err := database.RollbackLatest(ctx, db)
			if err != nil {
				return fmt.Errorf("rollback failed: %w", err)
			}
			if version == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no applied migrations")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %06d\n", version)
			return nil
		}

		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		if err := database.RollbackMigration(ctx, db, version); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back migration %06d\n", version)
		return nil
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, db, closeDB, err := openDB(ctx, false)
		if err != nil {
			return err
		}
		defer closeDB()

		status, err := database.GetSchemaStatus(ctx, db, cfg)
		if err != nil {
			return fmt.Errorf("schema status failed: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "mode\t%s\n", status.Mode)
		fmt.Fprintf(w, "environment\t%s\n", status.Environment)
		fmt.Fprintf(w, "run sql\t%t\n", status.WillRunSQL)
		fmt.Fprintf(w, "run automigrate\t%t\n", status.WillRunAutoMigrate)
		if !status.WillRunSQL {
			return w.Flush()
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
		applied := make(map[int]bool, len(status.AppliedVersions))
		for _, v := range status.AppliedVersions {
			applied[v] = true
		}
		for _, m := range database.GetMigrations() {
			state := "pending"
			if applied[m.Version] {
				state = "applied"
			}
			fmt.Fprintf(w, "%06d\t%s\t%s\n", m.Version, m.Name, state)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd)
}
