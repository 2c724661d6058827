package cli

import (
	"dealership/internal/config"
	"dealership/internal/database"
	"dealership/internal/migrations"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the database schema and seed the default exchange
rates and the admin profile (when ADMIN_PASSWORD is set).

--reset drops every table first. All data is lost.`,
	Example: `  dealership migrate
  dealership migrate --reset`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().Bool("reset", false, "Drop all tables before migrating")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	reset, _ := cmd.Flags().GetBool("reset")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	return migrations.RunMigrations(cmd.Context(), db, migrationOptions(cfg, reset))
}
