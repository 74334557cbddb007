package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	var down bool
	var version uint

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != "postgres" {
				return fmt.Errorf("migrate requires STORE_DRIVER=postgres")
			}
			if cmd.Flags().Changed("version") {
				cfg.DatabaseMigrationVersion = version
			}

			a := newApp(cfg, logger)
			if err := a.startDatabase(cmd.Context()); err != nil {
				return err
			}
			defer a.db.Close()

			if err := a.migrate(down); err != nil {
				return err
			}
			logger.Info("Migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll every migration back")
	cmd.Flags().UintVar(&version, "version", 0, "migrate to this version instead of the latest")
	return cmd
}
