package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stoic-notes/notes/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the notes table and its secondary indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := environmentReady(cfg); err != nil {
			return err
		}

		gateway, err := database.Open(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer gateway.Close()

		if err := gateway.Migrate(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Storage is ready", zap.String("backend", cfg.StorageBackend), zap.String("table", cfg.Table))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
