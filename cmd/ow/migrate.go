package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/db"
)

func newMigrateCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Long:  "Runs schema migration for all tables. Safe to run multiple times.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	return cmd
}

func runMigrate(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(store.DB()); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables on %s\n", len(db.AllModels()), cfg.Database.Driver)
	return nil
}
