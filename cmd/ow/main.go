package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/config"
	"github.com/oceanwatch/oceanwatch/internal/db"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ow",
		Short: "Oceanwatch — crowd-sourced Fisker Ocean sighting tracker",
		Long:  "Oceanwatch collects vehicle sightings over SMS, validates plates against the NYC TLC registry, and publishes batches to Bluesky.",
	}

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newLookupCmd())
	cmd.AddCommand(newPostCmd())
	cmd.AddCommand(newBackfillCmd())
	cmd.AddCommand(newStatusCmd())
	cmd.AddCommand(newLoginCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ow %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

// openStore loads config and connects to the database. Most commands
// start here.
func openStore(configPath string) (*config.Config, *db.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database.Driver, err)
	}

	return cfg, db.NewStore(gormDB), nil
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
