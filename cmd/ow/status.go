package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/bluesky"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show collection progress and queue counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	return cmd
}

func runStatus(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}

	vehicles, err := store.VehicleCount()
	if err != nil {
		return err
	}
	sightings, err := store.TotalSightingCount()
	if err != nil {
		return err
	}
	uniquePlates, err := store.UniquePlateCount()
	if err != nil {
		return err
	}
	contributors, err := store.ContributorCount()
	if err != nil {
		return err
	}
	unposted, err := store.UnpostedSightings(0)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Registry vehicles:  %d\n", vehicles)
	fmt.Fprintf(out, "Sightings:          %d\n", sightings)
	fmt.Fprintf(out, "Unique plates:      %d\n", uniquePlates)
	fmt.Fprintf(out, "Contributors:       %d\n", contributors)
	fmt.Fprintf(out, "Unposted sightings: %d\n", len(unposted))
	fmt.Fprintf(out, "Progress:           %s\n", bluesky.ProgressBar(uniquePlates, vehicles))
	fmt.Fprintf(out, "Database:           %s (%s)\n", cfg.Database.Driver, cfg.Database.DSN)
	return nil
}
