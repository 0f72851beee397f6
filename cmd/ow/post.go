package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/bluesky"
)

func newPostCmd() *cobra.Command {
	var (
		configPath string
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Publish one batch of unposted sightings to Bluesky",
		Long: `Publishes the oldest unposted sightings (up to the configured batch
limit) as a single Bluesky post with embedded photos.

With --dry-run, prints the composed post text without publishing or
marking anything posted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd, configPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the post text without publishing")
	return cmd
}

func runPost(cmd *cobra.Command, configPath string, dryRun bool) error {
	out := cmd.OutOrStdout()

	cfg, store, err := openStore(configPath)
	if err != nil {
		return err
	}

	if dryRun {
		sightings, err := store.UnpostedSightings(cfg.Posting.BatchLimit)
		if err != nil {
			return err
		}
		if len(sightings) == 0 {
			fmt.Fprintln(out, "No unposted sightings")
			return nil
		}

		uniquePlates, err := store.UniquePlateCount()
		if err != nil {
			return err
		}
		totalVehicles, err := store.VehicleCount()
		if err != nil {
			return err
		}

		text := bluesky.FormatBatchText(sightings, bluesky.Stats{
			UniquePlatesSighted: uniquePlates,
			TotalVehicles:       totalVehicles,
		})
		fmt.Fprintf(out, "Would post %d sighting(s):\n\n%s\n", len(sightings), text)
		return nil
	}

	publisher, err := bluesky.NewPublisher(bluesky.PublisherOpts{
		Store:  store,
		Poster: bluesky.New(cfg.Bluesky),
		Limit:  cfg.Posting.BatchLimit,
	})
	if err != nil {
		return err
	}

	n, err := publisher.PublishBatch(cmd.Context())
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(out, "No unposted sightings")
		return nil
	}
	fmt.Fprintf(out, "Published %d sighting(s)\n", n)
	return nil
}
