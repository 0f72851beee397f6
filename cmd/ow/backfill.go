package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/oceanwatch/oceanwatch/internal/imagehash"
)

func newBackfillCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Compute missing image hashes for existing sightings",
		Long: `Computes SHA-256 and perceptual hashes for sightings recorded before
hashing existed. Sightings whose image file is missing are reported and
skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "oceanwatch.yaml", "path to config file")
	return cmd
}

func runBackfill(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	_, store, err := openStore(configPath)
	if err != nil {
		return err
	}

	sightings, err := store.SightingsMissingHashes()
	if err != nil {
		return err
	}
	if len(sightings) == 0 {
		fmt.Fprintln(out, "All sightings already hashed")
		return nil
	}

	updated := 0
	skipped := 0
	for _, s := range sightings {
		sha, err := imagehash.SHA256File(s.ImagePath)
		if err != nil {
			fmt.Fprintf(out, "  Skipping sighting %d: %v\n", s.ID, err)
			skipped++
			continue
		}

		// A failed perceptual hash still leaves the exact-duplicate hash
		// usable; store what we have.
		perceptual, err := imagehash.PerceptualHash(s.ImagePath)
		if err != nil {
			fmt.Fprintf(out, "  Sighting %d: no perceptual hash: %v\n", s.ID, err)
			perceptual = ""
		}

		if err := store.UpdateSightingHashes(s.ID, sha, perceptual); err != nil {
			return err
		}
		updated++
	}

	fmt.Fprintf(out, "Backfilled %d sighting(s), skipped %d\n", updated, skipped)
	return nil
}
